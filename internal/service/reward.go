// internal/service/reward.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/metrics"
	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// DonationRewardTokens is the token amount owed per completed donation.
const DonationRewardTokens = 50.0

// RewardRecorder records reward amounts owed for completed donations.
type RewardRecorder interface {
	RecordDonationReward(ctx context.Context, userID, matchID string) error
}

// RewardService books rewards owed to donors. The actual token transfer is
// performed by the external ledger job against the OWED payout rows; this
// service never calls the ledger.
type RewardService struct {
	store    RewardStore
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewRewardService(store RewardStore, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *RewardService {
	return &RewardService{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

func (s *RewardService) RecordDonationReward(ctx context.Context, userID, matchID string) error {
	payout := &models.RewardPayout{
		ID:        uuid.New().String(),
		UserID:    userID,
		MatchID:   matchID,
		Amount:    DonationRewardTokens,
		Status:    models.PayoutStatusOwed,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateRewardPayout(ctx, payout); err != nil {
		return err
	}

	if err := s.store.AddDonorRewards(ctx, userID, DonationRewardTokens); err != nil {
		// The payout row is the source of truth; the running total is
		// reconciled by the ledger job, so a failed increment only logs.
		s.logger.Error("failed to update donor reward total",
			zap.Error(err),
			zap.String("user_id", userID))
	}

	s.metrics.IncRewardsRecorded()
	s.logger.Info("reward recorded",
		zap.String("user_id", userID),
		zap.String("match_id", matchID),
		zap.Float64("amount", DonationRewardTokens))

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, EventRewardIssued, map[string]interface{}{
			"match_id": matchID,
			"amount":   DonationRewardTokens,
		})
	}
	return nil
}

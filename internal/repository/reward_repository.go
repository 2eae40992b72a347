// internal/repository/reward_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// RewardRepository books reward payouts and notification rows. Payout rows
// are the source of truth for the external ledger settlement job.
type RewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) CreateRewardPayout(ctx context.Context, payout *models.RewardPayout) error {
	query := `
		INSERT INTO reward_payouts (id, user_id, match_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		payout.ID,
		payout.UserID,
		payout.MatchID,
		payout.Amount,
		payout.Status,
		payout.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create reward payout: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RewardRepository) AddDonorRewards(ctx context.Context, userID string, amount float64) error {
	query := `
		UPDATE donor_profiles
		SET total_rewards_earned = total_rewards_earned + $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("%w: add donor rewards: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: donor profile for user %s", models.ErrNotFound, userID)
	}
	return nil
}

func (r *RewardRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, event, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Event,
		n.Title,
		n.Message,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create notification: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

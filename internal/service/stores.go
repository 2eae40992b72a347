// internal/service/stores.go
// Capability contracts consumed by the core engines. The datastore is the
// sole shared mutable resource; implementations live in internal/repository.
package service

import (
	"context"
	"time"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// MatchStore is the datastore surface the match engine depends on.
type MatchStore interface {
	FindRequest(ctx context.Context, id string) (*models.BloodRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) error
	FindCandidateDonors(ctx context.Context, filter models.DonorFilter, limit int) ([]*models.DonorProfile, error)

	// CreateMatch persists a match with at-most-once semantics per
	// (request, donor) pair. It reports false when the pair already
	// existed and no new record was created.
	CreateMatch(ctx context.Context, match *models.Match) (bool, error)
	FindMatch(ctx context.Context, id string) (*models.Match, error)
	FindMatchesByRequest(ctx context.Context, requestID string) ([]*models.Match, error)
	UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error
	UpdateDonorCounters(ctx context.Context, donorID string, successDelta, failureDelta int) error
	ExpireMatches(ctx context.Context, now time.Time) (int64, error)
}

// FraudStore exposes the historical signals the fraud engine aggregates.
type FraudStore interface {
	RecentVerificationAttempts(ctx context.Context, userID string, limit int) ([]models.VerificationAttempt, error)
	CountRecentAttempts(ctx context.Context, userID string, window time.Duration) (int, error)
	UserActivity(ctx context.Context, userID string) (*models.UserActivity, error)
	DonationCounterparts(ctx context.Context, userID string) ([]models.Counterpart, error)
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
}

// AlertStore is the append-only fraud alert trail.
type AlertStore interface {
	CreateFraudAlert(ctx context.Context, alert *models.FraudAlert) error
	AlertsForUser(ctx context.Context, userID string, limit int) ([]models.FraudAlert, error)
}

// VerifierStore backs the peer-attestation pool and its outcomes.
type VerifierStore interface {
	FindVerifierPool(ctx context.Context, filter models.VerifierFilter, limit int) ([]*models.VerifierCandidate, error)
	FindVerifier(ctx context.Context, userID string) (*models.VerifierCandidate, error)
	CreateVerifier(ctx context.Context, v *models.VerifierCandidate) error
	UpdateVerifier(ctx context.Context, v *models.VerifierCandidate) error
	CreateVerification(ctx context.Context, v *models.Verification) error
}

// RewardStore records reward amounts owed; the token ledger transfer itself
// happens outside this core.
type RewardStore interface {
	CreateRewardPayout(ctx context.Context, payout *models.RewardPayout) error
	AddDonorRewards(ctx context.Context, userID string, amount float64) error
}

// NotificationStore persists in-app notification rows.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Notifier delivers a user-facing event. Best-effort: implementations log
// failures and never propagate them, so the method returns nothing.
type Notifier interface {
	Notify(ctx context.Context, userID, event string, payload map[string]interface{})
}

// RealtimeBus fans an event out to connected clients. Same best-effort
// contract; callers log a returned error and move on.
type RealtimeBus interface {
	Publish(ctx context.Context, topic string, event interface{}) error
}

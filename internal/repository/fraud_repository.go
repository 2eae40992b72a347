// internal/repository/fraud_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// FraudRepository reads the behavioral signals the risk engine scores on
// and applies block decisions.
type FraudRepository struct {
	db *sql.DB
}

func NewFraudRepository(db *sql.DB) *FraudRepository {
	return &FraudRepository{db: db}
}

func (r *FraudRepository) RecentVerificationAttempts(ctx context.Context, userID string, limit int) ([]models.VerificationAttempt, error) {
	query := `
		SELECT user_id, status, trust_score, created_at
		FROM verification_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent attempts: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var attempts []models.VerificationAttempt
	for rows.Next() {
		var a models.VerificationAttempt
		if err := rows.Scan(&a.UserID, &a.Status, &a.TrustScore, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan attempt: %v", models.ErrStoreUnavailable, err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate attempts: %v", models.ErrStoreUnavailable, err)
	}
	return attempts, nil
}

func (r *FraudRepository) CountRecentAttempts(ctx context.Context, userID string, window time.Duration) (int, error) {
	query := `
		SELECT COUNT(*) FROM verification_attempts
		WHERE user_id = $1 AND created_at >= $2
	`

	var count int
	since := time.Now().Add(-window)
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count attempts: %v", models.ErrStoreUnavailable, err)
	}
	return count, nil
}

func (r *FraudRepository) UserActivity(ctx context.Context, userID string) (*models.UserActivity, error) {
	query := `
		SELECT u.created_at, u.last_active_at,
			   ARRAY(
				   SELECT m.updated_at FROM matches m
				   JOIN donor_profiles d ON d.id = m.donor_id
				   WHERE d.user_id = u.id AND m.status = 'COMPLETED'
				   ORDER BY m.updated_at DESC
				   LIMIT 20
			   )
		FROM users u WHERE u.id = $1
	`

	activity := &models.UserActivity{}
	var lastActive sql.NullTime
	var donationTimes []time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&activity.CreatedAt,
		&lastActive,
		pq.Array(&donationTimes),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: user activity: %v", models.ErrStoreUnavailable, err)
	}

	if lastActive.Valid {
		t := lastActive.Time
		activity.LastActiveAt = &t
	}
	activity.DonationTimes = donationTimes
	return activity, nil
}

// DonationCounterparts returns the users this user has exchanged completed
// donations with, along with their block state.
func (r *FraudRepository) DonationCounterparts(ctx context.Context, userID string) ([]models.Counterpart, error) {
	query := `
		SELECT DISTINCT br.recipient_id, u.blocked
		FROM matches m
		JOIN donor_profiles d ON d.id = m.donor_id
		JOIN blood_requests br ON br.id = m.request_id
		JOIN users u ON u.id = br.recipient_id
		WHERE d.user_id = $1 AND m.status = 'COMPLETED'
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: donation counterparts: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var counterparts []models.Counterpart
	for rows.Next() {
		var c models.Counterpart
		if err := rows.Scan(&c.UserID, &c.Blocked); err != nil {
			return nil, fmt.Errorf("%w: scan counterpart: %v", models.ErrStoreUnavailable, err)
		}
		counterparts = append(counterparts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate counterparts: %v", models.ErrStoreUnavailable, err)
	}
	return counterparts, nil
}

func (r *FraudRepository) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	query := `UPDATE users SET blocked = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, blocked, userID)
	if err != nil {
		return fmt.Errorf("%w: set user blocked: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	return nil
}

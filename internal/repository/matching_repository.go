// internal/repository/matching_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// MatchingRepository persists blood requests, donor profiles and matches.
type MatchingRepository struct {
	db *sql.DB
}

func NewMatchingRepository(db *sql.DB) *MatchingRepository {
	return &MatchingRepository{db: db}
}

func (r *MatchingRepository) FindRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	query := `
		SELECT id, recipient_id, blood_type, rh_factor, units_needed,
			   urgency, latitude, longitude, radius_km, status,
			   expires_at, created_at
		FROM blood_requests WHERE id = $1
	`

	request := &models.BloodRequest{}
	var lat, lng sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.RecipientID,
		&request.BloodType,
		&request.RhFactor,
		&request.UnitsNeeded,
		&request.Urgency,
		&lat,
		&lng,
		&request.RadiusKm,
		&request.Status,
		&request.ExpiresAt,
		&request.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: request %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find request: %v", models.ErrStoreUnavailable, err)
	}

	if lat.Valid && lng.Valid {
		request.Origin = &geo.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	return request, nil
}

func (r *MatchingRepository) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	query := `UPDATE blood_requests SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: update request status: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: request %s", models.ErrNotFound, id)
	}
	return nil
}

// FindExpiringOpenRequests returns OPEN requests expiring before the
// deadline, most urgent first. Used by the periodic matching sweep.
func (r *MatchingRepository) FindExpiringOpenRequests(ctx context.Context, deadline time.Time, limit int) ([]*models.BloodRequest, error) {
	query := `
		SELECT id, recipient_id, blood_type, rh_factor, units_needed,
			   urgency, latitude, longitude, radius_km, status,
			   expires_at, created_at
		FROM blood_requests
		WHERE status = $1 AND expires_at > NOW() AND expires_at < $2
		ORDER BY CASE urgency
			WHEN 'EMERGENCY' THEN 5
			WHEN 'CRITICAL' THEN 4
			WHEN 'HIGH' THEN 3
			WHEN 'MEDIUM' THEN 2
			ELSE 1
		END DESC, expires_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.RequestStatusOpen, deadline, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: find expiring requests: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var requests []*models.BloodRequest
	for rows.Next() {
		request := &models.BloodRequest{}
		var lat, lng sql.NullFloat64
		if err := rows.Scan(
			&request.ID,
			&request.RecipientID,
			&request.BloodType,
			&request.RhFactor,
			&request.UnitsNeeded,
			&request.Urgency,
			&lat,
			&lng,
			&request.RadiusKm,
			&request.Status,
			&request.ExpiresAt,
			&request.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan request: %v", models.ErrStoreUnavailable, err)
		}
		if lat.Valid && lng.Valid {
			request.Origin = &geo.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate requests: %v", models.ErrStoreUnavailable, err)
	}
	return requests, nil
}

func (r *MatchingRepository) FindCandidateDonors(ctx context.Context, filter models.DonorFilter, limit int) ([]*models.DonorProfile, error) {
	query := `
		SELECT id, user_id, blood_type, rh_factor, is_available,
			   reputation_score, successful_donations, failed_matches,
			   avg_response_seconds, last_donation_at, fraud_risk_score,
			   biometric_verified, blocked, total_rewards_earned
		FROM donor_profiles
		WHERE ($1 = '' OR blood_type = $1)
		  AND ($2 = '' OR rh_factor = $2)
		  AND (NOT $3 OR is_available)
		  AND (NOT $4 OR NOT blocked)
		ORDER BY reputation_score DESC
		LIMIT $5
	`

	rows, err := r.db.QueryContext(ctx, query,
		filter.BloodType,
		filter.RhFactor,
		filter.AvailableOnly,
		filter.ExcludeBlocked,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: find candidate donors: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var donors []*models.DonorProfile
	for rows.Next() {
		donor := &models.DonorProfile{}
		var lastDonation sql.NullTime
		if err := rows.Scan(
			&donor.ID,
			&donor.UserID,
			&donor.BloodType,
			&donor.RhFactor,
			&donor.IsAvailable,
			&donor.ReputationScore,
			&donor.SuccessfulDonations,
			&donor.FailedMatches,
			&donor.AvgResponseSeconds,
			&lastDonation,
			&donor.FraudRiskScore,
			&donor.BiometricVerified,
			&donor.Blocked,
			&donor.TotalRewardsEarned,
		); err != nil {
			return nil, fmt.Errorf("%w: scan donor: %v", models.ErrStoreUnavailable, err)
		}
		if lastDonation.Valid {
			t := lastDonation.Time
			donor.LastDonationAt = &t
		}
		donors = append(donors, donor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate donors: %v", models.ErrStoreUnavailable, err)
	}
	return donors, nil
}

// CreateMatch inserts a match, at most once per (request, donor) pair.
// Returns false without error when the pair already has a match.
func (r *MatchingRepository) CreateMatch(ctx context.Context, match *models.Match) (bool, error) {
	query := `
		INSERT INTO matches (
			id, request_id, donor_id, donor_user_id, status,
			distance_km, model_score, overall_score,
			expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (request_id, donor_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.RequestID,
		match.DonorID,
		match.DonorUserID,
		match.Status,
		match.DistanceKm,
		match.ModelScore,
		match.OverallScore,
		match.ExpiresAt,
		match.CreatedAt,
		match.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%w: create match: %v", models.ErrStoreUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: create match: %v", models.ErrStoreUnavailable, err)
	}
	return affected > 0, nil
}

func (r *MatchingRepository) FindMatch(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, request_id, donor_id, donor_user_id, status,
			   distance_km, model_score, overall_score,
			   expires_at, created_at, updated_at
		FROM matches WHERE id = $1
	`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.RequestID,
		&match.DonorID,
		&match.DonorUserID,
		&match.Status,
		&match.DistanceKm,
		&match.ModelScore,
		&match.OverallScore,
		&match.ExpiresAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find match: %v", models.ErrStoreUnavailable, err)
	}
	return match, nil
}

func (r *MatchingRepository) FindMatchesByRequest(ctx context.Context, requestID string) ([]*models.Match, error) {
	query := `
		SELECT id, request_id, donor_id, donor_user_id, status,
			   distance_km, model_score, overall_score,
			   expires_at, created_at, updated_at
		FROM matches
		WHERE request_id = $1
		ORDER BY overall_score DESC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: find matches: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match := &models.Match{}
		if err := rows.Scan(
			&match.ID,
			&match.RequestID,
			&match.DonorID,
			&match.DonorUserID,
			&match.Status,
			&match.DistanceKm,
			&match.ModelScore,
			&match.OverallScore,
			&match.ExpiresAt,
			&match.CreatedAt,
			&match.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", models.ErrStoreUnavailable, err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate matches: %v", models.ErrStoreUnavailable, err)
	}
	return matches, nil
}

func (r *MatchingRepository) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: update match status: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: match %s", models.ErrNotFound, id)
	}
	return nil
}

func (r *MatchingRepository) UpdateDonorCounters(ctx context.Context, donorID string, successDelta, failureDelta int) error {
	query := `
		UPDATE donor_profiles
		SET successful_donations = successful_donations + $1,
			failed_matches = failed_matches + $2,
			last_donation_at = CASE WHEN $1 > 0 THEN NOW() ELSE last_donation_at END,
			updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, successDelta, failureDelta, donorID)
	if err != nil {
		return fmt.Errorf("%w: update donor counters: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: donor %s", models.ErrNotFound, donorID)
	}
	return nil
}

// ExpireMatches transitions PENDING matches past their expiry to EXPIRED.
func (r *MatchingRepository) ExpireMatches(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < $3
	`

	result, err := r.db.ExecContext(ctx, query,
		models.MatchStatusExpired, models.MatchStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("%w: expire matches: %v", models.ErrStoreUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: expire matches: %v", models.ErrStoreUnavailable, err)
	}
	return affected, nil
}

// DecayIdleReputations multiplies the reputation of donors idle since the
// cutoff by the keep factor, flooring at zero.
func (r *MatchingRepository) DecayIdleReputations(ctx context.Context, idleSince time.Time, keepFactor float64) (int64, error) {
	query := `
		UPDATE donor_profiles
		SET reputation_score = GREATEST(reputation_score * $1, 0),
			updated_at = NOW()
		WHERE reputation_score > 0
		  AND (last_donation_at IS NULL OR last_donation_at < $2)
	`

	result, err := r.db.ExecContext(ctx, query, keepFactor, idleSince)
	if err != nil {
		return 0, fmt.Errorf("%w: decay reputations: %v", models.ErrStoreUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: decay reputations: %v", models.ErrStoreUnavailable, err)
	}
	return affected, nil
}

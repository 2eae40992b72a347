// internal/repository/verifier_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// VerifierRepository persists the verifier pool and verification records.
type VerifierRepository struct {
	db *sql.DB
}

func NewVerifierRepository(db *sql.DB) *VerifierRepository {
	return &VerifierRepository{db: db}
}

func (r *VerifierRepository) FindVerifierPool(ctx context.Context, filter models.VerifierFilter, limit int) ([]*models.VerifierCandidate, error) {
	query := `
		SELECT user_id, qualification_score, successful_verifications,
			   disputed_verifications, active
		FROM verifiers
		WHERE (NOT $1 OR active)
		  AND qualification_score >= $2
		  AND disputed_verifications < $3
		ORDER BY qualification_score DESC
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query,
		filter.ActiveOnly,
		filter.MinQualification,
		filter.MaxDisputed,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: find verifier pool: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var pool []*models.VerifierCandidate
	for rows.Next() {
		v := &models.VerifierCandidate{}
		if err := rows.Scan(
			&v.UserID,
			&v.QualificationScore,
			&v.SuccessfulVerifications,
			&v.DisputedVerifications,
			&v.Active,
		); err != nil {
			return nil, fmt.Errorf("%w: scan verifier: %v", models.ErrStoreUnavailable, err)
		}
		pool = append(pool, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate verifiers: %v", models.ErrStoreUnavailable, err)
	}
	return pool, nil
}

func (r *VerifierRepository) FindVerifier(ctx context.Context, userID string) (*models.VerifierCandidate, error) {
	query := `
		SELECT user_id, qualification_score, successful_verifications,
			   disputed_verifications, active
		FROM verifiers WHERE user_id = $1
	`

	v := &models.VerifierCandidate{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&v.UserID,
		&v.QualificationScore,
		&v.SuccessfulVerifications,
		&v.DisputedVerifications,
		&v.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: verifier %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find verifier: %v", models.ErrStoreUnavailable, err)
	}
	return v, nil
}

func (r *VerifierRepository) CreateVerifier(ctx context.Context, v *models.VerifierCandidate) error {
	query := `
		INSERT INTO verifiers (
			user_id, qualification_score, successful_verifications,
			disputed_verifications, active, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		v.UserID,
		v.QualificationScore,
		v.SuccessfulVerifications,
		v.DisputedVerifications,
		v.Active,
	)
	if err != nil {
		return fmt.Errorf("%w: create verifier: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *VerifierRepository) UpdateVerifier(ctx context.Context, v *models.VerifierCandidate) error {
	query := `
		UPDATE verifiers
		SET qualification_score = $1, successful_verifications = $2,
			disputed_verifications = $3, active = $4, updated_at = NOW()
		WHERE user_id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		v.QualificationScore,
		v.SuccessfulVerifications,
		v.DisputedVerifications,
		v.Active,
		v.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: update verifier: %v", models.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: verifier %s", models.ErrNotFound, v.UserID)
	}
	return nil
}

func (r *VerifierRepository) CreateVerification(ctx context.Context, v *models.Verification) error {
	query := `
		INSERT INTO verifications (
			id, request_id, verifier_id, type, status, confidence,
			signature, merkle_proof, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.RequestID,
		v.VerifierID,
		v.Type,
		v.Status,
		v.Confidence,
		v.Signature,
		v.MerkleProof,
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create verification: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

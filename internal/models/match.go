// internal/models/match.go
package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusAccepted  MatchStatus = "ACCEPTED"
	MatchStatusRejected  MatchStatus = "REJECTED"
	MatchStatusExpired   MatchStatus = "EXPIRED"
	MatchStatusCompleted MatchStatus = "COMPLETED"
)

// MatchCandidate is a scored donor produced transiently during a matching
// round, before persistence.
type MatchCandidate struct {
	DonorID         string  `json:"donor_id"`
	UserID          string  `json:"user_id"`
	DistanceKm      float64 `json:"distance_km"`
	ModelScore      float64 `json:"model_score"`
	DistanceScore   float64 `json:"distance_score"`
	OverallScore    float64 `json:"overall_score"`
	ResponseScore   float64 `json:"response_score"`
	ReputationScore float64 `json:"reputation_score"`
}

// Match is a persisted candidate. Created PENDING by the match engine,
// moved to ACCEPTED by the donor's explicit action, COMPLETED once the
// donation is confirmed, or EXPIRED when unactioned past ExpiresAt.
type Match struct {
	ID           string      `json:"id" db:"id"`
	RequestID    string      `json:"request_id" db:"request_id"`
	DonorID      string      `json:"donor_id" db:"donor_id"`
	DonorUserID  string      `json:"donor_user_id" db:"donor_user_id"`
	Status       MatchStatus `json:"status" db:"status"`
	DistanceKm   float64     `json:"distance_km" db:"distance_km"`
	ModelScore   float64     `json:"model_score" db:"model_score"`
	OverallScore float64     `json:"overall_score" db:"overall_score"`
	ExpiresAt    time.Time   `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

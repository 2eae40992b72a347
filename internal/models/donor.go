// internal/models/donor.go
package models

import "time"

// DonorProfile describes an eligible donor. Counters are mutated by the
// match engine, the fraud risk score and blocked flag by the fraud engine,
// and the reputation score by the periodic decay job.
type DonorProfile struct {
	ID                  string     `json:"id" db:"id"`
	UserID              string     `json:"user_id" db:"user_id"`
	BloodType           string     `json:"blood_type" db:"blood_type"`
	RhFactor            string     `json:"rh_factor" db:"rh_factor"`
	IsAvailable         bool       `json:"is_available" db:"is_available"`
	ReputationScore     float64    `json:"reputation_score" db:"reputation_score"`
	SuccessfulDonations int        `json:"successful_donations" db:"successful_donations"`
	FailedMatches       int        `json:"failed_matches" db:"failed_matches"`
	AvgResponseSeconds  float64    `json:"avg_response_seconds" db:"avg_response_seconds"`
	LastDonationAt      *time.Time `json:"last_donation_at,omitempty" db:"last_donation_at"`
	FraudRiskScore      float64    `json:"fraud_risk_score" db:"fraud_risk_score"`
	BiometricVerified   bool       `json:"biometric_verified" db:"biometric_verified"`
	Blocked             bool       `json:"blocked" db:"blocked"`
	TotalRewardsEarned  float64    `json:"total_rewards_earned" db:"total_rewards_earned"`
}

// DonorFilter narrows the candidate pool retrieved from the datastore.
type DonorFilter struct {
	BloodType      string
	RhFactor       string
	AvailableOnly  bool
	ExcludeBlocked bool
}

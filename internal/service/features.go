// internal/service/features.go
package service

import (
	"math"
	"time"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

const (
	// responseWindowSeconds caps the response-time feature: donors slower
	// than an hour score 0.
	responseWindowSeconds = 3600

	// recoveryPeriodDays is the donation recovery window; recency
	// saturates at 1.0 past it.
	recoveryPeriodDays = 90
)

// ExtractFeatures builds the fixed 10-component vector for a (request,
// donor) pair. Pure: any valid domain input yields components in [0,1].
// Blood type and rh compatibility are 1.0 because the candidate pool is
// already filtered to compatible types upstream.
func ExtractFeatures(req *models.BloodRequest, donor *models.DonorProfile, now time.Time) models.FeatureVector {
	return models.FeatureVector{
		BloodTypeCompatibility: 1.0,
		RhFactorCompatibility:  1.0,
		ReputationScore:        clamp01(donor.ReputationScore),
		Availability:           boolFeature(donor.IsAvailable, 1.0, 0.0),
		SuccessRate:            successRate(donor),
		ResponseTimeScore:      math.Max(0, 1.0-donor.AvgResponseSeconds/responseWindowSeconds),
		DonationRecency:        donationRecency(donor.LastDonationAt, now),
		UrgencyScore:           math.Min(float64(req.Urgency.Rank())/5.0, 1.0),
		FraudRiskInverse:       1.0 - clamp01(donor.FraudRiskScore),
		// Unverified donors keep partial credit until biometrics fail.
		BiometricScore: boolFeature(donor.BiometricVerified, 1.0, 0.5),
	}
}

func successRate(donor *models.DonorProfile) float64 {
	total := donor.SuccessfulDonations + donor.FailedMatches
	rate := float64(donor.SuccessfulDonations) / math.Max(float64(total), 1)
	return clamp01(rate)
}

func donationRecency(last *time.Time, now time.Time) float64 {
	if last == nil {
		// never donated: fully recovered
		return 1.0
	}
	days := now.Sub(*last).Hours() / 24
	return clamp01(days / recoveryPeriodDays)
}

func boolFeature(v bool, truthy, falsy float64) float64 {
	if v {
		return truthy
	}
	return falsy
}

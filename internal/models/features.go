// internal/models/features.go
package models

// FeatureVectorSize is the fixed input width every scoring model expects.
const FeatureVectorSize = 10

// FeatureVector holds the normalized inputs for a (request, donor) pair.
// Every component is clamped to [0,1] and the array layout is fixed: a
// scoring model trained against one version of this layout must keep
// receiving it in the same order.
type FeatureVector struct {
	BloodTypeCompatibility float64 `json:"blood_type_compatibility"`
	RhFactorCompatibility  float64 `json:"rh_factor_compatibility"`
	ReputationScore        float64 `json:"reputation_score"`
	Availability           float64 `json:"availability"`
	SuccessRate            float64 `json:"success_rate"`
	ResponseTimeScore      float64 `json:"response_time_score"`
	DonationRecency        float64 `json:"donation_recency"`
	UrgencyScore           float64 `json:"urgency_score"`
	FraudRiskInverse       float64 `json:"fraud_risk_inverse"`
	BiometricScore         float64 `json:"biometric_score"`
}

// Array returns the components in model input order.
func (f FeatureVector) Array() [FeatureVectorSize]float64 {
	return [FeatureVectorSize]float64{
		f.BloodTypeCompatibility,
		f.RhFactorCompatibility,
		f.ReputationScore,
		f.Availability,
		f.SuccessRate,
		f.ResponseTimeScore,
		f.DonationRecency,
		f.UrgencyScore,
		f.FraudRiskInverse,
		f.BiometricScore,
	}
}

package service

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

func TestExtractFeaturesComponentsInRange(t *testing.T) {
	now := time.Now()
	old := now.Add(-200 * 24 * time.Hour)

	tests := []struct {
		name  string
		donor *models.DonorProfile
	}{
		{
			name: "established donor",
			donor: &models.DonorProfile{
				IsAvailable:         true,
				ReputationScore:     0.85,
				SuccessfulDonations: 12,
				FailedMatches:       2,
				AvgResponseSeconds:  600,
				LastDonationAt:      &old,
				FraudRiskScore:      0.1,
				BiometricVerified:   true,
			},
		},
		{
			name:  "brand new donor",
			donor: &models.DonorProfile{IsAvailable: true},
		},
		{
			name: "out of range fields are clamped",
			donor: &models.DonorProfile{
				ReputationScore:    1.7,
				FraudRiskScore:     -0.4,
				AvgResponseSeconds: 100000,
			},
		},
	}

	req := testRequest(models.UrgencyCritical)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := ExtractFeatures(req, tt.donor, now)
			for i, v := range features.Array() {
				if v < 0 || v > 1 {
					t.Errorf("component %d = %v, want within [0, 1]", i, v)
				}
			}
		})
	}
}

func TestExtractFeaturesValues(t *testing.T) {
	now := time.Now()
	lastDonation := now.Add(-45 * 24 * time.Hour)

	donor := &models.DonorProfile{
		IsAvailable:         true,
		ReputationScore:     0.8,
		SuccessfulDonations: 9,
		FailedMatches:       1,
		AvgResponseSeconds:  1800,
		LastDonationAt:      &lastDonation,
		FraudRiskScore:      0.2,
		BiometricVerified:   false,
	}
	req := testRequest(models.UrgencyEmergency)

	features := ExtractFeatures(req, donor, now)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"blood type compatibility", features.BloodTypeCompatibility, 1.0},
		{"rh compatibility", features.RhFactorCompatibility, 1.0},
		{"reputation", features.ReputationScore, 0.8},
		{"availability", features.Availability, 1.0},
		{"success rate", features.SuccessRate, 0.9},
		{"response time", features.ResponseTimeScore, 0.5},
		{"donation recency", features.DonationRecency, 0.5},
		{"urgency", features.UrgencyScore, 1.0},
		{"fraud risk inverse", features.FraudRiskInverse, 0.8},
		{"biometric partial credit", features.BiometricScore, 0.5},
	}

	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestExtractFeaturesUrgencyScale(t *testing.T) {
	tests := []struct {
		urgency models.UrgencyLevel
		want    float64
	}{
		{models.UrgencyLow, 0.2},
		{models.UrgencyMedium, 0.4},
		{models.UrgencyHigh, 0.6},
		{models.UrgencyCritical, 0.8},
		{models.UrgencyEmergency, 1.0},
		{models.UrgencyLevel("UNKNOWN"), 0.2},
	}

	donor := &models.DonorProfile{IsAvailable: true}
	now := time.Now()
	for _, tt := range tests {
		req := testRequest(tt.urgency)
		features := ExtractFeatures(req, donor, now)
		if math.Abs(features.UrgencyScore-tt.want) > 1e-9 {
			t.Errorf("urgency %s score = %v, want %v", tt.urgency, features.UrgencyScore, tt.want)
		}
	}
}

func TestExtractFeaturesRecencySaturates(t *testing.T) {
	now := time.Now()
	recent := now.Add(-12 * time.Hour)
	longAgo := now.Add(-365 * 24 * time.Hour)
	donorBase := models.DonorProfile{IsAvailable: true}
	req := testRequest(models.UrgencyMedium)

	neverDonated := donorBase
	if got := ExtractFeatures(req, &neverDonated, now).DonationRecency; got != 1.0 {
		t.Errorf("recency with no donation history = %v, want 1.0", got)
	}

	justDonated := donorBase
	justDonated.LastDonationAt = &recent
	if got := ExtractFeatures(req, &justDonated, now).DonationRecency; got > 0.01 {
		t.Errorf("recency right after donation = %v, want near 0", got)
	}

	recovered := donorBase
	recovered.LastDonationAt = &longAgo
	if got := ExtractFeatures(req, &recovered, now).DonationRecency; got != 1.0 {
		t.Errorf("recency past the recovery window = %v, want 1.0", got)
	}
}

func TestLogisticModelPredict(t *testing.T) {
	model := NewLogisticModel(zap.NewNop())
	ctx := context.Background()

	strong := models.FeatureVector{
		BloodTypeCompatibility: 1, RhFactorCompatibility: 1,
		ReputationScore: 0.95, Availability: 1, SuccessRate: 0.95,
		ResponseTimeScore: 0.9, DonationRecency: 1, UrgencyScore: 1,
		FraudRiskInverse: 1, BiometricScore: 1,
	}
	weak := models.FeatureVector{
		BloodTypeCompatibility: 1, RhFactorCompatibility: 1,
		BiometricScore: 0.5,
	}

	strongScore := model.Predict(ctx, strong)
	weakScore := model.Predict(ctx, weak)

	for _, s := range []float64{strongScore, weakScore} {
		if s < 0 || s > 1 {
			t.Errorf("Predict() = %v, want within [0, 1]", s)
		}
	}
	if strongScore <= weakScore {
		t.Errorf("strong candidate score %v not above weak candidate score %v",
			strongScore, weakScore)
	}

	// Same input, same output.
	if again := model.Predict(ctx, strong); again != strongScore {
		t.Errorf("Predict() not deterministic: %v then %v", strongScore, again)
	}
}

func TestLoadModelFallsBackOnMissingArtifact(t *testing.T) {
	model := LoadModel("/nonexistent/model.json", zap.NewNop())
	if model == nil {
		t.Fatal("LoadModel() returned nil")
	}
	if model.Version() != "fallback-v1" {
		t.Errorf("version = %s, want fallback-v1", model.Version())
	}
}

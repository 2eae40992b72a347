// internal/service/fraud_engine.go
// Multi-factor fraud risk aggregation
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/metrics"
	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// Decision thresholds. Both are strict: a composite of exactly 0.9 alerts
// but does not block.
const (
	fraudAlertThreshold = 0.7
	fraudBlockThreshold = 0.9
)

// Factor weights; they sum to 1.0 and the composite is the true weighted
// sum, never re-divided.
const (
	behavioralWeight = 0.20
	deviceWeight     = 0.15
	velocityWeight   = 0.25
	patternWeight    = 0.20
	networkWeight    = 0.20
)

// shouldAlert and shouldBlock are strict comparisons: a composite sitting
// exactly on a threshold stays on the lenient side.
func shouldAlert(composite float64) bool {
	return composite > fraudAlertThreshold
}

func shouldBlock(composite float64) bool {
	return composite > fraudBlockThreshold
}

// FraudEngine aggregates independent risk signals into a composite score
// and drives alert/block decisions.
type FraudEngine struct {
	store   FraudStore
	alerts  AlertStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewFraudEngine(store FraudStore, alerts AlertStore, m *metrics.Metrics, logger *zap.Logger) *FraudEngine {
	return &FraudEngine{
		store:   store,
		alerts:  alerts,
		metrics: m,
		logger:  logger,
	}
}

// Analyze computes the composite fraud score for a user/event. Internal
// failures degrade to a neutral {0.5, medium} result rather than
// propagating; the single aborting path is the critical block threshold,
// surfaced as ErrFraudDetected after the user is blocked.
func (e *FraudEngine) Analyze(ctx context.Context, userID string, event *models.FraudEvent) (*models.FraudScore, error) {
	e.logger.Info("analyzing fraud risk", zap.String("user_id", userID))

	if event == nil {
		event = &models.FraudEvent{}
	}

	behavioral, err := e.behavioralScore(ctx, userID)
	if err != nil {
		return e.neutralScore(userID, err), nil
	}
	device := deviceScore(event.Device)
	velocity, err := e.velocityScore(ctx, userID)
	if err != nil {
		return e.neutralScore(userID, err), nil
	}
	pattern, err := e.patternScore(ctx, userID)
	if err != nil {
		return e.neutralScore(userID, err), nil
	}
	network, err := e.networkScore(ctx, userID)
	if err != nil {
		return e.neutralScore(userID, err), nil
	}

	composite := behavioral*behavioralWeight +
		device*deviceWeight +
		velocity*velocityWeight +
		pattern*patternWeight +
		network*networkWeight

	score := &models.FraudScore{
		Score: composite,
		Risk:  categorizeRisk(composite),
		Factors: models.FraudFactors{
			Behavioral: behavioral,
			Device:     device,
			Velocity:   velocity,
			Pattern:    pattern,
			Network:    network,
		},
	}

	if shouldAlert(composite) {
		if err := e.createAlert(ctx, userID, score, event); err != nil {
			return e.neutralScore(userID, err), nil
		}
	}

	if shouldBlock(composite) {
		e.blockUser(ctx, userID, composite)
		return score, fmt.Errorf("%w: user blocked for critical fraud score %.3f",
			models.ErrFraudDetected, composite)
	}

	e.logger.Info("fraud analysis completed",
		zap.String("user_id", userID),
		zap.Float64("score", composite),
		zap.String("risk", string(score.Risk)))

	return score, nil
}

// AlertHistory returns the user's recent fraud alert trail.
func (e *FraudEngine) AlertHistory(ctx context.Context, userID string, limit int) ([]models.FraudAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	return e.alerts.AlertsForUser(ctx, userID, limit)
}

// behavioralScore averages the failure rate and the trust-score spread of
// the last 10 verification attempts.
func (e *FraudEngine) behavioralScore(ctx context.Context, userID string) (float64, error) {
	attempts, err := e.store.RecentVerificationAttempts(ctx, userID, 10)
	if err != nil {
		return 0, err
	}
	if len(attempts) == 0 {
		return 0.2, nil
	}

	rejected := 0
	trustScores := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.Status == models.AttemptStatusRejected {
			rejected++
		}
		trustScores = append(trustScores, a.TrustScore)
	}

	failureRate := float64(rejected) / float64(len(attempts))
	spread := math.Min(stdDev(trustScores), 1)

	return math.Min((failureRate+spread)/2, 1), nil
}

// deviceScore accumulates a fixed penalty per suspicious device signal.
func deviceScore(signals models.DeviceSignals) float64 {
	score := 0.1
	if signals.NewDevice {
		score += 0.2
	}
	if signals.VPNDetected {
		score += 0.3
	}
	if signals.ProxyDetected {
		score += 0.25
	}
	if signals.RootedDevice {
		score += 0.25
	}
	if signals.Emulator {
		score += 0.3
	}
	if signals.SharedDevice {
		score += 0.4
	}
	if signals.MultipleAccounts {
		score += 0.3
	}
	return math.Min(score, 1)
}

// velocityScore applies tiered thresholds on recent attempt counts.
func (e *FraudEngine) velocityScore(ctx context.Context, userID string) (float64, error) {
	veryRecent, err := e.store.CountRecentAttempts(ctx, userID, 5*time.Minute)
	if err != nil {
		return 0, err
	}
	recent, err := e.store.CountRecentAttempts(ctx, userID, time.Hour)
	if err != nil {
		return 0, err
	}

	switch {
	case veryRecent > 3:
		return 0.95, nil
	case recent > 10:
		return 0.8, nil
	case recent > 5:
		return 0.5, nil
	default:
		return 0.1, nil
	}
}

// patternScore penalizes new accounts, long inactivity and suspiciously
// mechanical donation timing.
func (e *FraudEngine) patternScore(ctx context.Context, userID string) (float64, error) {
	activity, err := e.store.UserActivity(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	score := 0.0

	if now.Sub(activity.CreatedAt).Hours()/24 < 7 {
		score += 0.3
	}
	if activity.LastActiveAt == nil || now.Sub(*activity.LastActiveAt) > 30*24*time.Hour {
		score += 0.2
	}

	if len(activity.DonationTimes) > 5 {
		gaps := make([]float64, 0, len(activity.DonationTimes)-1)
		for i := 1; i < len(activity.DonationTimes); i++ {
			gap := activity.DonationTimes[i-1].Sub(activity.DonationTimes[i]).Seconds()
			gaps = append(gaps, math.Abs(gap))
		}
		// interval spread under 24h means mechanical timing
		if stdDev(gaps) < (24 * time.Hour).Seconds() {
			score += 0.3
		}
	}

	return math.Min(score, 1), nil
}

// networkScore penalizes association with blocked users in the donation
// graph.
func (e *FraudEngine) networkScore(ctx context.Context, userID string) (float64, error) {
	counterparts, err := e.store.DonationCounterparts(ctx, userID)
	if err != nil {
		return 0, err
	}

	score := 0.0
	blocked := 0
	for _, c := range counterparts {
		if c.Blocked {
			score += 0.3
			blocked++
		}
	}
	if blocked > 2 {
		score += 0.4
	}

	return math.Min(score, 1), nil
}

func categorizeRisk(score float64) models.RiskLevel {
	switch {
	case score < 0.3:
		return models.RiskLevelLow
	case score < 0.6:
		return models.RiskLevelMedium
	case score < 0.85:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}

func (e *FraudEngine) createAlert(ctx context.Context, userID string, score *models.FraudScore, event *models.FraudEvent) error {
	severity := models.AlertSeverityHigh
	if shouldBlock(score.Score) {
		severity = models.AlertSeverityCritical
	}

	alertType := event.Event
	if alertType == "" {
		alertType = "AUTONOMOUS_FRAUD_DETECTION"
	}

	alert := &models.FraudAlert{
		ID:          uuid.New().String(),
		UserID:      userID,
		AlertType:   alertType,
		Severity:    severity,
		Score:       score.Score,
		Description: fmt.Sprintf("Fraud score: %.3f. Event: %s", score.Score, alertType),
		Factors:     score.Factors,
		CreatedAt:   time.Now(),
	}

	if err := e.alerts.CreateFraudAlert(ctx, alert); err != nil {
		e.logger.Error("failed to create fraud alert",
			zap.Error(err),
			zap.String("user_id", userID))
		return err
	}

	e.metrics.IncFraudAlerts()
	e.logger.Warn("fraud alert created",
		zap.String("alert_id", alert.ID),
		zap.String("user_id", userID),
		zap.Float64("score", score.Score),
		zap.String("severity", string(severity)))
	return nil
}

func (e *FraudEngine) blockUser(ctx context.Context, userID string, score float64) {
	if err := e.store.SetUserBlocked(ctx, userID, true); err != nil {
		e.logger.Error("failed to block user",
			zap.Error(err),
			zap.String("user_id", userID))
		return
	}

	e.metrics.IncUsersBlocked()
	e.logger.Error("user blocked due to critical fraud score",
		zap.String("user_id", userID),
		zap.Float64("score", score))
}

func (e *FraudEngine) neutralScore(userID string, err error) *models.FraudScore {
	e.logger.Error("fraud analysis error, returning neutral score",
		zap.Error(err),
		zap.String("user_id", userID))
	return &models.FraudScore{
		Score: 0.5,
		Risk:  models.RiskLevelMedium,
	}
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

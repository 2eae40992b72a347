// internal/models/fraud.go
package models

import "time"

type RiskLevel string
type AlertSeverity string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"

	AlertSeverityHigh     AlertSeverity = "HIGH"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// FraudFactors is the per-factor breakdown of a composite score.
type FraudFactors struct {
	Behavioral float64 `json:"behavioral" bson:"behavioral"`
	Device     float64 `json:"device" bson:"device"`
	Velocity   float64 `json:"velocity" bson:"velocity"`
	Pattern    float64 `json:"pattern" bson:"pattern"`
	Network    float64 `json:"network" bson:"network"`
}

// FraudScore is the composite risk assessment for one user/event.
// Recomputed on demand; only alerts persist as history.
type FraudScore struct {
	Score   float64      `json:"score"`
	Risk    RiskLevel    `json:"risk"`
	Factors FraudFactors `json:"factors"`
}

// FraudAlert is an append-only audit record.
type FraudAlert struct {
	ID          string        `json:"id" bson:"_id"`
	UserID      string        `json:"user_id" bson:"user_id"`
	AlertType   string        `json:"alert_type" bson:"alert_type"`
	Severity    AlertSeverity `json:"severity" bson:"severity"`
	Score       float64       `json:"score" bson:"score"`
	Description string        `json:"description" bson:"description"`
	Factors     FraudFactors  `json:"factors" bson:"factors"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// DeviceSignals carries the suspicious-device flags attached to an event.
type DeviceSignals struct {
	NewDevice        bool `json:"new_device"`
	VPNDetected      bool `json:"vpn_detected"`
	ProxyDetected    bool `json:"proxy_detected"`
	RootedDevice     bool `json:"rooted_device"`
	Emulator         bool `json:"emulator"`
	SharedDevice     bool `json:"shared_device"`
	MultipleAccounts bool `json:"multiple_accounts"`
}

// FraudEvent is the context supplied with a fraud analysis call.
type FraudEvent struct {
	Event  string        `json:"event"`
	Device DeviceSignals `json:"device"`
}

type AttemptStatus string

const (
	AttemptStatusApproved AttemptStatus = "APPROVED"
	AttemptStatusRejected AttemptStatus = "REJECTED"
	AttemptStatusPending  AttemptStatus = "PENDING"
)

// VerificationAttempt is one historical verification try, consumed by the
// behavioral analyzer.
type VerificationAttempt struct {
	UserID     string        `json:"user_id" db:"user_id"`
	Status     AttemptStatus `json:"status" db:"status"`
	TrustScore float64       `json:"trust_score" db:"trust_score"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// UserActivity summarizes account-level signals for pattern analysis.
type UserActivity struct {
	CreatedAt     time.Time   `json:"created_at"`
	LastActiveAt  *time.Time  `json:"last_active_at,omitempty"`
	DonationTimes []time.Time `json:"donation_times"`
}

// Counterpart is another user this one has exchanged donations with.
type Counterpart struct {
	UserID  string `json:"user_id"`
	Blocked bool   `json:"blocked"`
}

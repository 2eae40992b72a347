// internal/models/request.go
package models

import (
	"time"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
)

type UrgencyLevel string
type RequestStatus string

const (
	UrgencyLow       UrgencyLevel = "LOW"
	UrgencyMedium    UrgencyLevel = "MEDIUM"
	UrgencyHigh      UrgencyLevel = "HIGH"
	UrgencyCritical  UrgencyLevel = "CRITICAL"
	UrgencyEmergency UrgencyLevel = "EMERGENCY"

	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusMatched   RequestStatus = "MATCHED"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
	RequestStatusExpired   RequestStatus = "EXPIRED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// Rank maps urgency onto the ordered scale LOW=1 .. EMERGENCY=5.
// Unknown values rank lowest.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	case UrgencyEmergency:
		return 5
	default:
		return 1
	}
}

// BloodRequest is a recipient's open need for donor blood. Immutable once
// FULFILLED or CANCELLED.
type BloodRequest struct {
	ID          string          `json:"id" db:"id"`
	RecipientID string          `json:"recipient_id" db:"recipient_id"`
	BloodType   string          `json:"blood_type" db:"blood_type"`
	RhFactor    string          `json:"rh_factor" db:"rh_factor"`
	UnitsNeeded int             `json:"units_needed" db:"units_needed"`
	Urgency     UrgencyLevel    `json:"urgency" db:"urgency"`
	Origin      *geo.Coordinate `json:"origin,omitempty"`
	RadiusKm    float64         `json:"radius_km" db:"radius_km"`
	Status      RequestStatus   `json:"status" db:"status"`
	ExpiresAt   time.Time       `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

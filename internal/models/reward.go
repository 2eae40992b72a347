// internal/models/reward.go
package models

import "time"

type PayoutStatus string

const (
	// PayoutStatusOwed marks a reward recorded by the core and awaiting
	// the external ledger job. The core never calls the ledger itself.
	PayoutStatusOwed PayoutStatus = "OWED"
	PayoutStatusPaid PayoutStatus = "PAID"
)

// RewardPayout records the token amount owed to a donor for a completed
// donation.
type RewardPayout struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	MatchID   string       `json:"match_id" db:"match_id"`
	Amount    float64      `json:"amount" db:"amount"`
	Status    PayoutStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Notification is a persisted in-app notification row.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Event     string    `json:"event" db:"event"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

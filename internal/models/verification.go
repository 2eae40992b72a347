// internal/models/verification.go
package models

import "time"

type VerificationStatus string
type VerificationType string

const (
	VerificationStatusVerified VerificationStatus = "VERIFIED"
	VerificationStatusDisputed VerificationStatus = "DISPUTED"

	VerificationTypePeerReview VerificationType = "PEER_REVIEW"
)

// VerifierCandidate is a pool member eligible to attest claimed events.
type VerifierCandidate struct {
	UserID                  string  `json:"user_id" db:"user_id"`
	QualificationScore      float64 `json:"qualification_score" db:"qualification_score"`
	SuccessfulVerifications int     `json:"successful_verifications" db:"successful_verifications"`
	DisputedVerifications   int     `json:"disputed_verifications" db:"disputed_verifications"`
	Active                  bool    `json:"active" db:"active"`
}

// VerifierFilter narrows the pool query for quorum selection.
type VerifierFilter struct {
	ActiveOnly       bool
	MinQualification float64
	MaxDisputed      int
}

// AttestationProof is a verifier's signed response to a challenge.
// Ephemeral; persisted only as part of a Verification record.
type AttestationProof struct {
	VerifierID  string `json:"verifier_id"`
	Signature   string `json:"signature"`
	MerkleProof string `json:"merkle_proof"`
}

// Verification is one verifier's finalized attestation of a record.
type Verification struct {
	ID          string             `json:"id" db:"id"`
	RequestID   string             `json:"request_id" db:"request_id"`
	VerifierID  string             `json:"verifier_id" db:"verifier_id"`
	Type        VerificationType   `json:"type" db:"type"`
	Status      VerificationStatus `json:"status" db:"status"`
	Confidence  float64            `json:"confidence" db:"confidence"`
	Signature   string             `json:"signature" db:"signature"`
	MerkleProof string             `json:"merkle_proof" db:"merkle_proof"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

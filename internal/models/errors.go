// internal/models/errors.go
package models

import "errors"

// Failure taxonomy shared by all core services. Callers classify with
// errors.Is; wrapped messages carry the detail.
var (
	// ErrNotFound signals a missing request, donor or verifier. Terminal
	// for the call.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals malformed input or a failed consensus round.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientVerifiers signals an unmet attestation quorum.
	// Terminal for the round but retryable later.
	ErrInsufficientVerifiers = errors.New("insufficient qualified verifiers")

	// ErrFraudDetected signals a critical-risk auto-block. The only path
	// where fraud analysis aborts the calling operation.
	ErrFraudDetected = errors.New("fraud detected")

	// ErrStoreUnavailable signals a datastore collaborator failure.
	// Logged and surfaced, never retried internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)

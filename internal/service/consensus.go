// internal/service/consensus.go
// M-of-N peer attestation of claimed donation events
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/metrics"
	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// RequiredVerifiers is M: every verification needs this many valid proofs.
const RequiredVerifiers = 3

// Pool qualification bounds for quorum selection.
const (
	minQualificationScore  = 0.8
	maxDisputedCount       = 5
	verificationConfidence = 0.95
	initialQualification   = 0.5
)

// ConsensusVerifier selects a quorum of attestors, collects signed proofs,
// validates them and finalizes the verification outcome.
type ConsensusVerifier struct {
	store   VerifierStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewConsensusVerifier(store VerifierStore, m *metrics.Metrics, logger *zap.Logger) *ConsensusVerifier {
	return &ConsensusVerifier{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Verify runs one attestation round over the claimed record and returns
// the participating verifier ids.
func (s *ConsensusVerifier) Verify(ctx context.Context, recordID string, recordData map[string]interface{}) ([]string, error) {
	s.logger.Info("initiating peer verification", zap.String("record_id", recordID))

	verifiers, err := s.selectQualifiedVerifiers(ctx, RequiredVerifiers)
	if err != nil {
		return nil, err
	}
	if len(verifiers) < RequiredVerifiers {
		return nil, fmt.Errorf("%w: need %d, found %d",
			models.ErrInsufficientVerifiers, RequiredVerifiers, len(verifiers))
	}

	challenge, err := contentHash(recordData)
	if err != nil {
		return nil, fmt.Errorf("%w: record data not hashable: %v", models.ErrValidation, err)
	}

	proofs := make([]models.AttestationProof, 0, len(verifiers))
	for _, v := range verifiers {
		proofs = append(proofs, buildAttestation(v.UserID, recordID, challenge))
	}

	if !validateProofs(proofs) {
		return nil, fmt.Errorf("%w: multi-signature verification failed", models.ErrValidation)
	}

	now := time.Now()
	ids := make([]string, 0, len(verifiers))
	for i, v := range verifiers {
		record := &models.Verification{
			ID:          uuid.New().String(),
			RequestID:   recordID,
			VerifierID:  v.UserID,
			Type:        models.VerificationTypePeerReview,
			Status:      models.VerificationStatusVerified,
			Confidence:  verificationConfidence,
			Signature:   proofs[i].Signature,
			MerkleProof: proofs[i].MerkleProof,
			CreatedAt:   now,
		}
		if err := s.store.CreateVerification(ctx, record); err != nil {
			return nil, err
		}
		ids = append(ids, v.UserID)
	}

	s.metrics.IncVerifications()
	s.logger.Info("peer verification successful",
		zap.String("record_id", recordID),
		zap.Int("verifier_count", len(ids)))

	return ids, nil
}

// selectQualifiedVerifiers fetches the best-qualified pool members and
// shuffles before truncation so the same top verifiers are not selected
// deterministically every round.
func (s *ConsensusVerifier) selectQualifiedVerifiers(ctx context.Context, count int) ([]*models.VerifierCandidate, error) {
	pool, err := s.store.FindVerifierPool(ctx, models.VerifierFilter{
		ActiveOnly:       true,
		MinQualification: minQualificationScore,
		MaxDisputed:      maxDisputedCount,
	}, count*3)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

// RegisterAsVerifier inserts a new pool entry at the initial qualification.
func (s *ConsensusVerifier) RegisterAsVerifier(ctx context.Context, userID string) error {
	existing, err := s.store.FindVerifier(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: user %s already registered as verifier", models.ErrValidation, userID)
	}

	verifier := &models.VerifierCandidate{
		UserID:             userID,
		QualificationScore: initialQualification,
		Active:             true,
	}
	if err := s.store.CreateVerifier(ctx, verifier); err != nil {
		return err
	}

	s.logger.Info("verifier registered", zap.String("user_id", userID))
	return nil
}

// UpdateQualification advances the verifier's counters and recomputes the
// qualification score from the success rate and the dispute ratio.
func (s *ConsensusVerifier) UpdateQualification(ctx context.Context, verifierID string, successful bool) error {
	verifier, err := s.store.FindVerifier(ctx, verifierID)
	if err != nil {
		return err
	}

	if successful {
		verifier.SuccessfulVerifications++
	} else {
		verifier.DisputedVerifications++
	}

	total := verifier.SuccessfulVerifications + verifier.DisputedVerifications
	successRate := float64(verifier.SuccessfulVerifications) / math.Max(float64(total), 1)
	disputedRate := float64(verifier.DisputedVerifications) / math.Max(float64(total), 10)

	verifier.QualificationScore = clamp01(successRate*0.7 + (1-disputedRate)*0.3)

	if err := s.store.UpdateVerifier(ctx, verifier); err != nil {
		return err
	}

	s.logger.Info("verifier qualification updated",
		zap.String("verifier_id", verifierID),
		zap.Float64("qualification_score", verifier.QualificationScore))
	return nil
}

// contentHash produces the round challenge: a hex sha256 over the
// canonical JSON encoding of the record data. json.Marshal sorts map keys,
// so the same content always hashes identically.
func contentHash(data map[string]interface{}) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// buildAttestation produces one verifier's proof: a keyed MAC over the
// challenge and a merkle root binding record, verifier and challenge.
func buildAttestation(verifierID, recordID, challenge string) models.AttestationProof {
	mac := hmac.New(sha256.New, []byte(verifierID))
	mac.Write([]byte(challenge))

	return models.AttestationProof{
		VerifierID:  verifierID,
		Signature:   hex.EncodeToString(mac.Sum(nil)),
		MerkleProof: merkleRoot([]string{recordID, verifierID, challenge}),
	}
}

// validateProofs checks the quorum is structurally complete: M proofs,
// each with a non-empty signature and merkle proof.
func validateProofs(proofs []models.AttestationProof) bool {
	if len(proofs) < RequiredVerifiers {
		return false
	}
	for _, p := range proofs {
		if p.Signature == "" || p.MerkleProof == "" {
			return false
		}
	}
	return true
}

// merkleRoot folds the leaves pairwise with sha256 until one root remains.
// An odd layer duplicates its last node.
func merkleRoot(leaves []string) string {
	if len(leaves) == 0 {
		return ""
	}

	layer := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		sum := sha256.Sum256([]byte(leaf))
		layer = append(layer, hex.EncodeToString(sum[:]))
	}

	for len(layer) > 1 {
		if len(layer)%2 != 0 {
			layer = append(layer, layer[len(layer)-1])
		}
		next := make([]string, 0, len(layer)/2)
		for i := 0; i < len(layer); i += 2 {
			sum := sha256.Sum256([]byte(layer[i] + layer[i+1]))
			next = append(next, hex.EncodeToString(sum[:]))
		}
		layer = next
	}
	return layer[0]
}

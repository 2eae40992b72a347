// internal/service/match_engine.go
// Candidate retrieval, geo-filtering, scoring, ranking and match creation
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
	"github.com/AryanKumarOfficial/bloodchain/internal/metrics"
	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

const (
	// DefaultMatchLimit bounds the ranked list returned by a round.
	DefaultMatchLimit = 10

	// CandidateFetchCap bounds the donor fetch to keep round cost bounded.
	CandidateFetchCap = 100

	// ModelScoreFloor is the compatibility floor: below it a candidate is
	// not proposed regardless of distance.
	ModelScoreFloor = 0.7

	// Fusion weights. Compatibility dominates proximity once a candidate
	// is inside the radius.
	modelWeight    = 0.6
	distanceWeight = 0.4

	// MatchExpiryWindow is how long a PENDING match waits for the donor.
	MatchExpiryWindow = 24 * time.Hour
)

// MatchEngine orchestrates a matching round for one request. Independent
// requests may run concurrently; all shared state lives in the store and
// the location cache.
type MatchEngine struct {
	store     MatchStore
	locations *LocationCache
	geo       *geo.Index
	model     ScoringModel
	notifier  Notifier
	bus       RealtimeBus
	rewards   RewardRecorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewMatchEngine(
	store MatchStore,
	locations *LocationCache,
	geoIndex *geo.Index,
	model ScoringModel,
	notifier Notifier,
	bus RealtimeBus,
	rewards RewardRecorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *MatchEngine {
	return &MatchEngine{
		store:     store,
		locations: locations,
		geo:       geoIndex,
		model:     model,
		notifier:  notifier,
		bus:       bus,
		rewards:   rewards,
		metrics:   m,
		logger:    logger,
	}
}

// RunMatching executes one matching round and returns the ranked candidate
// list. An empty result is a success, not an error; for EMERGENCY requests
// it additionally triggers the urgent broadcast fallback.
func (e *MatchEngine) RunMatching(ctx context.Context, requestID string, limit int) ([]models.MatchCandidate, error) {
	start := time.Now()
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	e.logger.Info("running matching round", zap.String("request_id", requestID))
	e.metrics.IncMatchingRuns()

	request, err := e.store.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Origin == nil {
		return nil, fmt.Errorf("%w: request %s has no location", models.ErrNotFound, requestID)
	}

	donors, err := e.store.FindCandidateDonors(ctx, models.DonorFilter{
		BloodType:      request.BloodType,
		RhFactor:       request.RhFactor,
		AvailableOnly:  true,
		ExcludeBlocked: true,
	}, CandidateFetchCap)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidates := make([]models.MatchCandidate, 0, len(donors))

	for _, donor := range donors {
		location, known := e.locations.Get(ctx, donor.UserID)
		if !known {
			continue
		}

		distance := e.geo.DistanceKm(*request.Origin, location)
		if distance > request.RadiusKm {
			continue
		}

		features := ExtractFeatures(request, donor, now)
		modelScore := e.model.Predict(ctx, features)
		if modelScore <= ModelScoreFloor {
			continue
		}

		distanceScore := math.Max(0, 1.0-distance/request.RadiusKm)

		candidates = append(candidates, models.MatchCandidate{
			DonorID:         donor.ID,
			UserID:          donor.UserID,
			DistanceKm:      distance,
			ModelScore:      modelScore,
			DistanceScore:   distanceScore,
			OverallScore:    modelScore*modelWeight + distanceScore*distanceWeight,
			ResponseScore:   features.ResponseTimeScore,
			ReputationScore: donor.ReputationScore,
		})
	}

	rankCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if len(candidates) == 0 {
		e.metrics.IncEmptyRuns()
		e.logger.Warn("no eligible candidates found", zap.String("request_id", requestID))
		if request.Urgency == models.UrgencyEmergency {
			e.broadcastUrgent(ctx, request)
		}
		e.metrics.ObserveMatchingDuration(time.Since(start).Seconds())
		return candidates, nil
	}

	created, err := e.persistMatches(ctx, request, candidates, now)
	if err != nil {
		return nil, err
	}
	e.metrics.AddMatchesCreated(created)

	// Fire-and-forget: notification failure never rolls back matches.
	if e.notifier != nil {
		for _, c := range candidates {
			e.notifier.Notify(ctx, c.UserID, EventMatchFound, map[string]interface{}{
				"request_id": requestID,
				"urgency":    request.Urgency,
			})
		}
	}

	e.metrics.ObserveMatchingDuration(time.Since(start).Seconds())
	e.logger.Info("matching round completed",
		zap.String("request_id", requestID),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", created))

	return candidates, nil
}

// rankCandidates orders by overall score descending; ties by smaller
// distance, then higher reputation.
func rankCandidates(candidates []models.MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ReputationScore > b.ReputationScore
	})
}

func (e *MatchEngine) persistMatches(ctx context.Context, request *models.BloodRequest, candidates []models.MatchCandidate, now time.Time) (int, error) {
	created := 0
	for _, c := range candidates {
		match := &models.Match{
			ID:           uuid.New().String(),
			RequestID:    request.ID,
			DonorID:      c.DonorID,
			DonorUserID:  c.UserID,
			Status:       models.MatchStatusPending,
			DistanceKm:   c.DistanceKm,
			ModelScore:   c.ModelScore,
			OverallScore: c.OverallScore,
			ExpiresAt:    now.Add(MatchExpiryWindow),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		inserted, err := e.store.CreateMatch(ctx, match)
		if err != nil {
			e.logger.Error("failed to persist match",
				zap.Error(err),
				zap.String("request_id", request.ID),
				zap.String("donor_id", c.DonorID))
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

func (e *MatchEngine) broadcastUrgent(ctx context.Context, request *models.BloodRequest) {
	if e.bus == nil {
		return
	}
	event := map[string]interface{}{
		"request_id": request.ID,
		"blood_type": request.BloodType,
		"rh_factor":  request.RhFactor,
		"urgency":    request.Urgency,
		"latitude":   request.Origin.Latitude,
		"longitude":  request.Origin.Longitude,
		"radius_km":  request.RadiusKm,
	}
	if err := e.bus.Publish(ctx, TopicUrgentBroadcast, event); err != nil {
		e.logger.Error("failed to broadcast urgent request",
			zap.Error(err),
			zap.String("request_id", request.ID))
	}
}

// AcceptMatch transitions a PENDING match to ACCEPTED on the matched
// donor's explicit action and moves the request to MATCHED.
func (e *MatchEngine) AcceptMatch(ctx context.Context, matchID, donorUserID string) (*models.Match, error) {
	match, err := e.store.FindMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.DonorUserID != donorUserID {
		return nil, fmt.Errorf("%w: match %s does not belong to donor", models.ErrValidation, matchID)
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("%w: match %s is %s, not PENDING", models.ErrValidation, matchID, match.Status)
	}
	if time.Now().After(match.ExpiresAt) {
		return nil, fmt.Errorf("%w: match %s has expired", models.ErrValidation, matchID)
	}

	if err := e.store.UpdateMatchStatus(ctx, matchID, models.MatchStatusAccepted); err != nil {
		return nil, err
	}
	if err := e.store.UpdateRequestStatus(ctx, match.RequestID, models.RequestStatusMatched); err != nil {
		return nil, err
	}

	match.Status = models.MatchStatusAccepted
	e.logger.Info("match accepted",
		zap.String("match_id", matchID),
		zap.String("request_id", match.RequestID))
	return match, nil
}

// CompleteMatch confirms the donation: the match becomes COMPLETED, the
// request FULFILLED, the donor's success counter advances and the reward
// owed is recorded.
func (e *MatchEngine) CompleteMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := e.store.FindMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusAccepted {
		return nil, fmt.Errorf("%w: match %s is %s, not ACCEPTED", models.ErrValidation, matchID, match.Status)
	}

	if err := e.store.UpdateMatchStatus(ctx, matchID, models.MatchStatusCompleted); err != nil {
		return nil, err
	}
	if err := e.store.UpdateDonorCounters(ctx, match.DonorID, 1, 0); err != nil {
		e.logger.Error("failed to update donor counters",
			zap.Error(err),
			zap.String("donor_id", match.DonorID))
	}
	if err := e.store.UpdateRequestStatus(ctx, match.RequestID, models.RequestStatusFulfilled); err != nil {
		return nil, err
	}

	if e.rewards != nil {
		if err := e.rewards.RecordDonationReward(ctx, match.DonorUserID, matchID); err != nil {
			e.logger.Error("failed to record donation reward",
				zap.Error(err),
				zap.String("match_id", matchID))
		}
	}

	if e.notifier != nil {
		e.notifier.Notify(ctx, match.DonorUserID, EventDonationCompleted, map[string]interface{}{
			"match_id":   matchID,
			"request_id": match.RequestID,
		})
	}

	match.Status = models.MatchStatusCompleted
	e.logger.Info("match completed",
		zap.String("match_id", matchID),
		zap.String("request_id", match.RequestID))
	return match, nil
}

// ExpireMatches moves PENDING matches past their expiry to EXPIRED and
// returns how many were affected. Used by the periodic sweep.
func (e *MatchEngine) ExpireMatches(ctx context.Context) (int64, error) {
	expired, err := e.store.ExpireMatches(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		e.logger.Info("expired stale matches", zap.Int64("count", expired))
	}
	return expired, nil
}

// MatchesForRequest returns the persisted matches of a request.
func (e *MatchEngine) MatchesForRequest(ctx context.Context, requestID string) ([]*models.Match, error) {
	return e.store.FindMatchesByRequest(ctx, requestID)
}

// internal/jobs/matching_sweep.go
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
	"github.com/AryanKumarOfficial/bloodchain/internal/service"
)

const (
	// sweepHorizon is how far ahead of expiry a request gets re-matched.
	sweepHorizon = 2 * time.Hour

	// sweepBatchSize bounds one cycle's workload.
	sweepBatchSize = 50

	// cycleTimeout bounds one full sweep cycle.
	cycleTimeout = 2 * time.Minute
)

// RequestFinder lists open requests approaching expiry.
type RequestFinder interface {
	FindExpiringOpenRequests(ctx context.Context, deadline time.Time, limit int) ([]*models.BloodRequest, error)
}

// MatchingSweep periodically re-runs matching for open requests nearing
// expiry and retires stale matches.
type MatchingSweep struct {
	engine   *service.MatchEngine
	requests RequestFinder
	interval time.Duration
	logger   *zap.Logger
}

func NewMatchingSweep(engine *service.MatchEngine, requests RequestFinder, interval time.Duration, logger *zap.Logger) *MatchingSweep {
	return &MatchingSweep{
		engine:   engine,
		requests: requests,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, executing one sweep per interval.
func (s *MatchingSweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("matching sweep started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("matching sweep stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *MatchingSweep) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	if expired, err := s.engine.ExpireMatches(ctx); err != nil {
		s.logger.Error("failed to expire matches", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("retired stale matches", zap.Int64("count", expired))
	}

	requests, err := s.requests.FindExpiringOpenRequests(ctx, time.Now().Add(sweepHorizon), sweepBatchSize)
	if err != nil {
		s.logger.Error("failed to list expiring requests", zap.Error(err))
		return
	}

	for _, request := range requests {
		// One failing request must not starve the rest of the batch.
		if _, err := s.engine.RunMatching(ctx, request.ID, 0); err != nil {
			s.logger.Error("sweep matching round failed",
				zap.Error(err),
				zap.String("request_id", request.ID))
		}
	}

	if len(requests) > 0 {
		s.logger.Info("sweep cycle completed", zap.Int("requests", len(requests)))
	}
}

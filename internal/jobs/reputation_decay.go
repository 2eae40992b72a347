// internal/jobs/reputation_decay.go
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// decayInterval is how often the decay pass runs.
	decayInterval = 24 * time.Hour

	// idleThreshold is how long a donor may stay inactive before decay.
	idleThreshold = 30 * 24 * time.Hour

	// decayKeepFactor retains 95% of reputation per pass.
	decayKeepFactor = 0.95
)

// ReputationDecayer applies the decay to idle donor reputations.
type ReputationDecayer interface {
	DecayIdleReputations(ctx context.Context, idleSince time.Time, keepFactor float64) (int64, error)
}

// ReputationDecay slowly erodes the reputation of donors who have not
// donated recently, so stale reputations do not outrank active donors.
type ReputationDecay struct {
	store  ReputationDecayer
	logger *zap.Logger
}

func NewReputationDecay(store ReputationDecayer, logger *zap.Logger) *ReputationDecay {
	return &ReputationDecay{
		store:  store,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled, applying one decay pass per day.
func (d *ReputationDecay) Run(ctx context.Context) {
	ticker := time.NewTicker(decayInterval)
	defer ticker.Stop()

	d.logger.Info("reputation decay started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reputation decay stopped")
			return
		case <-ticker.C:
			d.decay(ctx)
		}
	}
}

func (d *ReputationDecay) decay(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	idleSince := time.Now().Add(-idleThreshold)
	affected, err := d.store.DecayIdleReputations(ctx, idleSince, decayKeepFactor)
	if err != nil {
		d.logger.Error("reputation decay pass failed", zap.Error(err))
		return
	}
	if affected > 0 {
		d.logger.Info("reputation decay applied", zap.Int64("donors", affected))
	}
}

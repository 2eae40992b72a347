// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the matching core. A nil
// receiver is valid and turns every method into a no-op so services can be
// constructed without a registry in tests.
type Metrics struct {
	matchingRuns     prometheus.Counter
	emptyRuns        prometheus.Counter
	matchesCreated   prometheus.Counter
	matchingDuration prometheus.Histogram
	fraudAlerts      prometheus.Counter
	usersBlocked     prometheus.Counter
	verifications    prometheus.Counter
	rewardsRecorded  prometheus.Counter
}

// New registers the collectors on the default registry, served by the
// /metrics endpoint.
func New() *Metrics {
	return &Metrics{
		matchingRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_matching_runs_total",
			Help: "Number of matching rounds executed",
		}),
		emptyRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_matching_empty_runs_total",
			Help: "Matching rounds that produced no eligible candidates",
		}),
		matchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_matches_created_total",
			Help: "Match records persisted",
		}),
		matchingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodchain_matching_duration_seconds",
			Help:    "Duration of a matching round",
			Buckets: prometheus.DefBuckets,
		}),
		fraudAlerts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_fraud_alerts_total",
			Help: "Fraud alerts created",
		}),
		usersBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_users_blocked_total",
			Help: "Users auto-blocked for critical fraud scores",
		}),
		verifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_verifications_total",
			Help: "Peer verifications finalized",
		}),
		rewardsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodchain_rewards_recorded_total",
			Help: "Reward payouts recorded as owed",
		}),
	}
}

func (m *Metrics) IncMatchingRuns() {
	if m != nil {
		m.matchingRuns.Inc()
	}
}

func (m *Metrics) IncEmptyRuns() {
	if m != nil {
		m.emptyRuns.Inc()
	}
}

func (m *Metrics) AddMatchesCreated(n int) {
	if m != nil {
		m.matchesCreated.Add(float64(n))
	}
}

func (m *Metrics) ObserveMatchingDuration(seconds float64) {
	if m != nil {
		m.matchingDuration.Observe(seconds)
	}
}

func (m *Metrics) IncFraudAlerts() {
	if m != nil {
		m.fraudAlerts.Inc()
	}
}

func (m *Metrics) IncUsersBlocked() {
	if m != nil {
		m.usersBlocked.Inc()
	}
}

func (m *Metrics) IncVerifications() {
	if m != nil {
		m.verifications.Inc()
	}
}

func (m *Metrics) IncRewardsRecorded() {
	if m != nil {
		m.rewardsRecorded.Inc()
	}
}

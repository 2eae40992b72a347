package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// In-memory fakes for the store capability interfaces.

type fakeMatchStore struct {
	mu            sync.Mutex
	requests      map[string]*models.BloodRequest
	donors        []*models.DonorProfile
	matches       map[string]*models.Match
	pairs         map[string]bool
	requestStatus map[string]models.RequestStatus
	successCounts map[string]int
	failureCounts map[string]int

	findRequestErr error
	findDonorsErr  error
	createMatchErr error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		requests:      make(map[string]*models.BloodRequest),
		matches:       make(map[string]*models.Match),
		pairs:         make(map[string]bool),
		requestStatus: make(map[string]models.RequestStatus),
		successCounts: make(map[string]int),
		failureCounts: make(map[string]int),
	}
}

func (s *fakeMatchStore) FindRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	if s.findRequestErr != nil {
		return nil, s.findRequestErr
	}
	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", models.ErrNotFound, id)
	}
	return req, nil
}

func (s *fakeMatchStore) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestStatus[id] = status
	return nil
}

func (s *fakeMatchStore) FindCandidateDonors(ctx context.Context, filter models.DonorFilter, limit int) ([]*models.DonorProfile, error) {
	if s.findDonorsErr != nil {
		return nil, s.findDonorsErr
	}
	out := make([]*models.DonorProfile, 0, len(s.donors))
	for _, d := range s.donors {
		if filter.BloodType != "" && d.BloodType != filter.BloodType {
			continue
		}
		if filter.RhFactor != "" && d.RhFactor != filter.RhFactor {
			continue
		}
		if filter.AvailableOnly && !d.IsAvailable {
			continue
		}
		if filter.ExcludeBlocked && d.Blocked {
			continue
		}
		out = append(out, d)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeMatchStore) CreateMatch(ctx context.Context, match *models.Match) (bool, error) {
	if s.createMatchErr != nil {
		return false, s.createMatchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := match.RequestID + "|" + match.DonorID
	if s.pairs[key] {
		return false, nil
	}
	s.pairs[key] = true
	s.matches[match.ID] = match
	return true, nil
}

func (s *fakeMatchStore) FindMatch(ctx context.Context, id string) (*models.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", models.ErrNotFound, id)
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMatchStore) FindMatchesByRequest(ctx context.Context, requestID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range s.matches {
		if m.RequestID == requestID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMatchStore) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return fmt.Errorf("%w: match %s", models.ErrNotFound, id)
	}
	m.Status = status
	return nil
}

func (s *fakeMatchStore) UpdateDonorCounters(ctx context.Context, donorID string, successDelta, failureDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successCounts[donorID] += successDelta
	s.failureCounts[donorID] += failureDelta
	return nil
}

func (s *fakeMatchStore) ExpireMatches(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.matches {
		if m.Status == models.MatchStatusPending && now.After(m.ExpiresAt) {
			m.Status = models.MatchStatusExpired
			n++
		}
	}
	return n, nil
}

type notifyCall struct {
	UserID string
	Event  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{UserID: userID, Event: event})
}

type publishCall struct {
	Topic string
	Event interface{}
}

type fakeBus struct {
	mu     sync.Mutex
	calls  []publishCall
	pubErr error
}

func (b *fakeBus) Publish(ctx context.Context, topic string, event interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, publishCall{Topic: topic, Event: event})
	return b.pubErr
}

type fakeRewards struct {
	mu      sync.Mutex
	records []string // userID|matchID
	err     error
}

func (r *fakeRewards) RecordDonationReward(ctx context.Context, userID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, userID+"|"+matchID)
	return r.err
}

// stubModel scores donors from a fixed table keyed by reputation, so tests
// can pin exact model outputs per candidate.
type stubModel struct {
	scoreByReputation map[float64]float64
	defaultScore      float64
}

func (m *stubModel) Predict(ctx context.Context, features models.FeatureVector) float64 {
	if score, ok := m.scoreByReputation[features.ReputationScore]; ok {
		return score
	}
	return m.defaultScore
}

func (m *stubModel) Version() string { return "stub" }

type fakeFraudStore struct {
	attempts     []models.VerificationAttempt
	attemptsErr  error
	fiveMinCount int
	hourCount    int
	countErr     error
	activity     *models.UserActivity
	activityErr  error
	counterparts []models.Counterpart
	networkErr   error

	blocked map[string]bool
}

func newFakeFraudStore() *fakeFraudStore {
	return &fakeFraudStore{
		activity: &models.UserActivity{CreatedAt: time.Now().AddDate(-1, 0, 0)},
		blocked:  make(map[string]bool),
	}
}

func (s *fakeFraudStore) RecentVerificationAttempts(ctx context.Context, userID string, limit int) ([]models.VerificationAttempt, error) {
	if s.attemptsErr != nil {
		return nil, s.attemptsErr
	}
	if len(s.attempts) > limit {
		return s.attempts[:limit], nil
	}
	return s.attempts, nil
}

func (s *fakeFraudStore) CountRecentAttempts(ctx context.Context, userID string, window time.Duration) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	if window <= 5*time.Minute {
		return s.fiveMinCount, nil
	}
	return s.hourCount, nil
}

func (s *fakeFraudStore) UserActivity(ctx context.Context, userID string) (*models.UserActivity, error) {
	if s.activityErr != nil {
		return nil, s.activityErr
	}
	return s.activity, nil
}

func (s *fakeFraudStore) DonationCounterparts(ctx context.Context, userID string) ([]models.Counterpart, error) {
	if s.networkErr != nil {
		return nil, s.networkErr
	}
	return s.counterparts, nil
}

func (s *fakeFraudStore) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	s.blocked[userID] = blocked
	return nil
}

type fakeAlertStore struct {
	alerts    []models.FraudAlert
	createErr error
}

func (s *fakeAlertStore) CreateFraudAlert(ctx context.Context, alert *models.FraudAlert) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.alerts = append(s.alerts, *alert)
	return nil
}

func (s *fakeAlertStore) AlertsForUser(ctx context.Context, userID string, limit int) ([]models.FraudAlert, error) {
	var out []models.FraudAlert
	for _, a := range s.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeVerifierStore struct {
	pool          []*models.VerifierCandidate
	verifiers     map[string]*models.VerifierCandidate
	verifications []models.Verification
	poolErr       error
	createVerErr  error
}

func newFakeVerifierStore() *fakeVerifierStore {
	return &fakeVerifierStore{verifiers: make(map[string]*models.VerifierCandidate)}
}

func (s *fakeVerifierStore) FindVerifierPool(ctx context.Context, filter models.VerifierFilter, limit int) ([]*models.VerifierCandidate, error) {
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	out := make([]*models.VerifierCandidate, 0, len(s.pool))
	for _, v := range s.pool {
		if filter.ActiveOnly && !v.Active {
			continue
		}
		if v.QualificationScore < filter.MinQualification {
			continue
		}
		if v.DisputedVerifications >= filter.MaxDisputed {
			continue
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeVerifierStore) FindVerifier(ctx context.Context, userID string) (*models.VerifierCandidate, error) {
	v, ok := s.verifiers[userID]
	if !ok {
		return nil, fmt.Errorf("%w: verifier %s", models.ErrNotFound, userID)
	}
	copied := *v
	return &copied, nil
}

func (s *fakeVerifierStore) CreateVerifier(ctx context.Context, v *models.VerifierCandidate) error {
	s.verifiers[v.UserID] = v
	return nil
}

func (s *fakeVerifierStore) UpdateVerifier(ctx context.Context, v *models.VerifierCandidate) error {
	s.verifiers[v.UserID] = v
	return nil
}

func (s *fakeVerifierStore) CreateVerification(ctx context.Context, v *models.Verification) error {
	if s.createVerErr != nil {
		return s.createVerErr
	}
	s.verifications = append(s.verifications, *v)
	return nil
}

type fakeRewardStore struct {
	payouts []models.RewardPayout
	totals  map[string]float64
	err     error
}

func newFakeRewardStore() *fakeRewardStore {
	return &fakeRewardStore{totals: make(map[string]float64)}
}

func (s *fakeRewardStore) CreateRewardPayout(ctx context.Context, payout *models.RewardPayout) error {
	if s.err != nil {
		return s.err
	}
	s.payouts = append(s.payouts, *payout)
	return nil
}

func (s *fakeRewardStore) AddDonorRewards(ctx context.Context, userID string, amount float64) error {
	s.totals[userID] += amount
	return nil
}

type fakeNotificationStore struct {
	notifications []models.Notification
	err           error
}

func (s *fakeNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

func TestRecordDonationReward(t *testing.T) {
	store := newFakeRewardStore()
	notifier := &fakeNotifier{}
	service := NewRewardService(store, notifier, nil, zap.NewNop())

	if err := service.RecordDonationReward(context.Background(), "user-1", "match-1"); err != nil {
		t.Fatalf("RecordDonationReward() error: %v", err)
	}

	if len(store.payouts) != 1 {
		t.Fatalf("payouts = %d, want 1", len(store.payouts))
	}
	payout := store.payouts[0]
	if payout.Amount != DonationRewardTokens {
		t.Errorf("amount = %v, want %v", payout.Amount, DonationRewardTokens)
	}
	if payout.Status != models.PayoutStatusOwed {
		t.Errorf("status = %s, want OWED", payout.Status)
	}
	if store.totals["user-1"] != DonationRewardTokens {
		t.Errorf("running total = %v, want %v", store.totals["user-1"], DonationRewardTokens)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].Event != EventRewardIssued {
		t.Errorf("notifier calls = %+v, want one REWARD_ISSUED", notifier.calls)
	}
}

func TestRecordDonationRewardPayoutFailure(t *testing.T) {
	store := newFakeRewardStore()
	store.err = errors.New("insert failed")
	notifier := &fakeNotifier{}
	service := NewRewardService(store, notifier, nil, zap.NewNop())

	if err := service.RecordDonationReward(context.Background(), "user-1", "match-1"); err == nil {
		t.Fatal("RecordDonationReward() succeeded despite payout insert failure")
	}
	if len(notifier.calls) != 0 {
		t.Errorf("notifier calls = %d, want 0 when the payout row fails", len(notifier.calls))
	}
}

func TestNotificationServicePersistsAndPublishes(t *testing.T) {
	store := &fakeNotificationStore{}
	bus := &fakeBus{}
	service := NewNotificationService(store, bus, zap.NewNop())

	service.Notify(context.Background(), "user-1", EventMatchFound, map[string]interface{}{
		"request_id": "req-1",
	})

	if len(store.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.notifications))
	}
	n := store.notifications[0]
	if n.Event != EventMatchFound || n.Title == "" || n.Message == "" {
		t.Errorf("notification = %+v, want templated MATCH_FOUND", n)
	}
	if len(bus.calls) != 1 || bus.calls[0].Topic != "user:user-1" {
		t.Errorf("bus calls = %+v, want one publish to user:user-1", bus.calls)
	}
}

func TestNotificationServiceUnknownEventFallsBack(t *testing.T) {
	store := &fakeNotificationStore{}
	bus := &fakeBus{}
	service := NewNotificationService(store, bus, zap.NewNop())

	service.Notify(context.Background(), "user-1", "ACCOUNT_REVIEW", nil)

	if len(store.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.notifications))
	}
	n := store.notifications[0]
	if n.Title != "ACCOUNT_REVIEW" {
		t.Errorf("title = %q, want the event name", n.Title)
	}
	if n.Message == "" {
		t.Error("message is empty, want a generic fallback")
	}
	if len(bus.calls) != 1 {
		t.Fatalf("bus calls = %d, want 1", len(bus.calls))
	}
	if msg, _ := bus.calls[0].Event.(map[string]interface{})["message"].(string); msg == "" {
		t.Error("published envelope carries an empty message")
	}
}

func TestNotificationServiceSwallowsFailures(t *testing.T) {
	store := &fakeNotificationStore{err: errors.New("insert failed")}
	bus := &fakeBus{pubErr: errors.New("redis down")}
	service := NewNotificationService(store, bus, zap.NewNop())

	// Must not panic or propagate anything.
	service.Notify(context.Background(), "user-1", EventUrgentRequest, nil)
	if len(bus.calls) != 1 {
		t.Errorf("bus calls = %d, want the publish attempt despite store failure", len(bus.calls))
	}
}

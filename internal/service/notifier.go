// internal/service/notifier.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
	"github.com/AryanKumarOfficial/bloodchain/pkg/redisclient"
)

// Notification event names.
const (
	EventMatchFound        = "MATCH_FOUND"
	EventUrgentRequest     = "URGENT_REQUEST"
	EventDonationCompleted = "DONATION_COMPLETED"
	EventRewardIssued      = "REWARD_ISSUED"
)

// TopicUrgentBroadcast is the realtime channel for emergency fan-out.
const TopicUrgentBroadcast = "requests:urgent"

var notificationTemplates = map[string]struct{ Title, Message string }{
	EventMatchFound: {
		Title:   "Match Found",
		Message: "A compatible blood request has been matched to your profile.",
	},
	EventUrgentRequest: {
		Title:   "Urgent Blood Request Nearby",
		Message: "An urgent blood request has been posted near you. Your help is needed.",
	},
	EventDonationCompleted: {
		Title:   "Donation Completed",
		Message: "Your donation has been confirmed. Thank you for saving a life.",
	},
	EventRewardIssued: {
		Title:   "Reward Issued",
		Message: "A reward has been recorded for your completed donation.",
	},
}

// NotificationService persists a notification row and fans the event out on
// the realtime bus. Fire-and-forget: every failure is logged, none
// propagate to the caller.
type NotificationService struct {
	store  NotificationStore
	bus    RealtimeBus
	logger *zap.Logger
}

func NewNotificationService(store NotificationStore, bus RealtimeBus, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID, event string, payload map[string]interface{}) {
	tpl, ok := notificationTemplates[event]
	if !ok {
		tpl.Title = event
		tpl.Message = "You have a new update on your blood donation activity."
	}

	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Event:     event,
		Title:     tpl.Title,
		Message:   tpl.Message,
		CreatedAt: time.Now(),
	}

	if s.store != nil {
		if err := s.store.CreateNotification(ctx, n); err != nil {
			s.logger.Error("failed to persist notification",
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("event", event))
		}
	}

	if s.bus != nil {
		envelope := map[string]interface{}{
			"event":   event,
			"title":   tpl.Title,
			"message": tpl.Message,
			"payload": payload,
		}
		if err := s.bus.Publish(ctx, "user:"+userID, envelope); err != nil {
			s.logger.Error("failed to publish notification",
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("event", event))
		}
	}
}

// RedisBus publishes realtime events over Redis pub/sub.
type RedisBus struct {
	client *redisclient.Client
}

func NewRedisBus(client *redisclient.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, data)
}

// internal/repository/alert_repository.go
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

const alertCollection = "fraud_alerts"

// AlertRepository is the fraud-alert audit trail, kept in MongoDB so the
// document shape can evolve with the factor set.
type AlertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{collection: db.Collection(alertCollection)}
}

func (r *AlertRepository) CreateFraudAlert(ctx context.Context, alert *models.FraudAlert) error {
	if _, err := r.collection.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("%w: create fraud alert: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *AlertRepository) AlertsForUser(ctx context.Context, userID string, limit int) ([]models.FraudAlert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find fraud alerts: %v", models.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var alerts []models.FraudAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("%w: decode fraud alerts: %v", models.ErrStoreUnavailable, err)
	}
	return alerts, nil
}

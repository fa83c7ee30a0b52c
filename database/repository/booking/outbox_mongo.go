package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FetchPending returns the oldest undispatched intents.
func (r *MongoBookingRepo) FetchPending(ctx context.Context, limit int) ([]models.NotificationIntent, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(normalizeLimit(limit)))
	cursor, err := r.outbox.Find(ctx, bson.M{"status": models.IntentPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching pending intents: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.NotificationIntent
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding intents: %w", err)
	}
	return out, nil
}

func (r *MongoBookingRepo) Get(ctx context.Context, id string) (*models.NotificationIntent, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var intent models.NotificationIntent
	if err := r.outbox.FindOne(ctx, bson.M{"id": id}).Decode(&intent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("error fetching intent %s: %w", id, err)
	}
	return &intent, nil
}

func (r *MongoBookingRepo) setIntentStatus(ctx context.Context, id string, status models.IntentStatus, reason string) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if reason != "" {
		set["error"] = reason
	}
	res, err := r.outbox.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to mark intent %s %s: %w", id, status, err)
	}
	if res.MatchedCount == 0 {
		return ErrIntentNotFound
	}
	return nil
}

// MarkDispatched only moves pending intents; a worker may already have
// delivered the task by the time the poller records the hand-off.
func (r *MongoBookingRepo) MarkDispatched(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	_, err := r.outbox.UpdateOne(ctx,
		bson.M{"id": id, "status": models.IntentPending},
		bson.M{"$set": bson.M{"status": models.IntentDispatched, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark intent %s dispatched: %w", id, err)
	}
	return nil
}

func (r *MongoBookingRepo) MarkDelivered(ctx context.Context, id string) error {
	return r.setIntentStatus(ctx, id, models.IntentDelivered, "")
}

func (r *MongoBookingRepo) MarkFailed(ctx context.Context, id, reason string) error {
	return r.setIntentStatus(ctx, id, models.IntentFailed, reason)
}

func (r *MongoBookingRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.NotificationIntent, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	cursor, err := r.outbox.Find(ctx, bson.M{"bookingId": bookingID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing intents: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.NotificationIntent{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding intents: %w", err)
	}
	return out, nil
}

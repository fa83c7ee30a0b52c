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

// MongoBookingRepo implements Store on MongoDB. Writes that touch more than one
// collection run in a transaction, so the deployment must be a replica set.
type MongoBookingRepo struct {
	bookings *mongo.Collection
	events   *mongo.Collection
	outbox   *mongo.Collection
}

// NewMongoBookingRepo wires the collections and ensures indexes exist.
func NewMongoBookingRepo(ctx context.Context, db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{
		bookings: db.Collection("bookings"),
		events:   db.Collection("processed_events"),
		outbox:   db.Collection("notification_intents"),
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// withTransaction runs fn inside a session transaction, committing on success.
// Write conflicts with a concurrent transaction surface as ErrVersionConflict.
func (r *MongoBookingRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := r.bookings.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if isTransientTxnError(err) {
		return fmt.Errorf("%w: %v", ErrVersionConflict, err)
	}
	return err
}

func isTransientTxnError(err error) bool {
	var se mongo.ServerError
	return err != nil && errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError")
}

func intentDocs(intents []models.NotificationIntent) []interface{} {
	docs := make([]interface{}, len(intents))
	for i := range intents {
		docs[i] = intents[i]
	}
	return docs
}

func (r *MongoBookingRepo) insertIntents(ctx context.Context, intents []models.NotificationIntent) error {
	if len(intents) == 0 {
		return nil
	}
	if _, err := r.outbox.InsertMany(ctx, intentDocs(intents)); err != nil {
		return fmt.Errorf("insert notification intents failed: %w", err)
	}
	return nil
}

// Create inserts a booking together with its intake notifications.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking, intents []models.NotificationIntent) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	doc, err := toBookingDocument(booking)
	if err != nil {
		return err
	}
	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.bookings.InsertOne(sc, doc); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return r.insertIntents(sc, intents)
	})
	if err != nil {
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}
	return nil
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	var doc bookingDocument
	if err := r.bookings.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return doc.toModel()
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := newContext(ctx)
	defer cancel()
	return r.findOne(ctx, bson.M{"checkoutSessionId": sessionID})
}

// List returns one page of bookings, newest first, and the total match count.
func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["paymentStatus"] = filter.PaymentStatus
	}
	dateRange := bson.M{}
	if filter.From != "" {
		dateRange["$gte"] = filter.From
	}
	if filter.To != "" {
		dateRange["$lte"] = filter.To
	}
	if len(dateRange) > 0 {
		query["schedule.date"] = dateRange
	}

	total, err := r.bookings.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(max(filter.Offset, 0))).
		SetLimit(int64(normalizeLimit(filter.Limit)))
	cursor, err := r.bookings.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("error decoding booking: %w", err)
		}
		b, err := doc.toModel()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return out, total, nil
}

// UpdateStatus is a compare-and-set on (id, version, status).
func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, expectedVersion int64, change models.StatusChange, intents []models.NotificationIntent) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	set := bson.M{
		"status":    change.To,
		"updatedAt": change.At,
	}
	if change.AdminConfirmed {
		set["adminConfirmed"] = true
	}
	filter := bson.M{"id": id, "version": expectedVersion, "status": change.From}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	var updated *models.Booking
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var doc bookingDocument
		err := r.bookings.FindOneAndUpdate(sc, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.findOne(sc, bson.M{"id": id}); errors.Is(getErr, ErrNotFound) {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("update booking status failed: %w", err)
		}
		if updated, err = doc.toModel(); err != nil {
			return err
		}
		return r.insertIntents(sc, intents)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *MongoBookingRepo) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	res, err := r.bookings.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"checkoutSessionId": sessionID, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid writes the ledger entry first; the unique index on eventId makes a
// replayed event abort the transaction before anything else changes.
func (r *MongoBookingRepo) MarkPaid(ctx context.Context, id, eventID string, paidAt time.Time, intents []models.NotificationIntent) (*models.Booking, bool, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var (
		result  *models.Booking
		applied bool
	)
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		current, err := r.findOne(sc, bson.M{"id": id})
		if err != nil {
			return err
		}
		_, err = r.events.InsertOne(sc, processedEventDocument{EventID: eventID, BookingID: id, ProcessedAt: paidAt})
		if mongo.IsDuplicateKeyError(err) {
			return ErrEventProcessed
		}
		if err != nil {
			return fmt.Errorf("record payment event failed: %w", err)
		}
		if current.PaymentStatus == models.PaymentStatusPaid {
			result = current
			return nil
		}

		var doc bookingDocument
		err = r.bookings.FindOneAndUpdate(sc,
			bson.M{"id": id, "paymentStatus": models.PaymentStatusUnpaid},
			bson.M{
				"$set": bson.M{"paymentStatus": models.PaymentStatusPaid, "paidAt": paidAt, "updatedAt": paidAt},
				"$inc": bson.M{"version": 1},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("mark booking paid failed: %w", err)
		}
		if result, err = doc.toModel(); err != nil {
			return err
		}
		applied = true
		return r.insertIntents(sc, intents)
	})
	if errors.Is(err, ErrEventProcessed) {
		current, getErr := r.GetByID(ctx, id)
		return current, false, getErr
	}
	if err != nil {
		return nil, false, err
	}
	return result, applied, nil
}

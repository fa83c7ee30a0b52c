package bookingRepo

import (
	"context"
	"errors"
	"time"

	"studiobook/models"
)

var (
	ErrNotFound        = errors.New("booking not found")
	ErrVersionConflict = errors.New("booking version conflict")
	// ErrEventProcessed means the payment event id is already in the ledger.
	ErrEventProcessed = errors.New("payment event already processed")
	ErrIntentNotFound = errors.New("notification intent not found")
)

// BookingRepository persists bookings. Every mutation that emits notification
// intents writes them atomically with the booking change.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking, intents []models.NotificationIntent) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error)

	// UpdateStatus applies change only if the stored version still equals
	// expectedVersion; otherwise it returns ErrVersionConflict.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, change models.StatusChange, intents []models.NotificationIntent) (*models.Booking, error)
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// MarkPaid records eventID in the processed-event ledger and flips the
	// booking to PAID. applied is false when the event was seen before or the
	// booking was already paid; intents are written only when applied.
	MarkPaid(ctx context.Context, id, eventID string, paidAt time.Time, intents []models.NotificationIntent) (booking *models.Booking, applied bool, err error)
}

// OutboxRepository is the delivery side of the notification outbox.
type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]models.NotificationIntent, error)
	Get(ctx context.Context, id string) (*models.NotificationIntent, error)
	MarkDispatched(ctx context.Context, id string) error
	MarkDelivered(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListByBooking(ctx context.Context, bookingID string) ([]models.NotificationIntent, error)
}

// Store is what both backends provide.
type Store interface {
	BookingRepository
	OutboxRepository
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

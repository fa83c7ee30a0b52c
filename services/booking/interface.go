package booking

import (
	"context"
	"time"

	"studiobook/models"
)

// BookingService is the booking record manager.
type BookingService interface {
	Create(ctx context.Context, in CreateInput) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error)
	Notifications(ctx context.Context, id string) ([]models.NotificationIntent, error)

	ApplyStatusTransition(ctx context.Context, id string, target models.BookingStatus) (*models.Booking, error)

	MarkPaid(ctx context.Context, id, eventID string) (*models.Booking, error)
	OnCheckoutCompleted(ctx context.Context, id, eventID string) error
	HandleCheckoutCompleted(ctx context.Context, evt models.CheckoutCompleted) (*models.Booking, error)
	StartCheckout(ctx context.Context, id string) (*models.CheckoutSession, error)
}

// PaymentGateway opens hosted checkout pages for deposits.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
}

// CreateInput is a booking request after the quote has been resolved.
type CreateInput struct {
	Quote    models.Quote
	Customer models.Customer
	Schedule models.Schedule
	Notes    string
}

// Settings are the studio rules the service enforces.
type Settings struct {
	Currency   string
	Location   *time.Location
	AdminEmail string
}

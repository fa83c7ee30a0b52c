package admin

import (
	"context"

	"studiobook/models"
	"studiobook/services/booking"

	"go.uber.org/zap"
)

// Controller is the operator-only face of the booking service. It adds
// authorization and nothing else.
type Controller struct {
	bookings booking.BookingService
	logger   *zap.Logger
}

func NewController(bookings booking.BookingService, logger *zap.Logger) *Controller {
	return &Controller{bookings: bookings, logger: logger}
}

func requireOperator(op *models.Operator) error {
	if !op.IsOperator() {
		return models.NewUnauthorizedError("operator credentials required")
	}
	return nil
}

// Transition moves a booking to target on behalf of op.
func (c *Controller) Transition(ctx context.Context, op *models.Operator, bookingID string, target models.BookingStatus) (*models.Booking, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	b, err := c.bookings.ApplyStatusTransition(ctx, bookingID, target)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Operator changed booking status",
		zap.String("operator", op.Email),
		zap.String("bookingID", bookingID),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

func (c *Controller) ListBookings(ctx context.Context, op *models.Operator, filter models.BookingFilter) ([]models.Booking, int64, error) {
	if err := requireOperator(op); err != nil {
		return nil, 0, err
	}
	return c.bookings.List(ctx, filter)
}

func (c *Controller) GetBooking(ctx context.Context, op *models.Operator, bookingID string) (*models.Booking, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	return c.bookings.Get(ctx, bookingID)
}

func (c *Controller) Notifications(ctx context.Context, op *models.Operator, bookingID string) ([]models.NotificationIntent, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	return c.bookings.Notifications(ctx, bookingID)
}

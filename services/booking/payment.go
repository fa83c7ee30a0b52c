package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"

	"go.uber.org/zap"
)

var ErrPaymentsDisabled = errors.New("payments are not configured")

// MarkPaid flips the booking to PAID once per checkout event id. Replays of an
// event, or further events for an already paid booking, return the current
// record unchanged and emit nothing.
func (s *DefaultBookingService) MarkPaid(ctx context.Context, id, eventID string) (*models.Booking, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, models.NewValidationError("checkout event id is required")
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, translateRepoError(err, id)
		}

		paidAt := s.now()
		next := *current
		next.PaymentStatus = models.PaymentStatusPaid
		next.PaidAt = &paidAt

		updated, applied, err := s.store.MarkPaid(ctx, id, eventID, paidAt, s.intentsForPayment(&next))
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			s.logger.Warn("Booking changed concurrently, retrying payment",
				zap.String("bookingID", id), zap.String("eventID", eventID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, translateRepoError(err, id)
		}

		if applied {
			s.logger.Info("Deposit received", zap.String("bookingID", id), zap.String("eventID", eventID))
		} else {
			s.logger.Info("Payment event already applied", zap.String("bookingID", id), zap.String("eventID", eventID))
		}
		return updated, nil
	}
	return nil, models.NewConflictError(id)
}

// OnCheckoutCompleted is the payment bridge entry point.
func (s *DefaultBookingService) OnCheckoutCompleted(ctx context.Context, id, eventID string) error {
	_, err := s.MarkPaid(ctx, id, eventID)
	return err
}

// HandleCheckoutCompleted resolves the booking a verified provider event refers
// to, preferring the id carried on the event over the stored session id.
func (s *DefaultBookingService) HandleCheckoutCompleted(ctx context.Context, evt models.CheckoutCompleted) (*models.Booking, error) {
	if evt.PaymentStatus != "" && evt.PaymentStatus != "paid" && evt.PaymentStatus != "no_payment_required" {
		s.logger.Info("Checkout completed without payment, waiting for settlement",
			zap.String("eventID", evt.EventID),
			zap.String("paymentStatus", evt.PaymentStatus),
		)
		return nil, nil
	}

	bookingID := evt.BookingID
	if bookingID == "" {
		b, err := s.store.GetByCheckoutSessionID(ctx, evt.CheckoutSessionID)
		if err != nil {
			return nil, translateRepoError(err, evt.CheckoutSessionID)
		}
		bookingID = b.ID
	}
	return s.MarkPaid(ctx, bookingID, evt.EventID)
}

// StartCheckout opens a hosted checkout for the booking's deposit.
func (s *DefaultBookingService) StartCheckout(ctx context.Context, id string) (*models.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending {
		return nil, models.NewValidationError("booking %s is %s and cannot take a deposit", id, b.Status)
	}
	if b.PaymentStatus == models.PaymentStatusPaid {
		return nil, models.NewValidationError("booking %s is already paid", id)
	}
	if !b.DepositAmount.IsPositive() {
		return nil, models.NewValidationError("booking %s has no deposit due", id)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, models.CheckoutRequest{
		BookingID:     b.ID,
		CustomerEmail: b.Customer.Email,
		Description:   fmt.Sprintf("Deposit for studio session on %s at %s", b.Schedule.Date, b.Schedule.Time),
		Amount:        b.DepositAmount,
		Currency:      s.settings.Currency,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.String("bookingID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if err := s.store.SetCheckoutSession(ctx, id, session.ID); err != nil {
		return nil, translateRepoError(err, id)
	}
	s.logger.Info("Checkout session created", zap.String("bookingID", id), zap.String("sessionID", session.ID))
	return session, nil
}

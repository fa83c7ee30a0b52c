package booking

import (
	"context"
	"errors"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"

	"go.uber.org/zap"
)

// ApplyStatusTransition moves a booking to target if the lifecycle allows it.
// A concurrent writer makes the store reject the update; the booking is then
// re-read and the transition re-validated against the fresh state, a bounded
// number of times, before giving up with a ConflictError.
func (s *DefaultBookingService) ApplyStatusTransition(ctx context.Context, id string, target models.BookingStatus) (*models.Booking, error) {
	if _, ok := models.ParseBookingStatus(string(target)); !ok {
		return nil, models.NewValidationError("unknown status %q", target)
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, translateRepoError(err, id)
		}
		if !CanTransition(current.Status, target) {
			return nil, models.NewInvalidTransitionError(current.Status, target)
		}

		change := models.StatusChange{
			From:           current.Status,
			To:             target,
			AdminConfirmed: target == models.BookingStatusConfirmed,
			At:             s.now(),
		}
		updated, err := s.store.UpdateStatus(ctx, id, current.Version, change, s.intentsForTransition(current, target))
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			s.logger.Warn("Booking changed concurrently, retrying transition",
				zap.String("bookingID", id),
				zap.String("target", string(target)),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, translateRepoError(err, id)
		}

		s.logger.Info("Booking status changed",
			zap.String("bookingID", id),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.To)),
		)
		return updated, nil
	}
	return nil, models.NewConflictError(id)
}

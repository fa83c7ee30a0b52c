package notification

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"

	"go.uber.org/zap"
)

// NotificationService delivers outbox intents. It never touches bookings.
type NotificationService interface {
	Deliver(ctx context.Context, p models.NotificationPayload) error
	MarkFailed(ctx context.Context, intentID string, cause error) error
}

type DefaultNotificationService struct {
	outbox bookingRepo.OutboxRepository
	sender Sender
	logger *zap.Logger
}

func NewDefaultNotificationService(outbox bookingRepo.OutboxRepository, sender Sender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if outbox == nil || sender == nil {
		return nil, fmt.Errorf("notification service initialization error: outbox or sender is nil")
	}
	return &DefaultNotificationService{outbox: outbox, sender: sender, logger: logger}, nil
}

// Deliver renders and sends one intent. Intents already delivered are skipped
// so a redelivered task does not mail twice.
func (s *DefaultNotificationService) Deliver(ctx context.Context, p models.NotificationPayload) error {
	intent, err := s.outbox.Get(ctx, p.IntentID)
	if errors.Is(err, bookingRepo.ErrIntentNotFound) {
		s.logger.Warn("Dropping notification for unknown intent", zap.String("intentID", p.IntentID))
		return nil
	}
	if err != nil {
		return err
	}
	if intent.Status == models.IntentDelivered {
		return nil
	}

	msg, err := Render(p)
	if err != nil {
		// Rendering is deterministic; retrying cannot help.
		s.logger.Error("Failed to render notification", zap.String("intentID", p.IntentID), zap.Error(err))
		return s.MarkFailed(ctx, p.IntentID, err)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("intentID", p.IntentID),
			zap.String("template", string(p.TemplateKind)),
			zap.Error(err),
		)
		return err
	}
	if err := s.outbox.MarkDelivered(ctx, p.IntentID); err != nil {
		s.logger.Error("Failed to mark intent delivered", zap.String("intentID", p.IntentID), zap.Error(err))
	}
	s.logger.Info("Notification delivered",
		zap.String("intentID", p.IntentID),
		zap.String("bookingID", p.BookingID),
		zap.String("template", string(p.TemplateKind)),
	)
	return nil
}

func (s *DefaultNotificationService) MarkFailed(ctx context.Context, intentID string, cause error) error {
	reason := "delivery failed"
	if cause != nil {
		reason = cause.Error()
	}
	if err := s.outbox.MarkFailed(ctx, intentID, reason); err != nil {
		return fmt.Errorf("mark intent %s failed: %w", intentID, err)
	}
	return nil
}

package notification

import (
	"context"
	"errors"
	"time"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"
	"studiobook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher polls the outbox and hands pending intents to the task queue.
type Dispatcher struct {
	outbox   bookingRepo.OutboxRepository
	queue    Enqueuer
	interval time.Duration
	batch    int
	logger   *zap.Logger
}

func NewDispatcher(outbox bookingRepo.OutboxRepository, queue Enqueuer, interval time.Duration, logger *zap.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Dispatcher{outbox: outbox, queue: queue, interval: interval, batch: 100, logger: logger}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := d.DispatchPending(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("Outbox dispatch failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// DispatchPending enqueues one batch and returns how many intents were handed off.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	intents, err := d.outbox.FetchPending(ctx, d.batch)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, intent := range intents {
		if err := d.enqueue(ctx, intent); err != nil {
			d.logger.Warn("Failed to enqueue notification", zap.String("intentID", intent.ID), zap.Error(err))
			continue
		}
		if err := d.outbox.MarkDispatched(ctx, intent.ID); err != nil {
			d.logger.Warn("Failed to mark intent dispatched", zap.String("intentID", intent.ID), zap.Error(err))
			continue
		}
		dispatched++
	}
	if dispatched > 0 {
		d.logger.Debug("Outbox dispatched", zap.Int("count", dispatched))
	}
	return dispatched, nil
}

func (d *Dispatcher) enqueue(ctx context.Context, intent models.NotificationIntent) error {
	task, opts, err := tasks.NewNotificationTask(models.NotificationPayload{
		IntentID:      intent.ID,
		BookingID:     intent.BookingID,
		RecipientRole: intent.RecipientRole,
		TemplateKind:  intent.TemplateKind,
		Data:          intent.Payload,
	})
	if err != nil {
		return err
	}
	_, err = d.queue.EnqueueContext(ctx, task, opts...)
	// A previous poll enqueued it but crashed before marking it dispatched.
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

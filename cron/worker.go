package cron

import (
	"context"
	"fmt"

	"studiobook/services/notification"
	"studiobook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationWorker consumes notification tasks from asynq.
type NotificationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewNotificationWorker builds the asynq server; call Start to begin processing.
func NewNotificationWorker(redisOpts asynq.RedisClientOpt, notifSvc notification.NotificationService, logger *zap.Logger) *NotificationWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.NotificationQueue: 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationSend, HandleNotificationTask(notifSvc, logger))

	return &NotificationWorker{srv: srv, mux: mux, logger: logger}
}

func (w *NotificationWorker) Start() error {
	w.logger.Info("Starting notification worker")
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	return nil
}

func (w *NotificationWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleNotificationTask delivers one intent. When asynq has exhausted its
// retries the intent is marked failed so the dashboard can show it; the
// booking itself is never affected.
func HandleNotificationTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("Invalid notification payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		err = notifSvc.Deliver(ctx, p)
		if err == nil {
			return nil
		}

		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, ok := asynq.GetMaxRetry(ctx)
		if ok && retried >= maxRetry {
			logger.Error("Notification permanently failed",
				zap.String("intentID", p.IntentID),
				zap.String("bookingID", p.BookingID),
				zap.Int("attempts", retried+1),
				zap.Error(err),
			)
			if markErr := notifSvc.MarkFailed(ctx, p.IntentID, err); markErr != nil {
				logger.Error("Failed to record notification failure", zap.String("intentID", p.IntentID), zap.Error(markErr))
			}
		}
		return err
	}
}

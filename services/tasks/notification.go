package tasks

import (
	"encoding/json"

	"studiobook/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationSend = "notification:send"
	NotificationQueue    = "notifications"
	NotificationMaxRetry = 5
)

// NewNotificationTask wraps an outbox intent. The task id is the intent id, so
// enqueueing the same intent twice is rejected by asynq.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationSend, b)
	opts := []asynq.Option{
		asynq.TaskID(payload.IntentID),
		asynq.Queue(NotificationQueue),
		asynq.MaxRetry(NotificationMaxRetry),
	}
	return task, opts, nil
}

func ParseNotificationTask(task *asynq.Task) (models.NotificationPayload, error) {
	var p models.NotificationPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}

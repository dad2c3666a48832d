package tasks

import (
	"encoding/json"
	"time"

	"nafany/models"

	"github.com/hibiken/asynq"
)

const TypePushNotification = "notification:push"

// NewPushTask wraps a push payload. Delivery is retried a few times and dropped after a day.
func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePushNotification, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}

// ParsePushTask decodes the payload of a notification:push task.
func ParsePushTask(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}

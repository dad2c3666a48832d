package notification

import (
	"context"
	"fmt"

	"nafany/models"
	"nafany/services/tasks"
	"nafany/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the subset of *asynq.Client used to queue pushes.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands pushes to the asynq worker so request handlers never wait on FCM.
type QueueNotifier struct {
	Client Enqueuer
}

func NewQueueNotifier(client Enqueuer) *QueueNotifier {
	return &QueueNotifier{Client: client}
}

func (q *QueueNotifier) NotifyUser(ctx context.Context, email, title, body string, data map[string]string) error {
	return q.enqueue(ctx, models.PushPayload{Target: models.RoleUser, Recipient: email, Title: title, Body: body, Data: data})
}

func (q *QueueNotifier) NotifyProvider(ctx context.Context, email, title, body string, data map[string]string) error {
	return q.enqueue(ctx, models.PushPayload{Target: models.RoleProvider, Recipient: email, Title: title, Body: body, Data: data})
}

func (q *QueueNotifier) enqueue(ctx context.Context, payload models.PushPayload) error {
	task, opts, err := tasks.NewPushTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build push task: %w", err)
	}
	info, err := q.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue push for %s: %w", payload.Recipient, err)
	}
	utils.GetLogger().Debug("Push queued", zap.String("task", info.ID), zap.String("recipient", payload.Recipient))
	return nil
}

package notification

import (
	"context"
	"errors"
	"testing"

	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/services/tasks"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "projects/nafany/messages/1", nil
}

func newDispatcher(t *testing.T) (*Dispatcher, *fakeSender) {
	t.Helper()
	ctx := context.Background()
	users := userRepo.NewMemoryUserRepo()
	providers := providerRepo.NewMemoryProviderRepo()
	require.NoError(t, users.Create(ctx, &models.User{Username: "ali", Email: "ali@example.com", FCMToken: "user-token"}))
	require.NoError(t, users.Create(ctx, &models.User{Username: "omar", Email: "omar@example.com"}))
	require.NoError(t, providers.Create(ctx, &models.Provider{Email: "mona@example.com", FCMToken: "provider-token"}))

	sender := &fakeSender{}
	return NewDispatcher(users, providers, sender), sender
}

func TestDispatcherSendsToRegisteredDevice(t *testing.T) {
	ctx := context.Background()
	d, sender := newDispatcher(t)

	require.NoError(t, d.NotifyProvider(ctx, "mona@example.com", "حجز جديد", "Ali booked 10:00", map[string]string{"type": "booking"}))
	require.NoError(t, d.NotifyUser(ctx, "ali@example.com", "Mona", "أهلا", nil))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "provider-token", sender.sent[0].Token)
	assert.Equal(t, "حجز جديد", sender.sent[0].Notification.Title)
	assert.Equal(t, map[string]string{"role": models.RoleProvider, "type": "booking"}, sender.sent[0].Data)
	assert.Equal(t, "high", sender.sent[0].Android.Priority)
	assert.Equal(t, "user-token", sender.sent[1].Token)
}

func TestDispatcherSkipsAccountsWithoutToken(t *testing.T) {
	d, sender := newDispatcher(t)
	require.NoError(t, d.NotifyUser(context.Background(), "omar@example.com", "t", "b", nil))
	assert.Empty(t, sender.sent)
}

func TestDispatcherErrors(t *testing.T) {
	ctx := context.Background()
	d, sender := newDispatcher(t)

	assert.Error(t, d.NotifyUser(ctx, "ghost@example.com", "t", "b", nil))
	assert.Error(t, d.Dispatch(ctx, models.PushPayload{Target: "admin", Recipient: "ali@example.com"}))

	sender.err = errors.New("unavailable")
	err := d.NotifyUser(ctx, "ali@example.com", "t", "b", nil)
	assert.ErrorIs(t, err, sender.err)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func TestQueueNotifierEnqueuesPushTasks(t *testing.T) {
	ctx := context.Background()
	q := &fakeEnqueuer{}
	n := NewQueueNotifier(q)

	require.NoError(t, n.NotifyUser(ctx, "ali@example.com", "تم قبول الحجز", "approved", map[string]string{"bookingId": "b1"}))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypePushNotification, q.tasks[0].Type())
	assert.NotEmpty(t, q.opts[0])

	p, err := tasks.ParsePushTask(q.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, models.PushPayload{
		Target:    models.RoleUser,
		Recipient: "ali@example.com",
		Title:     "تم قبول الحجز",
		Body:      "approved",
		Data:      map[string]string{"bookingId": "b1"},
	}, p)

	q.err = errors.New("redis down")
	assert.ErrorIs(t, n.NotifyProvider(ctx, "mona@example.com", "t", "b", nil), q.err)
}

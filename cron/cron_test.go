package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nafany/models"
	"nafany/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchFunc func(ctx context.Context, p models.PushPayload) error

func (f dispatchFunc) Dispatch(ctx context.Context, p models.PushPayload) error { return f(ctx, p) }

func TestHandlePushTask(t *testing.T) {
	ctx := context.Background()
	var got []models.PushPayload
	handler := HandlePushTask(dispatchFunc(func(_ context.Context, p models.PushPayload) error {
		got = append(got, p)
		return nil
	}))

	task, _, err := tasks.NewPushTask(models.PushPayload{Target: models.RoleUser, Recipient: "ali@example.com", Title: "hi"})
	require.NoError(t, err)
	require.NoError(t, handler(ctx, task))
	require.Len(t, got, 1)
	assert.Equal(t, "ali@example.com", got[0].Recipient)

	err = handler(ctx, asynq.NewTask(tasks.TypePushNotification, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Len(t, got, 1)
}

func TestHandlePushTaskRetriesDeliveryFailures(t *testing.T) {
	failure := errors.New("fcm unavailable")
	handler := HandlePushTask(dispatchFunc(func(context.Context, models.PushPayload) error { return failure }))

	task, _, err := tasks.NewPushTask(models.PushPayload{Target: models.RoleProvider, Recipient: "mona@example.com"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	assert.ErrorIs(t, err, failure)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) RefreshRanking(context.Context) error {
	r.calls.Add(1)
	return errors.New("cache offline")
}

func TestRankingCronRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRefresher{}
	done := make(chan struct{})
	go func() {
		StartRankingCron(ctx, 5*time.Millisecond, r)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cron did not stop")
	}
}

package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nafany/models"
	"nafany/services/tasks"
	"nafany/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PushDispatcher delivers one decoded push payload.
type PushDispatcher interface {
	Dispatch(ctx context.Context, p models.PushPayload) error
}

// NewNotificationWorker builds the asynq server and mux that drain the push queue.
func NewNotificationWorker(redisOpts asynq.RedisClientOpt, dispatcher PushDispatcher) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: zapAsynqLogger{utils.GetLogger().Sugar()},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePushNotification, HandlePushTask(dispatcher))
	return srv, mux
}

// StartNotificationWorker starts the worker in the background, retrying start-up with
// backoff. The caller stops it with srv.Shutdown.
func StartNotificationWorker(srv *asynq.Server, mux *asynq.ServeMux) {
	go func() {
		logger := utils.GetLogger()
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				logger.Info("Notification worker started")
				return
			}
			if errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("Notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Notification worker giving up")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// HandlePushTask decodes a notification:push task and dispatches it. Malformed payloads are not retried.
func HandlePushTask(dispatcher PushDispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePushTask(task)
		if err != nil {
			utils.GetLogger().Error("Invalid push payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if err := dispatcher.Dispatch(ctx, p); err != nil {
			utils.GetLogger().Warn("Push delivery failed",
				zap.String("target", p.Target), zap.String("recipient", p.Recipient), zap.Error(err))
			return err
		}
		return nil
	}
}

// zapAsynqLogger routes asynq's internal logging through zap.
type zapAsynqLogger struct {
	s *zap.SugaredLogger
}

func (l zapAsynqLogger) Debug(args ...interface{}) { l.s.Debug(args...) }
func (l zapAsynqLogger) Info(args ...interface{})  { l.s.Info(args...) }
func (l zapAsynqLogger) Warn(args ...interface{})  { l.s.Warn(args...) }
func (l zapAsynqLogger) Error(args ...interface{}) { l.s.Error(args...) }
func (l zapAsynqLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }

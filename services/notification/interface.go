package notification

import (
	"context"

	"nafany/models"
)

// Notifier pushes a short message to an account's registered device.
type Notifier interface {
	NotifyUser(ctx context.Context, email, title, body string, data map[string]string) error
	NotifyProvider(ctx context.Context, email, title, body string, data map[string]string) error
}

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProviderLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Provider, error)
}

// NoopNotifier drops every notification. Used when Redis or Firebase are not configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyUser(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (NoopNotifier) NotifyProvider(context.Context, string, string, string, map[string]string) error {
	return nil
}

var (
	_ Notifier = NoopNotifier{}
	_ Notifier = (*QueueNotifier)(nil)
	_ Notifier = (*Dispatcher)(nil)
)

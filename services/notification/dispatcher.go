package notification

import (
	"context"
	"fmt"

	"nafany/models"
	"nafany/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Dispatcher resolves the recipient's FCM token and sends the push. It is the
// handler behind the queue and also a synchronous Notifier.
type Dispatcher struct {
	Users     UserLookup
	Providers ProviderLookup
	Sender    Sender
}

func NewDispatcher(users UserLookup, providers ProviderLookup, sender Sender) *Dispatcher {
	return &Dispatcher{Users: users, Providers: providers, Sender: sender}
}

func (d *Dispatcher) NotifyUser(ctx context.Context, email, title, body string, data map[string]string) error {
	return d.Dispatch(ctx, models.PushPayload{Target: models.RoleUser, Recipient: email, Title: title, Body: body, Data: data})
}

func (d *Dispatcher) NotifyProvider(ctx context.Context, email, title, body string, data map[string]string) error {
	return d.Dispatch(ctx, models.PushPayload{Target: models.RoleProvider, Recipient: email, Title: title, Body: body, Data: data})
}

// Dispatch sends one payload. A recipient without a registered token is skipped without error.
func (d *Dispatcher) Dispatch(ctx context.Context, p models.PushPayload) error {
	token, err := d.token(ctx, p)
	if err != nil {
		return err
	}
	if token == "" {
		utils.GetLogger().Debug("Push skipped, no FCM token", zap.String("recipient", p.Recipient))
		return nil
	}

	data := map[string]string{"role": p.Target}
	for k, v := range p.Data {
		data[k] = v
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
	}
	if _, err := d.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s: %w", p.Recipient, err)
	}
	return nil
}

func (d *Dispatcher) token(ctx context.Context, p models.PushPayload) (string, error) {
	switch p.Target {
	case models.RoleUser:
		u, err := d.Users.GetByEmail(ctx, p.Recipient)
		if err != nil {
			return "", fmt.Errorf("could not find user %s: %w", p.Recipient, err)
		}
		return u.FCMToken, nil
	case models.RoleProvider:
		prov, err := d.Providers.GetByEmail(ctx, p.Recipient)
		if err != nil {
			return "", fmt.Errorf("could not find provider %s: %w", p.Recipient, err)
		}
		return prov.FCMToken, nil
	}
	return "", fmt.Errorf("unknown push target %q", p.Target)
}

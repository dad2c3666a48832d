package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nafany/models"
	"nafany/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Broker fans new messages out to live subscribers of a chat.
type Broker interface {
	Publish(ctx context.Context, msg models.Message) error
	// Subscribe delivers messages until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, chatID string) (<-chan models.Message, error)
}

const subscriberBuffer = 16

func channelName(chatID string) string { return "chat:" + chatID }

// LocalBroker is an in-process Broker for a single instance.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan models.Message]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan models.Message]struct{})}
}

// Publish never blocks; a subscriber whose buffer is full misses the message.
func (b *LocalBroker) Publish(_ context.Context, msg models.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[msg.ChatID] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, chatID string) (<-chan models.Message, error) {
	ch := make(chan models.Message, subscriberBuffer)

	b.mu.Lock()
	if b.subs[chatID] == nil {
		b.subs[chatID] = make(map[chan models.Message]struct{})
	}
	b.subs[chatID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[chatID], ch)
		if len(b.subs[chatID]) == 0 {
			delete(b.subs, chatID)
		}
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// RedisBroker shares messages between instances over Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, msg models.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelName(msg.ChatID), raw).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, chatID string) (<-chan models.Message, error) {
	pubsub := b.client.Subscribe(ctx, channelName(chatID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", chatID, err)
	}

	out := make(chan models.Message, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					utils.GetLogger().Warn("Dropping malformed chat event", zap.String("chatId", chatID), zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var (
	_ Broker = (*LocalBroker)(nil)
	_ Broker = (*RedisBroker)(nil)
)

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// CommandBus implements domain.CommandBus using Redis Pub/Sub. Commands go
// out on the well-known command channel; each Subscribe opens its own
// Pub/Sub connection on the notification channel, so concurrent subscribers
// all receive every inbound message and release independently.
type CommandBus struct {
	client *Client
	logger *slog.Logger
}

// NewCommandBus creates a CommandBus backed by the shared Client.
func NewCommandBus(c *Client, logger *slog.Logger) *CommandBus {
	return &CommandBus{client: c, logger: logger}
}

// Publish serializes cmd and sends it to the outbound command channel.
func (b *CommandBus) Publish(ctx context.Context, cmd domain.TaskCommand) error {
	rdb, err := b.client.Underlying(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("redis: marshal command: %w", err)
	}

	if err := rdb.Publish(ctx, domain.ChannelCommands, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", domain.ChannelCommands, err)
	}
	return nil
}

// Subscribe registers handler for every message arriving on the notification
// channel and returns a Subscription whose Release stops delivery. Delivery
// is active once Subscribe returns; the subscribe confirmation is awaited
// before the method returns so a publish issued afterwards cannot race a
// fast reply.
func (b *CommandBus) Subscribe(ctx context.Context, handler func(domain.Notification)) (domain.Subscription, error) {
	rdb, err := b.client.Underlying(ctx)
	if err != nil {
		return nil, err
	}

	pubsub := rdb.Subscribe(ctx, domain.ChannelNotifications)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", domain.ChannelNotifications, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Warn("redis: dropping malformed notification",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			handler(n)
		}
	}()

	return &subscription{pubsub: pubsub}, nil
}

// subscription wraps a dedicated Pub/Sub connection. Release is idempotent;
// closing the connection drains and terminates the delivery goroutine.
type subscription struct {
	pubsub *redis.PubSub
	once   sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() {
		_ = s.pubsub.Close()
	})
}

// Compile-time interface check.
var _ domain.CommandBus = (*CommandBus)(nil)

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TypedPubSub publishes and consumes JSON-encoded T values. All channel
// names are prefixed so several deployments can share one Redis.
type TypedPubSub[T any] struct {
	client goredis.UniversalClient
	prefix string
	logger *logrus.Logger
}

// NewTypedPubSub creates a pub/sub helper. prefix may be empty.
func NewTypedPubSub[T any](client goredis.UniversalClient, prefix string, logger *logrus.Logger) *TypedPubSub[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TypedPubSub[T]{client: client, prefix: prefix, logger: logger}
}

// Channel returns the fully prefixed channel name
func (p *TypedPubSub[T]) Channel(name string) string {
	return p.prefix + name
}

// Publish sends msg and returns the number of subscribers that received it
func (p *TypedPubSub[T]) Publish(ctx context.Context, channel string, msg T) (int64, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("marshal pubsub payload: %w", err)
	}
	n, err := p.client.Publish(ctx, p.Channel(channel), payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish to redis: %w", err)
	}
	return n, nil
}

// Subscribe blocks delivering decoded messages from the channel patterns to
// handler until ctx is cancelled. Undecodable payloads are logged and skipped.
func (p *TypedPubSub[T]) Subscribe(ctx context.Context, handler func(channel string, msg T), patterns ...string) error {
	full := make([]string, len(patterns))
	for i, pat := range patterns {
		full[i] = p.Channel(pat)
	}
	sub := p.client.PSubscribe(ctx, full...)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to redis: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var payload T
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				p.logger.WithError(err).WithField("channel", msg.Channel).Warn("Dropping undecodable pubsub payload")
				continue
			}
			handler(msg.Channel[len(p.prefix):], payload)
		}
	}
}

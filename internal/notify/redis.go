package notify

import (
	"context"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// RedisPrefix namespaces notification channels in Redis
const RedisPrefix = "lighthouse:notify:"

// RedisNotifier publishes each notification on its channel name
type RedisNotifier struct {
	pubsub *redis.TypedPubSub[domain.Notification]
	logger logging.Logger
}

func NewRedisNotifier(client goredis.UniversalClient, logger logging.Logger) *RedisNotifier {
	return &RedisNotifier{
		pubsub: redis.NewTypedPubSub[domain.Notification](client, RedisPrefix, logger),
		logger: logger,
	}
}

func (r *RedisNotifier) Name() string { return "redis" }

func (r *RedisNotifier) Notify(ctx context.Context, n domain.Notification) error {
	_, err := r.pubsub.Publish(ctx, n.Channel, n)
	return err
}

// Relay forwards notifications published by any replica into local
// backends, typically the WebSocket hub. Blocks until ctx is done.
func (r *RedisNotifier) Relay(ctx context.Context, to Notifier) error {
	return r.pubsub.Subscribe(ctx, func(_ string, n domain.Notification) {
		if err := to.Notify(ctx, n); err != nil {
			r.logger.WithError(err).WithFields(logging.Fields{
				"backend": to.Name(),
				"channel": n.Channel,
				"type":    n.Type,
			}).Warn("Relayed notification delivery failed")
		}
	}, "*")
}

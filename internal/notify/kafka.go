package notify

import (
	"context"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

// Publisher is the subset of the Kafka producer the notifier needs
type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any, headers map[string]string) error
}

// KafkaNotifier produces notifications to one topic keyed by channel so a
// channel's notifications stay ordered within a partition.
type KafkaNotifier struct {
	producer Publisher
	topic    string
}

func NewKafkaNotifier(producer Publisher, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Notify(ctx context.Context, n domain.Notification) error {
	return k.producer.PublishJSON(ctx, k.topic, n.Channel, n, map[string]string{"type": n.Type})
}

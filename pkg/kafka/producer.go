package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// produceTimeout bounds a synchronous produce when the caller's context has no deadline.
const produceTimeout = 5 * time.Second

// Producer publishes records synchronously
type Producer struct {
	client *kgo.Client
	logger *logrus.Logger
}

// NewProducer creates a producer. The connection is established lazily by franz-go.
func NewProducer(brokers []string, clientID string, logger *logrus.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, logger: logger}, nil
}

// Close flushes nothing; ProduceSync has already waited for acks.
func (p *Producer) Close() error {
	p.client.Close()
	return nil
}

// Ping checks broker connectivity
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// ProduceMessage writes one record and waits for the broker ack
func (p *Producer) ProduceMessage(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, produceTimeout)
		defer cancel()
	}
	if err := p.client.ProduceSync(ctx, NewRecord(topic, key, value, headers)).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// PublishJSON marshals v and produces it under key
func (p *Producer) PublishJSON(ctx context.Context, topic, key string, v any, headers map[string]string) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}
	return p.ProduceMessage(ctx, topic, []byte(key), value, headers)
}

// NewRecord builds a record with headers in a stable order
func NewRecord(topic string, key, value []byte, headers map[string]string) *kgo.Record {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	for _, k := range sortedKeys(headers) {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(headers[k])})
	}
	return rec
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a consumed record with headers flattened
type Message struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Handler processes one message. Returning an error wrapping ErrPoison sends
// the message to the dead-letter sink; any other error is retried in place
// with backoff, holding back later offsets of the same partition.
type Handler func(ctx context.Context, msg Message) error

// ErrPoison marks a message that can never be processed.
var ErrPoison = errors.New("poison message")

// DeadLetterSink receives poison messages
type DeadLetterSink interface {
	ProduceMessage(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

const (
	defaultRetryMin = 500 * time.Millisecond
	defaultRetryMax = 30 * time.Second
)

// Consumer routes records from subscribed topics to handlers and commits
// only offsets whose predecessors all succeeded.
type Consumer struct {
	client   *kgo.Client
	logger   *logrus.Logger
	groupID  string
	dlq      DeadLetterSink
	dlqTopic string
	retryMin time.Duration
	retryMax time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	handlers map[string]Handler
	// blocked partitions stopped on a record that never succeeded. The
	// client has already fetched past it, so nothing later on the
	// partition may be handled or committed until restart.
	blocked map[topicPartition]int64
}

// NewConsumer creates a group consumer with manual commits
func NewConsumer(brokers []string, groupID, clientID string, logger *logrus.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ClientID(clientID),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Consumer{
		client:   client,
		logger:   logger,
		groupID:  groupID,
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
		handlers: make(map[string]Handler),
		blocked:  make(map[topicPartition]int64),
	}, nil
}

// WithRetryBackoff bounds the wait between attempts at a failing record
func (c *Consumer) WithRetryBackoff(min, max time.Duration) *Consumer {
	c.retryMin, c.retryMax = min, max
	return c
}

// WithDeadLetter routes poison messages to topic via sink
func (c *Consumer) WithDeadLetter(sink DeadLetterSink, topic string) *Consumer {
	c.dlq = sink
	c.dlqTopic = topic
	return c
}

// AddHandler registers a handler for topic and subscribes to it
func (c *Consumer) AddHandler(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	if c.client != nil {
		c.client.AddConsumeTopics(topic)
	}
}

// Close leaves the group and closes the client
func (c *Consumer) Close() error {
	c.client.Close()
	return nil
}

// Ping checks broker connectivity
func (c *Consumer) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Start polls until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				c.logger.WithError(fe.Err).WithFields(logrus.Fields{
					"topic":     fe.Topic,
					"partition": fe.Partition,
				}).Error("Kafka fetch error")
			}
		}

		var records []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) { records = append(records, r) })

		if commit := c.processRecords(ctx, records); len(commit) > 0 {
			if err := c.client.CommitRecords(ctx, commit...); err != nil {
				c.logger.WithError(err).Error("Failed to commit records")
			}
		}
		c.client.AllowRebalance()
	}
}

type topicPartition struct {
	topic     string
	partition int32
}

func (c *Consumer) processRecords(ctx context.Context, records []*kgo.Record) []*kgo.Record {
	if c.blocked == nil {
		c.blocked = make(map[topicPartition]int64)
	}
	lastSuccess := make(map[topicPartition]*kgo.Record)

	for _, record := range records {
		tp := topicPartition{topic: record.Topic, partition: record.Partition}
		if _, stuck := c.blocked[tp]; stuck {
			continue
		}

		c.mu.RLock()
		handler, ok := c.handlers[record.Topic]
		c.mu.RUnlock()
		if !ok {
			c.logger.WithField("topic", record.Topic).Warn("No handler registered for topic")
			lastSuccess[tp] = record
			continue
		}

		if c.handle(ctx, handler, record) {
			lastSuccess[tp] = record
			continue
		}
		c.blocked[tp] = record.Offset
		c.logger.WithFields(logrus.Fields{
			"topic":     record.Topic,
			"partition": record.Partition,
			"offset":    record.Offset,
		}).Error("Stopped before message succeeded; partition held until restart")
	}

	if len(lastSuccess) == 0 {
		return nil
	}
	commit := make([]*kgo.Record, 0, len(lastSuccess))
	for _, r := range lastSuccess {
		commit = append(commit, r)
	}
	sort.Slice(commit, func(i, j int) bool {
		if commit[i].Topic != commit[j].Topic {
			return commit[i].Topic < commit[j].Topic
		}
		return commit[i].Partition < commit[j].Partition
	})
	return commit
}

// handle runs handler until the record succeeds or is dead-lettered. It
// reports false only when ctx ends first.
func (c *Consumer) handle(ctx context.Context, handler Handler, record *kgo.Record) bool {
	msg := toMessage(record)
	fields := logrus.Fields{"topic": record.Topic, "partition": record.Partition, "offset": record.Offset}

	for attempt := 0; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrPoison) {
			if c.dlq == nil || c.dlqTopic == "" {
				c.logger.WithError(err).WithFields(fields).Error("Dropping poison message; no dead-letter topic configured")
				return true
			}
			dlqErr := c.deadLetter(ctx, msg, err)
			if dlqErr == nil {
				c.logger.WithError(err).WithFields(fields).Warn("Message sent to dead-letter topic")
				return true
			}
			err = dlqErr
		}
		c.logger.WithError(err).WithFields(fields).WithField("attempt", attempt+1).Warn("Message failed; retrying")
		if !c.wait(ctx, attempt) {
			return false
		}
	}
}

// wait sleeps for the attempt's backoff, doubling from retryMin up to retryMax
func (c *Consumer) wait(ctx context.Context, attempt int) bool {
	if attempt > 16 {
		attempt = 16
	}
	d := c.retryMin << attempt
	if d <= 0 || d > c.retryMax {
		d = c.retryMax
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg Message, cause error) error {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	payload, err := NewDeadLetter(msg, cause, c.groupID, now()).Encode()
	if err != nil {
		return err
	}
	headers := map[string]string{"source_topic": msg.Topic, "reason": RejectReason(cause)}
	if err := c.dlq.ProduceMessage(ctx, c.dlqTopic, msg.Key, payload, headers); err != nil {
		return fmt.Errorf("produce dead letter: %w", err)
	}
	return nil
}

func toMessage(r *kgo.Record) Message {
	hdrs := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		hdrs[h.Key] = string(h.Value)
	}
	return Message{
		Key:       r.Key,
		Value:     r.Value,
		Headers:   hdrs,
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Timestamp: r.Timestamp,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

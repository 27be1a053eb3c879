package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Rejection is a poison error carrying a short machine-readable reason
// such as "decode" or "invalid_input".
type Rejection struct {
	Reason string
	Err    error
}

func (r *Rejection) Error() string { return fmt.Sprintf("%s: %s: %v", ErrPoison, r.Reason, r.Err) }

func (r *Rejection) Unwrap() []error { return []error{ErrPoison, r.Err} }

// Reject wraps err as poison with reason
func Reject(reason string, err error) error {
	return &Rejection{Reason: reason, Err: err}
}

// RejectReason reports the reason attached by Reject, or "poison"
func RejectReason(err error) string {
	var r *Rejection
	if errors.As(err, &r) && r.Reason != "" {
		return r.Reason
	}
	return "poison"
}

// SourceRecord is the rejected record as consumed. Key and Value are
// base64 in JSON.
type SourceRecord struct {
	Topic     string            `json:"topic"`
	Partition int32             `json:"partition"`
	Offset    int64             `json:"offset"`
	Timestamp time.Time         `json:"timestamp"`
	Key       []byte            `json:"key,omitempty"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// DeadLetter is the dead-letter topic envelope
type DeadLetter struct {
	Source     SourceRecord `json:"source"`
	Reason     string       `json:"reason"`
	Error      string       `json:"error,omitempty"`
	Consumer   string       `json:"consumer"`
	RejectedAt time.Time    `json:"rejectedAt"`
}

func NewDeadLetter(msg Message, cause error, consumer string, at time.Time) DeadLetter {
	dl := DeadLetter{
		Source: SourceRecord{
			Topic:     msg.Topic,
			Partition: msg.Partition,
			Offset:    msg.Offset,
			Timestamp: msg.Timestamp,
			Key:       msg.Key,
			Value:     msg.Value,
			Headers:   msg.Headers,
		},
		Reason:     RejectReason(cause),
		Consumer:   consumer,
		RejectedAt: at.UTC(),
	}
	if cause != nil {
		dl.Error = cause.Error()
	}
	return dl
}

func (d DeadLetter) Encode() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode dead letter: %w", err)
	}
	return b, nil
}

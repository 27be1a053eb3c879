// Package ingest feeds analytics events from Kafka into the rollup engine.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/kafka"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// Recorder is satisfied by *service.Service
type Recorder interface {
	IngestEvents(ctx context.Context, events ...domain.AnalyticsEvent) error
}

// Metrics are optional; nil vectors are skipped
type Metrics struct {
	Messages *prometheus.CounterVec   // labels: status
	Events   *prometheus.CounterVec   // labels: platform
	Duration *prometheus.HistogramVec // labels: status
}

// Handler decodes one Kafka record into events. A record is either a
// single event object or an array of them.
type Handler struct {
	recorder Recorder
	logger   logging.Logger
	metrics  *Metrics
}

func NewHandler(recorder Recorder, logger logging.Logger, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Handler{recorder: recorder, logger: logger, metrics: metrics}
}

// HandleMessage is a kafka.Handler. Undecodable or invalid records are
// rejected as poison so they go to the dead-letter topic; store failures are
// returned as-is and the consumer retries them.
func (h *Handler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	start := time.Now()
	status := "ok"
	defer func() {
		if h.metrics.Messages != nil {
			h.metrics.Messages.WithLabelValues(status).Inc()
		}
		if h.metrics.Duration != nil {
			h.metrics.Duration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		}
	}()

	events, err := decode(msg.Value)
	if err != nil {
		status = "poison"
		h.reject(msg, err)
		return kafka.Reject("decode", err)
	}

	if err := h.recorder.IngestEvents(ctx, events...); err != nil {
		if isValidation(err) {
			status = "poison"
			h.reject(msg, err)
			return kafka.Reject(domain.Kind(err), err)
		}
		status = "error"
		h.logger.WithError(err).WithFields(logging.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Error("Failed to store analytics events")
		return err
	}

	if h.metrics.Events != nil {
		for _, ev := range events {
			h.metrics.Events.WithLabelValues(string(ev.Platform)).Inc()
		}
	}
	return nil
}

func (h *Handler) reject(msg kafka.Message, err error) {
	h.logger.WithError(err).WithFields(logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	}).Warn("Rejecting analytics record")
}

func decode(value []byte) ([]domain.AnalyticsEvent, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, errors.New("empty record")
	}
	if trimmed[0] == '[' {
		var events []domain.AnalyticsEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("decode event batch: %w", err)
		}
		if len(events) == 0 {
			return nil, errors.New("empty event batch")
		}
		return events, nil
	}
	var ev domain.AnalyticsEvent
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []domain.AnalyticsEvent{ev}, nil
}

func isValidation(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrOutOfRange)
}

// Package notify delivers lifecycle notifications to the configured
// backends. Delivery is fire-and-forget from the caller's point of view:
// the Dispatcher queues notifications and a worker pushes them through
// every backend behind retry and a circuit breaker.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// Notifier is one delivery backend
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n domain.Notification) error
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	l.logger.WithFields(logging.Fields{
		"channel": n.Channel,
		"type":    n.Type,
		"payload": n.Payload,
	}).Info("Notification")
	return nil
}

// Fanout delivers to every backend and joins their errors
type Fanout []Notifier

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, nt := range f {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nt.Name(), err))
		}
	}
	return errors.Join(errs...)
}

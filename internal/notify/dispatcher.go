package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/clients"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// Hooks report delivery outcomes, usually to Prometheus
type Hooks struct {
	OnDelivered func(backend, kind string)
	OnFailed    func(backend, kind string)
	OnDropped   func(kind string)
}

// DispatcherConfig sizes the queue and the per-delivery budget
type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
	Retry           clients.RetryConfig
	Hooks           Hooks
}

// DefaultDispatcherConfig returns the production defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:       1024,
		Workers:         2,
		DeliveryTimeout: 10 * time.Second,
		Retry:           clients.DefaultRetryConfig(),
	}
}

type backend struct {
	notifier Notifier
	guard    *clients.Guard
}

// Dispatcher queues notifications and delivers them in the background.
// Publish never blocks: a full queue drops the notification.
type Dispatcher struct {
	cfg      DispatcherConfig
	backends []backend
	logger   logging.Logger
	queue    chan domain.Notification
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

func NewDispatcher(cfg DispatcherConfig, logger logging.Logger, notifiers ...Notifier) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan domain.Notification, cfg.QueueSize),
	}
	for _, n := range notifiers {
		breaker := clients.DefaultBreakerConfig("notify-" + n.Name())
		breaker.Logger = logger
		d.backends = append(d.backends, backend{notifier: n, guard: clients.NewGuard(cfg.Retry, breaker)})
	}
	return d
}

// Start launches the workers. They exit after Close drains the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Publish queues notifications for delivery
func (d *Dispatcher) Publish(notifications ...domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, n := range notifications {
		if d.closed {
			d.drop(n, "dispatcher closed")
			continue
		}
		select {
		case d.queue <- n:
		default:
			d.drop(n, "queue full")
		}
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	for _, b := range d.backends {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.DeliveryTimeout)
		err := b.guard.Run(ctx, func(ctx context.Context) error {
			return b.notifier.Notify(ctx, n)
		})
		cancel()

		name := b.notifier.Name()
		if err != nil {
			d.logger.WithError(err).WithFields(logging.Fields{
				"backend": name,
				"channel": n.Channel,
				"type":    n.Type,
			}).Warn("Notification delivery failed")
			if d.cfg.Hooks.OnFailed != nil {
				d.cfg.Hooks.OnFailed(name, n.Type)
			}
			continue
		}
		if d.cfg.Hooks.OnDelivered != nil {
			d.cfg.Hooks.OnDelivered(name, n.Type)
		}
	}
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	d.logger.WithFields(logging.Fields{
		"channel": n.Channel,
		"type":    n.Type,
		"reason":  reason,
	}).Warn("Notification dropped")
	if d.cfg.Hooks.OnDropped != nil {
		d.cfg.Hooks.OnDropped(n.Type)
	}
}

package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// CircuitBreakerState mirrors the failsafe-go breaker states
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateHalfOpen
	StateOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func convertState(state circuitbreaker.State) CircuitBreakerState {
	switch state {
	case circuitbreaker.HalfOpenState:
		return StateHalfOpen
	case circuitbreaker.OpenState:
		return StateOpen
	default:
		return StateClosed
	}
}

// BreakerConfig configures a circuit breaker
type BreakerConfig struct {
	Name string
	// Failures out of Window executions trip the breaker.
	Failures uint
	Window   uint
	// Delay is how long the breaker stays open before probing.
	Delay time.Duration
	// Successes needed in half-open before closing.
	Successes     uint
	Logger        logging.Logger
	OnStateChange func(name string, from, to CircuitBreakerState)
}

// DefaultBreakerConfig trips at 5 failures in 10 and probes after 15s
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{Name: name, Failures: 5, Window: 10, Delay: 15 * time.Second, Successes: 1}
}

func (cfg BreakerConfig) normalize() BreakerConfig {
	if cfg.Window == 0 {
		cfg.Window = 10
	}
	if cfg.Failures == 0 || cfg.Failures > cfg.Window {
		cfg.Failures = (cfg.Window + 1) / 2
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 15 * time.Second
	}
	if cfg.Successes == 0 {
		cfg.Successes = 1
	}
	return cfg
}

func newBreaker[R any](cfg BreakerConfig, isFailure func(R, error) bool) circuitbreaker.CircuitBreaker[R] {
	cfg = cfg.normalize()
	b := circuitbreaker.NewBuilder[R]().
		WithFailureThresholdRatio(cfg.Failures, cfg.Window).
		WithDelay(cfg.Delay).
		WithSuccessThreshold(cfg.Successes)
	if isFailure != nil {
		b = b.HandleIf(isFailure)
	}
	if cfg.Logger != nil || cfg.OnStateChange != nil {
		b = b.OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			from, to := convertState(e.OldState), convertState(e.NewState)
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logging.Fields{
					"circuit_breaker": cfg.Name,
					"from_state":      from.String(),
					"to_state":        to.String(),
				}).Warn("Circuit breaker state change")
			}
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(cfg.Name, from, to)
			}
		})
	}
	return b.Build()
}

// RetryConfig configures exponential backoff with jitter
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig retries three times between 100ms and 5s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 5 * time.Second}
}

func (cfg RetryConfig) normalize() RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return cfg
}

func newRetry[R any](cfg RetryConfig, shouldRetry func(R, error) bool) retrypolicy.RetryPolicy[R] {
	cfg = cfg.normalize()
	b := retrypolicy.NewBuilder[R]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1)
	if shouldRetry != nil {
		b = b.HandleIf(shouldRetry)
	}
	return b.Build()
}

// Guard runs side-effecting calls (publishes, deliveries) through retry and
// a circuit breaker. The breaker sits inside the retry so each attempt counts.
type Guard struct {
	name    string
	breaker circuitbreaker.CircuitBreaker[any]
	exec    failsafe.Executor[any]
}

// NewGuard builds a Guard from retry and breaker settings
func NewGuard(retry RetryConfig, breaker BreakerConfig) *Guard {
	cb := newBreaker[any](breaker, nil)
	rp := newRetry[any](retry, nil)
	return &Guard{name: breaker.Name, breaker: cb, exec: failsafe.With[any](rp, cb)}
}

// Run executes fn under the guard. Retries stop when ctx is done.
func (g *Guard) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return g.exec.WithContext(ctx).Run(func() error { return fn(ctx) })
}

// State reports the breaker state
func (g *Guard) State() CircuitBreakerState { return convertState(g.breaker.State()) }

// Name returns the configured breaker name
func (g *Guard) Name() string { return g.name }

// DefaultShouldRetry retries transport errors, 5xx gateway failures and 429
func DefaultShouldRetry(resp *http.Response, err error) bool {
	if err != nil || resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// NewHTTPExecutor combines retry and a breaker that counts errors and 5xx.
//
//nolint:bodyclose // *http.Response is a type parameter here
func NewHTTPExecutor(retry RetryConfig, breaker BreakerConfig) failsafe.Executor[*http.Response] {
	rp := newRetry[*http.Response](retry, DefaultShouldRetry)
	cb := newBreaker[*http.Response](breaker, func(resp *http.Response, err error) bool {
		return err != nil || (resp != nil && resp.StatusCode >= 500)
	})
	return failsafe.With[*http.Response](rp, cb)
}

// ExecuteHTTP runs fn through executor bound to ctx
func ExecuteHTTP(ctx context.Context, executor failsafe.Executor[*http.Response], fn func() (*http.Response, error)) (*http.Response, error) {
	return executor.WithContext(ctx).Get(fn)
}

package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the /health response body
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds each dependency ping.
const DefaultCheckTimeout = 5 * time.Second

// CheckResult is the outcome of one named check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthCheck runs one check. Implementations must honour ctx.
type HealthCheck func(ctx context.Context) CheckResult

// HealthChecker runs named checks concurrently and folds them into one status
type HealthChecker struct {
	service string
	version string

	mu     sync.RWMutex
	checks map[string]HealthCheck
}

// NewHealthChecker creates a checker with no checks registered
func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		service: service,
		version: version,
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck registers (or replaces) a named check
func (hc *HealthChecker) AddCheck(name string, check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// CheckHealth runs every check. Any unhealthy (or unknown) result makes the
// service unhealthy; otherwise any degraded result makes it degraded.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	checks := make(map[string]HealthCheck, len(hc.checks))
	for k, v := range hc.checks {
		checks[k] = v
	}
	hc.mu.RUnlock()

	status := HealthStatus{
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: time.Now().Unix(),
		Checks:    make(map[string]CheckResult, len(checks)),
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		bad bool
		deg bool
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheck) {
			defer wg.Done()
			result := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			status.Checks[name] = result
			switch result.Status {
			case StatusHealthy:
			case StatusDegraded:
				deg = true
			default:
				bad = true
			}
		}(name, check)
	}
	wg.Wait()

	switch {
	case bad:
		status.Status = StatusUnhealthy
	case deg:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}
	return status
}

// Handler serves CheckHealth; unhealthy maps to 503
func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := hc.CheckHealth(c.Request.Context())
		code := http.StatusOK
		if health.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, health)
	}
}

// PingCheck adapts any dependency ping into a HealthCheck. A nil ping is
// reported unhealthy.
func PingCheck(component string, ping func(ctx context.Context) error) HealthCheck {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		if ping == nil {
			return CheckResult{Status: StatusUnhealthy, Message: component + " connection is nil"}
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
		defer cancel()

		err := ping(ctx)
		latency := time.Since(start).String()
		if err != nil {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s ping failed: %v", component, err),
				Latency: latency,
			}
		}
		return CheckResult{Status: StatusHealthy, Message: component + " reachable", Latency: latency}
	}
}

// OptionalPingCheck is PingCheck, but a failure only degrades the service.
// Used for side channels (notification fan-out) the core can run without.
func OptionalPingCheck(component string, ping func(ctx context.Context) error) HealthCheck {
	inner := PingCheck(component, ping)
	return func(ctx context.Context) CheckResult {
		res := inner(ctx)
		if res.Status == StatusUnhealthy {
			res.Status = StatusDegraded
		}
		return res
	}
}

// HTTPServiceHealthCheck probes a dependency's HTTP health URL
func HTTPServiceHealthCheck(serviceName, url string) HealthCheck {
	client := &http.Client{Timeout: DefaultCheckTimeout}
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("%s health url invalid: %v", serviceName, err)}
		}
		resp, err := client.Do(req)
		latency := time.Since(start).String()
		if err != nil {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%s service unreachable: %v", serviceName, err),
				Latency: latency,
			}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%s service returned %d", serviceName, resp.StatusCode),
				Latency: latency,
			}
		}
		return CheckResult{Status: StatusHealthy, Message: serviceName + " service responding", Latency: latency}
	}
}

// ConfigurationHealthCheck reports required settings that are empty
func ConfigurationHealthCheck(configs map[string]string) HealthCheck {
	return func(context.Context) CheckResult {
		var missing []string
		for key, value := range configs {
			if strings.TrimSpace(value) == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: "missing required configuration: " + strings.Join(missing, ", "),
			}
		}
		return CheckResult{Status: StatusHealthy, Message: "all required configuration present"}
	}
}

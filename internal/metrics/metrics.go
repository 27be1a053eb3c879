// Package metrics registers the service's Prometheus series and adapts
// them to the observation hooks of the service, rollup, cache, notify and
// ingest packages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/ingest"
	"github.com/ganeshsabale-99/DMP-Project/internal/notify"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/internal/service"
	"github.com/ganeshsabale-99/DMP-Project/pkg/cache"
	"github.com/ganeshsabale-99/DMP-Project/pkg/monitoring"
)

// Metrics is safe to use as a nil pointer; every method then does nothing
type Metrics struct {
	Operations        *prometheus.CounterVec
	AnalyticsQueries  *prometheus.CounterVec
	AnalyticsDuration *prometheus.HistogramVec
	Notifications     *prometheus.CounterVec
	CacheRequests     *prometheus.CounterVec
	ContactMessages   *prometheus.CounterVec
	Ingest            *ingest.Metrics
}

func New(mc *monitoring.MetricsCollector) *Metrics {
	return &Metrics{
		Operations:        mc.NewCounter("operations_total", "Lifecycle and read operations by outcome", []string{"entity", "operation", "outcome"}),
		AnalyticsQueries:  mc.NewCounter("analytics_queries_total", "Uncached analytics aggregates", []string{"kind", "status"}),
		AnalyticsDuration: mc.NewHistogram("analytics_query_duration_seconds", "Analytics aggregate latency", []string{"kind"}, nil),
		Notifications:     mc.NewCounter("notifications_total", "Notification deliveries", []string{"backend", "type", "status"}),
		CacheRequests:     mc.NewCounter("analytics_cache_requests_total", "Rollup cache lookups", []string{"result"}),
		ContactMessages:   mc.NewCounter("contact_messages_total", "Public contact form submissions", []string{"status"}),
		Ingest: &ingest.Metrics{
			Messages: mc.NewCounter("ingest_messages_total", "Kafka analytics records by outcome", []string{"status"}),
			Events:   mc.NewCounter("ingest_events_total", "Analytics events ingested from Kafka", []string{"platform"}),
			Duration: mc.NewHistogram("ingest_duration_seconds", "Kafka analytics record handling time", []string{"status"}, nil),
		},
	}
}

// ServiceHooks counts every operation outcome
func (m *Metrics) ServiceHooks() service.Hooks {
	if m == nil {
		return service.Hooks{}
	}
	return service.Hooks{
		OnOperation: func(entity string, op policy.Operation, outcome string) {
			m.Operations.WithLabelValues(entity, string(op), outcome).Inc()
		},
	}
}

// ObserveQuery matches rollup.Options.OnQuery
func (m *Metrics) ObserveQuery(kind string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = domain.Kind(err)
	}
	m.AnalyticsQueries.WithLabelValues(kind, status).Inc()
	m.AnalyticsDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) CacheHooks() cache.MetricsHooks {
	if m == nil {
		return cache.MetricsHooks{}
	}
	inc := func(result string) func(string) {
		return func(string) { m.CacheRequests.WithLabelValues(result).Inc() }
	}
	return cache.MetricsHooks{
		OnHit:   inc("hit"),
		OnMiss:  inc("miss"),
		OnStale: inc("stale"),
		OnError: inc("error"),
	}
}

func (m *Metrics) NotifyHooks() notify.Hooks {
	if m == nil {
		return notify.Hooks{}
	}
	return notify.Hooks{
		OnDelivered: func(backend, kind string) { m.Notifications.WithLabelValues(backend, kind, "delivered").Inc() },
		OnFailed:    func(backend, kind string) { m.Notifications.WithLabelValues(backend, kind, "failed").Inc() },
		OnDropped:   func(kind string) { m.Notifications.WithLabelValues("dispatcher", kind, "dropped").Inc() },
	}
}

func (m *Metrics) IngestMetrics() *ingest.Metrics {
	if m == nil {
		return nil
	}
	return m.Ingest
}

func (m *Metrics) IncContact(status string) {
	if m == nil || m.ContactMessages == nil {
		return
	}
	m.ContactMessages.WithLabelValues(status).Inc()
}

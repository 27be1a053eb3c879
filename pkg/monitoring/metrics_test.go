package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareCountsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mc := NewMetricsCollector("svc-a", "v1", "abc")

	r := gin.New()
	r.Use(mc.MetricsMiddleware())
	r.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", mc.Handler())

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/posts/"+id, nil)
		r.ServeHTTP(w, req)
	}

	got := testutil.ToFloat64(mc.httpRequestsTotal.WithLabelValues(http.MethodGet, "/posts/:id", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "svc_a_service_info") {
		t.Fatalf("expected service info in exposition output")
	}
}

func TestCollectorsAreIsolated(t *testing.T) {
	a := NewMetricsCollector("svc", "v1", "a")
	b := NewMetricsCollector("svc", "v1", "b")
	a.NewCounter("things_total", "things", []string{"kind"}).WithLabelValues("x").Inc()
	c := b.NewCounter("things_total", "things", []string{"kind"})
	if testutil.ToFloat64(c.WithLabelValues("x")) != 0 {
		t.Fatalf("expected separate registries")
	}
}

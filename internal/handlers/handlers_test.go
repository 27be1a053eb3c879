package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/notify"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/internal/service"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/memory"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/testutil"
	"github.com/ganeshsabale-99/DMP-Project/pkg/turnstile"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type contactCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *contactCounter) IncContact(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[status]++
}

func (c *contactCounter) get(status string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[status]
}

type fakeTurnstile struct {
	resp *turnstile.VerifyResponse
	err  error
}

func (f fakeTurnstile) Enabled() bool { return true }

func (f fakeTurnstile) Verify(context.Context, string, string) (*turnstile.VerifyResponse, error) {
	return f.resp, f.err
}

type harness struct {
	router  *gin.Engine
	store   *memory.Store
	jwt     *testutil.JWTTestHelper
	metrics *contactCounter
}

func newHarness(t *testing.T, configure ...func(*Config)) *harness {
	t.Helper()
	logger := logging.NewLogger()
	logger.SetOutput(io.Discard)

	st := memory.New()
	svc := service.New(service.Config{
		Store:  st,
		Rollup: rollup.New(st, st, st, rollup.Options{}),
		Logger: logger,
	})
	counter := &contactCounter{}
	cfg := Config{Service: svc, Metrics: counter, Logger: logger, RequestTimeout: 5 * time.Second}
	for _, fn := range configure {
		fn(&cfg)
	}

	jwt := testutil.NewJWTTestHelper()
	r := gin.New()
	New(cfg).Register(r, jwt.Middleware())
	return &harness{router: r, store: st, jwt: jwt, metrics: counter}
}

// do sends a JSON request as principal id with role; an empty role sends no token
func (h *harness) do(t *testing.T, method, path string, body any, id string, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", h.jwt.Bearer(t, id, string(role)))
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestPostWorkflowOverHTTP(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/posts", map[string]any{
		"title": "Launch", "content": "We are live", "platform": "instagram",
	}, "u-creator", domain.RoleContentCreator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[domain.Post](t, w)
	assert.Equal(t, domain.PostDraft, post.Status)
	assert.Equal(t, domain.PlatformInstagram, post.Platform)
	base := "/api/v1/posts/" + post.ID

	w = h.do(t, http.MethodPost, base+"/submit", nil, "u-creator", domain.RoleContentCreator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.PostPendingApproval, decode[domain.Post](t, w).Status)

	w = h.do(t, http.MethodPost, base+"/approve", nil, "u-creator", domain.RoleContentCreator)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodPost, base+"/approve", nil, "u-head", domain.RoleMarketingHead)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decode[domain.Post](t, w)
	assert.Equal(t, domain.PostScheduled, approved.Status)
	assert.Equal(t, "u-head", approved.ApprovedBy)

	w = h.do(t, http.MethodPost, base+"/approve", nil, "u-head", domain.RoleMarketingHead)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodPost, base+"/publish", nil, "u-manager", domain.RoleMarketingManager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	published := decode[domain.Post](t, w)
	assert.Equal(t, domain.PostPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	w = h.do(t, http.MethodPatch, base, map[string]any{"title": "Changed"}, "u-creator", domain.RoleContentCreator)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "immutable", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodGet, "/api/v1/posts?status=published", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []domain.Post `json:"items"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

func TestRequiresAuthentication(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/posts", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.Header.Set("Authorization", "Bearer "+h.jwt.ExpiredToken(t, "u-1", "admin"))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/v1/posts", nil, "u-1", domain.Role("intern"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListRejectsBadQuery(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/posts?sort=title", nil, "u-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/posts?platform=myspace", nil, "u-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/leads?minScore=high", nil, "u-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadEndpoints(t *testing.T) {
	h := newHarness(t)
	newLead := map[string]any{"email": "Jane@Example.com", "firstName": "Jane", "source": "WEBSITE"}

	w := h.do(t, http.MethodPost, "/api/v1/leads", newLead, "u-sales", domain.RoleSalesRep)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lead := decode[domain.Lead](t, w)
	assert.Equal(t, "jane@example.com", lead.Email)
	base := "/api/v1/leads/" + lead.ID

	w = h.do(t, http.MethodPost, "/api/v1/leads", newLead, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_email", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodPut, base+"/score", map[string]any{"score": 150}, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "out_of_range", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodPut, base+"/score", map[string]any{}, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, base+"/score", map[string]any{"score": 80}, "u-sales", domain.RoleSalesRep)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 80, decode[domain.Lead](t, w).Score)

	w = h.do(t, http.MethodPost, base+"/activities", map[string]any{"type": "CALL", "description": "Intro call"}, "u-sales", domain.RoleSalesRep)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	called := decode[domain.Lead](t, w)
	assert.Len(t, called.Activities, 1)
	assert.NotNil(t, called.LastContactedAt)

	w = h.do(t, http.MethodPut, base+"/status", map[string]any{"status": "bogus"}, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/leads?minScore=50", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), lead.ID)

	w = h.do(t, http.MethodDelete, base, nil, "u-other", domain.RoleSalesRep)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodDelete, base, nil, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, base, nil, "u-sales", domain.RoleSalesRep)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignMembership(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/campaigns", map[string]any{
		"name": "Spring", "type": "SOCIAL_MEDIA", "budget": 1000, "startDate": "2025-03-01T00:00:00Z",
	}, "u-manager", domain.RoleMarketingManager)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaign := decode[domain.Campaign](t, w)
	base := "/api/v1/campaigns/" + campaign.ID

	w = h.do(t, http.MethodPost, base+"/posts", map[string]any{"postId": "missing"}, "u-manager", domain.RoleMarketingManager)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/posts", map[string]any{
		"title": "Teaser", "content": "Soon", "platform": "TWITTER",
	}, "u-manager", domain.RoleMarketingManager)
	require.Equal(t, http.StatusCreated, w.Code)
	post := decode[domain.Post](t, w)

	w = h.do(t, http.MethodPost, base+"/posts", map[string]any{"postId": post.ID}, "u-manager", domain.RoleMarketingManager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{post.ID}, decode[domain.Campaign](t, w).PostIDs)

	w = h.do(t, http.MethodPost, base+"/posts", map[string]any{"postId": post.ID}, "u-manager", domain.RoleMarketingManager)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_member", decode[errorBody](t, w).Code)

	w = h.do(t, http.MethodPut, base+"/metrics", map[string]any{"impressions": 500, "ctr": 2.456, "bogus": 1}, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(500), decode[domain.Campaign](t, w).PerformanceMetrics.Impressions)

	w = h.do(t, http.MethodGet, base+"/performance", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	perf := decode[performanceView](t, w)
	assert.Equal(t, 1, perf.Posts)
	assert.Equal(t, 2.46, perf.Snapshot.CTR)
	assert.Equal(t, 1000.0, perf.Budget)

	w = h.do(t, http.MethodDelete, base+"/posts/"+post.ID, nil, "u-manager", domain.RoleMarketingManager)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[domain.Campaign](t, w).PostIDs)
}

func TestSubmitMessageIsPublic(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/messages", map[string]any{
		"name": "Ada Lovelace", "email": "ada@example.com", "subject": "Pricing", "body": "Hello",
	}, "", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, h.metrics.get("success"))

	lead, err := h.store.GetLeadByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceWebsite, lead.Source)

	w = h.do(t, http.MethodGet, "/api/v1/messages", nil, "u-sales", domain.RoleSalesRep)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []domain.Message `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, lead.ID, page.Items[0].LeadID)

	w = h.do(t, http.MethodPut, "/api/v1/messages/"+page.Items[0].ID+"/status", map[string]any{"status": "READ"}, "u-sales", domain.RoleSalesRep)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.MessageRead, decode[domain.Message](t, w).Status)

	w = h.do(t, http.MethodGet, "/api/v1/messages", nil, "u-creator", domain.RoleContentCreator)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitMessageValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/messages", map[string]any{"name": "Ada", "email": "not-an-email", "body": "Hi"}, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, h.metrics.get("validation_failed"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, h.metrics.get("bad_request"))
}

func TestSubmitMessageTurnstile(t *testing.T) {
	msg := map[string]any{"name": "Ada", "email": "ada@example.com", "body": "Hi", "turnstileToken": "tok"}

	t.Run("rejected", func(t *testing.T) {
		h := newHarness(t, func(c *Config) {
			c.Turnstile = fakeTurnstile{resp: &turnstile.VerifyResponse{Success: false, ErrorCodes: []string{"invalid-input-response"}}}
		})
		w := h.do(t, http.MethodPost, "/api/v1/messages", msg, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1, h.metrics.get("turnstile_failed"))
	})

	t.Run("verifier down", func(t *testing.T) {
		h := newHarness(t, func(c *Config) {
			c.Turnstile = fakeTurnstile{err: errors.New("connection refused")}
		})
		w := h.do(t, http.MethodPost, "/api/v1/messages", msg, "", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 1, h.metrics.get("turnstile_error"))
	})

	t.Run("accepted", func(t *testing.T) {
		h := newHarness(t, func(c *Config) {
			c.Turnstile = fakeTurnstile{resp: &turnstile.VerifyResponse{Success: true}}
		})
		w := h.do(t, http.MethodPost, "/api/v1/messages", msg, "", "")
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestAnalyticsRendering(t *testing.T) {
	h := newHarness(t)

	events := map[string]any{"events": []map[string]any{
		{"date": "2025-01-05T10:00:00Z", "platform": "INSTAGRAM", "metrics": map[string]any{"impressions": 100, "clicks": 3, "spend": 5}},
		{"date": "2025-01-06T10:00:00Z", "platform": "INSTAGRAM", "metrics": map[string]any{"impressions": 200, "clicks": 6, "spend": 5}},
	}}
	w := h.do(t, http.MethodPost, "/api/v1/analytics/events", events, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/api/v1/analytics/overview", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	o := decode[overviewView](t, w)
	assert.Equal(t, int64(300), o.Totals.Impressions)
	assert.Equal(t, 3.0, o.CTR)
	assert.Equal(t, 1.11, o.CPC)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/timeseries?granularity=daily", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var series struct {
		Series []pointView `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series.Series, 2)
	assert.Equal(t, "2025-01-05", series.Series[0].Key)
	assert.Equal(t, int64(100), series.Series[0].Metrics.Impressions)
	assert.Equal(t, int64(200), series.Series[1].Metrics.Impressions)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/overview?from=2025-01-06&to=2025-01-06", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(200), decode[overviewView](t, w).Totals.Impressions)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/timeseries?granularity=yearly", nil, "u-analyst", domain.RoleAnalyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/overview?from=2025-02-01&to=2025-01-01", nil, "u-analyst", domain.RoleAnalyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/dashboard?granularity=month", nil, "u-analyst", domain.RoleAnalyst)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d := decode[dashboardView](t, w)
	require.Len(t, d.Platforms, 1)
	assert.Equal(t, domain.PlatformInstagram, d.Platforms[0].Platform)
	assert.Len(t, d.Series, 1)

	w = h.do(t, http.MethodPost, "/api/v1/analytics/events", map[string]any{"events": []map[string]any{
		{"date": "2025-01-07T10:00:00Z", "platform": "INSTAGRAM", "metrics": map[string]any{"impressions": -1}},
	}}, "u-analyst", domain.RoleAnalyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/analytics/events", events, "u-creator", domain.RoleContentCreator)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTopPostsLimit(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/v1/analytics/top-posts?limit=0", nil, "u-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/analytics/top-posts", nil, "u-1", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())
}

func TestSuggestionsUnavailable(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodPost, "/api/v1/content/suggestions", map[string]any{"topic": "launch", "platform": "TWITTER"}, "u-creator", domain.RoleContentCreator)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode[errorBody](t, w).Code)
}

func TestNotificationsDisabled(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/v1/notifications/ws", nil, "u-head", domain.RoleMarketingHead)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNotificationsWebSocket(t *testing.T) {
	logger := logging.NewLogger()
	logger.SetOutput(io.Discard)
	hub := notify.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	h := newHarness(t, func(c *Config) { c.Hub = hub })
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)

	_, status, err := testutil.DialWSResponse(srv, "/api/v1/notifications/ws", h.jwt.Token(t, "u-creator", "content_creator"),
		url.Values{"channel": {domain.UserChannel("u-other")}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)

	_, status, err = testutil.DialWSResponse(srv, "/api/v1/notifications/ws", "", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	conn := testutil.DialWS(t, srv, "/api/v1/notifications/ws", h.jwt.Token(t, "u-head", "marketing_head"), nil)
	require.Eventually(t, func() bool {
		return hub.Stats()["total_clients"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	sent := domain.Notification{
		Channel: domain.ChannelMarketingHead,
		Type:    domain.NotifyPostSubmitted,
		Payload: map[string]any{"postId": "p-1"},
	}
	require.NoError(t, hub.Notify(ctx, sent))

	var got domain.Notification
	testutil.ReadJSON(t, conn, &got, 2*time.Second)
	assert.Equal(t, domain.NotifyPostSubmitted, got.Type)
	assert.Equal(t, "p-1", got.Payload["postId"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrOutOfRange, http.StatusBadRequest},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrImmutable, http.StatusConflict},
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{domain.ErrAlreadyMember, http.StatusConflict},
		{domain.ErrStaleVersion, http.StatusConflict},
		{domain.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestRenderRounding(t *testing.T) {
	assert.Equal(t, 33.33, percent(1.0/3))
	assert.Equal(t, 0.0, percent(0))
	assert.Equal(t, 12.35, money(12.345))
	assert.Equal(t, 100.0, percent(1))
}

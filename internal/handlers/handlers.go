// Package handlers exposes the lighthouse service over HTTP/JSON.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/service"
	"github.com/ganeshsabale-99/DMP-Project/pkg/ctxkeys"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/middleware"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

type Config struct {
	Service *service.Service
	// Hub serves the live notification feed; nil disables the endpoint
	Hub       NotificationHub
	Turnstile TurnstileVerifier
	Metrics   ContactMetrics
	Logger    logging.Logger
	// RequestTimeout bounds every request except the WebSocket upgrade
	RequestTimeout time.Duration
}

type Handler struct {
	svc       *service.Service
	hub       NotificationHub
	turnstile TurnstileVerifier
	metrics   ContactMetrics
	logger    logging.Logger
	timeout   time.Duration
}

func New(cfg Config) *Handler {
	h := &Handler{
		svc:       cfg.Service,
		hub:       cfg.Hub,
		turnstile: cfg.Turnstile,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		timeout:   cfg.RequestTimeout,
	}
	if h.metrics == nil {
		h.metrics = noopMetrics{}
	}
	if h.logger == nil {
		h.logger = logging.NewLoggerWithService("lighthouse")
	}
	return h
}

// Register mounts the API under /api/v1. auth must accept the token from
// the query string as well so browsers can open the WebSocket.
func (h *Handler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	api := r.Group("/api/v1")
	api.GET("/notifications/ws", auth, h.Notifications)

	if h.timeout > 0 {
		api.Use(middleware.TimeoutMiddleware(h.timeout))
	}
	api.POST("/messages", h.SubmitMessage)

	secured := api.Group("", auth)

	posts := secured.Group("/posts")
	posts.POST("", h.CreatePost)
	posts.GET("", h.ListPosts)
	posts.GET("/:id", h.GetPost)
	posts.PATCH("/:id", h.UpdatePost)
	posts.DELETE("/:id", h.DeletePost)
	posts.POST("/:id/submit", h.SubmitPost)
	posts.POST("/:id/approve", h.ApprovePost)
	posts.POST("/:id/publish", h.PublishPost)
	posts.POST("/:id/fail", h.FailPost)
	posts.POST("/:id/archive", h.ArchivePost)
	posts.POST("/:id/engagement", h.RecordEngagement)
	posts.PUT("/:id/metadata", h.UpdatePostMetadata)

	leads := secured.Group("/leads")
	leads.POST("", h.CreateLead)
	leads.GET("", h.ListLeads)
	leads.GET("/:id", h.GetLead)
	leads.PATCH("/:id", h.UpdateLead)
	leads.DELETE("/:id", h.DeleteLead)
	leads.PUT("/:id/status", h.SetLeadStatus)
	leads.PUT("/:id/score", h.UpdateLeadScore)
	leads.PUT("/:id/assignee", h.AssignLead)
	leads.POST("/:id/activities", h.AddLeadActivity)

	campaigns := secured.Group("/campaigns")
	campaigns.POST("", h.CreateCampaign)
	campaigns.GET("", h.ListCampaigns)
	campaigns.GET("/:id", h.GetCampaign)
	campaigns.PATCH("/:id", h.UpdateCampaign)
	campaigns.DELETE("/:id", h.DeleteCampaign)
	campaigns.POST("/:id/posts", h.AddCampaignPost)
	campaigns.DELETE("/:id/posts/:postId", h.RemoveCampaignPost)
	campaigns.POST("/:id/leads", h.AddCampaignLead)
	campaigns.DELETE("/:id/leads/:leadId", h.RemoveCampaignLead)
	campaigns.PUT("/:id/metrics", h.UpdateCampaignMetrics)
	campaigns.GET("/:id/performance", h.CampaignPerformance)

	messages := secured.Group("/messages")
	messages.GET("", h.ListMessages)
	messages.GET("/:id", h.GetMessage)
	messages.PUT("/:id/status", h.SetMessageStatus)

	analytics := secured.Group("/analytics")
	analytics.POST("/events", h.RecordEvents)
	analytics.GET("/overview", h.Overview)
	analytics.GET("/timeseries", h.TimeSeries)
	analytics.GET("/platforms", h.PlatformBreakdown)
	analytics.GET("/dashboard", h.Dashboard)
	analytics.GET("/top-posts", h.TopPosts)

	secured.POST("/content/suggestions", h.SuggestContent)
}

// principal reads the caller set by the auth middleware. An unknown role
// is left empty so every guarded operation denies it.
func principal(c *gin.Context) domain.Principal {
	role, err := domain.ParseRole(c.GetString(string(ctxkeys.KeyRole)))
	if err != nil {
		role = ""
	}
	return domain.Principal{ID: c.GetString(string(ctxkeys.KeyPrincipalID)), Role: role}
}

func (h *Handler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return false
	}
	return true
}

func (h *Handler) page(c *gin.Context, sortFields []string) (pagination.Params, bool) {
	p, err := pagination.Parse(c.Query("skip"), c.Query("limit"), c.Query("sort"), sortFields...)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return pagination.Params{}, false
	}
	return p, true
}

// enumQuery parses an optional enum query parameter
func enumQuery[T ~string](c *gin.Context, key string, parse func(string) (T, error)) (T, error) {
	raw := c.Query(key)
	if raw == "" {
		var zero T
		return zero, nil
	}
	return parse(raw)
}

func (h *Handler) respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, v)
}

func listJSON[T any](h *Handler, c *gin.Context, items []T, total int, p pagination.Params, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(items, total, p))
}

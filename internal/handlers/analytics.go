package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/internal/suggest"
)

const dateOnly = "2006-01-02"

// parseTime accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseTime(raw string, end bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, raw)
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func eventFilter(c *gin.Context) (domain.EventFilter, error) {
	from, err := parseTime(c.Query("from"), false)
	if err != nil {
		return domain.EventFilter{}, err
	}
	to, err := parseTime(c.Query("to"), true)
	if err != nil {
		return domain.EventFilter{}, err
	}
	platform, err := enumQuery(c, "platform", domain.ParsePlatform)
	if err != nil {
		return domain.EventFilter{}, err
	}
	f := domain.EventFilter{
		From:       from,
		To:         to,
		Platform:   platform,
		CampaignID: c.Query("campaignId"),
		PostID:     c.Query("postId"),
	}
	return f, f.Validate()
}

func (h *Handler) RecordEvents(c *gin.Context) {
	var req struct {
		Events []domain.AnalyticsEvent `json:"events"`
	}
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.RecordEvents(c.Request.Context(), principal(c), req.Events)
	h.respond(c, http.StatusCreated, gin.H{"events": out, "count": len(out)}, err)
}

func (h *Handler) Overview(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	o, err := h.svc.Overview(c.Request.Context(), principal(c), f)
	h.respond(c, http.StatusOK, renderOverview(o), err)
}

func (h *Handler) TimeSeries(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	g, err := domain.ParseGranularity(c.Query("granularity"))
	if err != nil {
		h.fail(c, err)
		return
	}
	points, err := h.svc.TimeSeries(c.Request.Context(), principal(c), f, g)
	h.respond(c, http.StatusOK, gin.H{"granularity": g, "series": renderSeries(points)}, err)
}

func (h *Handler) PlatformBreakdown(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.svc.PlatformBreakdown(c.Request.Context(), principal(c), f)
	h.respond(c, http.StatusOK, gin.H{"platforms": renderPlatforms(stats)}, err)
}

func (h *Handler) Dashboard(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	g, err := domain.ParseGranularity(c.Query("granularity"))
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), principal(c), f, g)
	h.respond(c, http.StatusOK, renderDashboard(d), err)
}

func (h *Handler) TopPosts(c *gin.Context) {
	limit := rollup.DefaultTopPosts
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = min(n, rollup.MaxTopPosts)
	}
	posts, err := h.svc.TopPosts(c.Request.Context(), principal(c), limit)
	if posts == nil {
		posts = []domain.Post{}
	}
	h.respond(c, http.StatusOK, gin.H{"posts": posts}, err)
}

func (h *Handler) SuggestContent(c *gin.Context) {
	var req suggest.Request
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.SuggestContent(c.Request.Context(), principal(c), req)
	h.respond(c, http.StatusOK, out, err)
}

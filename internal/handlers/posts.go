package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
)

func (h *Handler) CreatePost(c *gin.Context) {
	var req domain.NewPost
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.CreatePost(c.Request.Context(), principal(c), req)
	h.respond(c, http.StatusCreated, p, err)
}

func (h *Handler) ListPosts(c *gin.Context) {
	page, ok := h.page(c, store.PostSortFields)
	if !ok {
		return
	}
	status, err := enumQuery(c, "status", domain.ParsePostStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	platform, err := enumQuery(c, "platform", domain.ParsePlatform)
	if err != nil {
		h.fail(c, err)
		return
	}
	f := domain.PostFilter{
		Status:     status,
		Platform:   platform,
		CreatedBy:  c.Query("createdBy"),
		CampaignID: c.Query("campaignId"),
	}
	items, total, err := h.svc.ListPosts(c.Request.Context(), principal(c), f, page)
	listJSON(h, c, items, total, page, err)
}

func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.svc.GetPost(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	var patch domain.PostPatch
	if !h.bind(c, &patch) {
		return
	}
	p, err := h.svc.UpdatePost(c.Request.Context(), principal(c), c.Param("id"), patch)
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubmitPost(c *gin.Context) {
	p, err := h.svc.SubmitPost(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) ApprovePost(c *gin.Context) {
	p, err := h.svc.ApprovePost(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) PublishPost(c *gin.Context) {
	p, err := h.svc.PublishPost(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) FailPost(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.FailPost(c.Request.Context(), principal(c), c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) ArchivePost(c *gin.Context) {
	p, err := h.svc.ArchivePost(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, p, err)
}

// RecordEngagement adds the given deltas to the post's counters
func (h *Handler) RecordEngagement(c *gin.Context) {
	var delta domain.Engagement
	if !h.bind(c, &delta) {
		return
	}
	p, err := h.svc.RecordEngagement(c.Request.Context(), principal(c), c.Param("id"), delta)
	h.respond(c, http.StatusOK, p, err)
}

func (h *Handler) UpdatePostMetadata(c *gin.Context) {
	var m domain.PostMetadata
	if !h.bind(c, &m) {
		return
	}
	p, err := h.svc.UpdatePostMetadata(c.Request.Context(), principal(c), c.Param("id"), m)
	h.respond(c, http.StatusOK, p, err)
}

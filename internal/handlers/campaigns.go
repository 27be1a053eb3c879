package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
)

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req domain.NewCampaign
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.CreateCampaign(c.Request.Context(), principal(c), req)
	h.respond(c, http.StatusCreated, out, err)
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	page, ok := h.page(c, store.CampaignSortFields)
	if !ok {
		return
	}
	status, err := enumQuery(c, "status", domain.ParseCampaignStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	typ, err := enumQuery(c, "type", domain.ParseCampaignType)
	if err != nil {
		h.fail(c, err)
		return
	}
	f := domain.CampaignFilter{Status: status, Type: typ, CreatedBy: c.Query("createdBy")}
	items, total, err := h.svc.ListCampaigns(c.Request.Context(), principal(c), f, page)
	listJSON(h, c, items, total, page, err)
}

func (h *Handler) GetCampaign(c *gin.Context) {
	out, err := h.svc.GetCampaign(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) UpdateCampaign(c *gin.Context) {
	var patch domain.CampaignPatch
	if !h.bind(c, &patch) {
		return
	}
	out, err := h.svc.UpdateCampaign(c.Request.Context(), principal(c), c.Param("id"), patch)
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) DeleteCampaign(c *gin.Context) {
	if err := h.svc.DeleteCampaign(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddCampaignPost(c *gin.Context) {
	var req struct {
		PostID string `json:"postId"`
	}
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.AddCampaignPost(c.Request.Context(), principal(c), c.Param("id"), req.PostID)
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) RemoveCampaignPost(c *gin.Context) {
	out, err := h.svc.RemoveCampaignPost(c.Request.Context(), principal(c), c.Param("id"), c.Param("postId"))
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) AddCampaignLead(c *gin.Context) {
	var req struct {
		LeadID string `json:"leadId"`
	}
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.AddCampaignLead(c.Request.Context(), principal(c), c.Param("id"), req.LeadID)
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) RemoveCampaignLead(c *gin.Context) {
	out, err := h.svc.RemoveCampaignLead(c.Request.Context(), principal(c), c.Param("id"), c.Param("leadId"))
	h.respond(c, http.StatusOK, out, err)
}

// UpdateCampaignMetrics merges a partial performance snapshot. Unknown keys
// are ignored.
func (h *Handler) UpdateCampaignMetrics(c *gin.Context) {
	var partial map[string]any
	if !h.bind(c, &partial) {
		return
	}
	out, err := h.svc.UpdateCampaignMetrics(c.Request.Context(), principal(c), c.Param("id"), partial)
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) CampaignPerformance(c *gin.Context) {
	perf, err := h.svc.CampaignPerformance(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, renderPerformance(perf))
}

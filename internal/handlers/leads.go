package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/lifecycle"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
)

func (h *Handler) CreateLead(c *gin.Context) {
	var req domain.NewLead
	if !h.bind(c, &req) {
		return
	}
	l, err := h.svc.CreateLead(c.Request.Context(), principal(c), req)
	h.respond(c, http.StatusCreated, l, err)
}

func (h *Handler) ListLeads(c *gin.Context) {
	page, ok := h.page(c, store.LeadSortFields)
	if !ok {
		return
	}
	f, err := leadFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.ListLeads(c.Request.Context(), principal(c), f, page)
	listJSON(h, c, items, total, page, err)
}

func leadFilter(c *gin.Context) (domain.LeadFilter, error) {
	status, err := enumQuery(c, "status", domain.ParseLeadStatus)
	if err != nil {
		return domain.LeadFilter{}, err
	}
	source, err := enumQuery(c, "source", domain.ParseLeadSource)
	if err != nil {
		return domain.LeadFilter{}, err
	}
	f := domain.LeadFilter{
		Status:     status,
		Source:     source,
		AssignedTo: c.Query("assignedTo"),
		Email:      domain.NormalizeEmail(c.Query("email")),
	}
	if raw := c.Query("minScore"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.LeadFilter{}, fmt.Errorf("%w: minScore must be an integer", domain.ErrInvalidInput)
		}
		f.MinScore = &n
	}
	return f, nil
}

func (h *Handler) GetLead(c *gin.Context) {
	l, err := h.svc.GetLead(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, l, err)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	var patch domain.LeadPatch
	if !h.bind(c, &patch) {
		return
	}
	l, err := h.svc.UpdateLead(c.Request.Context(), principal(c), c.Param("id"), patch)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	if err := h.svc.DeleteLead(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetLeadStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if !h.bind(c, &req) {
		return
	}
	status, err := domain.ParseLeadStatus(req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	l, err := h.svc.SetLeadStatus(c.Request.Context(), principal(c), c.Param("id"), status)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Handler) UpdateLeadScore(c *gin.Context) {
	var req struct {
		Score *int `json:"score"`
	}
	if !h.bind(c, &req) {
		return
	}
	if req.Score == nil {
		h.fail(c, fmt.Errorf("%w: score is required", domain.ErrInvalidInput))
		return
	}
	l, err := h.svc.UpdateLeadScore(c.Request.Context(), principal(c), c.Param("id"), *req.Score)
	h.respond(c, http.StatusOK, l, err)
}

// AssignLead sets the owner; an empty userId unassigns the lead
func (h *Handler) AssignLead(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !h.bind(c, &req) {
		return
	}
	l, err := h.svc.AssignLead(c.Request.Context(), principal(c), c.Param("id"), req.UserID)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Handler) AddLeadActivity(c *gin.Context) {
	var req lifecycle.NewActivity
	if !h.bind(c, &req) {
		return
	}
	l, err := h.svc.AddLeadActivity(c.Request.Context(), principal(c), c.Param("id"), req)
	h.respond(c, http.StatusCreated, l, err)
}

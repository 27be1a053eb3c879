package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

type contactRequest struct {
	domain.NewMessage
	TurnstileToken string `json:"turnstileToken"`
}

// SubmitMessage is the public contact form. It is the only unauthenticated
// write and is gated by Turnstile when a secret is configured.
func (h *Handler) SubmitMessage(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncContact("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "code": domain.Kind(domain.ErrInvalidInput)})
		return
	}

	remoteIP := c.ClientIP()
	if h.turnstile != nil && h.turnstile.Enabled() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		verification, err := h.turnstile.Verify(ctx, req.TurnstileToken, remoteIP)
		if err != nil {
			h.metrics.IncContact("turnstile_error")
			h.logger.WithFields(logging.Fields{
				"error": err.Error(),
				"ip":    remoteIP,
			}).Error("Turnstile verification error")
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification service error", "code": "turnstile_error"})
			return
		}
		if !verification.Success {
			h.metrics.IncContact("turnstile_failed")
			h.logger.WithFields(logging.Fields{
				"error_codes": verification.ErrorCodes,
				"ip":          remoteIP,
			}).Warn("Turnstile verification failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "turnstile verification failed", "code": "turnstile_failed"})
			return
		}
	}

	m, err := h.svc.SubmitMessage(c.Request.Context(), req.NewMessage)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.metrics.IncContact("validation_failed")
		} else {
			h.metrics.IncContact("error")
		}
		h.fail(c, err)
		return
	}
	h.metrics.IncContact("success")
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": m.ID})
}

func (h *Handler) ListMessages(c *gin.Context) {
	page, ok := h.page(c, store.MessageSortFields)
	if !ok {
		return
	}
	status, err := enumQuery(c, "status", domain.ParseMessageStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.ListMessages(c.Request.Context(), principal(c), domain.MessageFilter{Status: status}, page)
	listJSON(h, c, items, total, page, err)
}

func (h *Handler) GetMessage(c *gin.Context) {
	m, err := h.svc.GetMessage(c.Request.Context(), principal(c), c.Param("id"))
	h.respond(c, http.StatusOK, m, err)
}

func (h *Handler) SetMessageStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if !h.bind(c, &req) {
		return
	}
	status, err := domain.ParseMessageStatus(req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.svc.SetMessageStatus(c.Request.Context(), principal(c), c.Param("id"), status)
	h.respond(c, http.StatusOK, m, err)
}

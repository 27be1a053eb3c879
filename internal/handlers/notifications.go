package handlers

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

// Notifications upgrades to the live feed. The client joins its default
// channels plus the optional ?channel= it is allowed to read.
func (h *Handler) Notifications(c *gin.Context) {
	if h.hub == nil {
		h.fail(c, fmt.Errorf("%w: live notifications are not enabled", domain.ErrUnavailable))
		return
	}
	pr := principal(c)
	if !h.svc.CanSubscribe(pr, domain.UserChannel(pr.ID)) {
		h.fail(c, fmt.Errorf("%w: cannot subscribe to notifications", domain.ErrForbidden))
		return
	}
	channels := h.svc.DefaultChannels(pr)
	if ch := c.Query("channel"); ch != "" && !slices.Contains(channels, ch) {
		if !h.svc.CanSubscribe(pr, ch) {
			h.fail(c, fmt.Errorf("%w: cannot subscribe to %s", domain.ErrForbidden, ch))
			return
		}
		channels = append(channels, ch)
	}
	h.hub.ServeWS(c.Writer, c.Request, pr.ID, channels, func(ch string) bool {
		return h.svc.CanSubscribe(pr, ch)
	})
}

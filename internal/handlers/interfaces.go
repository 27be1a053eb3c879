package handlers

import (
	"context"
	"net/http"

	"github.com/ganeshsabale-99/DMP-Project/pkg/turnstile"
)

type TurnstileVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) (*turnstile.VerifyResponse, error)
}

type ContactMetrics interface {
	IncContact(status string)
}

type NotificationHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string, channels []string, allow func(string) bool)
}

type noopMetrics struct{}

func (noopMetrics) IncContact(string) {}

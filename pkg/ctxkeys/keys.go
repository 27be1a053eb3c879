// Package ctxkeys defines typed context keys shared by middleware and handlers.
package ctxkeys

import (
	"context"
	"time"
)

// Key is a typed context key to prevent collisions.
type Key string

// Auth context keys
const (
	KeyPrincipalID  Key = "principal_id"
	KeyEmail        Key = "email"
	KeyRole         Key = "role"
	KeyJWTToken     Key = "jwt_token"
	KeyJWTExpiresAt Key = "jwt_expires_at"
	KeyAuthType     Key = "auth_type"
)

// Request context keys
const (
	KeyRequestID    Key = "request_id"
	KeyRequestStart Key = "request_start"
)

func str(ctx context.Context, k Key) string {
	if v, ok := ctx.Value(k).(string); ok {
		return v
	}
	return ""
}

// GetPrincipalID extracts the authenticated principal id.
func GetPrincipalID(ctx context.Context) string { return str(ctx, KeyPrincipalID) }

// GetRole extracts the authenticated principal's role.
func GetRole(ctx context.Context) string { return str(ctx, KeyRole) }

// GetEmail extracts the authenticated principal's email.
func GetEmail(ctx context.Context) string { return str(ctx, KeyEmail) }

// GetAuthType returns "jwt" or "service".
func GetAuthType(ctx context.Context) string { return str(ctx, KeyAuthType) }

// GetRequestID extracts the correlation id set by the request-id middleware.
func GetRequestID(ctx context.Context) string { return str(ctx, KeyRequestID) }

// GetJWTExpiresAt returns the expiry of the token that authenticated the request.
func GetJWTExpiresAt(ctx context.Context) (time.Time, bool) {
	v, ok := ctx.Value(KeyJWTExpiresAt).(time.Time)
	return v, ok
}

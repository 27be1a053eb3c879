// Package testutil holds helpers shared by HTTP and WebSocket tests.
package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ganeshsabale-99/DMP-Project/pkg/auth"
)

// TokenQueryParam is where tests pass the token on WebSocket upgrades
const TokenQueryParam = "token"

// JWTTestHelper signs tokens with a fixed test secret
type JWTTestHelper struct {
	Secret []byte
}

func NewJWTTestHelper() *JWTTestHelper {
	return &JWTTestHelper{Secret: []byte("test-secret-for-unit-tests")}
}

// Middleware is the production auth middleware keyed to the test secret
func (h *JWTTestHelper) Middleware(opts ...auth.Option) gin.HandlerFunc {
	opts = append([]auth.Option{auth.WithQueryToken(TokenQueryParam)}, opts...)
	return auth.JWTAuthMiddleware(h.Secret, opts...)
}

// Token signs a valid token for principalID with role
func (h *JWTTestHelper) Token(t testing.TB, principalID, role string) string {
	t.Helper()
	tok, err := auth.GenerateJWT(principalID, principalID+"@example.com", role, h.Secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// Bearer returns an Authorization header value
func (h *JWTTestHelper) Bearer(t testing.TB, principalID, role string) string {
	t.Helper()
	return "Bearer " + h.Token(t, principalID, role)
}

// ExpiredToken signs a token that expired an hour ago
func (h *JWTTestHelper) ExpiredToken(t testing.TB, principalID, role string) string {
	t.Helper()
	claims := &auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	return tok
}

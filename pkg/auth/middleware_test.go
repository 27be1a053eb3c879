package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/pkg/ctxkeys"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r *gin.Engine, target, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	secret := []byte("secret")
	token, err := GenerateJWT("u1", "u@example.com", "marketing_head", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	r := gin.New()
	r.Use(JWTAuthMiddleware(secret))
	r.GET("/ok", func(c *gin.Context) {
		if c.GetString(string(ctxkeys.KeyPrincipalID)) != "u1" || c.GetString(string(ctxkeys.KeyRole)) != "marketing_head" {
			t.Errorf("claims not set")
		}
		if c.GetString(string(ctxkeys.KeyAuthType)) != "jwt" {
			t.Errorf("expected jwt auth type")
		}
		c.String(http.StatusOK, "ok")
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doRequest(r, "/ok", tc.header); w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestJWTAuthMiddleware_ServiceToken(t *testing.T) {
	r := gin.New()
	r.Use(JWTAuthMiddleware([]byte("secret"), WithServiceToken("svc-token", "analyst")))
	r.GET("/ok", func(c *gin.Context) {
		if c.GetString(string(ctxkeys.KeyPrincipalID)) != ServicePrincipalID {
			t.Errorf("expected service principal")
		}
		if c.GetString(string(ctxkeys.KeyRole)) != "analyst" {
			t.Errorf("expected configured service role")
		}
		c.String(http.StatusOK, "ok")
	})

	if w := doRequest(r, "/ok", "Bearer svc-token"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := doRequest(r, "/ok", "Bearer other"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	secret := []byte("secret")
	token, _ := GenerateJWT("u2", "", "analyst", secret, time.Hour)

	withQuery := gin.New()
	withQuery.Use(JWTAuthMiddleware(secret, WithQueryToken("token")))
	withQuery.GET("/ws", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if w := doRequest(withQuery, "/ws?token="+token, ""); w.Code != http.StatusOK {
		t.Fatalf("expected query token to authenticate, got %d", w.Code)
	}

	headerOnly := gin.New()
	headerOnly.Use(JWTAuthMiddleware(secret))
	headerOnly.GET("/ws", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if w := doRequest(headerOnly, "/ws?token="+token, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected query token to be ignored without option, got %d", w.Code)
	}
}

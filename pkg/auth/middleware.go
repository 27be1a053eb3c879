package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ganeshsabale-99/DMP-Project/pkg/ctxkeys"
)

type middlewareConfig struct {
	serviceToken string
	serviceRole  string
	queryParam   string
}

// Option configures JWTAuthMiddleware.
type Option func(*middlewareConfig)

// WithServiceToken accepts the shared service token as a bearer token and
// authenticates the caller as ServicePrincipalID with the given role.
func WithServiceToken(token, role string) Option {
	return func(cfg *middlewareConfig) {
		cfg.serviceToken = token
		cfg.serviceRole = role
	}
}

// WithQueryToken also reads the token from the named query parameter.
// Browsers cannot set headers on WebSocket upgrades.
func WithQueryToken(param string) Option {
	return func(cfg *middlewareConfig) {
		cfg.queryParam = param
	}
}

func bearerToken(c *gin.Context, queryParam string) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if queryParam != "" {
			if tok := c.Query(queryParam); tok != "" {
				return tok, true
			}
		}
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthenticated"})
}

// JWTAuthMiddleware authenticates the request and stores principal id, role
// and email under the ctxkeys names in the gin context.
func JWTAuthMiddleware(secret []byte, opts ...Option) gin.HandlerFunc {
	var cfg middlewareConfig
	for _, o := range opts {
		o(&cfg)
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c, cfg.queryParam)
		if !ok {
			unauthorized(c, "missing or malformed authorization header")
			return
		}

		if cfg.serviceToken != "" && ValidateServiceToken(token, cfg.serviceToken) == nil {
			c.Set(string(ctxkeys.KeyPrincipalID), ServicePrincipalID)
			c.Set(string(ctxkeys.KeyRole), cfg.serviceRole)
			c.Set(string(ctxkeys.KeyAuthType), "service")
			c.Next()
			return
		}

		claims, err := ValidateJWT(token, secret)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(string(ctxkeys.KeyPrincipalID), claims.PrincipalID())
		c.Set(string(ctxkeys.KeyRole), claims.Role)
		c.Set(string(ctxkeys.KeyEmail), claims.Email)
		c.Set(string(ctxkeys.KeyAuthType), "jwt")
		c.Set(string(ctxkeys.KeyJWTToken), token)
		if claims.ExpiresAt != nil {
			c.Set(string(ctxkeys.KeyJWTExpiresAt), claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

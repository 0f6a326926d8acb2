package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the expected JWT payload: registered claims plus the capability
// grants the entitlement checks run against.
type Claims struct {
	jwt.RegisteredClaims
	Capabilities []string `json:"capabilities"`
}

type contextKey string

const capabilitiesKey contextKey = "auth.capabilities"

// WithCapabilities stores the validated capability grants on the context
func WithCapabilities(ctx context.Context, capabilities []string) context.Context {
	return context.WithValue(ctx, capabilitiesKey, capabilities)
}

// CapabilitiesFromContext returns the capability grants stored by the auth
// middleware, if any.
func CapabilitiesFromContext(ctx context.Context) ([]string, bool) {
	capabilities, ok := ctx.Value(capabilitiesKey).([]string)
	return capabilities, ok
}

// EnsureValidToken is a middleware that validates the Bearer token with the
// shared HMAC secret. On success it sets userID on the gin context and stashes
// the capability grants on the request context for the service layer.
func EnsureValidToken(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authentication provided"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			c.Abort()
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			c.Abort()
			return
		}
		if claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidSubject.Error()})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Request = c.Request.WithContext(WithCapabilities(c.Request.Context(), claims.Capabilities))
		c.Next()
	}
}

// ContextAuthorizer checks entitlements against the capability grants the
// middleware stored on the request context.
type ContextAuthorizer struct{}

func (ContextAuthorizer) IsEntitled(ctx context.Context, userID, capability string) (bool, error) {
	capabilities, ok := CapabilitiesFromContext(ctx)
	if !ok {
		return false, ErrNoValidatedClaims
	}
	for _, granted := range capabilities {
		if granted == capability {
			return true, nil
		}
	}
	return false, nil
}

// StaticAuthorizer grants capabilities from a fixed per-user table. Used in
// tests and single-tenant deployments without a token issuer.
type StaticAuthorizer struct {
	Grants map[string][]string
}

func (a StaticAuthorizer) IsEntitled(ctx context.Context, userID, capability string) (bool, error) {
	for _, granted := range a.Grants[userID] {
		if granted == capability {
			return true, nil
		}
	}
	return false, nil
}

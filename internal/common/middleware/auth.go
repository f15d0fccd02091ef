package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/token"
)

const (
	userIDKey = "user_id"

	// AdminTokenHeader carries the opaque admin session token issued by the
	// admin login endpoint.
	AdminTokenHeader = "X-Admin-Token"
)

// SessionValidator checks admin session tokens. Implemented by the Redis
// session store of the admin feature.
type SessionValidator interface {
	Validate(ctx context.Context, sessionToken string) (bool, error)
}

// RequireUser verifies the Bearer access token and stores the user ID in the
// gin context.
func RequireUser(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			SendError(c, errors.NewUnauthorizedError("bearer token required"))
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			SendError(c, errors.NewUnauthorizedError("invalid or expired token"))
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// GetUserID returns the authenticated user ID set by RequireUser.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(userIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequireAdmin verifies the admin session token against the session store.
func RequireAdmin(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := c.GetHeader(AdminTokenHeader)
		if sessionToken == "" {
			SendError(c, errors.NewUnauthorizedError("admin session token required"))
			return
		}

		ok, err := sessions.Validate(c.Request.Context(), sessionToken)
		if err != nil {
			SendError(c, errors.Wrap(err, errors.ErrCodeSessionError, "session lookup failed"))
			return
		}
		if !ok {
			SendError(c, errors.NewUnauthorizedError("invalid or expired admin session"))
			return
		}

		c.Next()
	}
}

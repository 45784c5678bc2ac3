package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pos-billing/internal/domain"
)

// UserKey is the gin context key holding the authenticated username.
const UserKey = "username"

// Middleware rejects requests without a valid bearer token and exposes the
// token's user under UserKey and through UserFromContext.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, "invalid authorization format, use 'Bearer <token>'")
			return
		}
		username, err := ValidateToken(secret, parts[1])
		if err != nil {
			abort(c, "invalid token")
			return
		}
		c.Set(UserKey, username)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), username))
		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": domain.StatusError, "message": msg})
}

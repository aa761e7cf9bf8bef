// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

// AuthRequired rejects requests without a valid wallet session token and
// puts the normalized viewer address on the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		address, ok := viewerFromRequest(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		c.Set("viewer_address", address)
		c.Next()
	}
}

// OptionalAuth sets the viewer address when a valid token is present and
// leaves the request anonymous otherwise. Content gating downstream treats
// anonymous viewers as never entitled.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if address, ok := viewerFromRequest(c); ok {
			c.Set("viewer_address", address)
		}
		c.Next()
	}
}

func viewerFromRequest(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	claims, err := utils.ValidateSessionToken(parts[1])
	if err != nil {
		return "", false
	}

	return strings.ToLower(claims.Address), true
}

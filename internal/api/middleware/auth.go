package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/response"
)

// AdminToken static bearer token middleware for the admin API.
// The bot has a single operator; the token comes from configuration. An
// empty configured token disables the admin API entirely.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.NotFound(c, 10001, "admin API disabled")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "missing or malformed Authorization header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			response.Unauthorized(c, 10002, "invalid token")
			c.Abort()
			return
		}

		c.Next()
	}
}

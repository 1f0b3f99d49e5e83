package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/redis"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/response"
)

// RateLimit Redis-backed rate limiting middleware.
// limit: maximum requests per window. A nil rdb passes everything through,
// matching the cache-less degraded mode of the rest of the app.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis trouble must not take the webhook down.
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}

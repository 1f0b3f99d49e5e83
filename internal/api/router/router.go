package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/api/handler"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/api/middleware"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/redis"
)

// Telegram updates are a few KB; 1 MiB leaves slack for large entities.
const maxBodyBytes = 1 << 20

// Setup builds the gin engine: webhook intake, health check and admin API.
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/telegram/webhook/:secret",
		middleware.RateLimit(rdb, 30, time.Second),
		h.Webhook.Receive,
	)

	api := r.Group("/api/v1")
	api.Use(middleware.AdminToken(cfg.Server.AdminToken))
	{
		api.GET("/leaderboard", h.Admin.Leaderboard)
		api.GET("/leaderboard/export", h.Admin.LeaderboardExport)
		api.GET("/tiers", h.Admin.Tiers)
	}

	return r
}

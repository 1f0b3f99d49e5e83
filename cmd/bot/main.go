package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/api/handler"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/api/router"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/service"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/database"
	applogger "github.com/ShivamThakkar1/Wallswipe-invite/pkg/logger"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/redis"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting up",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Connect to the database and migrate
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("acquire underlying sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. Connect Redis (optional: the bot degrades to cache-less operation)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, leaderboard cache and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. Authorize the Telegram bot
	channel, err := telegram.ParseChannelRef(cfg.Bot.Channel)
	if err != nil {
		logger.Fatal("invalid channel reference", zap.String("channel", cfg.Bot.Channel), zap.Error(err))
	}
	tg, err := telegram.NewClient(cfg.Bot.Token, channel, logger)
	if err != nil {
		logger.Fatal("telegram authorization failed", zap.Error(err))
	}

	// 6. Dependency injection: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, tg, channel, rdb, logger)
	h := handler.NewHandler(cfg, svc, tg, logger)

	// 7. Routing
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 9. Update intake: webhook when a public base URL is configured,
	// long polling otherwise. Both feed the same routing path.
	pollCtx, stopPolling := context.WithCancel(context.Background())
	if cfg.Server.BaseURL != "" {
		if err := registerWebhook(tg.API(), cfg); err != nil {
			logger.Fatal("webhook registration failed", zap.Error(err))
		}
		logger.Info("webhook registered", zap.String("base_url", cfg.Server.BaseURL))
	} else {
		go poll(pollCtx, tg.API(), h.Webhook, logger)
		logger.Info("long polling started")
	}

	// 10. Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	stopPolling()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

// registerWebhook points Telegram at the secret webhook path. chat_member
// updates must be requested explicitly; Telegram omits them by default.
func registerWebhook(api *tgbotapi.BotAPI, cfg *config.Config) error {
	url := fmt.Sprintf("%s/telegram/webhook/%s",
		strings.TrimRight(cfg.Server.BaseURL, "/"), cfg.Bot.WebhookSecret)

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	wh.AllowedUpdates = []string{"message", "chat_member"}

	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// poll consumes updates over long polling and feeds them through the same
// dispatch path as the webhook. Used for local runs without a public URL.
func poll(ctx context.Context, api *tgbotapi.BotAPI, wh *handler.WebhookHandler, logger *zap.Logger) {
	// Drop a stale webhook so getUpdates is allowed to run.
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn("delete webhook failed", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "chat_member"}

	updates := api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if err := wh.RouteUpdate(ctx, upd); err != nil {
				logger.Error("update processing failed",
					zap.Int("update_id", upd.UpdateID), zap.Error(err))
			}
		}
	}
}

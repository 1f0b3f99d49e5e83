package handler

import (
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/service"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
)

// Handler aggregates all handlers.
type Handler struct {
	Webhook *WebhookHandler
	Admin   *AdminHandler
}

// NewHandler builds the Handler aggregate.
func NewHandler(cfg *config.Config, svc *service.Service, msgr telegram.Messenger, logger *zap.Logger) *Handler {
	return &Handler{
		Webhook: NewWebhookHandler(cfg, svc, msgr, logger),
		Admin:   NewAdminHandler(cfg, svc),
	}
}

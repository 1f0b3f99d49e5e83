package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/service"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
)

const startText = `Welcome to the Wallswipe invite program!

/link — get your personal invite link
/progress — your invite count and next reward
/top — the inviter leaderboard

Share your link; every friend who joins the channel through it brings you closer to a wallpaper pack.`

// WebhookHandler receives Telegram updates and dispatches them to services.
// The same RouteUpdate path serves webhook and long-polling intake.
type WebhookHandler struct {
	svc             *service.Service
	msgr            telegram.Messenger
	adminID         int64
	leaderboardSize int
	secret          string
	logger          *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(cfg *config.Config, svc *service.Service, msgr telegram.Messenger, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		svc:             svc,
		msgr:            msgr,
		adminID:         cfg.Bot.AdminID,
		leaderboardSize: cfg.Bot.LeaderboardSize,
		secret:          cfg.Bot.WebhookSecret,
		logger:          logger,
	}
}

// Receive handles POST /telegram/webhook/:secret.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) != 1 {
		// Wrong secret looks like a missing route on purpose.
		c.Status(http.StatusNotFound)
		return
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(c.Request.Body).Decode(&upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.RouteUpdate(c.Request.Context(), upd); err != nil {
		// Non-2xx makes Telegram redeliver the update; only attribution
		// failures, which are safe to reprocess, reach this branch.
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

// RouteUpdate dispatches one update. Shared by webhook and polling intake.
func (h *WebhookHandler) RouteUpdate(ctx context.Context, upd tgbotapi.Update) error {
	switch {
	case upd.ChatMember != nil:
		return h.svc.Join.ProcessChatMember(ctx, upd.ChatMember)
	case upd.Message != nil && upd.Message.Chat.IsPrivate():
		h.handleMessage(ctx, upd.Message)
	}
	return nil
}

func (h *WebhookHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.Document != nil {
		h.handleDocument(ctx, msg)
		return
	}

	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "link":
		h.handleLink(ctx, msg)
	case "progress":
		h.handleProgress(ctx, msg)
	case "top":
		h.handleTop(ctx, msg)
	case "addreward":
		h.handleAddReward(msg)
	case "broadcast":
		h.handleBroadcast(ctx, msg)
	}
}

// ── user commands ──

func (h *WebhookHandler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := h.svc.Invite.EnsureProfile(ctx, msg.From.ID, displayName(msg.From)); err != nil {
		h.logger.Error("ensure profile failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.reply(msg, "Something went wrong, please try again.")
		return
	}
	h.reply(msg, startText)
}

func (h *WebhookHandler) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	link, err := h.svc.Invite.GetOrCreateLink(ctx, msg.From.ID, displayName(msg.From))
	if err != nil {
		h.reply(msg, "Couldn't issue your invite link right now, please try again later.")
		return
	}
	h.reply(msg, "Your personal invite link:\n"+link)
}

func (h *WebhookHandler) handleProgress(ctx context.Context, msg *tgbotapi.Message) {
	profile, err := h.svc.Invite.EnsureProfile(ctx, msg.From.ID, displayName(msg.From))
	if err != nil {
		h.reply(msg, "Something went wrong, please try again.")
		return
	}
	next, remaining := h.svc.Invite.NextTarget(profile.InvitedCount)
	h.reply(msg, fmt.Sprintf(
		"You have %d invite(s). %d more to reach %d.",
		profile.InvitedCount, remaining, next,
	))
}

func (h *WebhookHandler) handleTop(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := h.svc.Leaderboard.Top(ctx, h.leaderboardSize)
	if err != nil {
		h.reply(msg, "Leaderboard is unavailable right now.")
		return
	}
	if len(entries) == 0 {
		h.reply(msg, "No invites yet — be the first on the board!")
		return
	}

	var b strings.Builder
	b.WriteString("Top inviters:\n")
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = strconv.FormatInt(e.TelegramID, 10)
		}
		fmt.Fprintf(&b, "%d. %s — %d\n", e.Rank, name, e.Credits)
	}
	h.reply(msg, b.String())
}

// ── admin commands ──
// Admin-only actions from any other identity are ignored without a reply.

func (h *WebhookHandler) handleAddReward(msg *tgbotapi.Message) {
	if msg.From.ID != h.adminID {
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 || len(args) > 2 {
		h.reply(msg, "Usage: /addreward <tier-id> [threshold]")
		return
	}

	tierID := args[0]
	var threshold *int
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			h.reply(msg, "Usage: /addreward <tier-id> [threshold] — threshold must be a number")
			return
		}
		threshold = &n
	}

	resolved, err := h.svc.Reward.BeginUpload(msg.From.ID, tierID, threshold)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidThreshold), errors.Is(err, service.ErrEmptyTierID):
			h.reply(msg, "Usage: /addreward <tier-id> [threshold] — "+err.Error())
		default:
			h.reply(msg, "Couldn't start the upload, please try again.")
		}
		return
	}
	h.reply(msg, fmt.Sprintf(
		"Now send the archive for reward %q (unlocks at %d invites).", tierID, resolved,
	))
}

func (h *WebhookHandler) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != h.adminID {
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		h.reply(msg, "Usage: /broadcast <message>")
		return
	}

	result, err := h.svc.Broadcast.Broadcast(ctx, text)
	if err != nil {
		h.reply(msg, "Broadcast failed to start, please try again.")
		return
	}
	h.reply(msg, fmt.Sprintf(
		"Broadcast done: %d sent, %d failed of %d.", result.Sent, result.Failed, result.Total,
	))
}

func (h *WebhookHandler) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != h.adminID {
		return
	}

	tier, err := h.svc.Reward.SubmitPayload(ctx, msg.From.ID, msg.Document)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUploadSession):
			h.reply(msg, "No reward upload in progress. Start one with /addreward.")
		case errors.Is(err, service.ErrNotArchive):
			h.reply(msg, "That doesn't look like an archive. Send a .zip, .rar, .7z or .tar.gz file.")
		default:
			h.reply(msg, "Couldn't register the reward, please try again.")
		}
		return
	}
	h.reply(msg, fmt.Sprintf(
		"Reward %q registered, unlocks at %d invites.", tier.TierID, tier.Threshold,
	))
}

// ── helpers ──

func (h *WebhookHandler) reply(msg *tgbotapi.Message, text string) {
	if err := h.msgr.SendMessage(msg.Chat.ID, text); err != nil {
		h.logger.Warn("reply failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

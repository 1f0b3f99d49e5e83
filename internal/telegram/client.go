package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Messenger is the outbound Telegram surface the services depend on.
// Kept narrow so tests can substitute a recording fake.
type Messenger interface {
	// SendMessage sends a plain text message to a private chat.
	SendMessage(chatID int64, text string) error
	// SendDocument delivers a stored document by its Telegram file id.
	SendDocument(chatID int64, fileID, caption string) error
	// CreateInviteLink requests a fresh channel invite link: direct-join (no
	// join request), no member limit, labeled with the inviter's name.
	CreateInviteLink(name string) (string, error)
}

// Client wraps the Bot API for the tracked channel.
type Client struct {
	api     *tgbotapi.BotAPI
	channel ChannelRef
	logger  *zap.Logger
}

// NewClient authorizes the bot and returns the channel-scoped client.
func NewClient(token string, channel ChannelRef, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.String("channel", channel.String()),
	)

	return &Client{api: api, channel: channel, logger: logger}, nil
}

// API exposes the underlying Bot API for bootstrap concerns (webhook
// registration, polling).
func (c *Client) API() *tgbotapi.BotAPI { return c.api }

func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) SendDocument(chatID int64, fileID, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption
	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) CreateInviteLink(name string) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:         c.channel.ChatConfig(),
		Name:               name,
		CreatesJoinRequest: false,
		// MemberLimit stays zero: the link is reusable without bound.
	}

	resp, err := c.api.Request(cfg)
	if err != nil {
		// Typically the bot lacks the "invite users" admin right on the
		// channel; surfaced to the caller, fatal for the requesting flow.
		return "", fmt.Errorf("create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link response: %w", err)
	}
	if link.InviteLink == "" {
		return "", fmt.Errorf("create invite link: empty link in response")
	}
	return link.InviteLink, nil
}

package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChannelRef identifies the tracked channel as a tagged variant: either a
// public handle or a numeric chat id, never an untyped string. Parsed once at
// startup and compared structurally against incoming updates, which avoids
// the mixed string-vs-number comparisons Telegram chat identifiers invite.
type ChannelRef struct {
	// Username is the public handle without the leading "@". Empty when the
	// channel is referenced by numeric id.
	Username string
	// ID is the numeric chat id. Zero when the channel is referenced by
	// handle.
	ID int64
}

// ParseChannelRef normalizes the configured channel identity.
// Accepted forms: "@wallswipe", "wallswipe", "-1001234567890".
func ParseChannelRef(s string) (ChannelRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChannelRef{}, fmt.Errorf("channel identity is empty")
	}
	if strings.HasPrefix(s, "@") {
		name := strings.TrimPrefix(s, "@")
		if name == "" {
			return ChannelRef{}, fmt.Errorf("channel handle %q has no name", s)
		}
		return ChannelRef{Username: name}, nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ChannelRef{ID: id}, nil
	}
	return ChannelRef{Username: s}, nil
}

// Matches reports whether the update's chat is the tracked channel.
func (r ChannelRef) Matches(chat tgbotapi.Chat) bool {
	if r.ID != 0 {
		return chat.ID == r.ID
	}
	return chat.UserName != "" && strings.EqualFold(chat.UserName, r.Username)
}

// ChatConfig converts the reference into the form tgbotapi expects for
// outbound channel calls.
func (r ChannelRef) ChatConfig() tgbotapi.ChatConfig {
	if r.ID != 0 {
		return tgbotapi.ChatConfig{ChatID: r.ID}
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: "@" + r.Username}
}

// String renders the reference for logs.
func (r ChannelRef) String() string {
	if r.ID != 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	return "@" + r.Username
}

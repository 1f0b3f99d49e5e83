package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestParseChannelRef(t *testing.T) {
	cases := []struct {
		in      string
		want    ChannelRef
		wantErr bool
	}{
		{"@wallswipe", ChannelRef{Username: "wallswipe"}, false},
		{"wallswipe", ChannelRef{Username: "wallswipe"}, false},
		{"-1001234567890", ChannelRef{ID: -1001234567890}, false},
		{"  @wallswipe  ", ChannelRef{Username: "wallswipe"}, false},
		{"", ChannelRef{}, true},
		{"@", ChannelRef{}, true},
	}
	for _, tc := range cases {
		got, err := ParseChannelRef(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseChannelRef(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannelRef(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseChannelRef(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestChannelRefMatches(t *testing.T) {
	byID := ChannelRef{ID: -1001234567890}
	byName := ChannelRef{Username: "wallswipe"}

	if !byID.Matches(tgbotapi.Chat{ID: -1001234567890}) {
		t.Error("id ref must match the same chat id")
	}
	if byID.Matches(tgbotapi.Chat{ID: -100999}) {
		t.Error("id ref matched a different chat")
	}
	// An id ref never matches on username alone.
	if byID.Matches(tgbotapi.Chat{ID: -100999, UserName: "wallswipe"}) {
		t.Error("id ref matched by username")
	}

	if !byName.Matches(tgbotapi.Chat{ID: -100999, UserName: "wallswipe"}) {
		t.Error("handle ref must match its username")
	}
	if !byName.Matches(tgbotapi.Chat{UserName: "WallSwipe"}) {
		t.Error("handle match must be case-insensitive")
	}
	if byName.Matches(tgbotapi.Chat{UserName: "other"}) {
		t.Error("handle ref matched a different username")
	}
	if byName.Matches(tgbotapi.Chat{ID: -100999}) {
		t.Error("handle ref matched a chat with no username")
	}
}

func TestChannelRefChatConfig(t *testing.T) {
	if cfg := (ChannelRef{ID: -100123}).ChatConfig(); cfg.ChatID != -100123 {
		t.Errorf("ChatConfig().ChatID = %d", cfg.ChatID)
	}
	if cfg := (ChannelRef{Username: "wallswipe"}).ChatConfig(); cfg.SuperGroupUsername != "@wallswipe" {
		t.Errorf("ChatConfig().SuperGroupUsername = %q", cfg.SuperGroupUsername)
	}
}

func TestChannelRefString(t *testing.T) {
	if s := (ChannelRef{ID: -100123}).String(); s != "-100123" {
		t.Errorf("String() = %q", s)
	}
	if s := (ChannelRef{Username: "wallswipe"}).String(); s != "@wallswipe" {
		t.Errorf("String() = %q", s)
	}
}

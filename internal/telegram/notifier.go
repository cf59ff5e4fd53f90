// Package telegram posts lead notifications into an operator chat.
package telegram

import (
	"context"
	"fmt"

	"terrasite_backend/internal/notification/message"
	"terrasite_backend/platform/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is the Bot API limit for a text message, in UTF-16 units.
// Runes are a close enough proxy for Cyrillic text.
const maxMessageLen = 4096

// botAPI is the part of *tgbotapi.BotAPI the notifier needs.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends plain-text lead summaries to one chat.
type Notifier struct {
	bot    botAPI
	chatID int64
}

// NewNotifier authorizes the bot token against the Bot API.
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.GetTelegramBotToken())
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	return &Notifier{bot: bot, chatID: cfg.GetTelegramChatID()}, nil
}

// Channel names this notifier in logs.
func (n *Notifier) Channel() string { return "telegram" }

// Send posts msg. The Bot API client has no context support, so ctx is only
// checked before the call.
func (n *Notifier) Send(ctx context.Context, msg message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := tgbotapi.NewMessage(n.chatID, truncate(msg.Text(), maxMessageLen))
	out.DisableWebPagePreview = true
	if _, err := n.bot.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

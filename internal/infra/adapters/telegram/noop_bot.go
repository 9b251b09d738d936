// File: internal/infra/adapters/telegram/noop_bot.go
package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramSender = (*NoopSender)(nil)

// NoopSender logs outgoing messages instead of calling the Bot API.
// Useful for local runs without a real token.
type NoopSender struct {
	log *zerolog.Logger
}

func NewNoopSender(logger *zerolog.Logger) *NoopSender {
	return &NoopSender{log: logger}
}

func (n *NoopSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	n.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop send")
	return nil
}

// File: internal/infra/audit/channel_logger.go
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
)

// errDetailLimit caps how much of an upstream error lands in the channel.
const errDetailLimit = 500

var _ adapter.AuditSink = (*ChannelLogger)(nil)

// ChannelLogger mirrors operational events into a Telegram channel.
// A zero channel id disables delivery entirely; send failures are logged
// and swallowed so the calling flow never notices.
type ChannelLogger struct {
	sender    adapter.TelegramSender
	channelID int64
	price     int
	log       *zerolog.Logger
}

func NewChannelLogger(sender adapter.TelegramSender, channelID int64, price int, logger *zerolog.Logger) *ChannelLogger {
	return &ChannelLogger{sender: sender, channelID: channelID, price: price, log: logger}
}

func (c *ChannelLogger) Startup(ctx context.Context, userID int64, username string) {
	c.send(ctx, fmt.Sprintf(
		"🟢 Новый запуск\n👤 ID: %d\n🪪 Username: @%s\n📅 Время: %s",
		userID, orDash(username), c.now()))
}

func (c *ChannelLogger) DialogStarted(ctx context.Context, userID int64, sessionID string) {
	c.send(ctx, fmt.Sprintf(
		"💬 Начат диалог\n👤 ID: %d\n🆔 Сессия: %s\n📅 Время: %s",
		userID, sessionID, c.now()))
}

func (c *ChannelLogger) DialogFinished(ctx context.Context, userID int64, sessionID string, messages int) {
	c.send(ctx, fmt.Sprintf(
		"🔴 Диалог завершен\n👤 ID: %d\n🆔 Сессия: %s\n🔥 Сообщений: %d\n📅 Время: %s",
		userID, sessionID, messages, c.now()))
}

func (c *ChannelLogger) APIError(ctx context.Context, userID int64, errText string) {
	if len(errText) > errDetailLimit {
		errText = errText[:errDetailLimit]
	}
	c.send(ctx, fmt.Sprintf(
		"⚠️ Ошибка API\n👤 ID: %d\n❗ Детали: %s\n📅 Время: %s",
		userID, errText, c.now()))
}

func (c *ChannelLogger) PaymentRequest(ctx context.Context, userID int64, username string) {
	c.send(ctx, fmt.Sprintf(
		"💳 Заявка на проверку оплаты\n👤 ID: %d\n🪪 Username: @%s\n💰 Тариф: %d RUB\n📅 Время: %s",
		userID, orDash(username), c.price, c.now()))
}

func (c *ChannelLogger) SubscriptionGranted(ctx context.Context, adminID, targetID int64, targetUsername string) {
	c.send(ctx, fmt.Sprintf(
		"✅ Подписка выдана\n🛡️ Админ ID: %d\n👤 Пользователь ID: %d\n🪪 Username: @%s\n📅 Время: %s",
		adminID, targetID, orDash(targetUsername), c.now()))
}

func (c *ChannelLogger) ReferralRegistered(ctx context.Context, inviterID, invitedID int64, invitedUsername string) {
	c.send(ctx, fmt.Sprintf(
		"🎁 Новый реферал\n👤 Инвайтер ID: %d\n👥 Приглашенный ID: %d\n🪪 Username приглашенного: @%s\n📅 Время: %s",
		inviterID, invitedID, orDash(invitedUsername), c.now()))
}

func (c *ChannelLogger) send(ctx context.Context, text string) {
	if c.channelID == 0 {
		return
	}
	if err := c.sender.SendMessage(ctx, c.channelID, text); err != nil {
		c.log.Warn().Err(err).Msg("failed to deliver audit event to channel")
	}
}

func (c *ChannelLogger) now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
}

func orDash(username string) string {
	if username == "" {
		return "—"
	}
	return username
}

// File: internal/infra/adapters/telegram/admin_routes.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anonchat-telegram-bot/internal/infra/logging"
)

func (r *RealBotAdapter) handleAdmin(ctx context.Context, msg *tgbotapi.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.sendHTML(ctx, msg.Chat.ID, accessDeniedText, nil)
	}
	return r.sendHTML(ctx, msg.Chat.ID, "Панель администратора активна.", adminKeyboard())
}

func (r *RealBotAdapter) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.sendHTML(ctx, msg.Chat.ID, accessDeniedText, nil)
	}
	return r.SendMessage(ctx, msg.Chat.ID, statsReportText(r.stats.Summary(ctx)))
}

func (r *RealBotAdapter) handleGrantSub(ctx context.Context, msg *tgbotapi.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.sendHTML(ctx, msg.Chat.ID, accessDeniedText, nil)
	}

	target := strings.TrimSpace(msg.CommandArguments())
	if target == "" {
		return r.SendMessage(ctx, msg.Chat.ID, "Использование: /grant_sub <user_id или @username>")
	}

	targetID, ok := r.store.ResolveUser(target)
	if !ok {
		return r.SendMessage(ctx, msg.Chat.ID,
			"Пользователь не найден. Для username пользователь должен хотя бы раз запустить бота.")
	}

	created := r.store.GrantSubscription(targetID)
	status := "Подписка уже была активна."
	if created {
		status = "Подписка выдана."
	}
	if err := r.SendMessage(ctx, msg.Chat.ID, fmt.Sprintf("%s Пользователь: %d", status, targetID)); err != nil {
		return err
	}

	targetUsername := ""
	if strings.HasPrefix(target, "@") {
		targetUsername = strings.TrimPrefix(target, "@")
	}
	r.audit.SubscriptionGranted(ctx, msg.From.ID, targetID, targetUsername)
	return nil
}

func (r *RealBotAdapter) handleBroadcastCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.sendHTML(ctx, msg.Chat.ID, accessDeniedText, nil)
	}
	r.markAwaitingBroadcast(msg.From.ID)
	return r.SendMessage(ctx, msg.Chat.ID, "Отправьте текст рассылки одним сообщением.")
}

// runBroadcast delivers the pending broadcast text. The awaiting flag was
// already consumed by the router.
func (r *RealBotAdapter) runBroadcast(ctx context.Context, msg *tgbotapi.Message) error {
	logging.With(ctx, r.log).Info().Int64("admin_id", msg.From.ID).Msg("broadcast requested")
	delivered, failed := r.broadcast.Broadcast(ctx, msg.Text)
	return r.SendMessage(ctx, msg.Chat.ID,
		fmt.Sprintf("Рассылка завершена. Доставлено: %d, ошибок: %d.", delivered, failed))
}

// File: internal/infra/adapters/telegram/user_routes.go
package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anonchat-telegram-bot/internal/domain"
	derror "anonchat-telegram-bot/internal/error"
	"anonchat-telegram-bot/internal/infra/logging"
)

func (r *RealBotAdapter) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	r.store.RegisterUser(user.ID, user.UserName)
	r.store.TrackStart()

	if refID, ok := parseReferrerID(msg.Text); ok {
		if r.store.AddReferral(refID, user.ID) {
			r.audit.ReferralRegistered(ctx, refID, user.ID, user.UserName)
		}
	}

	r.audit.Startup(ctx, user.ID, user.UserName)
	return r.sendMenu(ctx, msg.Chat.ID, welcomeText)
}

// startDialogFlow plays the partner-search theatre: quota check, searching
// notice, a short random pause, then the found screen with the chat keyboard.
func (r *RealBotAdapter) startDialogFlow(ctx context.Context, chatID, userID int64) error {
	_, err := r.chat.StartDialog(ctx, userID)
	if errors.Is(err, domain.ErrDailyLimitReached) {
		_, used, limit, _ := r.chat.CanStart(userID)
		text := limitReachedText(used, limit, r.cfg.Limits.SubscriptionRUB)
		return r.sendHTML(ctx, chatID, text, limitReachedKeyboard())
	}
	if err != nil {
		return err
	}

	if err := r.sendHTML(ctx, chatID, searchingText, nil); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(searchDelay()):
	}
	return r.sendHTML(ctx, chatID, dialogFoundText, chatKeyboard())
}

func (r *RealBotAdapter) handleNextDialog(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	r.store.RegisterUser(user.ID, user.UserName)
	r.chat.EndDialog(ctx, user.ID)
	return r.startDialogFlow(ctx, msg.Chat.ID, user.ID)
}

func (r *RealBotAdapter) handleEndDialog(ctx context.Context, msg *tgbotapi.Message) error {
	r.chat.EndDialog(ctx, msg.From.ID)
	return r.sendMenu(ctx, msg.Chat.ID, dialogEndedText)
}

func (r *RealBotAdapter) handleSubscription(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	r.store.RegisterUser(user.ID, user.UserName)
	text := subscriptionText(
		r.store, user.ID,
		r.cfg.Limits.DailyDialogs, r.cfg.Limits.SubscriptionRUB,
		r.cfg.Limits.PaymentCard, r.cfg.Limits.PaymentBank,
	)
	return r.sendHTML(ctx, msg.Chat.ID, text, subscriptionKeyboard())
}

func (r *RealBotAdapter) handlePaymentSent(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	r.store.RegisterUser(user.ID, user.UserName)
	r.store.TrackPaymentRequest(user.ID)
	r.audit.PaymentRequest(ctx, user.ID, user.UserName)
	return r.sendMenu(ctx, msg.Chat.ID, paymentSentText)
}

func (r *RealBotAdapter) handleReferral(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	r.store.RegisterUser(user.ID, user.UserName)
	text := referralText(r.store, user.ID, r.cfg.Limits.DailyDialogs, r.botUsername)
	return r.sendHTML(ctx, msg.Chat.ID, text, mainMenuKeyboard())
}

// handleChatMessage runs one generation turn for a user inside a dialog.
func (r *RealBotAdapter) handleChatMessage(ctx context.Context, msg *tgbotapi.Message) error {
	user := msg.From
	chatID := msg.Chat.ID
	r.store.RegisterUser(user.ID, user.UserName)

	if r.chat.RateLimited(user.ID) {
		return r.sendHTML(ctx, chatID, slowDownText, nil)
	}
	if r.chat.ActiveSession(user.ID) == nil {
		return r.sendHTML(ctx, chatID, sessionGoneText, nil)
	}

	reply, err := r.chat.SendMessage(ctx, user.ID, msg.Text)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("dialog turn failed")
		return r.sendHTML(ctx, chatID, generationErrorText(err), nil)
	}

	r.sendTypingFor(ctx, chatID, typingDuration(reply))

	// Model output is sent verbatim, without HTML parsing: a stray angle
	// bracket in the reply must not make Telegram reject the message.
	return r.SendMessage(ctx, chatID, reply)
}

func generationErrorText(err error) string {
	switch {
	case errors.Is(err, derror.ErrRateLimited):
		return "⚠️ Сервис временно перегружен. Попробуй еще раз через минуту."
	case errors.Is(err, derror.ErrModelUnavailable):
		return "⚙️ Модель сейчас недоступна. Проверь ai.model в конфиге."
	case errors.Is(err, derror.ErrAuth):
		return "🔑 Проблема с ключом NSCALE. Проверь ai.nscale_key в конфиге."
	case errors.Is(err, derror.ErrTimeout):
		return "⌛ NSCALE отвечает слишком долго. Попробуй еще раз через пару секунд."
	case errors.Is(err, domain.ErrNoActiveChat):
		return sessionGoneText
	default:
		return "💤 Собеседник немного занят. Давай попробуем еще раз через пару секунд."
	}
}

// File: internal/infra/adapters/telegram/texts.go
package telegram

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"anonchat-telegram-bot/internal/store"
)

// Reply-keyboard button labels. Routing matches on the exact text, so
// these double as route keys.
const (
	BtnStart        = "🔥 Начать чат"
	BtnAbout        = "ℹ️ О боте"
	BtnSupport      = "🆘 Поддержка"
	BtnSubscription = "💎 Подписка"
	BtnReferral     = "🎁 Рефералы"
	BtnPaymentSent  = "✅ Отправил деньги, проверьте"
	BtnBackMenu     = "⬅️ В меню"
	BtnNext         = "➡️ Следующий собеседник"
	BtnEnd          = "❌ Завершить диалог"
)

const (
	welcomeText = "✨ <b>Анонимный чат</b>\n\n" +
		"Нажми <b>🔥 Начать чат</b>, и я найду собеседника за пару секунд 😉\n\n" +
		"<i>Приватно, легко и без регистрации.</i>"

	aboutText = "ℹ️ <b>О боте</b>\n\n" +
		"Это анонимный чат, где можно свободно общаться и знакомиться в легкой атмосфере 💬\n\n" +
		"• без регистрации\n" +
		"• быстрый старт\n" +
		"• приватный формат общения"

	supportText = "🆘 <b>Поддержка</b>\n\n" +
		"Есть вопрос, баг или идея по улучшению?\n" +
		"Напиши в Telegram: <a href=\"https://t.me/socialbleed\">@socialbleed</a>\n\n" +
		"Мы на связи и поможем 🤝"

	searchingText = "🔎 <b>Ищу собеседника...</b>"

	dialogFoundText = "💘 <b>Собеседник найден</b>\n" +
		"Он уже онлайн 🔥\n\n" +
		"Напиши первым сообщением и начнем 😉"

	fallbackText = "👋 Нажми <b>🔥 Начать чат</b>, и я подберу тебе собеседника прямо сейчас 💬"

	sessionGoneText  = "Сессия завершена. Нажми <b>🔥 Начать чат</b>, чтобы открыть новую."
	slowDownText     = "⏳ Слишком быстро 😉 Подожди пару секунд и продолжим."
	dialogEndedText  = "❌ <b>Диалог завершен</b>\n\nВозвращаю тебя в меню ✨"
	backToMenuText   = "Возвращаю в меню."
	paymentSentText  = "✅ Платеж отправлен на автоматическую проверку. После подтверждения подписка активируется."
	accessDeniedText = "Доступ запрещен."
)

// parseReferrerID extracts the inviter id from a /start payload.
// Accepts both "ref_<id>" and a bare numeric id; anything else is ignored.
func parseReferrerID(startText string) (int64, bool) {
	parts := strings.Fields(startText)
	if len(parts) < 2 {
		return 0, false
	}
	raw := strings.TrimPrefix(parts[1], "ref_")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// searchDelay keeps the "looking for a partner" pause in the 3..6s band.
func searchDelay() time.Duration {
	return time.Duration((3 + rand.Float64()*3) * float64(time.Second))
}

// typingDuration scales the typing indicator with reply length,
// clamped to 1..14 seconds.
func typingDuration(reply string) time.Duration {
	n := len([]rune(strings.TrimSpace(reply)))
	seconds := 0.9 + float64(n)*0.035
	if seconds < 1 {
		seconds = 1
	}
	if seconds > 14 {
		seconds = 14
	}
	return time.Duration(seconds * float64(time.Second))
}

func statusText(st *store.Store, userID int64, baseLimit int) string {
	referrals := st.ReferralCount(userID)
	used := st.DialogStartsToday(userID)
	limit, unlimited := st.DialogLimitFor(userID, baseLimit)

	subLine := "не активна ❌"
	limitLine := fmt.Sprintf("%d/%d", used, limit)
	if unlimited {
		subLine = "активна ✅"
		limitLine = "безлимит"
	}

	return fmt.Sprintf(
		"<b>Твой статус</b>\n"+
			"• Подписка: %s\n"+
			"• Лимит диалогов сегодня: %s\n"+
			"• Приглашено рефералов: %d\n"+
			"• Бонус к лимиту: +%d",
		subLine, limitLine, referrals, referrals)
}

func subscriptionText(st *store.Store, userID int64, baseLimit, price int, card, bank string) string {
	return fmt.Sprintf(
		"💎 <b>Подписка</b>\n\n"+
			"Цена: <b>%d ₽</b>\n"+
			"<b>Реквизиты для оплаты:</b>\n"+
			"• Карта: <code>%s</code>\n"+
			"• Банк: %s\n\n"+
			"С подпиской лимит диалогов <b>без ограничений</b>.\n\n"+
			"Чтобы купить: переведи %d ₽ и нажми кнопку ниже. "+
			"Бот автоматически проверит оплату и активирует подписку.\n\n%s",
		price, card, bank, price, statusText(st, userID, baseLimit))
}

func referralText(st *store.Store, userID int64, baseLimit int, botUsername string) string {
	referrals := st.ReferralCount(userID)
	limit, _ := st.DialogLimitFor(userID, baseLimit)

	linkText := "Ссылка временно недоступна. Повтори попытку позже."
	if botUsername != "" {
		linkText = fmt.Sprintf("<code>https://t.me/%s?start=ref_%d</code>", botUsername, userID)
	}

	return fmt.Sprintf(
		"🎁 <b>Реферальная система</b>\n\n"+
			"За каждого приглашенного пользователя ты получаешь +1 диалог в день.\n"+
			"Уже приглашено: <b>%d</b>\n"+
			"Текущий лимит без подписки: <b>%d</b> диалогов/день\n\n"+
			"Твоя реферальная ссылка:\n%s",
		referrals, limit, linkText)
}

func limitReachedText(used, limit, price int) string {
	return fmt.Sprintf(
		"⛔️ Лимит диалогов на сегодня исчерпан.\n"+
			"Сегодня: %d/%d.\n\n"+
			"Оформи подписку за %d ₽, чтобы снять ограничение.",
		used, limit, price)
}

func statsReportText(s store.Stats) string {
	return fmt.Sprintf(
		"📊 Статистика\n"+
			"• Всего пользователей: %d\n"+
			"• Активных диалогов: %d\n"+
			"• Сообщений за сутки: %d\n"+
			"• Новых запусков: %d\n"+
			"• Заявок на оплату за сутки: %d\n"+
			"• Заявок на оплату всего: %d\n"+
			"• Выдано подписок за сутки: %d\n"+
			"• Выдано подписок всего: %d\n"+
			"• Пользователей с подпиской: %d\n"+
			"• Всего рефералов: %d",
		s.TotalUsers, s.ActiveDialogs, s.Messages24h, s.Starts24h,
		s.PaymentRequests24h, s.PaymentRequestsTotal,
		s.SubscriptionsGranted24h, s.SubscriptionsGrantedTotal,
		s.PaidUsersTotal, s.ReferralsTotal)
}

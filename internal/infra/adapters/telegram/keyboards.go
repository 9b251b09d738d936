// File: internal/infra/adapters/telegram/keyboards.go
package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnStart)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSubscription),
			tgbotapi.NewKeyboardButton(BtnReferral),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAbout),
			tgbotapi.NewKeyboardButton(BtnSupport),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func chatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnNext),
			tgbotapi.NewKeyboardButton(BtnEnd),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func subscriptionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnPaymentSent)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnBackMenu)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func limitReachedKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnSubscription)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnBackMenu)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/stats")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/broadcast")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/grant_sub")),
	)
	kb.ResizeKeyboard = true
	return kb
}

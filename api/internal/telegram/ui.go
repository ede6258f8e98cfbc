package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/command"
	"relay-bot/api/internal/conversation"
)

func replyKeyboard(buttons ...string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(b)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// Главное меню: отправка, инструкция
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(command.BtnSendMessage, command.BtnInstructions)
}

// Режим отправки: только «Назад»
func submissionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(command.BtnBack)
}

func challengeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(command.BtnNewChallenge)
}

func operatorKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(command.BtnOperatorHelp)
}

// keyboardFor returns the keyboard that matches the state a user is left in.
func keyboardFor(s conversation.State) tgbotapi.ReplyKeyboardMarkup {
	switch s {
	case conversation.StateMenu:
		return mainKeyboard()
	case conversation.StateSubmission:
		return submissionKeyboard()
	default:
		return challengeKeyboard()
	}
}

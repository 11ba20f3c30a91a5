package service

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

// TelegramServiceImpl тонкая обёртка над Bot API с готовыми
// конструкторами сообщений. Тексты уведомлений форматируются в HTML.
type TelegramServiceImpl struct {
	bot domain.TelegramSender
}

func NewTelegramService(bot domain.TelegramSender) *TelegramServiceImpl {
	return &TelegramServiceImpl{bot: bot}
}

func (t *TelegramServiceImpl) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return t.bot.Send(c)
}

func (t *TelegramServiceImpl) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return t.bot.Request(c)
}

func (t *TelegramServiceImpl) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	return t.bot.Send(msg)
}

func (t *TelegramServiceImpl) SendHTML(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeHTML
	return t.bot.Send(msg)
}

func (t *TelegramServiceImpl) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = keyboard
	return t.bot.Send(msg)
}

func (t *TelegramServiceImpl) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = keyboard
	return t.bot.Send(msg)
}

func (t *TelegramServiceImpl) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	var msg tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		msg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
	} else {
		msg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	msg.ParseMode = models.ParseModeHTML
	return t.bot.Send(msg)
}

func (t *TelegramServiceImpl) AnswerCallback(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := t.bot.Request(callback)
	return err
}

func (t *TelegramServiceImpl) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return t.bot.GetUpdatesChan(config)
}

func (t *TelegramServiceImpl) GetSelf() tgbotapi.User {
	return t.bot.GetSelf()
}

func (t *TelegramServiceImpl) StopReceivingUpdates() {
	t.bot.StopReceivingUpdates()
}

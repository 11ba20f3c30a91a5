package bot

import (
	"fmt"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню и общие кнопки диалогов. Тексты кнопок входят в
// протокол со старыми клиентами, менять аккуратно.
const (
	btnFindBanya   = "🧖 Найти баню"
	btnMasterVisit = "💆 Выезд мастера"
	btnMyBookings  = "📊 Мои бронирования"
	btnContacts    = "📞 Контакты"
	btnSwitchRole  = "🔄 Сменить роль"

	btnMyBanyas      = "🏠 Мои бани"
	btnBanyaRequests = "📥 Заявки бань"
	btnAddBanya      = "➕ Добавить баню"

	btnMasterProfile  = "💼 Профиль мастера"
	btnMasterRequests = "📥 Заявки мастера"
	btnMasterToggle   = "🟢 Доступность"

	btnStats  = "📈 Статистика"
	btnExport = "💾 Экспорт"

	btnCancel  = "❌ Отмена"
	btnBack    = "⬅️ Назад"
	btnSkip    = "➡️ Пропустить"
	btnConfirm = "✅ Подтвердить"

	statusSuccess = "✅"
	statusPending = "⏳"
	statusError   = "❌"
)

// mainMenuKeyboard собирает меню под роль пользователя. Админские ряды
// добавляются поверх любой роли.
func (b *Bot) mainMenuKeyboard(user *models.User, isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	role := models.RoleClient
	if user != nil {
		role = user.Role
	}

	switch role {
	case models.RoleBanyaOwner:
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBanyas),
			tgbotapi.NewKeyboardButton(btnBanyaRequests),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAddBanya),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		))
	case models.RoleBathMaster:
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMasterProfile),
			tgbotapi.NewKeyboardButton(btnMasterRequests),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMasterToggle),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		))
	default:
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFindBanya),
			tgbotapi.NewKeyboardButton(btnMasterVisit),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBookings),
		))
	}

	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnExport),
		))
	}

	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnContacts),
		tgbotapi.NewKeyboardButton(btnSwitchRole),
	))

	return tgbotapi.NewReplyKeyboard(rows...)
}

// cancelKeyboard один ряд с отменой, для текстовых шагов формы.
func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func skipCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// slotsKeyboard раскладывает слоты "HH:00" по рядам инлайн-кнопок.
func slotsKeyboard(slots []string, prefix string, perRow int) tgbotapi.InlineKeyboardMarkup {
	if perRow < 1 {
		perRow = 4
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, slot := range slots {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(slot, prefix+slot))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// numberRowKeyboard инлайн-ряды с числами from..to (длительность, гости).
func numberRowKeyboard(from, to int, prefix string, perRow int) tgbotapi.InlineKeyboardMarkup {
	if perRow < 1 {
		perRow = 4
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for n := from; n <= to; n++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", n), fmt.Sprintf("%s%d", prefix, n)))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ratingKeyboard пять звёзд для отзыва.
func ratingKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for n := 1; n <= 5; n++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d⭐", n), fmt.Sprintf("%s%d", prefix, n)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func statusEmoji(status string) string {
	switch status {
	case models.StatusConfirmed:
		return statusSuccess
	case models.StatusCancelled:
		return statusError
	case models.StatusCompleted:
		return "🏁"
	case models.StatusAwaitingConfirmations:
		return "🔔"
	default:
		return statusPending
	}
}

// statusLabel статус по-русски для карточек и списков.
func statusLabel(status string) string {
	switch status {
	case models.StatusPending:
		return "черновик"
	case models.StatusAwaitingConfirmations:
		return "ждет подтверждений"
	case models.StatusConfirmed:
		return "подтверждено"
	case models.StatusCancelled:
		return "отменено"
	case models.StatusCompleted:
		return "завершено"
	default:
		return status
	}
}

// confirmationMark отметка стороны в карточке бронирования.
func confirmationMark(c models.Confirmation) string {
	switch c {
	case models.ConfirmationConfirmed:
		return statusSuccess
	case models.ConfirmationPending:
		return statusPending
	default:
		return "—"
	}
}

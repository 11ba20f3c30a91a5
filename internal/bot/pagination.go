package bot

import (
	"context"
	"fmt"
	"strings"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PaginationParams struct {
	Ctx          context.Context
	ChatID       int64
	MessageID    int // 0 = новое сообщение, иначе редактируем существующее
	Page         int
	Title        string
	ItemPrefix   string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList универсальная отрисовка пагинированного списка.
// Содержимое страницы отдаёт renderer по диапазону [startIdx, endIdx).
func (b *Bot) renderPaginatedList(params PaginationParams, totalCount int, itemsPerPage int, renderer func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton)) {
	if itemsPerPage <= 0 {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPaginationSize
	}

	startIdx := params.Page * itemsPerPage
	endIdx := startIdx + itemsPerPage
	if endIdx > totalCount {
		endIdx = totalCount
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if params.Page >= totalPages && totalPages > 0 {
		params.Page = totalPages - 1
		startIdx = params.Page * itemsPerPage
		endIdx = totalCount
	}

	content, keyboard := renderer(startIdx, endIdx)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		editMsg := tgbotapi.NewEditMessageTextAndMarkup(
			params.ChatID,
			params.MessageID,
			message.String(),
			markup,
		)
		editMsg.ParseMode = models.ParseModeHTML
		if _, err := b.tgService.Send(editMsg); err != nil {
			b.logger.Error().Err(err).Msg("edit paginated list error")
		}
	} else {
		msg := tgbotapi.NewMessage(params.ChatID, message.String())
		msg.ReplyMarkup = markup
		msg.ParseMode = models.ParseModeHTML
		if _, err := b.tgService.Send(msg); err != nil {
			b.logger.Error().Err(err).Msg("send paginated list error")
		}
	}
}

// renderPaginatedBanyas обертка для списка бань города.
func (b *Bot) renderPaginatedBanyas(params PaginationParams, banyas []*models.Banya) {
	b.renderPaginatedList(params, len(banyas), 0, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i, banya := range banyas[startIdx:endIdx] {
			content.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", startIdx+i+1, banya.Name))
			content.WriteString(fmt.Sprintf("   📍 %s\n", banya.Address))
			content.WriteString(fmt.Sprintf("   💰 %.0f ₽/час · 🕐 %s–%s", banya.PricePerHour, banya.OpeningTime, banya.ClosingTime))
			if banya.Rating > 0 {
				content.WriteString(fmt.Sprintf(" · ⭐ %.1f", banya.Rating))
			}
			content.WriteString("\n\n")

			btn := tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", startIdx+i+1, banya.Name),
				fmt.Sprintf("%s%d", params.ItemPrefix, banya.ID),
			)
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}

		return content.String(), keyboard
	})
}

// renderPaginatedMasters обертка для списка мастеров.
func (b *Bot) renderPaginatedMasters(params PaginationParams, masters []*models.BathMaster) {
	b.renderPaginatedList(params, len(masters), 0, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i, master := range masters[startIdx:endIdx] {
			name := fmt.Sprintf("Мастер #%d", master.ID)
			if user, err := b.userService.GetUserByID(params.Ctx, master.UserID); err == nil && user.FullName() != "" {
				name = user.FullName()
			}
			content.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", startIdx+i+1, name))
			if master.ExperienceYears > 0 {
				content.WriteString(fmt.Sprintf("   🎓 Стаж %d лет · 💰 %.0f ₽/час", master.ExperienceYears, master.VisitPrice()))
			} else {
				content.WriteString(fmt.Sprintf("   💰 %.0f ₽/час", master.VisitPrice()))
			}
			if master.Rating > 0 {
				content.WriteString(fmt.Sprintf(" · ⭐ %.1f", master.Rating))
			}
			content.WriteString("\n\n")

			btn := tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", startIdx+i+1, name),
				fmt.Sprintf("%s%d", params.ItemPrefix, master.ID),
			)
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}

		return content.String(), keyboard
	})
}

// renderPaginatedBookings обертка для списков заявок владельца и мастера.
func (b *Bot) renderPaginatedBookings(params PaginationParams, bookings []*models.Booking) {
	b.renderPaginatedList(params, len(bookings), 5, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for _, booking := range bookings[startIdx:endIdx] {
			clientName := fmt.Sprintf("Клиент #%d", booking.UserID)
			if user, err := b.userService.GetUserByID(params.Ctx, booking.UserID); err == nil && user.FullName() != "" {
				clientName = user.FullName()
			}

			content.WriteString(fmt.Sprintf("%s <b>Заявка #%d</b> — %s\n", statusEmoji(booking.Status), booking.ID, booking.TypeLabel()))
			content.WriteString(fmt.Sprintf("   👤 %s · 👥 %d\n", clientName, booking.GuestsCount))
			content.WriteString(fmt.Sprintf("   📅 %s, %s–%s\n",
				booking.Date.Format("02.01.2006"),
				models.FormatHour(booking.StartHour()),
				models.FormatHour(booking.EndHour())))
			content.WriteString(fmt.Sprintf("   🔗 /booking_%d\n\n", booking.ID))

			btn := tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("#%d: %s %s", booking.ID, booking.Date.Format("02.01"), models.FormatHour(booking.StartHour())),
				fmt.Sprintf("%s%d", params.ItemPrefix, booking.ID),
			)
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}

		return content.String(), keyboard
	})
}

package bot

import (
	"context"
	"fmt"
	"strings"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startMasterVisit вход в сценарий «выезд мастера на дом»:
// выбор мастера из доступных с выездом.
func (b *Bot) startMasterVisit(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	b.setUserState(ctx, update.Message.From.ID, models.StateSelectMaster, map[string]interface{}{
		"flow": flowVisit,
	})

	b.sendVisitMastersPage(ctx, chatID, update.Message.From.ID, 0, 0)
}

// sendVisitMastersPage показывает страницу мастеров с выездом на дом.
func (b *Bot) sendVisitMastersPage(ctx context.Context, chatID, userID int64, messageID, page int) {
	masters, err := b.catalogService.GetAvailableMasters(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("get available masters error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	visiting := make([]*models.BathMaster, 0, len(masters))
	for _, m := range masters {
		if m.CanVisitHome {
			visiting = append(visiting, m)
		}
	}
	if len(visiting) == 0 {
		b.sendMessage(chatID, "Сейчас нет мастеров, готовых выехать на дом. Загляните позже!")
		return
	}

	b.renderPaginatedMasters(PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "💆 <b>Мастера с выездом на дом:</b>",
		ItemPrefix:   "vmaster:",
		PagePrefix:   "vmasters_page:",
		BackCallback: "back_to_main",
	}, visiting)
}

// showVisitMasterCard карточка мастера для выезда на дом.
func (b *Bot) showVisitMasterCard(ctx context.Context, update *tgbotapi.Update, masterID int64) {
	callback := update.CallbackQuery

	master, err := b.catalogService.GetBathMasterByID(ctx, masterID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var card strings.Builder
	name := fmt.Sprintf("Мастер #%d", master.ID)
	if user, err := b.userService.GetUserByID(ctx, master.UserID); err == nil && user.FullName() != "" {
		name = user.FullName()
	}
	card.WriteString(fmt.Sprintf("💆 <b>%s</b>\n", name))
	if master.Rating > 0 {
		card.WriteString(fmt.Sprintf("⭐ %.1f (%d отзывов)\n", master.Rating, master.RatingCount))
	}
	if master.ExperienceYears > 0 {
		card.WriteString(fmt.Sprintf("🎓 Стаж: %d лет\n", master.ExperienceYears))
	}
	if master.Bio != "" {
		card.WriteString(fmt.Sprintf("\n%s\n", master.Bio))
	}
	if specs := formatSpecializations(master); specs != "" {
		card.WriteString("\n" + specs + "\n")
	}
	card.WriteString(fmt.Sprintf("\n💰 Выезд: %.0f ₽/час\n", master.VisitPrice()))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Выбрать дату", fmt.Sprintf("vmaster_book:%d", masterID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Отзывы", fmt.Sprintf("master_reviews:%d", masterID)),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", "vmasters_page:0"),
		),
	)

	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, card.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send master card error")
	}
}

// formatSpecializations строка специализаций мастера.
func formatSpecializations(m *models.BathMaster) string {
	var parts []string
	add := func(ok bool, label string) {
		if ok {
			parts = append(parts, label)
		}
	}
	add(m.SpecializesRussian, "русская парная")
	add(m.SpecializesFinnish, "финская сауна")
	add(m.SpecializesHammam, "хаммам")
	add(m.SpecializesMassage, "массаж")
	add(m.SpecializesScrub, "скрабирование")
	add(m.SpecializesAromatherapy, "ароматерапия")
	if len(parts) == 0 {
		return ""
	}
	return "✨ " + strings.Join(parts, " · ")
}

// handleVisitMasterBook фиксирует мастера и ведёт к выбору даты.
func (b *Bot) handleVisitMasterBook(ctx context.Context, update *tgbotapi.Update, masterID int64) {
	callback := update.CallbackQuery

	master, err := b.catalogService.GetBathMasterByID(ctx, masterID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if !master.IsAvailable || !master.CanVisitHome {
		b.sendMessage(callback.Message.Chat.ID, "Этот мастер сейчас не принимает заявки на выезд.")
		return
	}

	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		state = &models.UserState{UserID: callback.From.ID, TempData: map[string]interface{}{}}
	}
	state.Set("flow", flowVisit)
	state.Set("master_id", masterID)

	b.startDateSelection(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

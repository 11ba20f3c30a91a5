package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"banyabot/internal/domain"
	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showMasterProfile профиль мастера глазами самого мастера.
func (b *Bot) showMasterProfile(ctx context.Context, update *tgbotapi.Update) {
	b.sendMasterProfile(ctx, update.Message.Chat.ID, update.Message.From)
}

func (b *Bot) sendMasterProfile(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	master, err := b.catalogService.GetBathMasterByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		b.startMasterFormForUser(ctx, chatID, from)
		return
	}
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	availability := "🔴 не принимаете заявки"
	if master.IsAvailable {
		availability = "🟢 принимаете заявки"
	}

	var card strings.Builder
	card.WriteString("💼 <b>Ваш профиль мастера</b>\n\n")
	card.WriteString(fmt.Sprintf("Статус: %s\n", availability))
	if master.Rating > 0 {
		card.WriteString(fmt.Sprintf("⭐ %.1f (%d отзывов)\n", master.Rating, master.RatingCount))
	}
	if master.ExperienceYears > 0 {
		card.WriteString(fmt.Sprintf("🎓 Стаж: %d лет\n", master.ExperienceYears))
	}
	card.WriteString(fmt.Sprintf("💰 Сеанс: %.0f ₽", master.PricePerSession))
	if master.CanVisitHome {
		card.WriteString(fmt.Sprintf(" · Выезд: %.0f ₽", master.VisitPrice()))
	}
	card.WriteString("\n")
	if specs := formatSpecializations(master); specs != "" {
		card.WriteString(specs + "\n")
	}
	if master.Bio != "" {
		card.WriteString("\n" + master.Bio + "\n")
	}
	card.WriteString("\nПереключить доступность: «" + btnMasterToggle + "»")

	visitLabel := "🏠 Включить выезд на дом"
	if master.CanVisitHome {
		visitLabel = "🏠 Отключить выезд на дом"
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(visitLabel, "master_toggle_visit"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, card.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send master profile error")
	}
}

// showMasterRequests заявки, ждущие подтверждения мастера.
func (b *Bot) showMasterRequests(ctx context.Context, update *tgbotapi.Update) {
	b.sendMasterRequests(ctx, update.Message.Chat.ID, update.Message.From, 0, 0)
}

func (b *Bot) sendMasterRequests(ctx context.Context, chatID int64, from *tgbotapi.User, messageID, page int) {
	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	master, err := b.catalogService.GetBathMasterByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		b.sendMessage(chatID, "Сначала заполните профиль мастера: «"+btnMasterProfile+"»")
		return
	}
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	bookings, err := b.bookingService.GetMasterBookings(ctx, master.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("master_id", master.ID).Msg("get master bookings error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	actionable := filterRequests(bookings, func(booking *models.Booking) bool {
		return booking.Status == models.StatusAwaitingConfirmations &&
			booking.MasterConfirmed == models.ConfirmationPending
	})
	if len(actionable) == 0 {
		b.sendMessage(chatID, "Новых заявок нет. 💆")
		return
	}

	b.renderPaginatedBookings(PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "📥 <b>Заявки, ждущие вашего подтверждения:</b>",
		ItemPrefix:   "booking_card:",
		PagePrefix:   "master_requests_page:",
		BackCallback: "back_to_main",
	}, actionable)
}

// toggleMasterAvailability переключает приём новых заявок.
func (b *Bot) toggleMasterAvailability(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	master, err := b.catalogService.GetBathMasterByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		b.startMasterFormForUser(ctx, chatID, update.Message.From)
		return
	}
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if err := b.catalogService.SetMasterAvailable(ctx, user.ID, !master.IsAvailable); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if master.IsAvailable {
		b.sendMessage(chatID, "🔴 Вы больше не видны клиентам и не получаете новые заявки.")
	} else {
		b.sendMessage(chatID, "🟢 Вы снова принимаете заявки!")
	}
}

// toggleMasterVisit переключает выезд на дом с кнопки на карточке профиля.
func (b *Bot) toggleMasterVisit(ctx context.Context, update *tgbotapi.Update) {
	callback := update.CallbackQuery

	user, err := b.resolveUser(ctx, callback.From)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	master, err := b.catalogService.GetBathMasterByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		b.startMasterFormForUser(ctx, callback.Message.Chat.ID, callback.From)
		return
	}
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	master.CanVisitHome = !master.CanVisitHome
	if err := b.catalogService.UpdateMaster(ctx, master); err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if master.CanVisitHome {
		b.answerCallback(callback.ID, "Выезд на дом включён")
	} else {
		b.answerCallback(callback.ID, "Выезд на дом отключён")
	}
	b.sendMasterProfile(ctx, callback.Message.Chat.ID, callback.From)
}

// Шаги анкеты мастера.
const (
	masterStepBio = iota + 1
	masterStepExperience
	masterStepPrice
	masterStepVisit
	masterStepVisitPrice
	masterStepSpecs
)

// startMasterFormForUser анкета профиля мастера.
// Вызывается и с кнопки, и автоматом при переключении роли без профиля.
func (b *Bot) startMasterFormForUser(ctx context.Context, chatID int64, from *tgbotapi.User) {
	b.setUserState(ctx, from.ID, models.StateMasterForm, map[string]interface{}{
		"form_step": masterStepBio,
	})

	msg := tgbotapi.NewMessage(chatID, "💼 Заполним профиль мастера.\n\nШаг 1. Расскажите о себе в паре предложений:")
	msg.ReplyMarkup = cancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send master form start error")
	}
}

func (b *Bot) handleMasterFormStep(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text = strings.TrimSpace(text)

	switch state.GetInt("form_step") {
	case masterStepBio:
		if len([]rune(text)) < 10 {
			b.sendMessage(chatID, "Слишком коротко. Клиенты выбирают по описанию — напишите хотя бы пару предложений.")
			return
		}
		state.Set("form_bio", text)
		state.Set("form_step", masterStepExperience)
		b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
		b.sendMessage(chatID, "Шаг 2. Сколько лет стажа? (числом)")

	case masterStepExperience:
		years, err := strconv.Atoi(text)
		if err != nil || years < 0 || years > 60 {
			b.sendMessage(chatID, "Введите число от 0 до 60.")
			return
		}
		state.Set("form_experience", years)
		state.Set("form_step", masterStepPrice)
		b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
		b.sendMessage(chatID, "Шаг 3. Цена сеанса в рублях (например, 3000):")

	case masterStepPrice:
		price, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil || price <= 0 {
			b.sendMessage(chatID, "Нужно положительное число, например 3000.")
			return
		}
		state.Set("form_price", price)
		state.Set("form_step", masterStepVisit)
		b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
		b.sendMessage(chatID, "Шаг 4. Выезжаете к клиентам на дом? (да/нет)")

	case masterStepVisit:
		switch strings.ToLower(text) {
		case "да", "ага", "yes":
			state.Set("form_visit", true)
			state.Set("form_step", masterStepVisitPrice)
			b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
			msg := tgbotapi.NewMessage(chatID, "Шаг 5. Цена выезда за час, или пропустите — будет как за сеанс:")
			msg.ReplyMarkup = skipCancelKeyboard()
			if _, err := b.tgService.Send(msg); err != nil {
				b.logger.Error().Err(err).Msg("send visit price request error")
			}
		case "нет", "no":
			state.Set("form_visit", false)
			state.Set("form_step", masterStepSpecs)
			b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
			b.askMasterSpecs(chatID)
		default:
			b.sendMessage(chatID, "Ответьте «да» или «нет».")
		}

	case masterStepVisitPrice:
		if text != btnSkip {
			price, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
			if err != nil || price <= 0 {
				b.sendMessage(chatID, "Нужно положительное число или кнопка «"+btnSkip+"».")
				return
			}
			state.Set("form_visit_price", price)
		}
		state.Set("form_step", masterStepSpecs)
		b.setUserState(ctx, userID, models.StateMasterForm, state.TempData)
		b.askMasterSpecs(chatID)

	case masterStepSpecs:
		if text != btnSkip {
			state.Set("form_specs", text)
		}
		b.finishMasterForm(ctx, update, state)

	default:
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Анкета сбилась. Начните заново: «"+btnMasterProfile+"»")
	}
}

func (b *Bot) askMasterSpecs(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Последний шаг. Специализации через запятую (парение, финская, хаммам, массаж, скраб, ароматерапия) или пропустите:")
	msg.ReplyMarkup = skipCancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send specs request error")
	}
}

func (b *Bot) finishMasterForm(ctx context.Context, update *tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	master := &models.BathMaster{
		UserID:          user.ID,
		Bio:             state.GetString("form_bio"),
		ExperienceYears: state.GetInt("form_experience"),
		PricePerSession: getFloat(state, "form_price"),
		CanVisitHome:    getBool(state, "form_visit"),
		IsAvailable:     true,
	}
	if visitPrice := getFloat(state, "form_visit_price"); visitPrice > 0 {
		master.HomeVisitPrice = &visitPrice
	}
	applySpecializations(master, state.GetString("form_specs"))

	if err := b.catalogService.RegisterMaster(ctx, master); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(chatID, "🎉 Профиль мастера создан! Клиенты уже могут вас найти.")
	b.handleMainMenu(ctx, update)
}

// applySpecializations включает флаги специализаций по ключевым словам.
func applySpecializations(master *models.BathMaster, text string) {
	lower := strings.ToLower(text)
	has := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}

	master.SpecializesRussian = has("парение", "парная", "русская", "веник")
	master.SpecializesFinnish = has("финская", "сауна")
	master.SpecializesHammam = has("хаммам", "хамам")
	master.SpecializesMassage = has("массаж")
	master.SpecializesScrub = has("скраб", "пилинг")
	master.SpecializesAromatherapy = has("аромат")
}

func getBool(state *models.UserState, key string) bool {
	b, _ := state.TempData[key].(bool)
	return b
}

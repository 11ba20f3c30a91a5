package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"banyabot/internal/domain"
	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Сценарии клиента. Оба ведут к одному подтверждению заявки:
//
//	баня:   город → баня → дата → длительность → слот → гости → мастер → заметки
//	выезд:  мастер → дата → длительность → слот → гости → адрес → заметки
const (
	flowBanya = "banya"
	flowVisit = "visit"
)

const maxVisitDurationHours = 3

// startBanyaSearch вход в сценарий бронирования бани: выбор города.
func (b *Bot) startBanyaSearch(ctx context.Context, update *tgbotapi.Update) {
	cities, err := b.catalogService.GetActiveCities(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("get active cities error")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if len(cities) == 0 {
		b.sendMessage(update.Message.Chat.ID, "Пока нет подключенных городов. Загляните позже!")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cities))
	for _, city := range cities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(city.Name, fmt.Sprintf("city:%d", city.ID)),
		))
	}

	b.setUserState(ctx, update.Message.From.ID, models.StateSelectCity, map[string]interface{}{
		"flow": flowBanya,
	})

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, "🏙 Выберите город:", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send city list error")
	}
}

// handleCitySelected сохраняет город и показывает бани города.
func (b *Bot) handleCitySelected(ctx context.Context, update *tgbotapi.Update, cityID int64) {
	callback := update.CallbackQuery

	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		state = &models.UserState{UserID: callback.From.ID, TempData: map[string]interface{}{"flow": flowBanya}}
	}
	state.Set("city_id", cityID)
	b.setUserState(ctx, callback.From.ID, models.StateSelectBanya, state.TempData)

	// Город запоминаем в профиле, чтобы API и будущие сценарии его знали
	if user, err := b.resolveUser(ctx, callback.From); err == nil {
		if err := b.userService.SetCity(ctx, user.ID, cityID); err != nil {
			b.logger.Warn().Err(err).Int64("city_id", cityID).Msg("set user city error")
		}
	}

	b.sendBanyasPage(ctx, callback.Message.Chat.ID, callback.From.ID, 0, 0)
}

// sendBanyasPage показывает страницу бань выбранного города.
func (b *Bot) sendBanyasPage(ctx context.Context, chatID, userID int64, messageID, page int) {
	state := b.getUserState(ctx, userID)
	if state == nil {
		b.sendMessage(chatID, "Сессия устарела. Начните заново: /start")
		return
	}
	cityID := state.GetInt64("city_id")

	banyas, err := b.catalogService.SearchBanyas(ctx, cityID)
	if err != nil {
		b.logger.Error().Err(err).Int64("city_id", cityID).Msg("search banyas error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(banyas) == 0 {
		b.sendMessage(chatID, "В этом городе пока нет активных бань.")
		return
	}

	b.renderPaginatedBanyas(PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "🧖 <b>Бани города:</b>",
		ItemPrefix:   "banya:",
		PagePrefix:   "banyas_page:",
		BackCallback: "back_to_main",
	}, banyas)
}

// showBanyaCard карточка бани с удобствами и кнопкой бронирования.
func (b *Bot) showBanyaCard(ctx context.Context, update *tgbotapi.Update, banyaID int64) {
	callback := update.CallbackQuery

	banya, err := b.catalogService.GetBanyaByID(ctx, banyaID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var card strings.Builder
	card.WriteString(fmt.Sprintf("🧖 <b>%s</b>\n", banya.Name))
	if banya.Rating > 0 {
		card.WriteString(fmt.Sprintf("⭐ %.1f (%d отзывов)\n", banya.Rating, banya.RatingCount))
	}
	if banya.Description != "" {
		card.WriteString(fmt.Sprintf("\n%s\n", banya.Description))
	}
	card.WriteString(fmt.Sprintf("\n📍 %s\n", banya.Address))
	card.WriteString(fmt.Sprintf("🕐 %s–%s\n", banya.OpeningTime, banya.ClosingTime))
	card.WriteString(fmt.Sprintf("💰 %.0f ₽/час (от %d ч)\n", banya.PricePerHour, banya.MinHours))
	card.WriteString(fmt.Sprintf("👥 До %d гостей\n", banya.MaxGuests))
	if amenities := formatAmenities(banya); amenities != "" {
		card.WriteString("\n" + amenities + "\n")
	}
	if photos, err := b.catalogService.GetBanyaPhotos(ctx, banyaID); err == nil && len(photos) > 0 {
		card.WriteString(fmt.Sprintf("\n📷 <a href=\"%s\">Фото</a>", photos[0].URL))
		if len(photos) > 1 {
			card.WriteString(fmt.Sprintf(" (ещё %d)", len(photos)-1))
		}
		card.WriteString("\n")
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Выбрать дату", fmt.Sprintf("banya_book:%d", banyaID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Отзывы", fmt.Sprintf("banya_reviews:%d", banyaID)),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", "back_to_banyas"),
		),
	)

	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, card.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send banya card error")
	}
}

// formatAmenities строка удобств через точку-разделитель.
func formatAmenities(banya *models.Banya) string {
	var parts []string
	add := func(ok bool, label string) {
		if ok {
			parts = append(parts, label)
		}
	}
	add(banya.HasRussianBanya, "русская парная")
	add(banya.HasFinnishSauna, "финская сауна")
	add(banya.HasHammam, "хаммам")
	add(banya.HasInfraredSauna, "ИК-сауна")
	add(banya.HasPool, "бассейн")
	add(banya.HasJacuzzi, "джакузи")
	add(banya.HasColdPlunge, "купель")
	add(banya.HasSaltRoom, "соляная комната")
	add(banya.HasRestRoom, "комната отдыха")
	add(banya.HasBilliards, "бильярд")
	add(banya.HasKaraoke, "караоке")
	add(banya.HasBBQ, "мангал")
	add(banya.HasParking, "парковка")
	add(banya.ProvidesVeniks, "веники")
	add(banya.ProvidesTowels, "полотенца")
	add(banya.ProvidesRobes, "халаты")
	add(banya.ProvidesFood, "еда")
	add(banya.ProvidesDrinks, "напитки")
	if len(parts) == 0 {
		return ""
	}
	return "✨ " + strings.Join(parts, " · ")
}

// showBanyaReviews показывает последние отзывы о бане.
func (b *Bot) showBanyaReviews(ctx context.Context, update *tgbotapi.Update, banyaID int64) {
	callback := update.CallbackQuery

	reviews, err := b.reviewService.GetBanyaReviews(ctx, banyaID, 5)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	b.sendReviewsList(callback.Message.Chat.ID, reviews)
}

func (b *Bot) showMasterReviews(ctx context.Context, update *tgbotapi.Update, masterID int64) {
	callback := update.CallbackQuery

	reviews, err := b.reviewService.GetMasterReviews(ctx, masterID, 5)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	b.sendReviewsList(callback.Message.Chat.ID, reviews)
}

func (b *Bot) sendReviewsList(chatID int64, reviews []*models.Review) {
	if len(reviews) == 0 {
		b.sendMessage(chatID, "Отзывов пока нет. Будьте первым!")
		return
	}

	var message strings.Builder
	message.WriteString("⭐ <b>Последние отзывы:</b>\n\n")
	for _, review := range reviews {
		message.WriteString(fmt.Sprintf("%s <i>%s</i>\n", strings.Repeat("⭐", review.Rating), review.CreatedAt.Format("02.01.2006")))
		if review.Comment != "" {
			message.WriteString(review.Comment + "\n")
		}
		message.WriteString("\n")
	}
	b.sendHTML(chatID, message.String())
}

// handleBanyaBook фиксирует баню и ведёт к выбору даты.
func (b *Bot) handleBanyaBook(ctx context.Context, update *tgbotapi.Update, banyaID int64) {
	callback := update.CallbackQuery

	banya, err := b.catalogService.GetBanyaByID(ctx, banyaID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if !banya.IsActive {
		b.sendMessage(callback.Message.Chat.ID, "Эта баня сейчас не принимает бронирования.")
		return
	}

	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		state = &models.UserState{UserID: callback.From.ID, TempData: map[string]interface{}{}}
	}
	state.Set("flow", flowBanya)
	state.Set("banya_id", banyaID)

	b.startDateSelection(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

// startDateSelection общий шаг даты для обоих сценариев.
func (b *Bot) startDateSelection(ctx context.Context, chatID, userID int64, state *models.UserState) {
	b.setUserState(ctx, userID, models.StateSelectDate, state.TempData)

	today := time.Now()
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сегодня", "date:"+today.Format("2006-01-02")),
			tgbotapi.NewInlineKeyboardButtonData("Завтра", "date:"+today.AddDate(0, 0, 1).Format("2006-01-02")),
			tgbotapi.NewInlineKeyboardButtonData("Послезавтра", "date:"+today.AddDate(0, 0, 2).Format("2006-01-02")),
		),
	)

	text := "📅 Выберите дату или введите её в формате ДД.ММ.ГГГГ (например, 25.12.2026):"
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send date selection error")
	}
}

// handleDateInput дата, введённая текстом.
func (b *Bot) handleDateInput(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	date, err := time.Parse("02.01.2006", strings.TrimSpace(text))
	if err != nil {
		b.sendMessage(update.Message.Chat.ID, "Неверный формат даты. Используйте ДД.ММ.ГГГГ (например, 25.12.2026)")
		return
	}
	b.acceptDate(ctx, update.Message.Chat.ID, update.Message.From.ID, date, state)
}

// handleDateCallback дата с быстрой кнопки.
func (b *Bot) handleDateCallback(ctx context.Context, update *tgbotapi.Update, dateStr string) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		b.logger.Error().Err(err).Str("date", dateStr).Msg("parse date callback error")
		return
	}
	b.acceptDate(ctx, callback.Message.Chat.ID, callback.From.ID, date, state)
}

func (b *Bot) acceptDate(ctx context.Context, chatID, userID int64, date time.Time, state *models.UserState) {
	if err := b.bookingService.ValidateBookingDate(date); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state.Set("date", date.Format("2006-01-02"))
	b.askDuration(ctx, chatID, userID, state)
}

// askDuration длительность в часах: от минимума бани или 1 до потолка.
func (b *Bot) askDuration(ctx context.Context, chatID, userID int64, state *models.UserState) {
	minHours, maxHours := 1, maxVisitDurationHours
	if state.GetString("flow") == flowBanya {
		banya, err := b.catalogService.GetBanyaByID(ctx, state.GetInt64("banya_id"))
		if err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		minHours = banya.MinHours
		if minHours < 1 {
			minHours = 1
		}
		window := banya.ClosingHour() - banya.OpeningHour()
		maxHours = minHours + 5
		if maxHours > window {
			maxHours = window
		}
	}

	b.setUserState(ctx, userID, models.StateSelectDuration, state.TempData)

	keyboard := numberRowKeyboard(minHours, maxHours, "duration:", 3)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "⏱ На сколько часов?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send duration selection error")
	}
}

func (b *Bot) handleDurationSelected(ctx context.Context, update *tgbotapi.Update, hours int) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	state.Set("duration", hours)
	b.showAvailableSlots(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

// showAvailableSlots запрашивает свободные часы и предлагает их кнопками.
func (b *Bot) showAvailableSlots(ctx context.Context, chatID, userID int64, state *models.UserState) {
	banyaID := optionalID(state, "banya_id")
	var masterID *int64
	if state.GetString("flow") == flowVisit {
		masterID = optionalID(state, "master_id")
	}
	date := state.GetTime("date")
	duration := state.GetInt("duration")

	slots, err := b.availability.GetAvailableSlots(ctx, banyaID, masterID, date, duration)
	if err != nil {
		b.logger.Error().Err(err).Time("date", date).Msg("get available slots error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	slots = dropPassedSlots(slots, date, time.Now())

	if len(slots) == 0 {
		b.setUserState(ctx, userID, models.StateSelectDate, state.TempData)
		b.sendMessage(chatID, "😔 На эту дату свободных слотов нет. Попробуйте другую дату (ДД.ММ.ГГГГ):")
		return
	}

	b.setUserState(ctx, userID, models.StateSelectSlot, state.TempData)

	keyboard := slotsKeyboard(slots, "slot:", 4)
	text := fmt.Sprintf("🕐 Свободное время на %s (длительность %d ч):", date.Format("02.01.2006"), duration)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send slots error")
	}
}

// dropPassedSlots убирает для сегодняшней даты уже наступившие часы.
func dropPassedSlots(slots []string, date time.Time, now time.Time) []string {
	if date.Year() != now.Year() || date.YearDay() != now.YearDay() {
		return slots
	}
	cutoff := models.FormatHour(now.Hour() + 1)
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if s >= cutoff {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bot) handleSlotSelected(ctx context.Context, update *tgbotapi.Update, slot string) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	var hour int
	if _, err := fmt.Sscanf(slot, "%d:", &hour); err != nil {
		b.logger.Error().Err(err).Str("slot", slot).Msg("parse slot error")
		return
	}
	state.Set("start_hour", hour)

	b.askGuests(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

func (b *Bot) askGuests(ctx context.Context, chatID, userID int64, state *models.UserState) {
	maxGuests := 4
	if state.GetString("flow") == flowBanya {
		if banya, err := b.catalogService.GetBanyaByID(ctx, state.GetInt64("banya_id")); err == nil && banya.MaxGuests > 0 {
			maxGuests = banya.MaxGuests
			if maxGuests > 8 {
				maxGuests = 8
			}
		}
	}

	b.setUserState(ctx, userID, models.StateSelectGuests, state.TempData)

	keyboard := numberRowKeyboard(1, maxGuests, "guests:", 4)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "👥 Сколько гостей?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send guests selection error")
	}
}

func (b *Bot) handleGuestsSelected(ctx context.Context, update *tgbotapi.Update, guests int) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	state.Set("guests", guests)

	if state.GetString("flow") == flowVisit {
		b.askAddress(ctx, callback.Message.Chat.ID, callback.From.ID, state)
		return
	}
	b.askBanyaMaster(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

// askBanyaMaster предлагает мастеров бани. Слот мастера не проверяется
// заранее: занятость вскроется при создании и вернёт понятную ошибку.
func (b *Bot) askBanyaMaster(ctx context.Context, chatID, userID int64, state *models.UserState) {
	masters, err := b.catalogService.GetMastersByBanya(ctx, state.GetInt64("banya_id"))
	if err != nil {
		b.logger.Error().Err(err).Msg("get banya masters error")
		masters = nil
	}

	available := make([]*models.BathMaster, 0, len(masters))
	for _, m := range masters {
		if m.IsAvailable {
			available = append(available, m)
		}
	}

	if len(available) == 0 {
		state.Set("master_id", int64(0))
		b.askNotes(ctx, chatID, userID, state)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(available)+1)
	for _, m := range available {
		label := b.masterButtonLabel(ctx, m)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("master:%d", m.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Без мастера", "master:0"),
	))

	b.setUserState(ctx, userID, models.StateSelectMaster, state.TempData)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "💆 Добавить банного мастера?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send master selection error")
	}
}

func (b *Bot) masterButtonLabel(ctx context.Context, m *models.BathMaster) string {
	name := fmt.Sprintf("Мастер #%d", m.ID)
	if user, err := b.userService.GetUserByID(ctx, m.UserID); err == nil && user.FullName() != "" {
		name = user.FullName()
	}
	if m.Rating > 0 {
		return fmt.Sprintf("%s ⭐%.1f · %.0f ₽", name, m.Rating, m.PricePerSession)
	}
	return fmt.Sprintf("%s · %.0f ₽", name, m.PricePerSession)
}

func (b *Bot) handleMasterSelected(ctx context.Context, update *tgbotapi.Update, masterID int64) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	state.Set("master_id", masterID)
	b.askNotes(ctx, callback.Message.Chat.ID, callback.From.ID, state)
}

// askAddress адрес для выезда мастера на дом.
func (b *Bot) askAddress(ctx context.Context, chatID, userID int64, state *models.UserState) {
	b.setUserState(ctx, userID, models.StateEnterAddress, state.TempData)

	msg := tgbotapi.NewMessage(chatID, "📍 Введите адрес, куда приедет мастер (улица, дом, квартира):")
	msg.ReplyMarkup = cancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send address request error")
	}
}

func (b *Bot) handleAddressInput(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	address := strings.TrimSpace(text)
	if len([]rune(address)) < 5 {
		b.sendMessage(update.Message.Chat.ID, "Адрес слишком короткий. Укажите улицу и дом.")
		return
	}

	state.Set("address", address)
	b.askNotes(ctx, update.Message.Chat.ID, update.Message.From.ID, state)
}

func (b *Bot) askNotes(ctx context.Context, chatID, userID int64, state *models.UserState) {
	b.setUserState(ctx, userID, models.StateEnterNotes, state.TempData)

	msg := tgbotapi.NewMessage(chatID, "💬 Пожелания к бронированию? (например: «нужны веники», «приедем чуть раньше»)")
	msg.ReplyMarkup = skipCancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send notes request error")
	}
}

func (b *Bot) handleNotesInput(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	if text != btnSkip {
		state.Set("notes", strings.TrimSpace(text))
	}
	b.showBookingSummary(ctx, update.Message.Chat.ID, update.Message.From.ID, state)
}

// showBookingSummary сводка заявки перед созданием.
func (b *Bot) showBookingSummary(ctx context.Context, chatID, userID int64, state *models.UserState) {
	b.setUserState(ctx, userID, models.StateConfirmBooking, state.TempData)

	date := state.GetTime("date")
	duration := state.GetInt("duration")
	startHour := state.GetInt("start_hour")

	var summary strings.Builder
	summary.WriteString("📋 <b>Проверьте заявку:</b>\n\n")

	if banyaID := state.GetInt64("banya_id"); banyaID != 0 {
		if banya, err := b.catalogService.GetBanyaByID(ctx, banyaID); err == nil {
			summary.WriteString(fmt.Sprintf("🧖 Баня: <b>%s</b>\n📍 %s\n", banya.Name, banya.Address))
		}
	}
	if masterID := state.GetInt64("master_id"); masterID != 0 {
		if master, err := b.catalogService.GetBathMasterByID(ctx, masterID); err == nil {
			summary.WriteString(fmt.Sprintf("💆 Мастер: %s\n", b.masterButtonLabel(ctx, master)))
		}
	}
	summary.WriteString(fmt.Sprintf("📅 %s, %s–%s\n",
		date.Format("02.01.2006"), models.FormatHour(startHour), models.FormatHour(startHour+duration)))
	summary.WriteString(fmt.Sprintf("👥 Гостей: %d\n", state.GetInt("guests")))
	if address := state.GetString("address"); address != "" {
		summary.WriteString(fmt.Sprintf("📍 Адрес выезда: %s\n", address))
	}
	if notes := state.GetString("notes"); notes != "" {
		summary.WriteString(fmt.Sprintf("💬 %s\n", notes))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Оформить", "create_booking"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel_flow"),
		),
	)

	if _, err := b.tgService.SendWithInlineKeyboard(chatID, summary.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send booking summary error")
	}
}

// handleCreateBooking создаёт бронирование из собранных данных.
// Заявка создаётся черновиком: подтверждает её клиент отдельным действием.
func (b *Bot) handleCreateBooking(ctx context.Context, update *tgbotapi.Update) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	user, err := b.resolveUser(ctx, callback.From)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	input := domain.CreateBookingInput{
		UserID:        user.ID,
		BanyaID:       optionalID(state, "banya_id"),
		BathMasterID:  optionalID(state, "master_id"),
		Date:          state.GetTime("date"),
		StartHour:     state.GetInt("start_hour"),
		DurationHours: state.GetInt("duration"),
		GuestsCount:   state.GetInt("guests"),
		ClientAddress: state.GetString("address"),
		UserNotes:     state.GetString("notes"),
	}

	start := time.Now()
	booking, err := b.bookingService.CreateBooking(ctx, input)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		// Слот увели из-под носа, сразу предлагаем свежие
		if errors.Is(err, domain.ErrSlotConflict) {
			b.showAvailableSlots(ctx, callback.Message.Chat.ID, callback.From.ID, state)
		}
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.WithLabelValues(booking.BookingType).Inc()
		b.metrics.BookingDuration.WithLabelValues(booking.BookingType).Observe(time.Since(start).Seconds())
	}

	b.clearUserState(ctx, callback.From.ID)

	text := fmt.Sprintf("🎉 Заявка #%d создана!\n\nПодтвердите её, чтобы отправить площадке.", booking.ID)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("client_confirm:%d", booking.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("cancel_booking:%d", booking.ID)),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send booking created error")
	}
}

// optionalID достаёт id из TempData; 0 трактуется как «не выбрано».
func optionalID(state *models.UserState, key string) *int64 {
	id := state.GetInt64(key)
	if id == 0 {
		return nil
	}
	return &id
}

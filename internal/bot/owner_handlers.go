package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showOwnerBanyas бани владельца с переключателями активности.
func (b *Bot) showOwnerBanyas(ctx context.Context, update *tgbotapi.Update) {
	b.sendOwnerBanyas(ctx, update.Message.Chat.ID, update.Message.From)
}

func (b *Bot) sendOwnerBanyas(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	banyas, err := b.catalogService.GetBanyasByOwner(ctx, user.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("owner_id", user.ID).Msg("get owner banyas error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(banyas) == 0 {
		b.sendMessage(chatID, "У вас пока нет бань. Нажмите «"+btnAddBanya+"», чтобы зарегистрировать первую.")
		return
	}

	var message strings.Builder
	message.WriteString("🏠 <b>Ваши бани:</b>\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(banyas))
	for _, banya := range banyas {
		activeMark := "🔴 скрыта"
		toggleLabel := "🟢 Включить"
		if banya.IsActive {
			activeMark = "🟢 активна"
			toggleLabel = "🔴 Скрыть"
		}
		message.WriteString(fmt.Sprintf("<b>%s</b> — %s\n📍 %s\n💰 %.0f ₽/час", banya.Name, activeMark, banya.Address, banya.PricePerHour))
		if banya.Rating > 0 {
			message.WriteString(fmt.Sprintf(" · ⭐ %.1f (%d)", banya.Rating, banya.RatingCount))
		}
		message.WriteString("\n\n")

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", toggleLabel, banya.Name), fmt.Sprintf("toggle_banya:%d", banya.ID)),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send owner banyas error")
	}
}

// handleToggleBanya переключает видимость бани для клиентов.
func (b *Bot) handleToggleBanya(ctx context.Context, update *tgbotapi.Update, banyaID int64) {
	callback := update.CallbackQuery

	user, err := b.resolveUser(ctx, callback.From)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	banya, err := b.catalogService.GetBanyaByID(ctx, banyaID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if err := b.catalogService.SetBanyaActive(ctx, user.ID, banyaID, !banya.IsActive); err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if banya.IsActive {
		b.answerCallback(callback.ID, "Баня скрыта из поиска")
	} else {
		b.answerCallback(callback.ID, "Баня снова в поиске")
	}
	b.sendOwnerBanyas(ctx, callback.Message.Chat.ID, callback.From)
}

// showOwnerRequests заявки по баням владельца: сперва ждущие его
// подтверждения, затем остальные активные от сегодняшнего дня.
func (b *Bot) showOwnerRequests(ctx context.Context, update *tgbotapi.Update) {
	b.sendOwnerRequests(ctx, update.Message.Chat.ID, update.Message.From, 0, 0)
}

func (b *Bot) sendOwnerRequests(ctx context.Context, chatID int64, from *tgbotapi.User, messageID, page int) {
	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	banyas, err := b.catalogService.GetBanyasByOwner(ctx, user.ID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(banyas) == 0 {
		b.sendMessage(chatID, "У вас пока нет бань, поэтому нет и заявок.")
		return
	}

	var all []*models.Booking
	for _, banya := range banyas {
		bookings, err := b.bookingService.GetBanyaBookings(ctx, banya.ID)
		if err != nil {
			b.logger.Error().Err(err).Int64("banya_id", banya.ID).Msg("get banya bookings error")
			continue
		}
		all = append(all, bookings...)
	}

	actionable := filterRequests(all, func(booking *models.Booking) bool {
		return booking.Status == models.StatusAwaitingConfirmations &&
			booking.BanyaConfirmed == models.ConfirmationPending
	})
	if len(actionable) == 0 {
		b.sendMessage(chatID, "Новых заявок нет. 🧖")
		return
	}

	b.renderPaginatedBookings(PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "📥 <b>Заявки, ждущие вашего подтверждения:</b>",
		ItemPrefix:   "booking_card:",
		PagePrefix:   "owner_requests_page:",
		BackCallback: "back_to_main",
	}, actionable)
}

// filterRequests отбирает заявки по предикату и сортирует по дате визита.
func filterRequests(bookings []*models.Booking, keep func(*models.Booking) bool) []*models.Booking {
	out := make([]*models.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if keep(booking) {
			out = append(out, booking)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartHour() < out[j].StartHour()
	})
	return out
}

// Шаги анкеты регистрации бани. Номер шага живёт в TempData["form_step"].
const (
	venueStepName = iota + 1
	venueStepCity
	venueStepAddress
	venueStepPrice
	venueStepMinHours
	venueStepMaxGuests
	venueStepHours
	venueStepAmenities
	venueStepDescription
)

// startVenueForm анкета новой бани, шаг за шагом текстом.
func (b *Bot) startVenueForm(ctx context.Context, update *tgbotapi.Update) {
	b.setUserState(ctx, update.Message.From.ID, models.StateVenueForm, map[string]interface{}{
		"form_step": venueStepName,
	})

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "🏠 Регистрируем баню.\n\nШаг 1. Как называется баня?")
	msg.ReplyMarkup = cancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send venue form start error")
	}
}

func (b *Bot) handleVenueFormStep(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text = strings.TrimSpace(text)

	switch state.GetInt("form_step") {
	case venueStepName:
		if len([]rune(text)) < 3 {
			b.sendMessage(chatID, "Название слишком короткое, минимум 3 символа.")
			return
		}
		state.Set("form_name", text)
		state.Set("form_step", venueStepCity)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.askVenueCity(ctx, chatID)

	case venueStepCity:
		city, err := b.matchCityByName(ctx, text)
		if err != nil {
			b.sendMessage(chatID, "Не нашел такой город. Напишите название из списка выше.")
			return
		}
		state.Set("form_city_id", city.ID)
		state.Set("form_step", venueStepAddress)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.sendMessage(chatID, "Шаг 3. Адрес бани (улица, дом):")

	case venueStepAddress:
		if len([]rune(text)) < 5 {
			b.sendMessage(chatID, "Адрес слишком короткий. Укажите улицу и дом.")
			return
		}
		state.Set("form_address", text)
		state.Set("form_step", venueStepPrice)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.sendMessage(chatID, "Шаг 4. Цена за час в рублях (например, 2500):")

	case venueStepPrice:
		price, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil || price <= 0 {
			b.sendMessage(chatID, "Нужно положительное число, например 2500.")
			return
		}
		state.Set("form_price", price)
		state.Set("form_step", venueStepMinHours)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.sendMessage(chatID, "Шаг 5. Минимальное бронирование в часах (обычно 2):")

	case venueStepMinHours:
		minHours, err := strconv.Atoi(text)
		if err != nil || minHours < 1 || minHours > 12 {
			b.sendMessage(chatID, "Введите число от 1 до 12.")
			return
		}
		state.Set("form_min_hours", minHours)
		state.Set("form_step", venueStepMaxGuests)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.sendMessage(chatID, "Шаг 6. Максимум гостей:")

	case venueStepMaxGuests:
		maxGuests, err := strconv.Atoi(text)
		if err != nil || maxGuests < 1 || maxGuests > 100 {
			b.sendMessage(chatID, "Введите число от 1 до 100.")
			return
		}
		state.Set("form_max_guests", maxGuests)
		state.Set("form_step", venueStepHours)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)
		b.sendMessage(chatID, "Шаг 7. Часы работы в формате ЧЧ:ММ-ЧЧ:ММ (например, 10:00-23:00). Для круглосуточной — 00:00-00:00:")

	case venueStepHours:
		opening, closing, err := parseWorkingHours(text)
		if err != nil {
			b.sendMessage(chatID, "Не понял. Пример: 10:00-23:00")
			return
		}
		state.Set("form_opening", opening)
		state.Set("form_closing", closing)
		state.Set("form_step", venueStepAmenities)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)

		msg := tgbotapi.NewMessage(chatID, "Шаг 8. Перечислите удобства через запятую (парная, сауна, хаммам, бассейн, купель, джакузи, караоке, бильярд, мангал, парковка, веники, полотенца) или пропустите:")
		msg.ReplyMarkup = skipCancelKeyboard()
		if _, err := b.tgService.Send(msg); err != nil {
			b.logger.Error().Err(err).Msg("send amenities request error")
		}

	case venueStepAmenities:
		if text != btnSkip {
			state.Set("form_amenities", text)
		}
		state.Set("form_step", venueStepDescription)
		b.setUserState(ctx, userID, models.StateVenueForm, state.TempData)

		msg := tgbotapi.NewMessage(chatID, "Шаг 9. Короткое описание для клиентов или пропустите:")
		msg.ReplyMarkup = skipCancelKeyboard()
		if _, err := b.tgService.Send(msg); err != nil {
			b.logger.Error().Err(err).Msg("send description request error")
		}

	case venueStepDescription:
		if text != btnSkip {
			state.Set("form_description", text)
		}
		b.finishVenueForm(ctx, update, state)

	default:
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Анкета сбилась. Начните заново: «"+btnAddBanya+"»")
	}
}

func (b *Bot) askVenueCity(ctx context.Context, chatID int64) {
	cities, err := b.catalogService.GetActiveCities(ctx)
	if err != nil || len(cities) == 0 {
		b.sendMessage(chatID, "Шаг 2. В каком городе баня?")
		return
	}

	names := make([]string, 0, len(cities))
	for _, city := range cities {
		names = append(names, city.Name)
	}
	b.sendMessage(chatID, "Шаг 2. В каком городе баня?\nДоступны: "+strings.Join(names, ", "))
}

func (b *Bot) matchCityByName(ctx context.Context, name string) (*models.City, error) {
	cities, err := b.catalogService.GetActiveCities(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, city := range cities {
		if strings.ToLower(city.Name) == needle {
			return city, nil
		}
	}
	return nil, fmt.Errorf("city %q not found", name)
}

func (b *Bot) finishVenueForm(ctx context.Context, update *tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	banya := &models.Banya{
		OwnerID:      user.ID,
		CityID:       state.GetInt64("form_city_id"),
		Name:         state.GetString("form_name"),
		Description:  state.GetString("form_description"),
		Address:      state.GetString("form_address"),
		PricePerHour: getFloat(state, "form_price"),
		MinHours:     state.GetInt("form_min_hours"),
		MaxGuests:    state.GetInt("form_max_guests"),
		OpeningTime:  state.GetString("form_opening"),
		ClosingTime:  state.GetString("form_closing"),
		IsActive:     true,
	}
	applyAmenities(banya, state.GetString("form_amenities"))

	if err := b.catalogService.RegisterBanya(ctx, banya); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(chatID, fmt.Sprintf("🎉 Баня «%s» зарегистрирована и видна клиентам!", banya.Name))
	b.handleMainMenu(ctx, update)
}

// parseWorkingHours разбирает "ЧЧ:ММ-ЧЧ:ММ" в пару строк времени.
func parseWorkingHours(text string) (opening, closing string, err error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected HH:MM-HH:MM, got %q", text)
	}
	opening = strings.TrimSpace(parts[0])
	closing = strings.TrimSpace(parts[1])
	for _, v := range []string{opening, closing} {
		if _, err := time.Parse("15:04", v); err != nil {
			return "", "", fmt.Errorf("bad time %q: %w", v, err)
		}
	}
	return opening, closing, nil
}

// applyAmenities включает флаги удобств по ключевым словам из анкеты.
func applyAmenities(banya *models.Banya, text string) {
	lower := strings.ToLower(text)
	has := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}

	banya.HasRussianBanya = has("парная", "русская")
	banya.HasFinnishSauna = has("сауна", "финская")
	banya.HasHammam = has("хаммам", "хамам")
	banya.HasInfraredSauna = has("инфракрас", "ик-сауна")
	banya.HasPool = has("бассейн")
	banya.HasJacuzzi = has("джакузи")
	banya.HasColdPlunge = has("купель")
	banya.HasSaltRoom = has("солян")
	banya.HasRestRoom = has("комната отдыха", "отдых")
	banya.HasBilliards = has("бильярд")
	banya.HasKaraoke = has("караоке")
	banya.HasBBQ = has("мангал", "барбекю", "bbq")
	banya.HasParking = has("парковка", "стоянка")
	banya.ProvidesVeniks = has("веник")
	banya.ProvidesTowels = has("полотенц")
	banya.ProvidesRobes = has("халат")
	banya.ProvidesFood = has("еда", "кухня", "закуск")
	banya.ProvidesDrinks = has("напитк", "чай")
}

// getFloat достаёт float64 из TempData с учетом JSON-десериализации.
func getFloat(state *models.UserState, key string) float64 {
	switch v := state.TempData[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

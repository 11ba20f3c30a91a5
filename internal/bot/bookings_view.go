package bot

import (
	"context"
	"fmt"
	"strings"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showUserBookings список бронирований клиента со ссылками на карточки.
func (b *Bot) showUserBookings(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	bookings, err := b.bookingService.GetUserBookings(ctx, user.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", user.ID).Msg("get user bookings error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(bookings) == 0 {
		b.sendMessage(chatID, "У вас пока нет бронирований. Нажмите «"+btnFindBanya+"», чтобы создать первое!")
		return
	}

	var message strings.Builder
	message.WriteString("📊 <b>Ваши бронирования:</b>\n\n")
	for _, booking := range bookings {
		message.WriteString(fmt.Sprintf("%s %s — %s, %s–%s\n/booking_%d\n\n",
			statusEmoji(booking.Status),
			booking.TypeLabel(),
			booking.Date.Format("02.01.2006"),
			models.FormatHour(booking.StartHour()),
			models.FormatHour(booking.EndHour()),
			booking.ID,
		))
	}
	b.sendHTML(chatID, message.String())
}

// showBookingCard карточка бронирования с кнопками по роли смотрящего.
func (b *Bot) showBookingCard(ctx context.Context, chatID int64, from *tgbotapi.User, bookingID int64) {
	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	booking, err := b.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	isClient, isOwner, isMaster := b.bookingRoles(ctx, user, booking)
	isAdmin := b.isAdmin(user.TelegramID)
	if !isClient && !isOwner && !isMaster && !isAdmin {
		b.sendMessage(chatID, "⚠️ Это бронирование вам недоступно.")
		return
	}

	card := b.renderBookingCard(ctx, booking)
	keyboard := b.bookingCardKeyboard(booking, isClient, isOwner, isMaster, isAdmin)

	if keyboard == nil {
		b.sendHTML(chatID, card)
		return
	}
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, card, *keyboard); err != nil {
		b.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("send booking card error")
	}
}

// bookingRoles определяет отношение пользователя к бронированию.
// Владение баней и профиль мастера сверяются по внутреннему user.ID.
func (b *Bot) bookingRoles(ctx context.Context, user *models.User, booking *models.Booking) (isClient, isOwner, isMaster bool) {
	isClient = booking.UserID == user.ID

	if booking.BanyaID != nil {
		if banya, err := b.catalogService.GetBanyaByID(ctx, *booking.BanyaID); err == nil {
			isOwner = banya.OwnerID == user.ID
		}
	}
	if booking.BathMasterID != nil {
		if master, err := b.catalogService.GetBathMasterByID(ctx, *booking.BathMasterID); err == nil {
			isMaster = master.UserID == user.ID
		}
	}
	return isClient, isOwner, isMaster
}

func (b *Bot) renderBookingCard(ctx context.Context, booking *models.Booking) string {
	var card strings.Builder
	card.WriteString(fmt.Sprintf("%s <b>Бронирование #%d</b> — %s\n\n",
		statusEmoji(booking.Status), booking.ID, statusLabel(booking.Status)))

	card.WriteString(fmt.Sprintf("🔖 %s\n", booking.TypeLabel()))
	card.WriteString(fmt.Sprintf("📅 %s, %s–%s (%d ч)\n",
		booking.Date.Format("02.01.2006"),
		models.FormatHour(booking.StartHour()),
		models.FormatHour(booking.EndHour()),
		booking.DurationHours))

	if booking.BanyaID != nil {
		if banya, err := b.catalogService.GetBanyaByID(ctx, *booking.BanyaID); err == nil {
			card.WriteString(fmt.Sprintf("🧖 %s, %s\n", banya.Name, banya.Address))
		}
	}
	if booking.BathMasterID != nil {
		if master, err := b.catalogService.GetBathMasterByID(ctx, *booking.BathMasterID); err == nil {
			card.WriteString(fmt.Sprintf("💆 %s\n", b.masterButtonLabel(ctx, master)))
		}
	}
	card.WriteString(fmt.Sprintf("👥 Гостей: %d\n", booking.GuestsCount))
	if booking.ClientAddress != "" {
		card.WriteString(fmt.Sprintf("📍 Адрес выезда: %s\n", booking.ClientAddress))
	}
	if booking.UserNotes != "" {
		card.WriteString(fmt.Sprintf("💬 %s\n", booking.UserNotes))
	}
	card.WriteString(fmt.Sprintf("💰 Итого: %.0f ₽\n", booking.TotalPrice))

	card.WriteString("\n<b>Подтверждения:</b>\n")
	card.WriteString(fmt.Sprintf("Клиент %s", confirmationMark(booking.ClientConfirmed)))
	if booking.BanyaConfirmed.Required() {
		card.WriteString(fmt.Sprintf(" · Баня %s", confirmationMark(booking.BanyaConfirmed)))
	}
	if booking.MasterConfirmed.Required() {
		card.WriteString(fmt.Sprintf(" · Мастер %s", confirmationMark(booking.MasterConfirmed)))
	}
	card.WriteString("\n")

	if booking.Status == models.StatusCancelled {
		card.WriteString(fmt.Sprintf("\n🚫 Отменено: %s", cancelledByLabel(booking.CancelledBy)))
		if booking.CancellationReason != "" {
			card.WriteString(fmt.Sprintf("\nПричина: %s", booking.CancellationReason))
		}
		card.WriteString("\n")
	}

	return card.String()
}

func cancelledByLabel(by string) string {
	switch by {
	case models.CancelledByClient:
		return "клиентом"
	case models.CancelledByBanya:
		return "баней"
	case models.CancelledByMaster:
		return "мастером"
	case models.CancelledByAdmin:
		return "администратором"
	default:
		return by
	}
}

// bookingCardKeyboard собирает кнопки действий, доступных смотрящему.
// nil: действий нет, карточка отправляется без клавиатуры.
func (b *Bot) bookingCardKeyboard(booking *models.Booking, isClient, isOwner, isMaster, isAdmin bool) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch booking.Status {
	case models.StatusPending:
		if isClient {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить заявку", fmt.Sprintf("client_confirm:%d", booking.ID)),
			))
		}
	case models.StatusAwaitingConfirmations:
		if isOwner && booking.BanyaConfirmed == models.ConfirmationPending {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Принять (баня)", fmt.Sprintf("banya_confirm:%d", booking.ID)),
			))
		}
		if isMaster && booking.MasterConfirmed == models.ConfirmationPending {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Принять (мастер)", fmt.Sprintf("master_confirm:%d", booking.ID)),
			))
		}
	case models.StatusCompleted:
		if isClient {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⭐ Оставить отзыв", fmt.Sprintf("review:%d", booking.ID)),
			))
		}
	}

	active := booking.Status == models.StatusPending ||
		booking.Status == models.StatusAwaitingConfirmations ||
		booking.Status == models.StatusConfirmed
	if active && (isClient || isOwner || isMaster || isAdmin) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("cancel_booking:%d", booking.ID)),
		))
	}

	if len(rows) == 0 {
		return nil
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

// handleConfirmCallback подтверждение одной из сторон сделки.
func (b *Bot) handleConfirmCallback(ctx context.Context, update *tgbotapi.Update, bookingID int64, party string) {
	callback := update.CallbackQuery

	user, err := b.resolveUser(ctx, callback.From)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	actor := b.actorOf(user)

	var booking *models.Booking
	switch party {
	case "client":
		booking, err = b.bookingService.ClientConfirm(ctx, bookingID, actor)
	case "banya":
		booking, err = b.bookingService.BanyaConfirm(ctx, bookingID, actor)
	case "master":
		booking, err = b.bookingService.MasterConfirm(ctx, bookingID, actor)
	default:
		b.logger.Error().Str("party", party).Msg("unknown confirm party")
		return
	}
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	text := "Подтверждение принято"
	if booking.Status == models.StatusConfirmed {
		text = "Все стороны подтвердили! 🎉"
	}
	b.answerCallback(callback.ID, text)
	b.showBookingCard(ctx, callback.Message.Chat.ID, callback.From, bookingID)
}

// handleCancelBookingStart спрашивает причину перед отменой.
func (b *Bot) handleCancelBookingStart(ctx context.Context, update *tgbotapi.Update, bookingID int64) {
	callback := update.CallbackQuery

	b.setUserState(ctx, callback.From.ID, models.StateCancelReason, map[string]interface{}{
		"cancel_booking_id": bookingID,
	})

	msg := tgbotapi.NewMessage(callback.Message.Chat.ID,
		fmt.Sprintf("Укажите причину отмены бронирования #%d:", bookingID))
	msg.ReplyMarkup = skipCancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send cancel reason request error")
	}
}

func (b *Bot) handleCancelReasonInput(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID
	bookingID := state.GetInt64("cancel_booking_id")
	if bookingID == 0 {
		b.clearUserState(ctx, update.Message.From.ID)
		b.sendMessage(chatID, "Сессия устарела. Начните заново: /start")
		return
	}

	reason := strings.TrimSpace(text)
	if reason == btnSkip {
		reason = ""
	}

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if _, err = b.bookingService.CancelBooking(ctx, bookingID, b.actorOf(user), reason); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)

	b.sendMessage(chatID, fmt.Sprintf("🚫 Бронирование #%d отменено.", bookingID))
	b.handleMainMenu(ctx, update)
}

// handleReviewStart клиент выбирает оценку завершённого бронирования.
func (b *Bot) handleReviewStart(ctx context.Context, update *tgbotapi.Update, bookingID int64) {
	callback := update.CallbackQuery

	b.setUserState(ctx, callback.From.ID, models.StateEnterReview, map[string]interface{}{
		"review_booking_id": bookingID,
	})

	keyboard := ratingKeyboard("rate:")
	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, "⭐ Оцените визит от 1 до 5:", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send rating request error")
	}
}

func (b *Bot) handleRatingSelected(ctx context.Context, update *tgbotapi.Update, rating int) {
	callback := update.CallbackQuery
	state := b.getUserState(ctx, callback.From.ID)
	if state == nil || state.GetInt64("review_booking_id") == 0 {
		b.sendMessage(callback.Message.Chat.ID, "Сессия устарела. Начните заново: /start")
		return
	}

	state.Set("review_rating", rating)
	b.setUserState(ctx, callback.From.ID, models.StateEnterReview, state.TempData)

	msg := tgbotapi.NewMessage(callback.Message.Chat.ID, "💬 Добавьте пару слов о визите или пропустите:")
	msg.ReplyMarkup = skipCancelKeyboard()
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send review comment request error")
	}
}

func (b *Bot) handleReviewCommentInput(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID

	rating := state.GetInt("review_rating")
	if rating == 0 {
		b.sendMessage(chatID, "Сначала поставьте оценку кнопками выше.")
		return
	}

	comment := strings.TrimSpace(text)
	if comment == btnSkip {
		comment = ""
	}

	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	review := &models.Review{
		BookingID: state.GetInt64("review_booking_id"),
		UserID:    user.ID,
		Rating:    rating,
		Comment:   comment,
	}
	if _, err := b.reviewService.CreateReview(ctx, review); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		b.clearUserState(ctx, update.Message.From.ID)
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(chatID, "Спасибо за отзыв! ⭐")
	b.handleMainMenu(ctx, update)
}

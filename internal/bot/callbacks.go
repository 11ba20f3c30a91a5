package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallbackQuery единая точка входа для inline-кнопок.
func (b *Bot) handleCallbackQuery(ctx context.Context, update *tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	userID := callback.From.ID

	if b.metrics != nil {
		b.metrics.CallbacksProcessed.Inc()
	}
	b.logger.Debug().Str("data", data).Msg("callback received")

	// Отвечаем на callback сразу, чтобы убрать "часики"
	b.answerCallback(callback.ID, "")

	if b.isBlacklisted(userID) {
		return
	}

	switch {
	case data == "back_to_main":
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)

	// --- сценарий бронирования бани ---
	case strings.HasPrefix(data, "city:"):
		cityID, _ := strconv.ParseInt(strings.TrimPrefix(data, "city:"), 10, 64)
		b.handleCitySelected(ctx, update, cityID)

	case strings.HasPrefix(data, "banyas_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "banyas_page:"))
		b.sendBanyasPage(ctx, callback.Message.Chat.ID, userID, callback.Message.MessageID, page)

	case data == "back_to_banyas":
		b.sendBanyasPage(ctx, callback.Message.Chat.ID, userID, 0, 0)

	case strings.HasPrefix(data, "banya_book:"):
		banyaID, _ := strconv.ParseInt(strings.TrimPrefix(data, "banya_book:"), 10, 64)
		b.handleBanyaBook(ctx, update, banyaID)

	case strings.HasPrefix(data, "banya_reviews:"):
		banyaID, _ := strconv.ParseInt(strings.TrimPrefix(data, "banya_reviews:"), 10, 64)
		b.showBanyaReviews(ctx, update, banyaID)

	case strings.HasPrefix(data, "banya:"):
		banyaID, _ := strconv.ParseInt(strings.TrimPrefix(data, "banya:"), 10, 64)
		b.showBanyaCard(ctx, update, banyaID)

	// --- сценарий выезда мастера ---
	case strings.HasPrefix(data, "vmasters_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "vmasters_page:"))
		b.sendVisitMastersPage(ctx, callback.Message.Chat.ID, userID, callback.Message.MessageID, page)

	case strings.HasPrefix(data, "vmaster_book:"):
		masterID, _ := strconv.ParseInt(strings.TrimPrefix(data, "vmaster_book:"), 10, 64)
		b.handleVisitMasterBook(ctx, update, masterID)

	case strings.HasPrefix(data, "vmaster:"):
		masterID, _ := strconv.ParseInt(strings.TrimPrefix(data, "vmaster:"), 10, 64)
		b.showVisitMasterCard(ctx, update, masterID)

	case strings.HasPrefix(data, "master_reviews:"):
		masterID, _ := strconv.ParseInt(strings.TrimPrefix(data, "master_reviews:"), 10, 64)
		b.showMasterReviews(ctx, update, masterID)

	// --- общие шаги заявки ---
	case strings.HasPrefix(data, "date:"):
		b.handleDateCallback(ctx, update, strings.TrimPrefix(data, "date:"))

	case strings.HasPrefix(data, "duration:"):
		hours, _ := strconv.Atoi(strings.TrimPrefix(data, "duration:"))
		b.handleDurationSelected(ctx, update, hours)

	case strings.HasPrefix(data, "slot:"):
		b.handleSlotSelected(ctx, update, strings.TrimPrefix(data, "slot:"))

	case strings.HasPrefix(data, "guests:"):
		guests, _ := strconv.Atoi(strings.TrimPrefix(data, "guests:"))
		b.handleGuestsSelected(ctx, update, guests)

	case strings.HasPrefix(data, "master:"):
		masterID, _ := strconv.ParseInt(strings.TrimPrefix(data, "master:"), 10, 64)
		b.handleMasterSelected(ctx, update, masterID)

	case data == "create_booking":
		b.handleCreateBooking(ctx, update)

	case data == "cancel_flow":
		b.clearUserState(ctx, userID)
		b.sendMessage(callback.Message.Chat.ID, "Заявка отменена.")
		b.handleMainMenu(ctx, update)

	// --- жизненный цикл бронирования ---
	case strings.HasPrefix(data, "client_confirm:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "client_confirm:"), 10, 64)
		b.handleConfirmCallback(ctx, update, bookingID, "client")

	case strings.HasPrefix(data, "banya_confirm:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "banya_confirm:"), 10, 64)
		b.handleConfirmCallback(ctx, update, bookingID, "banya")

	case strings.HasPrefix(data, "master_confirm:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "master_confirm:"), 10, 64)
		b.handleConfirmCallback(ctx, update, bookingID, "master")

	case strings.HasPrefix(data, "cancel_booking:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "cancel_booking:"), 10, 64)
		b.handleCancelBookingStart(ctx, update, bookingID)

	case strings.HasPrefix(data, "booking_card:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "booking_card:"), 10, 64)
		b.showBookingCard(ctx, callback.Message.Chat.ID, callback.From, bookingID)

	// --- отзывы ---
	case strings.HasPrefix(data, "review:"):
		bookingID, _ := strconv.ParseInt(strings.TrimPrefix(data, "review:"), 10, 64)
		b.handleReviewStart(ctx, update, bookingID)

	case strings.HasPrefix(data, "rate:"):
		rating, _ := strconv.Atoi(strings.TrimPrefix(data, "rate:"))
		b.handleRatingSelected(ctx, update, rating)

	// --- роли и кабинеты ---
	case strings.HasPrefix(data, "role:"):
		b.handleRoleSwitch(ctx, update, strings.TrimPrefix(data, "role:"))

	case strings.HasPrefix(data, "toggle_banya:"):
		banyaID, _ := strconv.ParseInt(strings.TrimPrefix(data, "toggle_banya:"), 10, 64)
		b.handleToggleBanya(ctx, update, banyaID)

	case data == "master_toggle_visit":
		b.toggleMasterVisit(ctx, update)

	case strings.HasPrefix(data, "owner_requests_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "owner_requests_page:"))
		b.sendOwnerRequests(ctx, callback.Message.Chat.ID, callback.From, callback.Message.MessageID, page)

	case strings.HasPrefix(data, "master_requests_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "master_requests_page:"))
		b.sendMasterRequests(ctx, callback.Message.Chat.ID, callback.From, callback.Message.MessageID, page)

	// --- админ ---
	case data == "export_users":
		b.handleExportUsers(ctx, update)

	case strings.HasPrefix(data, "export_range:"):
		b.handleExportRangeChoice(ctx, update, strings.TrimPrefix(data, "export_range:"))

	default:
		b.logger.Debug().Str("data", data).Msg("unknown callback")
	}
}

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update *tgbotapi.Update) {
	userID := update.Message.From.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
		if strings.HasPrefix(text, "/") {
			b.metrics.CommandsProcessed.Inc()
		}
	}

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	state := b.getUserState(ctx, userID)

	// Отмена сбрасывает любой диалог
	if text == btnCancel || text == btnBack {
		b.clearUserState(ctx, userID)
		b.sendMessage(update.Message.Chat.ID, "Действие отменено.")
		b.handleMainMenu(ctx, update)
		return
	}

	if b.handleUserCommands(ctx, update, text) {
		return
	}

	if b.handleMenuButtons(ctx, update, text) {
		return
	}

	if state != nil && b.handleUserStateSteps(ctx, update, text, state) {
		return
	}

	// Неизвестный ввод вне диалога: показываем меню
	b.handleMainMenu(ctx, update)
}

// handleUserCommands обрабатывает slash-команды
func (b *Bot) handleUserCommands(ctx context.Context, update *tgbotapi.Update, text string) bool {
	switch {
	case text == "/start" || strings.EqualFold(text, "сброс") || strings.EqualFold(text, "reset"):
		b.clearUserState(ctx, update.Message.From.ID)
		b.handleStartWithUserTracking(ctx, update)
		return true

	case text == "/help":
		b.showHelp(ctx, update)
		return true

	case strings.HasPrefix(text, "/booking_"):
		idStr := strings.TrimPrefix(text, "/booking_")
		bookingID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			b.sendMessage(update.Message.Chat.ID, "Неверный номер бронирования")
			return true
		}
		b.showBookingCard(ctx, update.Message.Chat.ID, update.Message.From, bookingID)
		return true

	case text == "/stats":
		b.showStats(ctx, update)
		return true

	case text == "/export":
		b.startExportDialog(ctx, update)
		return true
	}
	return false
}

// handleMenuButtons кнопки главного меню по ролям
func (b *Bot) handleMenuButtons(ctx context.Context, update *tgbotapi.Update, text string) bool {
	switch text {
	case btnFindBanya:
		b.startBanyaSearch(ctx, update)
		return true

	case btnMasterVisit:
		b.startMasterVisit(ctx, update)
		return true

	case btnMyBookings:
		b.showUserBookings(ctx, update)
		return true

	case btnContacts:
		b.showAdminContacts(ctx, update)
		return true

	case btnSwitchRole:
		b.showRoleMenu(ctx, update)
		return true

	case btnMyBanyas:
		b.showOwnerBanyas(ctx, update)
		return true

	case btnBanyaRequests:
		b.showOwnerRequests(ctx, update)
		return true

	case btnAddBanya:
		b.startVenueForm(ctx, update)
		return true

	case btnMasterProfile:
		b.showMasterProfile(ctx, update)
		return true

	case btnMasterRequests:
		b.showMasterRequests(ctx, update)
		return true

	case btnMasterToggle:
		b.toggleMasterAvailability(ctx, update)
		return true

	case btnStats:
		b.showStats(ctx, update)
		return true

	case btnExport:
		b.startExportDialog(ctx, update)
		return true
	}
	return false
}

// handleUserStateSteps обрабатывает ввод пользователя в зависимости от текущего шага
func (b *Bot) handleUserStateSteps(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) bool {
	switch state.CurrentStep {
	case models.StateSelectDate, models.StateWaitingDate:
		b.handleDateInput(ctx, update, text, state)
		return true

	case models.StateEnterAddress:
		b.handleAddressInput(ctx, update, text, state)
		return true

	case models.StateEnterNotes:
		b.handleNotesInput(ctx, update, text, state)
		return true

	case models.StateCancelReason:
		b.handleCancelReasonInput(ctx, update, text, state)
		return true

	case models.StateEnterReview:
		b.handleReviewCommentInput(ctx, update, text, state)
		return true

	case models.StateVenueForm:
		b.handleVenueFormStep(ctx, update, text, state)
		return true

	case models.StateMasterForm:
		b.handleMasterFormStep(ctx, update, text, state)
		return true

	case models.StateExportRange:
		b.handleExportRangeInput(ctx, update, text, state)
		return true
	}

	return false
}

func (b *Bot) handleStartWithUserTracking(ctx context.Context, update *tgbotapi.Update) {
	from := update.Message.From
	user := &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}

	if err := b.userService.SaveUser(ctx, user); err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", from.ID).Msg("Error tracking user")
	}

	b.handleMainMenu(ctx, update)
}

// handleMainMenu показывает главное меню с клавиатурой под роль
func (b *Bot) handleMainMenu(ctx context.Context, update *tgbotapi.Update) {
	var chatID int64
	var from *tgbotapi.User
	if update.Message != nil {
		chatID = update.Message.Chat.ID
		from = update.Message.From
	} else if update.CallbackQuery != nil {
		chatID = update.CallbackQuery.Message.Chat.ID
		from = update.CallbackQuery.From
	} else {
		return
	}

	user, err := b.resolveUser(ctx, from)
	if err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", from.ID).Msg("resolve user error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.setUserState(ctx, from.ID, models.StateMainMenu, nil)

	text := "Добро пожаловать в сервис бронирования бань! 🧖\nВыберите действие:"
	switch user.Role {
	case models.RoleBanyaOwner:
		text = "Кабинет владельца бани. Выберите действие:"
	case models.RoleBathMaster:
		text = "Кабинет банного мастера. Выберите действие:"
	}

	keyboard := b.mainMenuKeyboard(user, b.isAdmin(from.ID))
	if _, err := b.tgService.SendWithKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send main menu error")
	}
}

func (b *Bot) showHelp(_ context.Context, update *tgbotapi.Update) {
	help := `<b>Как это работает</b>

1. Выберите баню или мастера и удобное время.
2. Оформите заявку и подтвердите её.
3. Баня и мастер подтверждают со своей стороны — бронирование становится подтвержденным.

Команды:
/start — главное меню
/help — эта справка

Карточка бронирования: /booking_НОМЕР`
	b.sendHTML(update.Message.Chat.ID, help)
}

// showAdminContacts показывает контакты администраторов сервиса
func (b *Bot) showAdminContacts(_ context.Context, update *tgbotapi.Update) {
	var message strings.Builder
	message.WriteString("📞 Контакты поддержки:\n\n")
	for _, contact := range b.config.AdminContacts {
		message.WriteString(fmt.Sprintf("🔹 %s\n", contact))
	}
	if len(b.config.AdminContacts) == 0 {
		message.WriteString("Контакты не настроены.")
	} else {
		message.WriteString("\nПишите по вопросам бронирований и подключения площадок.")
	}
	b.sendMessage(update.Message.Chat.ID, message.String())
}

// showRoleMenu выбор роли. Роль одна, админство ролью не является.
func (b *Bot) showRoleMenu(ctx context.Context, update *tgbotapi.Update) {
	user, err := b.resolveUser(ctx, update.Message.From)
	if err != nil {
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧖 Клиент", "role:"+models.RoleClient),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Владелец бани", "role:"+models.RoleBanyaOwner),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💆 Банный мастер", "role:"+models.RoleBathMaster),
		),
	)

	text := fmt.Sprintf("Текущая роль: <b>%s</b>\nВыберите новую:", roleLabel(user.Role))
	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send role menu error")
	}
}

func (b *Bot) handleRoleSwitch(ctx context.Context, update *tgbotapi.Update, role string) {
	callback := update.CallbackQuery
	user, err := b.resolveUser(ctx, callback.From)
	if err != nil {
		b.answerCallback(callback.ID, "Ошибка")
		return
	}

	if err := b.userService.SwitchRole(ctx, user.ID, role); err != nil {
		b.answerCallback(callback.ID, "")
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Роль переключена")

	// Владельцу без бань и мастеру без профиля сразу предлагаем анкету
	switch role {
	case models.RoleBanyaOwner:
		banyas, err := b.catalogService.GetBanyasByOwner(ctx, user.ID)
		if err == nil && len(banyas) == 0 {
			b.sendMessage(callback.Message.Chat.ID,
				"У вас пока нет площадок. Нажмите «"+btnAddBanya+"», чтобы зарегистрировать баню.")
		}
	case models.RoleBathMaster:
		if _, err := b.catalogService.GetBathMasterByUserID(ctx, user.ID); err != nil {
			b.startMasterFormForUser(ctx, callback.Message.Chat.ID, callback.From)
			return
		}
	}

	b.handleMainMenu(ctx, update)
}

func roleLabel(role string) string {
	switch role {
	case models.RoleBanyaOwner:
		return "владелец бани"
	case models.RoleBathMaster:
		return "банный мастер"
	case models.RoleAdmin:
		return "администратор"
	default:
		return "клиент"
	}
}

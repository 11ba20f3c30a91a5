package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showStats показывает статистику администратору.
func (b *Bot) showStats(ctx context.Context, update *tgbotapi.Update) {
	if !b.isAdmin(update.Message.From.ID) {
		return
	}

	allUsers, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("get all users error")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при получении данных")
		return
	}

	roleCount := map[string]int{}
	for _, user := range allUsers {
		roleCount[user.Role]++
	}

	var message strings.Builder
	message.WriteString("📊 <b>Статистика</b>\n\n")

	message.WriteString("👥 <b>Пользователи</b>\n")
	message.WriteString(fmt.Sprintf("Всего: <b>%d</b>\n", len(allUsers)))
	message.WriteString(fmt.Sprintf("Клиентов: <b>%d</b>\n", roleCount[models.RoleClient]))
	message.WriteString(fmt.Sprintf("Владельцев бань: <b>%d</b>\n", roleCount[models.RoleBanyaOwner]))
	message.WriteString(fmt.Sprintf("Мастеров: <b>%d</b>\n\n", roleCount[models.RoleBathMaster]))

	message.WriteString("Последние регистрации:\n")
	count := 5
	if len(allUsers) < count {
		count = len(allUsers)
	}
	for i := 0; i < count; i++ {
		user := allUsers[i]
		message.WriteString(fmt.Sprintf("👤 %s — %s\n",
			user.FullName(),
			user.CreatedAt.Format("02.01.2006")))
	}
	message.WriteString("\n")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	periods := []struct {
		label string
		start time.Time
		end   time.Time
	}{
		{"Сегодня", today, today},
		{"7 дней", today.AddDate(0, 0, -6), today},
		{"30 дней", today.AddDate(0, 0, -29), today},
	}

	message.WriteString("📅 <b>Бронирования</b>\n")
	for _, p := range periods {
		summary := b.bookingSummary(ctx, p.start, p.end)
		message.WriteString(fmt.Sprintf("%s: %s\n", p.label, summary))
	}

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, message.String())
	msg.ParseMode = models.ParseModeHTML

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Экспорт пользователей", "export_users"),
		),
	)
	msg.ReplyMarkup = &keyboard

	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send stats error")
	}
}

// bookingSummary агрегирует заявки за период в компактный блок:
// всего, статусы, топ-бани и выручка подтвержденных.
func (b *Bot) bookingSummary(ctx context.Context, startDate, endDate time.Time) string {
	bookings, err := b.bookingService.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		b.logger.Error().Err(err).Msg("bookingSummary error")
		return "ошибка"
	}

	if len(bookings) == 0 {
		return "нет данных"
	}

	statusCount := map[string]int{}
	banyaCount := map[int64]int{}
	var revenue float64

	for _, bk := range bookings {
		statusCount[bk.Status]++
		if bk.BanyaID != nil {
			banyaCount[*bk.BanyaID]++
		}
		if bk.Status == models.StatusConfirmed || bk.Status == models.StatusCompleted {
			revenue += bk.TotalPrice
		}
	}

	statusOrder := []string{
		models.StatusPending,
		models.StatusAwaitingConfirmations,
		models.StatusConfirmed,
		models.StatusCompleted,
		models.StatusCancelled,
	}
	statusParts := make([]string, 0, len(statusOrder))
	for _, st := range statusOrder {
		if c := statusCount[st]; c > 0 {
			statusParts = append(statusParts, fmt.Sprintf("%s:%d", st, c))
		}
	}

	type kv struct {
		banyaID int64
		count   int
	}
	tops := make([]kv, 0, len(banyaCount))
	for id, c := range banyaCount {
		tops = append(tops, kv{banyaID: id, count: c})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].count == tops[j].count {
			return tops[i].banyaID < tops[j].banyaID
		}
		return tops[i].count > tops[j].count
	})
	if len(tops) > 3 {
		tops = tops[:3]
	}
	topParts := make([]string, 0, 3)
	for _, t := range tops {
		name := fmt.Sprintf("#%d", t.banyaID)
		if banya, err := b.catalogService.GetBanyaByID(ctx, t.banyaID); err == nil {
			name = banya.Name
		}
		topParts = append(topParts, fmt.Sprintf("%s:%d", name, t.count))
	}

	return fmt.Sprintf("всего %d | статусы [%s] | топ [%s] | выручка %.0f ₽",
		len(bookings),
		strings.Join(statusParts, ", "),
		strings.Join(topParts, ", "),
		revenue,
	)
}

// handleExportUsers выгрузка пользователей в Excel по кнопке из статистики.
func (b *Bot) handleExportUsers(ctx context.Context, update *tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback == nil || !b.isAdmin(callback.From.ID) {
		return
	}

	users, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("get users for export error")
		b.sendMessage(callback.Message.Chat.ID, "Ошибка при получении данных пользователей")
		return
	}

	filePath, err := b.exportUsersToExcel(ctx, users)
	if err != nil {
		b.logger.Error().Err(err).Msg("export users to excel error")
		b.sendMessage(callback.Message.Chat.ID, "Ошибка при создании файла экспорта")
		return
	}

	b.sendDocument(callback.Message.Chat.ID, filePath, "📊 Экспорт данных пользователей")
}

// startExportDialog выбор периода выгрузки бронирований.
func (b *Bot) startExportDialog(ctx context.Context, update *tgbotapi.Update) {
	if !b.isAdmin(update.Message.From.ID) {
		return
	}

	b.setUserState(ctx, update.Message.From.ID, models.StateExportRange, map[string]interface{}{})

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Неделя", "export_range:week"),
			tgbotapi.NewInlineKeyboardButtonData("Месяц", "export_range:month"),
			tgbotapi.NewInlineKeyboardButtonData("Квартал", "export_range:quarter"),
		),
	)

	text := "💾 За какой период выгрузить бронирования?\nМожно ввести свой период: ДД.ММ.ГГГГ ДД.ММ.ГГГГ"
	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send export dialog error")
	}
}

// handleExportRangeChoice период с кнопки: от сегодня вперед.
func (b *Bot) handleExportRangeChoice(ctx context.Context, update *tgbotapi.Update, rangeKey string) {
	callback := update.CallbackQuery
	if !b.isAdmin(callback.From.ID) {
		return
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var end time.Time
	switch rangeKey {
	case "week":
		end = start.AddDate(0, 0, 6)
	case "month":
		end = start.AddDate(0, 1, 0)
	case "quarter":
		end = start.AddDate(0, 3, 0)
	default:
		b.logger.Error().Str("range", rangeKey).Msg("unknown export range")
		return
	}

	b.clearUserState(ctx, callback.From.ID)
	b.runBookingsExport(ctx, callback.Message.Chat.ID, start, end)
}

// handleExportRangeInput произвольный период текстом.
func (b *Bot) handleExportRangeInput(ctx context.Context, update *tgbotapi.Update, text string, _ *models.UserState) {
	chatID := update.Message.Chat.ID
	if !b.isAdmin(update.Message.From.ID) {
		return
	}

	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 2 {
		b.sendMessage(chatID, "Нужны две даты: ДД.ММ.ГГГГ ДД.ММ.ГГГГ")
		return
	}
	start, err1 := time.Parse("02.01.2006", parts[0])
	end, err2 := time.Parse("02.01.2006", parts[1])
	if err1 != nil || err2 != nil || end.Before(start) {
		b.sendMessage(chatID, "Не понял период. Пример: 01.09.2026 30.09.2026")
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.runBookingsExport(ctx, chatID, start, end)
}

func (b *Bot) runBookingsExport(ctx context.Context, chatID int64, start, end time.Time) {
	b.sendMessage(chatID, fmt.Sprintf("Готовлю выгрузку %s — %s…", start.Format("02.01.2006"), end.Format("02.01.2006")))

	filePath, err := b.exportToExcel(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Msg("export bookings to excel error")
		b.sendMessage(chatID, "Ошибка при создании файла экспорта")
		return
	}

	b.sendDocument(chatID, filePath, fmt.Sprintf("📊 Бронирования %s — %s",
		start.Format("02.01.2006"), end.Format("02.01.2006")))
}

// sendDocument отправляет файл с диска документом в чат.
func (b *Bot) sendDocument(chatID int64, filePath, caption string) {
	file, err := os.Open(filePath)
	if err != nil {
		b.logger.Error().Err(err).Str("file_path", filePath).Msg("open export file error")
		b.sendMessage(chatID, "Ошибка при открытии файла")
		return
	}
	defer file.Close()

	fileReader := tgbotapi.FileReader{
		Name:   filepath.Base(filePath),
		Reader: file,
	}

	doc := tgbotapi.NewDocument(chatID, fileReader)
	doc.Caption = caption

	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("send document error")
		b.sendMessage(chatID, "Ошибка при отправке файла")
		return
	}
}

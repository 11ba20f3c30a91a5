package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"banyabot/internal/models"

	"github.com/xuri/excelize/v2"
)

// exportRow строка сетки экспорта: баня либо виртуальная строка выездов.
type exportRow struct {
	banyaID     int64 // 0 = выезды на дом
	label       string
	windowHours int
}

// exportToExcel создает Excel файл с сеткой бронирований: бани по
// строкам, дни периода по колонкам.
func (b *Bot) exportToExcel(ctx context.Context, startDate, endDate time.Time) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := b.bookingService.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	rows, err := b.collectExportRows(ctx, bookings)
	if err != nil {
		return "", fmt.Errorf("error collecting banyas: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Бронирования"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateHeaders := b.writeDateHeaders(f, sheetName, startDate, endDate)
	b.writeBanyaHeaders(f, sheetName, rows)
	b.writeBookingData(ctx, f, sheetName, bookings, rows, dateHeaders)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 24)
	}

	lastCol := getLastColumn(len(dateHeaders) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("export_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

// collectExportRows активные бани всех городов плюс бани, встретившиеся
// в бронированиях периода, плюс строка выездов на дом.
func (b *Bot) collectExportRows(ctx context.Context, bookings []*models.Booking) ([]exportRow, error) {
	seen := make(map[int64]bool)
	var rows []exportRow

	addBanya := func(banya *models.Banya) {
		if seen[banya.ID] {
			return
		}
		seen[banya.ID] = true
		window := banya.ClosingHour() - banya.OpeningHour()
		rows = append(rows, exportRow{
			banyaID:     banya.ID,
			label:       fmt.Sprintf("%s (%s-%s)", banya.Name, banya.OpeningTime, banya.ClosingTime),
			windowHours: window,
		})
	}

	cities, err := b.catalogService.GetActiveCities(ctx)
	if err != nil {
		return nil, err
	}
	for _, city := range cities {
		banyas, err := b.catalogService.SearchBanyas(ctx, city.ID)
		if err != nil {
			b.logger.Error().Err(err).Int64("city_id", city.ID).Msg("search banyas for export error")
			continue
		}
		for _, banya := range banyas {
			addBanya(banya)
		}
	}

	hasHomeVisits := false
	for _, booking := range bookings {
		if booking.BanyaID == nil {
			hasHomeVisits = true
			continue
		}
		if !seen[*booking.BanyaID] {
			if banya, err := b.catalogService.GetBanyaByID(ctx, *booking.BanyaID); err == nil {
				addBanya(banya)
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })

	if hasHomeVisits {
		rows = append(rows, exportRow{
			banyaID:     0,
			label:       fmt.Sprintf("Выезд на дом (%d:00-%d:00)", b.config.Booking.MasterDayStart, b.config.Booking.MasterDayEnd),
			windowHours: b.config.Booking.MasterDayEnd - b.config.Booking.MasterDayStart,
		})
	}

	return rows, nil
}

func (b *Bot) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateHeaders := make(map[string]int)

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		dateStr := currentDate.Format("02.01")
		_ = f.SetCellValue(sheetName, cell, dateStr)
		dateHeaders[currentDate.Format("2006-01-02")] = col

		style, _ := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateHeaders
}

func (b *Bot) writeBanyaHeaders(f *excelize.File, sheetName string, rows []exportRow) {
	row := 3
	for _, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, r.label)

		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		row++
	}
}

func (b *Bot) writeBookingData(
	ctx context.Context, f *excelize.File, sheetName string,
	bookings []*models.Booking,
	rows []exportRow,
	dateHeaders map[string]int,
) {
	// Группируем: дата → строка сетки → заявки
	grouped := make(map[string]map[int64][]*models.Booking)
	for _, booking := range bookings {
		dateKey := booking.Date.Format("2006-01-02")
		if grouped[dateKey] == nil {
			grouped[dateKey] = make(map[int64][]*models.Booking)
		}
		rowID := int64(0)
		if booking.BanyaID != nil {
			rowID = *booking.BanyaID
		}
		grouped[dateKey][rowID] = append(grouped[dateKey][rowID], booking)
	}

	clientNames := make(map[int64]string)
	nameOf := func(userID int64) string {
		if name, ok := clientNames[userID]; ok {
			return name
		}
		name := fmt.Sprintf("#%d", userID)
		if user, err := b.userService.GetUserByID(ctx, userID); err == nil && user.FullName() != "" {
			name = user.FullName()
		}
		clientNames[userID] = name
		return name
	}

	for dateKey, byRow := range grouped {
		col, exists := dateHeaders[dateKey]
		if !exists {
			continue
		}

		row := 3
		for _, r := range rows {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			cellBookings := byRow[r.banyaID]
			sort.Slice(cellBookings, func(i, j int) bool {
				return cellBookings[i].StartHour() < cellBookings[j].StartHour()
			})

			busyHours := 0
			var cellValue string
			if len(cellBookings) > 0 {
				for _, booking := range cellBookings {
					icon := b.getBookingStatusIcon(booking.Status)
					cellValue += fmt.Sprintf("%s %s-%s %s\n",
						icon,
						models.FormatHour(booking.StartHour()),
						models.FormatHour(booking.EndHour()),
						nameOf(booking.UserID))
					if booking.UserNotes != "" {
						cellValue += fmt.Sprintf("   💬 %s\n", booking.UserNotes)
					}
					if booking.Status != models.StatusCancelled {
						busyHours += booking.DurationHours
					}
				}
				cellValue += fmt.Sprintf("\nЗанято: %d/%d ч", busyHours, r.windowHours)
			} else {
				cellValue = fmt.Sprintf("Свободно\n\nОкно: %d ч", r.windowHours)
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)

			styleID, err := b.getCellStyle(f, cellBookings, busyHours, r.windowHours)
			if err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

func (b *Bot) getBookingStatusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return statusSuccess
	case models.StatusPending, models.StatusAwaitingConfirmations:
		return statusPending
	case models.StatusCancelled:
		return statusError
	default:
		return "❓"
	}
}

// getCellStyle возвращает стиль ячейки по занятости дня
func (b *Bot) getCellStyle(f *excelize.File, cellBookings []*models.Booking, busyHours, windowHours int) (int, error) {
	activeBookings := b.filterActiveBookings(cellBookings)

	// 1. Нет активных заявок - БЕЗ ЗАЛИВКИ
	if len(activeBookings) == 0 {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFFF"}, Pattern: 1},
			Alignment: &excelize.Alignment{
				Horizontal: "left",
				Vertical:   "top",
				WrapText:   true,
			},
		})
		return style, err
	}

	// 2. Весь рабочий день занят - КРАСНЫЙ
	if windowHours > 0 && busyHours >= windowHours {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
			Alignment: &excelize.Alignment{
				Horizontal: "left",
				Vertical:   "top",
				WrapText:   true,
			},
		})
		return style, err
	}

	// 3. Есть заявки, ждущие подтверждений - ЖЕЛТЫЙ
	hasUnconfirmed := false
	for _, booking := range activeBookings {
		if booking.Status == models.StatusPending || booking.Status == models.StatusAwaitingConfirmations {
			hasUnconfirmed = true
			break
		}
	}
	if hasUnconfirmed {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
			Alignment: &excelize.Alignment{
				Horizontal: "left",
				Vertical:   "top",
				WrapText:   true,
			},
		})
		return style, err
	}

	// 4. Все подтверждены - ЗЕЛЕНЫЙ
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
	return style, err
}

// filterActiveBookings отбрасывает отмененные заявки
func (b *Bot) filterActiveBookings(bookings []*models.Booking) []*models.Booking {
	var active []*models.Booking
	for _, booking := range bookings {
		if booking.Status != models.StatusCancelled {
			active = append(active, booking)
		}
	}
	return active
}

// getLastColumn возвращает последнюю колонку для объединения ячеек
func getLastColumn(colCount int) string {
	// Базовые колонки A-Z
	if colCount <= 26 {
		return string(rune('A' + colCount - 1))
	}

	// Для большего количества колонок (AA, AB, etc.)
	firstChar := string(rune('A' + (colCount-1)/26 - 1))
	secondChar := string(rune('A' + (colCount-1)%26))
	return firstChar + secondChar
}

// exportUsersToExcel создает Excel файл с данными пользователей
func (b *Bot) exportUsersToExcel(_ context.Context, users []*models.User) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet("Пользователи")
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Telegram ID", "Username", "Имя", "Фамилия", "Телефон",
		"Роль", "Рейтинг", "Отзывов", "Активен", "Дата регистрации", "Обновлен",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("Пользователи", cell, header)
	}

	for i, user := range users {
		row := i + 2
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("A%d", row), user.ID)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("B%d", row), user.TelegramID)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("C%d", row), user.Username)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("D%d", row), user.FirstName)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("E%d", row), user.LastName)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("F%d", row), user.Phone)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("G%d", row), roleLabel(user.Role))
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("H%d", row), user.Rating)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("I%d", row), user.RatingCount)
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("J%d", row), boolToYesNo(user.IsActive))
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("K%d", row), user.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue("Пользователи", fmt.Sprintf("L%d", row), user.UpdatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth("Пользователи", "A", "A", 10)
	_ = f.SetColWidth("Пользователи", "B", "B", 15)
	_ = f.SetColWidth("Пользователи", "C", "C", 20)
	_ = f.SetColWidth("Пользователи", "D", "D", 15)
	_ = f.SetColWidth("Пользователи", "E", "E", 15)
	_ = f.SetColWidth("Пользователи", "F", "F", 15)
	_ = f.SetColWidth("Пользователи", "G", "G", 16)
	_ = f.SetColWidth("Пользователи", "H", "H", 10)
	_ = f.SetColWidth("Пользователи", "I", "I", 10)
	_ = f.SetColWidth("Пользователи", "J", "J", 10)
	_ = f.SetColWidth("Пользователи", "K", "K", 20)
	_ = f.SetColWidth("Пользователи", "L", "L", 20)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("users_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Users Excel file created")
	return filePath, nil
}

// boolToYesNo преобразует bool в "Да"/"Нет"
func boolToYesNo(b bool) string {
	if b {
		return "Да"
	}
	return "Нет"
}

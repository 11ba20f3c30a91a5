package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"banyabot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportToExcel(t *testing.T) {
	b, mocks := setupTestBot()
	b.config.Exports.Path = t.TempDir()
	ctx := context.Background()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	client := mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван", LastName: "Петров"})
	owner := mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})

	banyaA := mocks.catalog.addBanya(&models.Banya{
		OwnerID: owner.ID, CityID: 1, Name: "Альфа",
		OpeningTime: "10:00", ClosingTime: "23:00", IsActive: true,
	})
	mocks.catalog.addBanya(&models.Banya{
		OwnerID: owner.ID, CityID: 1, Name: "Берёза",
		OpeningTime: "09:00", ClosingTime: "21:00", IsActive: true,
	})
	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})
	master := mocks.catalog.addMaster(&models.BathMaster{UserID: masterUser.ID, CanVisitHome: true, IsAvailable: true})

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	mocks.booking.add(&models.Booking{
		UserID: client.ID, BanyaID: &banyaA.ID,
		BookingType: models.BookingTypeBanyaOnly,
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "12:00", DurationHours: 2, UserNotes: "Веники",
		Status: models.StatusConfirmed,
	})
	mocks.booking.add(&models.Booking{
		UserID: client.ID, BanyaID: &banyaA.ID,
		BookingType: models.BookingTypeBanyaOnly,
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "18:00", DurationHours: 2,
		Status: models.StatusCancelled,
	})
	mocks.booking.add(&models.Booking{
		UserID: client.ID, BathMasterID: &master.ID,
		BookingType: models.BookingTypeMasterHomeVisit,
		Date:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime:   "14:00", DurationHours: 2, ClientAddress: "ул. Лесная, 5",
		Status: models.StatusConfirmed,
	})

	filePath, err := b.exportToExcel(ctx, start, end)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filePath, "export_2026-09-01_to_2026-09-03.xlsx"), "got %s", filePath)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	sheet := "Бронирования"

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Период: 01.09.2026 - 03.09.2026", title)

	// Заголовки дат
	for cell, expected := range map[string]string{"B2": "01.09", "C2": "02.09", "D2": "03.09"} {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, expected, v, "cell %s", cell)
	}

	// Строки отсортированы по названию, выезды на дом всегда в конце
	rowA, _ := f.GetCellValue(sheet, "A3")
	rowB, _ := f.GetCellValue(sheet, "A4")
	rowVisit, _ := f.GetCellValue(sheet, "A5")
	assert.Equal(t, "Альфа (10:00-23:00)", rowA)
	assert.Equal(t, "Берёза (09:00-21:00)", rowB)
	assert.Equal(t, "Выезд на дом (9:00-21:00)", rowVisit)

	// Ячейка с заявками: иконки статусов, имя клиента, пометка и занятость.
	// Отмененная заявка видна, но в занятые часы не входит.
	busy, err := f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Contains(t, busy, "✅ 12:00-14:00 Иван Петров")
	assert.Contains(t, busy, "💬 Веники")
	assert.Contains(t, busy, "❌ 18:00-20:00")
	assert.Contains(t, busy, "Занято: 2/13 ч")

	// День без заявок по бане, но с заявками в сетке: «Свободно»
	free, err := f.GetCellValue(sheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Свободно\n\nОкно: 13 ч", free)

	// Выезд на дом попадает в свою строку
	visit, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Contains(t, visit, "✅ 14:00-16:00 Иван Петров")
	assert.Contains(t, visit, "Занято: 2/12 ч")

	// Дни вовсе без заявок остаются пустыми
	empty, err := f.GetCellValue(sheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestExportUsersToExcel(t *testing.T) {
	b, _ := setupTestBot()
	b.config.Exports.Path = t.TempDir()
	ctx := context.Background()

	created := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	users := []*models.User{
		{
			ID: 1, TelegramID: 111, Username: "ivan", FirstName: "Иван", LastName: "Петров",
			Phone: "+79990001122", Role: models.RoleClient, Rating: 4.5, RatingCount: 3,
			IsActive: true, CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: 2, TelegramID: 222, Username: "oleg", FirstName: "Олег",
			Role: models.RoleBanyaOwner, IsActive: false, CreatedAt: created, UpdatedAt: created,
		},
	}

	filePath, err := b.exportUsersToExcel(ctx, users)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	sheet := "Пользователи"
	headers := []string{"ID", "Telegram ID", "Username", "Имя", "Фамилия", "Телефон", "Роль", "Рейтинг", "Отзывов", "Активен", "Дата регистрации", "Обновлен"}
	for i, expected := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, expected, v, "header %s", cell)
	}

	for cell, expected := range map[string]string{
		"A2": "1",
		"B2": "111",
		"C2": "ivan",
		"D2": "Иван",
		"E2": "Петров",
		"F2": "+79990001122",
		"G2": "клиент",
		"H2": "4.5",
		"J2": "Да",
		"K2": "01.08.2026 10:30",
		"G3": "владелец бани",
		"J3": "Нет",
	} {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, expected, v, "cell %s", cell)
	}
}

func TestGetLastColumn(t *testing.T) {
	tests := []struct {
		count    int
		expected string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, getLastColumn(tt.count), "count %d", tt.count)
	}
}

func TestGetBookingStatusIcon(t *testing.T) {
	b, _ := setupTestBot()

	tests := []struct {
		status   string
		expected string
	}{
		{models.StatusConfirmed, statusSuccess},
		{models.StatusCompleted, statusSuccess},
		{models.StatusPending, statusPending},
		{models.StatusAwaitingConfirmations, statusPending},
		{models.StatusCancelled, statusError},
		{"garbage", "❓"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, b.getBookingStatusIcon(tt.status), "status %s", tt.status)
	}
}

func TestShowStats(t *testing.T) {
	b, mocks := setupTestBot()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван"})
	mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})
	admin := mocks.users.add(&models.User{TelegramID: 500, FirstName: "Админ"})
	mocks.users.admins[500] = true

	banya := mocks.catalog.addBanya(&models.Banya{
		OwnerID: 2, CityID: 1, Name: "Альфа",
		OpeningTime: "10:00", ClosingTime: "23:00", IsActive: true,
	})

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	mocks.booking.add(&models.Booking{
		UserID: 1, BanyaID: &banya.ID, BookingType: models.BookingTypeBanyaOnly,
		Date: today, StartTime: "12:00", DurationHours: 2,
		Status: models.StatusConfirmed, TotalPrice: 5000,
	})
	mocks.booking.add(&models.Booking{
		UserID: 1, BanyaID: &banya.ID, BookingType: models.BookingTypeBanyaOnly,
		Date: today, StartTime: "16:00", DurationHours: 2,
		Status: models.StatusPending, TotalPrice: 5000,
	})

	// Не-админу статистика не отвечает
	mocks.handleText(t, b, 100, "/stats")
	assert.Empty(t, mocks.tg.sentTexts())

	mocks.handleText(t, b, 500, "/stats")
	assert.True(t, mocks.tg.containsText("Статистика"))
	assert.True(t, mocks.tg.containsText("Всего: <b>3</b>"))
	assert.True(t, mocks.tg.containsText("Клиентов: <b>2</b>"))
	assert.True(t, mocks.tg.containsText("Владельцев бань: <b>1</b>"))
	assert.True(t, mocks.tg.containsText("Последние регистрации"))
	assert.True(t, mocks.tg.containsText("всего 2"))
	assert.True(t, mocks.tg.containsText("Альфа:2"))
	assert.True(t, mocks.tg.containsText("выручка 5000 ₽"))
	assert.Contains(t, keyboardCallbacks(mocks.tg.lastInlineKeyboard()), "export_users")
	_ = admin
}

func TestBookingSummaryEmpty(t *testing.T) {
	b, _ := setupTestBot()
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "нет данных", b.bookingSummary(ctx, start, start))
}

func TestExportDialog(t *testing.T) {
	b, mocks := setupTestBot()
	b.config.Exports.Path = t.TempDir()

	mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван"})
	mocks.users.add(&models.User{TelegramID: 500, FirstName: "Админ"})
	mocks.users.admins[500] = true

	// Не-админ экспорт не открывает
	mocks.handleText(t, b, 100, btnExport)
	assert.Empty(t, mocks.tg.sentTexts())

	mocks.handleText(t, b, 500, btnExport)
	assert.True(t, mocks.tg.containsText("За какой период выгрузить"))
	assert.Equal(t, models.StateExportRange, mocks.state.stepOf(500))
	datas := keyboardCallbacks(mocks.tg.lastInlineKeyboard())
	assert.Contains(t, datas, "export_range:week")
	assert.Contains(t, datas, "export_range:quarter")

	// Произвольный период: валидация текста
	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 500, "сентябрь")
	assert.True(t, mocks.tg.containsText("Нужны две даты"))

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 500, "05.09.2026 01.09.2026")
	assert.True(t, mocks.tg.containsText("Не понял период"))

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 500, "01.09.2026 03.09.2026")
	assert.True(t, mocks.tg.containsText("Готовлю выгрузку 01.09.2026 — 03.09.2026"))

	doc := mocks.tg.lastDocument()
	require.NotNil(t, doc)
	assert.Equal(t, "📊 Бронирования 01.09.2026 — 03.09.2026", doc.Caption)
	assert.Equal(t, "", mocks.state.stepOf(500))
}

func TestExportRangeChoice(t *testing.T) {
	b, mocks := setupTestBot()
	b.config.Exports.Path = t.TempDir()

	mocks.users.add(&models.User{TelegramID: 500, FirstName: "Админ"})
	mocks.users.admins[500] = true

	mocks.handleText(t, b, 500, btnExport)
	mocks.handleCallback(t, b, 500, "export_range:week")

	doc := mocks.tg.lastDocument()
	require.NotNil(t, doc)
	assert.Contains(t, doc.Caption, "📊 Бронирования")
	assert.Equal(t, "", mocks.state.stepOf(500))
}

func TestExportUsersCallback(t *testing.T) {
	b, mocks := setupTestBot()
	b.config.Exports.Path = t.TempDir()

	mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван"})
	mocks.users.add(&models.User{TelegramID: 500, FirstName: "Админ"})
	mocks.users.admins[500] = true

	// Не-админ выгрузку не получает
	mocks.handleCallback(t, b, 100, "export_users")
	assert.Nil(t, mocks.tg.lastDocument())

	mocks.handleCallback(t, b, 500, "export_users")
	doc := mocks.tg.lastDocument()
	require.NotNil(t, doc)
	assert.Equal(t, "📊 Экспорт данных пользователей", doc.Caption)
}

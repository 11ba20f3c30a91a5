package bot

import (
	"context"
	"testing"

	"banyabot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueFormFull(t *testing.T) {
	b, mocks := setupTestBot()
	ctx := context.Background()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	owner := mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})

	mocks.handleText(t, b, 200, btnAddBanya)
	assert.True(t, mocks.tg.containsText("Как называется баня"))
	assert.Equal(t, models.StateVenueForm, mocks.state.stepOf(200))

	steps := []struct {
		input    string
		expected string
	}{
		{"Парная на Лесной", "В каком городе"},
		{"Москва", "Адрес бани"},
		{"ул. Лесная, 12", "Цена за час"},
		{"2500", "Минимальное бронирование"},
		{"2", "Максимум гостей"},
		{"8", "Часы работы"},
		{"10:00-23:00", "удобства"},
		{"бассейн, веники, караоке", "описание"},
	}
	for _, step := range steps {
		mocks.tg.clearSentMessages()
		mocks.handleText(t, b, 200, step.input)
		assert.True(t, mocks.tg.containsText(step.expected), "after %q want %q, got %v", step.input, step.expected, mocks.tg.sentTexts())
	}

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 200, "Уютная парная в тихом районе")
	assert.True(t, mocks.tg.containsText("зарегистрирована и видна клиентам"))
	assert.Equal(t, models.StateMainMenu, mocks.state.stepOf(200))

	banya, err := mocks.catalog.GetBanyaByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, banya.OwnerID)
	assert.Equal(t, int64(1), banya.CityID)
	assert.Equal(t, "Парная на Лесной", banya.Name)
	assert.Equal(t, "ул. Лесная, 12", banya.Address)
	assert.Equal(t, 2500.0, banya.PricePerHour)
	assert.Equal(t, 2, banya.MinHours)
	assert.Equal(t, 8, banya.MaxGuests)
	assert.Equal(t, "10:00", banya.OpeningTime)
	assert.Equal(t, "23:00", banya.ClosingTime)
	assert.Equal(t, "Уютная парная в тихом районе", banya.Description)
	assert.True(t, banya.IsActive)

	// Удобства распознаны по ключевым словам
	assert.True(t, banya.HasPool)
	assert.True(t, banya.ProvidesVeniks)
	assert.True(t, banya.HasKaraoke)
	assert.False(t, banya.HasHammam)
}

func TestVenueFormValidation(t *testing.T) {
	b, mocks := setupTestBot()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})

	mocks.handleText(t, b, 200, btnAddBanya)

	steps := []struct {
		invalid     string
		expectedErr string
		valid       string
	}{
		{"Ба", "Название слишком короткое", "Парная на Лесной"},
		{"Нарния", "Не нашел такой город", "Москва"},
		{"ул", "Адрес слишком короткий", "ул. Лесная, 12"},
		{"дорого", "Нужно положительное число", "2500"},
		{"13", "Введите число от 1 до 12", "2"},
		{"0", "Введите число от 1 до 100", "8"},
		{"круглосуточно", "Не понял. Пример: 10:00-23:00", "10:00-23:00"},
	}
	for _, step := range steps {
		mocks.tg.clearSentMessages()
		mocks.handleText(t, b, 200, step.invalid)
		assert.True(t, mocks.tg.containsText(step.expectedErr), "on %q want %q, got %v", step.invalid, step.expectedErr, mocks.tg.sentTexts())

		mocks.handleText(t, b, 200, step.valid)
	}

	// Анкета не сбилась: после ошибок дошли до удобств
	assert.True(t, mocks.tg.containsText("удобства"))
}

func TestParseWorkingHours(t *testing.T) {
	tests := []struct {
		input   string
		opening string
		closing string
		wantErr bool
	}{
		{"10:00-23:00", "10:00", "23:00", false},
		{" 09:30 - 22:00 ", "09:30", "22:00", false},
		{"00:00-00:00", "00:00", "00:00", false},
		{"10-23", "", "", true},
		{"круглосуточно", "", "", true},
		{"10:00", "", "", true},
	}

	for _, tt := range tests {
		opening, closing, err := parseWorkingHours(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.opening, opening)
		assert.Equal(t, tt.closing, closing)
	}
}

func TestMasterFormWithVisit(t *testing.T) {
	b, mocks := setupTestBot()
	ctx := context.Background()

	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})

	// Профиля нет: кнопка профиля запускает анкету
	mocks.handleText(t, b, 300, btnMasterProfile)
	assert.True(t, mocks.tg.containsText("Заполним профиль мастера"))
	assert.Equal(t, models.StateMasterForm, mocks.state.stepOf(300))

	steps := []struct {
		input    string
		expected string
	}{
		{"Парю с детства, работал в лучших банях города", "Сколько лет стажа"},
		{"12", "Цена сеанса"},
		{"3000", "Выезжаете к клиентам"},
		{"да", "Цена выезда"},
		{"3500", "Специализации"},
	}
	for _, step := range steps {
		mocks.tg.clearSentMessages()
		mocks.handleText(t, b, 300, step.input)
		assert.True(t, mocks.tg.containsText(step.expected), "after %q want %q, got %v", step.input, step.expected, mocks.tg.sentTexts())
	}

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, "парение, массаж")
	assert.True(t, mocks.tg.containsText("Профиль мастера создан"))

	master, err := mocks.catalog.GetBathMasterByUserID(ctx, masterUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "Парю с детства, работал в лучших банях города", master.Bio)
	assert.Equal(t, 12, master.ExperienceYears)
	assert.Equal(t, 3000.0, master.PricePerSession)
	assert.True(t, master.CanVisitHome)
	require.NotNil(t, master.HomeVisitPrice)
	assert.Equal(t, 3500.0, *master.HomeVisitPrice)
	assert.True(t, master.SpecializesRussian)
	assert.True(t, master.SpecializesMassage)
	assert.False(t, master.SpecializesHammam)
	assert.True(t, master.IsAvailable)
}

func TestMasterFormWithoutVisit(t *testing.T) {
	b, mocks := setupTestBot()
	ctx := context.Background()

	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})

	mocks.handleText(t, b, 300, btnMasterProfile)
	mocks.handleText(t, b, 300, "Банный стаж пятнадцать лет, люблю своё дело")
	mocks.handleText(t, b, 300, "15")
	mocks.handleText(t, b, 300, "4000")

	// «нет» пропускает вопрос о цене выезда
	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, "нет")
	assert.True(t, mocks.tg.containsText("Специализации"))

	mocks.handleText(t, b, 300, btnSkip)

	master, err := mocks.catalog.GetBathMasterByUserID(ctx, masterUser.ID)
	require.NoError(t, err)
	assert.False(t, master.CanVisitHome)
	assert.Nil(t, master.HomeVisitPrice)
	assert.False(t, master.SpecializesRussian)
}

func TestMasterFormValidation(t *testing.T) {
	b, mocks := setupTestBot()

	mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})

	mocks.handleText(t, b, 300, btnMasterProfile)

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, "коротко")
	assert.True(t, mocks.tg.containsText("Слишком коротко"))

	mocks.handleText(t, b, 300, "Опытный мастер классического парения")

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, "сто")
	assert.True(t, mocks.tg.containsText("от 0 до 60"))

	mocks.handleText(t, b, 300, "10")
	mocks.handleText(t, b, 300, "3000")

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, "может быть")
	assert.True(t, mocks.tg.containsText("Ответьте «да» или «нет»"))
}

func TestMasterProfileCard(t *testing.T) {
	b, mocks := setupTestBot()

	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})
	mocks.catalog.addMaster(&models.BathMaster{
		UserID:          masterUser.ID,
		Bio:             "Парю по классике",
		ExperienceYears: 10,
		PricePerSession: 3000,
		IsAvailable:     true,
	})

	mocks.handleText(t, b, 300, btnMasterProfile)
	assert.True(t, mocks.tg.containsText("Ваш профиль мастера"))
	assert.True(t, mocks.tg.containsText("Парю по классике"))
}

func TestToggleBanya(t *testing.T) {
	b, mocks := setupTestBot()
	ctx := context.Background()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	owner := mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})
	banya := mocks.catalog.addBanya(&models.Banya{
		OwnerID:     owner.ID,
		CityID:      1,
		Name:        "Парная №1",
		OpeningTime: "10:00",
		ClosingTime: "23:00",
		IsActive:    true,
	})

	mocks.handleText(t, b, 200, btnMyBanyas)
	assert.True(t, mocks.tg.containsText("Ваши бани"))
	assert.True(t, mocks.tg.containsText("активна"))
	assert.Contains(t, keyboardCallbacks(mocks.tg.lastInlineKeyboard()), "toggle_banya:1")

	mocks.handleCallback(t, b, 200, "toggle_banya:1")
	assert.False(t, banya.IsActive)
	assert.Equal(t, "Баня скрыта из поиска", mocks.tg.lastCallbackAnswer())

	mocks.handleCallback(t, b, 200, "toggle_banya:1")
	assert.True(t, banya.IsActive)
	assert.Equal(t, "Баня снова в поиске", mocks.tg.lastCallbackAnswer())

	// Чужую баню переключить нельзя
	mocks.users.add(&models.User{TelegramID: 999, FirstName: "Чужой", Role: models.RoleBanyaOwner})
	mocks.handleCallback(t, b, 999, "toggle_banya:1")
	assert.True(t, banya.IsActive)

	stored, err := mocks.catalog.GetBanyaByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestToggleMasterAvailability(t *testing.T) {
	b, mocks := setupTestBot()

	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})
	master := mocks.catalog.addMaster(&models.BathMaster{
		UserID:          masterUser.ID,
		PricePerSession: 3000,
		IsAvailable:     true,
	})

	mocks.handleText(t, b, 300, btnMasterToggle)
	assert.False(t, master.IsAvailable)
	assert.True(t, mocks.tg.containsText("больше не видны клиентам"))

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, btnMasterToggle)
	assert.True(t, master.IsAvailable)
	assert.True(t, mocks.tg.containsText("снова принимаете заявки"))
}

func TestToggleMasterVisit(t *testing.T) {
	b, mocks := setupTestBot()

	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})
	master := mocks.catalog.addMaster(&models.BathMaster{
		UserID:          masterUser.ID,
		PricePerSession: 3000,
		IsAvailable:     true,
	})

	// Кнопка на карточке профиля
	mocks.handleText(t, b, 300, btnMasterProfile)
	assert.Contains(t, keyboardCallbacks(mocks.tg.lastInlineKeyboard()), "master_toggle_visit")

	mocks.tg.clearSentMessages()
	mocks.handleCallback(t, b, 300, "master_toggle_visit")
	assert.True(t, master.CanVisitHome)
	assert.Equal(t, "Выезд на дом включён", mocks.tg.lastCallbackAnswer())
	// Карточка перерисована
	assert.True(t, mocks.tg.containsText("Ваш профиль мастера"))

	mocks.handleCallback(t, b, 300, "master_toggle_visit")
	assert.False(t, master.CanVisitHome)
	assert.Equal(t, "Выезд на дом отключён", mocks.tg.lastCallbackAnswer())
}

func TestOwnerRequestsFilter(t *testing.T) {
	b, mocks := setupTestBot()

	mocks.catalog.addCity(&models.City{ID: 1, Name: "Москва", IsActive: true})
	client := mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван"})
	owner := mocks.users.add(&models.User{TelegramID: 200, FirstName: "Олег", Role: models.RoleBanyaOwner})
	banya := mocks.catalog.addBanya(&models.Banya{
		OwnerID:     owner.ID,
		CityID:      1,
		Name:        "Парная №1",
		OpeningTime: "10:00",
		ClosingTime: "23:00",
		IsActive:    true,
	})

	// Пока заявок нет
	mocks.handleText(t, b, 200, btnBanyaRequests)
	assert.True(t, mocks.tg.containsText("Новых заявок нет"))

	// Ждет подтверждения бани: попадает в список
	waiting := mocks.booking.add(&models.Booking{
		UserID: client.ID, BanyaID: &banya.ID,
		BookingType: models.BookingTypeBanyaOnly, Date: tomorrow(), StartTime: "12:00", DurationHours: 2,
		Status:          models.StatusAwaitingConfirmations,
		ClientConfirmed: models.ConfirmationConfirmed,
		BanyaConfirmed:  models.ConfirmationPending,
		MasterConfirmed: models.ConfirmationNotRequired,
	})
	// Черновик клиента: не попадает
	mocks.booking.add(&models.Booking{
		UserID: client.ID, BanyaID: &banya.ID,
		BookingType: models.BookingTypeBanyaOnly, Date: tomorrow(), StartTime: "15:00", DurationHours: 2,
		Status:          models.StatusPending,
		ClientConfirmed: models.ConfirmationPending,
		BanyaConfirmed:  models.ConfirmationPending,
		MasterConfirmed: models.ConfirmationNotRequired,
	})
	// Уже принятая: не попадает
	mocks.booking.add(&models.Booking{
		UserID: client.ID, BanyaID: &banya.ID,
		BookingType: models.BookingTypeBanyaOnly, Date: tomorrow(), StartTime: "18:00", DurationHours: 2,
		Status:          models.StatusAwaitingConfirmations,
		ClientConfirmed: models.ConfirmationConfirmed,
		BanyaConfirmed:  models.ConfirmationConfirmed,
		MasterConfirmed: models.ConfirmationNotRequired,
	})

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 200, btnBanyaRequests)
	assert.True(t, mocks.tg.containsText("Заявки, ждущие вашего подтверждения"))

	datas := keyboardCallbacks(mocks.tg.lastInlineKeyboard())
	assert.Contains(t, datas, "booking_card:1")
	assert.NotContains(t, datas, "booking_card:2")
	assert.NotContains(t, datas, "booking_card:3")
	_ = waiting
}

func TestMasterRequests(t *testing.T) {
	b, mocks := setupTestBot()

	client := mocks.users.add(&models.User{TelegramID: 100, FirstName: "Иван"})
	masterUser := mocks.users.add(&models.User{TelegramID: 300, FirstName: "Пётр", Role: models.RoleBathMaster})

	// Без профиля: приглашение заполнить анкету
	mocks.handleText(t, b, 300, btnMasterRequests)
	assert.True(t, mocks.tg.containsText("Сначала заполните профиль мастера"))

	master := mocks.catalog.addMaster(&models.BathMaster{
		UserID:          masterUser.ID,
		PricePerSession: 3000,
		IsAvailable:     true,
	})

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, btnMasterRequests)
	assert.True(t, mocks.tg.containsText("Новых заявок нет"))

	mocks.booking.add(&models.Booking{
		UserID: client.ID, BathMasterID: &master.ID,
		BookingType: models.BookingTypeMasterHomeVisit, Date: tomorrow(), StartTime: "14:00", DurationHours: 2,
		ClientAddress:   "ул. Лесная, 5",
		Status:          models.StatusAwaitingConfirmations,
		ClientConfirmed: models.ConfirmationConfirmed,
		BanyaConfirmed:  models.ConfirmationNotRequired,
		MasterConfirmed: models.ConfirmationPending,
	})

	mocks.tg.clearSentMessages()
	mocks.handleText(t, b, 300, btnMasterRequests)
	assert.True(t, mocks.tg.containsText("ждущие вашего подтверждения"))
	assert.Contains(t, keyboardCallbacks(mocks.tg.lastInlineKeyboard()), "booking_card:1")
}

package domain

import (
	"context"
	"time"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	// Пользователи
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	UpdateUserRole(ctx context.Context, userID int64, role string) error
	UpdateUserCity(ctx context.Context, userID int64, cityID int64) error
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	UpdateUserRating(ctx context.Context, userID int64, rating float64, count int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)

	// Города
	GetActiveCities(ctx context.Context) ([]*models.City, error)
	GetCityByID(ctx context.Context, id int64) (*models.City, error)
	CreateCity(ctx context.Context, city *models.City) error

	// Бани
	CreateBanya(ctx context.Context, banya *models.Banya) error
	UpdateBanya(ctx context.Context, banya *models.Banya) error
	GetBanyaByID(ctx context.Context, id int64) (*models.Banya, error)
	GetBanyasByCity(ctx context.Context, cityID int64) ([]*models.Banya, error)
	GetBanyasByOwner(ctx context.Context, ownerID int64) ([]*models.Banya, error)
	SetBanyaActive(ctx context.Context, id int64, active bool) error
	UpdateBanyaRating(ctx context.Context, id int64, rating float64, count int64) error
	AddBanyaPhoto(ctx context.Context, photo *models.BanyaPhoto) error
	GetBanyaPhotos(ctx context.Context, banyaID int64) ([]*models.BanyaPhoto, error)

	// Мастера
	CreateBathMaster(ctx context.Context, master *models.BathMaster) error
	UpdateBathMaster(ctx context.Context, master *models.BathMaster) error
	GetBathMasterByID(ctx context.Context, id int64) (*models.BathMaster, error)
	GetBathMasterByUserID(ctx context.Context, userID int64) (*models.BathMaster, error)
	GetAvailableMasters(ctx context.Context) ([]*models.BathMaster, error)
	GetMastersByBanya(ctx context.Context, banyaID int64) ([]*models.BathMaster, error)
	SetMasterAvailable(ctx context.Context, id int64, available bool) error
	UpdateMasterRating(ctx context.Context, id int64, rating float64, count int64) error
	LinkMasterToBanya(ctx context.Context, banyaID, masterID int64) error
	UnlinkMasterFromBanya(ctx context.Context, banyaID, masterID int64) error

	// Бронирования
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingStateWithVersion(ctx context.Context, b *models.Booking) error
	GetActiveBanyaBookings(ctx context.Context, banyaID int64, date time.Time) ([]*models.Booking, error)
	GetActiveMasterBookings(ctx context.Context, masterID int64, date time.Time) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBanyaBookings(ctx context.Context, banyaID int64) ([]*models.Booking, error)
	GetMasterBookings(ctx context.Context, masterID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetExpiredConfirmedBookings(ctx context.Context, now time.Time) ([]*models.Booking, error)
	CountActiveBookings(ctx context.Context) (int64, error)

	// Отзывы
	CreateReview(ctx context.Context, review *models.Review) error
	GetBanyaReviews(ctx context.Context, banyaID int64, limit int) ([]*models.Review, error)
	GetMasterReviews(ctx context.Context, masterID int64, limit int) ([]*models.Review, error)
	GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// LedgerWriter пишет строки бронирований во внешнюю таблицу-реестр.
type LedgerWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	TestConnection(ctx context.Context) error
}

type LedgerEnqueuer interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// Actor кто выполняет операцию над бронированием.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CreateBookingInput параметры создания от клиента.
// BookingType можно не заполнять: тип выводится из набора сторон.
// Сценарий «выбор начался с мастера» передаёт master_at_banya явно.
type CreateBookingInput struct {
	UserID        int64
	BanyaID       *int64
	BathMasterID  *int64
	BookingType   string
	Date          time.Time
	StartHour     int
	DurationHours int
	GuestsCount   int
	ClientAddress string
	UserNotes     string
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	ClientConfirm(ctx context.Context, bookingID int64, actor Actor) (*models.Booking, error)
	BanyaConfirm(ctx context.Context, bookingID int64, actor Actor) (*models.Booking, error)
	MasterConfirm(ctx context.Context, bookingID int64, actor Actor) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, actor Actor, reason string) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBanyaBookings(ctx context.Context, banyaID int64) ([]*models.Booking, error)
	GetMasterBookings(ctx context.Context, masterID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	ValidateBookingDate(date time.Time) error
}

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, banyaID, masterID *int64, date time.Time, durationHours int) ([]string, error)
}

type UserService interface {
	IsAdmin(telegramID int64) bool
	IsBlacklisted(telegramID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SwitchRole(ctx context.Context, userID int64, role string) error
	SetCity(ctx context.Context, userID int64, cityID int64) error
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

type CatalogService interface {
	GetActiveCities(ctx context.Context) ([]*models.City, error)
	GetCityByID(ctx context.Context, id int64) (*models.City, error)
	SearchBanyas(ctx context.Context, cityID int64) ([]*models.Banya, error)
	GetBanyaByID(ctx context.Context, id int64) (*models.Banya, error)
	GetBanyasByOwner(ctx context.Context, ownerID int64) ([]*models.Banya, error)
	GetBanyaPhotos(ctx context.Context, banyaID int64) ([]*models.BanyaPhoto, error)
	RegisterBanya(ctx context.Context, banya *models.Banya) error
	UpdateBanya(ctx context.Context, banya *models.Banya) error
	SetBanyaActive(ctx context.Context, ownerID, banyaID int64, active bool) error
	GetAvailableMasters(ctx context.Context) ([]*models.BathMaster, error)
	GetMastersByBanya(ctx context.Context, banyaID int64) ([]*models.BathMaster, error)
	GetBathMasterByID(ctx context.Context, id int64) (*models.BathMaster, error)
	GetBathMasterByUserID(ctx context.Context, userID int64) (*models.BathMaster, error)
	RegisterMaster(ctx context.Context, master *models.BathMaster) error
	UpdateMaster(ctx context.Context, master *models.BathMaster) error
	SetMasterAvailable(ctx context.Context, userID int64, available bool) error
	LinkMasterToBanya(ctx context.Context, banyaID, masterID int64) error
}

type ReviewService interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	GetBanyaReviews(ctx context.Context, banyaID int64, limit int) ([]*models.Review, error)
	GetMasterReviews(ctx context.Context, masterID int64, limit int) ([]*models.Review, error)
}

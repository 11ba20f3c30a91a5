package models

// Статусы бронирования. Терминальные: cancelled, completed.
const (
	StatusPending               = "pending"
	StatusAwaitingConfirmations = "awaiting_confirmations"
	StatusConfirmed             = "confirmed"
	StatusCancelled             = "cancelled"
	StatusCompleted             = "completed"
)

// ActiveStatuses статусы, которые занимают слот в расписании.
var ActiveStatuses = []string{StatusPending, StatusAwaitingConfirmations, StatusConfirmed}

func IsActiveStatus(status string) bool {
	switch status {
	case StatusPending, StatusAwaitingConfirmations, StatusConfirmed:
		return true
	default:
		return false
	}
}

func IsTerminalStatus(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// Типы бронирования: какие стороны участвуют. Выставляется при создании
// и больше не пересчитывается.
const (
	BookingTypeBanyaOnly       = "banya_only"
	BookingTypeBanyaWithMaster = "banya_with_master"
	BookingTypeMasterAtBanya   = "master_at_banya"
	BookingTypeMasterHomeVisit = "master_home_visit"
)

// Кто отменил бронирование.
const (
	CancelledByClient = "client"
	CancelledByBanya  = "banya"
	CancelledByMaster = "bath_master"
	CancelledByAdmin  = "admin"
)

// Роли пользователей. Роль одна, переключается явной операцией.
const (
	RoleClient     = "client"
	RoleBanyaOwner = "banya_owner"
	RoleBathMaster = "bath_master"
	RoleAdmin      = "admin"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Шаги диалога в боте.
const (
	StateMainMenu        = "main_menu"
	StateSelectCity      = "select_city"
	StateSelectBanya     = "select_banya"
	StateSelectDate      = "select_date"
	StateSelectSlot      = "select_slot"
	StateSelectDuration  = "select_duration"
	StateSelectGuests    = "select_guests"
	StateSelectMaster    = "select_master"
	StateEnterAddress    = "enter_address"
	StateEnterNotes      = "enter_notes"
	StateConfirmBooking  = "confirm_booking"
	StateCancelReason    = "cancel_reason"
	StateEnterReview     = "enter_review"
	StateVenueForm       = "venue_form"
	StateMasterForm      = "master_form"
	StateWaitingDate     = "waiting_date"
	StateExportRange     = "export_range"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// ReminderHour час, в который отправляются напоминания
	ReminderHour = 9

	// DefaultExportRangeMonths количество месяцев для экспорта по умолчанию
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8

	// DefaultBookingsPaginationSize размер пагинации для списка заявок
	DefaultBookingsPaginationSize = 5

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// DefaultMasterDayStart первый час, в который мастер принимает без бани
	DefaultMasterDayStart = 9

	// DefaultMasterDayEnd час, после которого мастер не принимает
	DefaultMasterDayEnd = 21
)

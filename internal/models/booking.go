package models

import "time"

// Confirmation трёхзначное подтверждение стороны сделки.
// not_required означает, что стороны в бронировании нет; это не то же
// самое, что «ещё не подтвердил».
type Confirmation string

const (
	ConfirmationNotRequired Confirmation = "not_required"
	ConfirmationPending     Confirmation = "pending"
	ConfirmationConfirmed   Confirmation = "confirmed"
)

// Required сообщает, участвует ли сторона в бронировании.
func (c Confirmation) Required() bool {
	return c != ConfirmationNotRequired
}

// Satisfied сообщает, что подтверждение не блокирует переход в confirmed:
// сторона либо подтвердила, либо не участвует.
func (c Confirmation) Satisfied() bool {
	return c != ConfirmationPending
}

type Booking struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	BanyaID      *int64 `json:"banya_id,omitempty"`
	BathMasterID *int64 `json:"bath_master_id,omitempty"`
	BookingType  string `json:"booking_type"`

	Date          time.Time `json:"date"`       // календарный день
	StartTime     string    `json:"start_time"` // "HH:MM"
	DurationHours int       `json:"duration_hours"`
	GuestsCount   int       `json:"guests_count"`
	ClientAddress string    `json:"client_address,omitempty"` // только для выезда на дом

	BanyaPrice  *float64 `json:"banya_price,omitempty"`
	MasterPrice *float64 `json:"master_price,omitempty"`
	TotalPrice  float64  `json:"total_price"`

	Status          string       `json:"status"`
	ClientConfirmed Confirmation `json:"client_confirmed"`
	BanyaConfirmed  Confirmation `json:"banya_confirmed"`
	MasterConfirmed Confirmation `json:"master_confirmed"`

	CancelledBy        string `json:"cancelled_by,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	UserNotes          string `json:"user_notes,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) HasBanya() bool {
	return b.BanyaID != nil
}

func (b *Booking) HasMaster() bool {
	return b.BathMasterID != nil
}

// StartHour час начала из "HH:MM".
func (b *Booking) StartHour() int {
	return parseHour(b.StartTime, 0)
}

// EndHour первый свободный час после бронирования.
func (b *Booking) EndHour() int {
	return b.StartHour() + b.DurationHours
}

// EndsAt момент окончания в местном времени площадки.
func (b *Booking) EndsAt() time.Time {
	d := b.Date
	return time.Date(d.Year(), d.Month(), d.Day(), b.EndHour(), 0, 0, 0, d.Location())
}

// AllConfirmed все участвующие стороны подтвердили.
func (b *Booking) AllConfirmed() bool {
	return b.ClientConfirmed.Satisfied() && b.BanyaConfirmed.Satisfied() && b.MasterConfirmed.Satisfied()
}

// TypeLabel человекочитаемое название типа для уведомлений.
func (b *Booking) TypeLabel() string {
	switch b.BookingType {
	case BookingTypeBanyaOnly:
		return "Баня"
	case BookingTypeBanyaWithMaster:
		return "Баня + мастер"
	case BookingTypeMasterAtBanya:
		return "Мастер в бане"
	case BookingTypeMasterHomeVisit:
		return "Выезд мастера"
	default:
		return b.BookingType
	}
}

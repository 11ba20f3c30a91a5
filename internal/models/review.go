package models

import "time"

// Review отзыв по завершённому бронированию. Агрегаты рейтинга
// ведутся простыми счётчиками на стороне цели отзыва.
type Review struct {
	ID           int64     `json:"id"`
	BookingID    int64     `json:"booking_id"`
	UserID       int64     `json:"user_id"`
	BanyaID      *int64    `json:"banya_id,omitempty"`
	BathMasterID *int64    `json:"bath_master_id,omitempty"`
	Rating       int       `json:"rating"` // 1..5
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

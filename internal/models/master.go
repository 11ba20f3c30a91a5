package models

import "time"

// BathMaster профиль мастера, один на пользователя с ролью bath_master.
type BathMaster struct {
	ID                     int64   `json:"id" yaml:"id"`
	UserID                 int64   `json:"user_id" yaml:"user_id"`
	Bio                    string  `json:"bio" yaml:"bio"`
	ExperienceYears        int     `json:"experience_years" yaml:"experience_years"`
	PricePerSession        float64 `json:"price_per_session" yaml:"price_per_session"`
	SessionDurationMinutes int     `json:"session_duration_minutes" yaml:"session_duration_minutes"`

	SpecializesRussian      bool `json:"specializes_russian" yaml:"specializes_russian"`
	SpecializesFinnish      bool `json:"specializes_finnish" yaml:"specializes_finnish"`
	SpecializesHammam       bool `json:"specializes_hammam" yaml:"specializes_hammam"`
	SpecializesMassage      bool `json:"specializes_massage" yaml:"specializes_massage"`
	SpecializesScrub        bool `json:"specializes_scrub" yaml:"specializes_scrub"`
	SpecializesAromatherapy bool `json:"specializes_aromatherapy" yaml:"specializes_aromatherapy"`

	CanVisitHome   bool     `json:"can_visit_home" yaml:"can_visit_home"`
	HomeVisitPrice *float64 `json:"home_visit_price,omitempty" yaml:"home_visit_price"`

	Rating      float64 `json:"rating" yaml:"rating"`
	RatingCount int64   `json:"rating_count" yaml:"rating_count"`

	IsAvailable bool      `json:"is_available" yaml:"is_available"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// VisitPrice цена выезда на дом: home_visit_price, если задана,
// иначе обычная цена сеанса.
func (m *BathMaster) VisitPrice() float64 {
	if m.HomeVisitPrice != nil && *m.HomeVisitPrice > 0 {
		return *m.HomeVisitPrice
	}
	return m.PricePerSession
}

// BanyaBathMaster связка «мастер работает в бане», без собственных атрибутов.
type BanyaBathMaster struct {
	BanyaID      int64 `json:"banya_id" yaml:"banya_id"`
	BathMasterID int64 `json:"bath_master_id" yaml:"bath_master_id"`
}

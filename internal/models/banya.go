package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Banya банный комплекс. Владелец управляет видимостью через is_active;
// is_verified выставляет модерация и нигде больше не проверяется.
type Banya struct {
	ID          int64  `json:"id" yaml:"id"`
	OwnerID     int64  `json:"owner_id" yaml:"owner_id"`
	CityID      int64  `json:"city_id" yaml:"city_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Address     string `json:"address" yaml:"address"`
	Phone       string `json:"phone" yaml:"phone"`

	PricePerHour float64 `json:"price_per_hour" yaml:"price_per_hour"`
	MinHours     int     `json:"min_hours" yaml:"min_hours"`
	MaxGuests    int     `json:"max_guests" yaml:"max_guests"`
	OpeningTime  string  `json:"opening_time" yaml:"opening_time"` // "HH:MM"
	ClosingTime  string  `json:"closing_time" yaml:"closing_time"` // "HH:MM"

	// Удобства
	HasRussianBanya  bool `json:"has_russian_banya" yaml:"has_russian_banya"`
	HasFinnishSauna  bool `json:"has_finnish_sauna" yaml:"has_finnish_sauna"`
	HasHammam        bool `json:"has_hammam" yaml:"has_hammam"`
	HasInfraredSauna bool `json:"has_infrared_sauna" yaml:"has_infrared_sauna"`
	HasPool          bool `json:"has_pool" yaml:"has_pool"`
	HasJacuzzi       bool `json:"has_jacuzzi" yaml:"has_jacuzzi"`
	HasColdPlunge    bool `json:"has_cold_plunge" yaml:"has_cold_plunge"`
	HasSaltRoom      bool `json:"has_salt_room" yaml:"has_salt_room"`
	HasRestRoom      bool `json:"has_rest_room" yaml:"has_rest_room"`
	HasBilliards     bool `json:"has_billiards" yaml:"has_billiards"`
	HasKaraoke       bool `json:"has_karaoke" yaml:"has_karaoke"`
	HasBBQ           bool `json:"has_bbq" yaml:"has_bbq"`
	HasParking       bool `json:"has_parking" yaml:"has_parking"`

	// Что предоставляется
	ProvidesVeniks bool `json:"provides_veniks" yaml:"provides_veniks"`
	ProvidesTowels bool `json:"provides_towels" yaml:"provides_towels"`
	ProvidesRobes  bool `json:"provides_robes" yaml:"provides_robes"`
	ProvidesFood   bool `json:"provides_food" yaml:"provides_food"`
	ProvidesDrinks bool `json:"provides_drinks" yaml:"provides_drinks"`

	Rating      float64 `json:"rating" yaml:"rating"`
	RatingCount int64   `json:"rating_count" yaml:"rating_count"`

	IsActive   bool      `json:"is_active" yaml:"is_active"`
	IsVerified bool      `json:"is_verified" yaml:"is_verified"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"-"`
}

// OpeningHour парсит час открытия из "HH:MM".
func (b *Banya) OpeningHour() int {
	return parseHour(b.OpeningTime, 0)
}

// ClosingHour парсит час закрытия из "HH:MM". "00:00" трактуем как полночь (24).
func (b *Banya) ClosingHour() int {
	h := parseHour(b.ClosingTime, 24)
	if h == 0 {
		return 24
	}
	return h
}

func parseHour(hhmm string, fallback int) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return fallback
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return fallback
	}
	return h
}

// FormatHour возвращает час в виде слота "HH:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// BanyaPhoto хранит только метаданные: ссылку и порядок. Само хранение
// изображений вне системы.
type BanyaPhoto struct {
	ID        int64  `json:"id"`
	BanyaID   int64  `json:"banya_id"`
	URL       string `json:"url"`
	IsMain    bool   `json:"is_main"`
	SortOrder int64  `json:"sort_order"`
}

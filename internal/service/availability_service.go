package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/models"
	"banyabot/internal/schedule"
)

// AvailabilityServiceImpl считает свободные слоты, собирая чистый расчёт
// из пакета schedule с активными бронированиями из базы. Отменённые и
// завершённые бронирования слот не занимают.
type AvailabilityServiceImpl struct {
	repo           domain.Repository
	masterDayStart int
	masterDayEnd   int
	logger         *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, cfg config.BookingConfig, logger *zerolog.Logger) *AvailabilityServiceImpl {
	dayStart, dayEnd := cfg.MasterDayStart, cfg.MasterDayEnd
	if dayStart == 0 && dayEnd == 0 {
		dayStart, dayEnd = models.DefaultMasterDayStart, models.DefaultMasterDayEnd
	}
	return &AvailabilityServiceImpl{
		repo:           repo,
		masterDayStart: dayStart,
		masterDayEnd:   dayEnd,
		logger:         logger,
	}
}

// GetAvailableSlots возвращает свободные часы начала "HH:00" по возрастанию.
// Для бани окно берётся из её часов работы, для выезда мастера из
// конфигурации. Когда заданы оба участника, слот должен быть свободен
// у обоих, при этом мастер проверяется в окне бани.
func (s *AvailabilityServiceImpl) GetAvailableSlots(ctx context.Context, banyaID, masterID *int64, date time.Time, durationHours int) ([]string, error) {
	if banyaID == nil && masterID == nil {
		return nil, fmt.Errorf("%w: не указана ни баня, ни мастер", domain.ErrValidation)
	}
	if durationHours < 1 {
		return nil, fmt.Errorf("%w: длительность должна быть не меньше часа", domain.ErrValidation)
	}

	var banyaSlots []string
	openHour, closeHour := s.masterDayStart, s.masterDayEnd
	if banyaID != nil {
		banya, err := s.repo.GetBanyaByID(ctx, *banyaID)
		if err != nil {
			return nil, err
		}
		openHour, closeHour = banya.OpeningHour(), banya.ClosingHour()

		bookings, err := s.repo.GetActiveBanyaBookings(ctx, *banyaID, date)
		if err != nil {
			return nil, err
		}
		banyaSlots = schedule.Format(schedule.Available(openHour, closeHour, durationHours, bookingSpans(bookings)))
	}

	if masterID == nil {
		return banyaSlots, nil
	}

	// Мастер занят любым активным бронированием: в этой бане, в других
	// и на выездах. Фильтра по площадке нет.
	bookings, err := s.repo.GetActiveMasterBookings(ctx, *masterID, date)
	if err != nil {
		return nil, err
	}
	masterSlots := schedule.Format(schedule.Available(openHour, closeHour, durationHours, bookingSpans(bookings)))

	if banyaID == nil {
		return masterSlots, nil
	}
	return schedule.Intersect(banyaSlots, masterSlots), nil
}

func bookingSpans(bookings []*models.Booking) []schedule.Span {
	spans := make([]schedule.Span, 0, len(bookings))
	for _, b := range bookings {
		spans = append(spans, schedule.Span{StartHour: b.StartHour(), DurationHours: b.DurationHours})
	}
	return spans
}

package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/models"
)

func newAvailabilityService(repo *mockRepo) *AvailabilityServiceImpl {
	logger := zerolog.New(io.Discard)
	cfg := config.BookingConfig{MasterDayStart: 9, MasterDayEnd: 21}
	return NewAvailabilityService(repo, cfg, &logger)
}

func bookingAt(start string, hours int) *models.Booking {
	return &models.Booking{StartTime: start, DurationHours: hours, Status: models.StatusConfirmed}
}

func TestGetAvailableSlots(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("EmptyDay", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetBanyaByID", ctx, int64(1)).Return(activeBanya(), nil).Once()
		repo.On("GetActiveBanyaBookings", ctx, int64(1), date).Return([]*models.Booking{}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, int64Ptr(1), nil, date, 2)
		assert.NoError(t, err)
		// Баня 10:00-23:00: последний старт 21:00, чтобы два часа
		// уложились до закрытия.
		assert.Equal(t, []string{
			"10:00", "11:00", "12:00", "13:00", "14:00", "15:00",
			"16:00", "17:00", "18:00", "19:00", "20:00", "21:00",
		}, slots)
	})

	t.Run("LookbackBlocksEarlierStarts", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetBanyaByID", ctx, int64(1)).Return(activeBanya(), nil).Once()
		repo.On("GetActiveBanyaBookings", ctx, int64(1), date).
			Return([]*models.Booking{bookingAt("14:00", 2)}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, int64Ptr(1), nil, date, 2)
		assert.NoError(t, err)
		// Занято 14 и 15, плюс 13: двухчасовой старт в 13 пересёкся бы
		// с существующим бронированием.
		assert.NotContains(t, slots, "13:00")
		assert.NotContains(t, slots, "14:00")
		assert.NotContains(t, slots, "15:00")
		assert.Contains(t, slots, "12:00")
		assert.Contains(t, slots, "16:00")
	})

	t.Run("MasterOnlyUsesConfiguredWindow", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetActiveMasterBookings", ctx, int64(3), date).Return([]*models.Booking{}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, nil, int64Ptr(3), date, 2)
		assert.NoError(t, err)
		// Окно мастера 9-21: старты с 09:00 по 19:00.
		if assert.Len(t, slots, 11) {
			assert.Equal(t, "09:00", slots[0])
			assert.Equal(t, "19:00", slots[10])
		}
		repo.AssertNotCalled(t, "GetBanyaByID", ctx, int64(3))
	})

	t.Run("IntersectionBanyaAndMaster", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetBanyaByID", ctx, int64(1)).Return(activeBanya(), nil).Once()
		repo.On("GetActiveBanyaBookings", ctx, int64(1), date).Return([]*models.Booking{}, nil).Once()
		// Мастер занят в другой бане, для его занятости площадка не важна.
		repo.On("GetActiveMasterBookings", ctx, int64(3), date).
			Return([]*models.Booking{bookingAt("12:00", 2)}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, int64Ptr(1), int64Ptr(3), date, 2)
		assert.NoError(t, err)
		assert.Contains(t, slots, "10:00")
		assert.NotContains(t, slots, "11:00")
		assert.NotContains(t, slots, "12:00")
		assert.NotContains(t, slots, "13:00")
		assert.Contains(t, slots, "14:00")
		// Окно берётся от бани, слоты после конца дня мастера доступны.
		assert.Contains(t, slots, "21:00")
	})

	t.Run("DurationLongerThanWindow", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetBanyaByID", ctx, int64(1)).Return(activeBanya(), nil).Once()
		repo.On("GetActiveBanyaBookings", ctx, int64(1), date).Return([]*models.Booking{}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, int64Ptr(1), nil, date, 14)
		assert.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("FullyBookedDay", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newAvailabilityService(repo)

		repo.On("GetBanyaByID", ctx, int64(1)).Return(activeBanya(), nil).Once()
		repo.On("GetActiveBanyaBookings", ctx, int64(1), date).
			Return([]*models.Booking{bookingAt("10:00", 7), bookingAt("17:00", 6)}, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, int64Ptr(1), nil, date, 2)
		assert.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("NoTarget", func(t *testing.T) {
		svc := newAvailabilityService(new(mockRepo))

		_, err := svc.GetAvailableSlots(ctx, nil, nil, date, 2)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		svc := newAvailabilityService(new(mockRepo))

		_, err := svc.GetAvailableSlots(ctx, int64Ptr(1), nil, date, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

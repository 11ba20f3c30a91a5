package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

var testDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func makeBooking(userID int64, banyaID, masterID *int64, date time.Time, startHour, durationHours int) *models.Booking {
	b := &models.Booking{
		UserID:          userID,
		BanyaID:         banyaID,
		BathMasterID:    masterID,
		BookingType:     models.BookingTypeBanyaOnly,
		Date:            date,
		StartTime:       models.FormatHour(startHour),
		DurationHours:   durationHours,
		GuestsCount:     2,
		TotalPrice:      5000,
		Status:          models.StatusPending,
		ClientConfirmed: models.ConfirmationPending,
		BanyaConfirmed:  models.ConfirmationPending,
		MasterConfirmed: models.ConfirmationNotRequired,
	}
	if masterID != nil {
		b.MasterConfirmed = models.ConfirmationPending
		if banyaID == nil {
			b.BookingType = models.BookingTypeMasterHomeVisit
			b.BanyaConfirmed = models.ConfirmationNotRequired
		} else {
			b.BookingType = models.BookingTypeBanyaWithMaster
		}
	}
	return b
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 700)
	owner := createTestUser(t, db, 701)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	b := makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2)
	price := 5000.0
	b.BanyaPrice = &price
	b.UserNotes = "без веников"
	require.NoError(t, db.CreateBookingWithLock(ctx, b))
	require.NotZero(t, b.ID)
	assert.Equal(t, int64(1), b.Version)

	saved, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, saved.UserID)
	require.NotNil(t, saved.BanyaID)
	assert.Equal(t, banya.ID, *saved.BanyaID)
	assert.Nil(t, saved.BathMasterID)
	assert.Equal(t, "2026-03-14", saved.Date.Format("2006-01-02"))
	assert.Equal(t, "14:00", saved.StartTime)
	assert.Equal(t, 2, saved.DurationHours)
	require.NotNil(t, saved.BanyaPrice)
	assert.Equal(t, 5000.0, *saved.BanyaPrice)
	assert.Nil(t, saved.MasterPrice)
	assert.Equal(t, models.StatusPending, saved.Status)
	assert.Equal(t, models.ConfirmationPending, saved.ClientConfirmed)
	assert.Equal(t, models.ConfirmationNotRequired, saved.MasterConfirmed)
	assert.Equal(t, "без веников", saved.UserNotes)

	_, err = db.GetBooking(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBookingWithLock_OverlapConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 710)
	owner := createTestUser(t, db, 711)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2)))

	cases := []struct {
		name      string
		startHour int
		duration  int
		wantErr   error
	}{
		{"same slot", 14, 2, domain.ErrSlotConflict},
		{"starts inside", 15, 2, domain.ErrSlotConflict},
		{"ends inside", 13, 2, domain.ErrSlotConflict},
		{"covers whole", 13, 4, domain.ErrSlotConflict},
		{"back to back before", 12, 2, nil},
		{"back to back after", 16, 2, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, tc.startHour, tc.duration))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateBookingWithLock_OtherDayAndOtherBanya(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 720)
	owner := createTestUser(t, db, 721)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)
	other := createTestBanya(t, db, owner.ID, city.ID)

	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2)))

	// Тот же час в другой бане и на другой день свободен
	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &other.ID, nil, testDate, 14, 2)))
	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate.AddDate(0, 0, 1), 14, 2)))
}

func TestCreateBookingWithLock_MasterBusyAcrossVenues(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 730)
	owner := createTestUser(t, db, 731)
	mu := createTestUser(t, db, 732)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)
	other := createTestBanya(t, db, owner.ID, city.ID)
	master := createTestMaster(t, db, mu.ID)

	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, &master.ID, testDate, 14, 2)))

	// Мастер занят: конфликт и в другой бане, и на выезде
	err := db.CreateBookingWithLock(ctx, makeBooking(client.ID, &other.ID, &master.ID, testDate, 15, 2))
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	err = db.CreateBookingWithLock(ctx, makeBooking(client.ID, nil, &master.ID, testDate, 15, 1))
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	// Сама баня при этом занята тоже
	err = db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 1))
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 740)
	owner := createTestUser(t, db, 741)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	b := makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, b))

	b.Status = models.StatusCancelled
	b.CancelledBy = models.CancelledByClient
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, b))

	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2)))
}

func TestUpdateBookingStateWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 750)
	owner := createTestUser(t, db, 751)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	b := makeBooking(client.ID, &banya.ID, nil, testDate, 10, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, b))
	require.Equal(t, int64(1), b.Version)

	b.Status = models.StatusAwaitingConfirmations
	b.ClientConfirmed = models.ConfirmationConfirmed
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, b))
	assert.Equal(t, int64(2), b.Version)

	saved, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmations, saved.Status)
	assert.Equal(t, models.ConfirmationConfirmed, saved.ClientConfirmed)
	assert.Equal(t, int64(2), saved.Version)

	// Запись со старой версией отвергается
	stale := *saved
	stale.Version = 1
	stale.Status = models.StatusCancelled
	err = db.UpdateBookingStateWithVersion(ctx, &stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	unchanged, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmations, unchanged.Status)
}

func TestGetActiveBookingsFilterTerminal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 760)
	owner := createTestUser(t, db, 761)
	mu := createTestUser(t, db, 762)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)
	master := createTestMaster(t, db, mu.ID)

	active := makeBooking(client.ID, &banya.ID, &master.ID, testDate, 12, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, active))

	cancelled := makeBooking(client.ID, &banya.ID, nil, testDate, 16, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, cancelled))
	cancelled.Status = models.StatusCancelled
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, cancelled))

	banyaActive, err := db.GetActiveBanyaBookings(ctx, banya.ID, testDate)
	require.NoError(t, err)
	require.Len(t, banyaActive, 1)
	assert.Equal(t, active.ID, banyaActive[0].ID)

	masterActive, err := db.GetActiveMasterBookings(ctx, master.ID, testDate)
	require.NoError(t, err)
	require.Len(t, masterActive, 1)
	assert.Equal(t, active.ID, masterActive[0].ID)
}

func TestGetBookingsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 770)
	owner := createTestUser(t, db, 771)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 1)))
	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate.AddDate(0, 0, 2), 10, 1)))
	require.NoError(t, db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate.AddDate(0, 0, 10), 10, 1)))

	list, err := db.GetBookingsByDateRange(ctx, testDate, testDate.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-03-14", list[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-03-16", list[1].Date.Format("2006-01-02"))

	userBookings, err := db.GetUserBookings(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, userBookings, 3)

	banyaBookings, err := db.GetBanyaBookings(ctx, banya.ID)
	require.NoError(t, err)
	assert.Len(t, banyaBookings, 3)
}

func TestGetExpiredConfirmedBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 780)
	owner := createTestUser(t, db, 781)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	confirm := func(b *models.Booking) {
		b.Status = models.StatusConfirmed
		b.ClientConfirmed = models.ConfirmationConfirmed
		b.BanyaConfirmed = models.ConfirmationConfirmed
		require.NoError(t, db.UpdateBookingStateWithVersion(ctx, b))
	}

	past := makeBooking(client.ID, &banya.ID, nil, testDate.AddDate(0, 0, -1), 20, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, past))
	confirm(past)

	endedToday := makeBooking(client.ID, &banya.ID, nil, testDate, 12, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, endedToday))
	confirm(endedToday)

	// Заканчивается ровно в now.Hour(), уже истекла
	endsNow := makeBooking(client.ID, &banya.ID, nil, testDate, 14, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, endsNow))
	confirm(endsNow)

	ongoing := makeBooking(client.ID, &banya.ID, nil, testDate, 15, 2)
	require.NoError(t, db.CreateBookingWithLock(ctx, ongoing))
	confirm(ongoing)

	// pending не завершается джобой, даже если время прошло
	pendingPast := makeBooking(client.ID, &banya.ID, nil, testDate.AddDate(0, 0, -1), 10, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, pendingPast))

	expired, err := db.GetExpiredConfirmedBookings(ctx, now)
	require.NoError(t, err)

	ids := make(map[int64]bool)
	for _, b := range expired {
		ids[b.ID] = true
	}
	assert.Len(t, expired, 3)
	assert.True(t, ids[past.ID])
	assert.True(t, ids[endedToday.ID])
	assert.True(t, ids[endsNow.ID])
	assert.False(t, ids[ongoing.ID])
	assert.False(t, ids[pendingPast.ID])
}

func TestCountActiveBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 790)
	owner := createTestUser(t, db, 791)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	count, err := db.CountActiveBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	b1 := makeBooking(client.ID, &banya.ID, nil, testDate, 10, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, b1))
	b2 := makeBooking(client.ID, &banya.ID, nil, testDate, 12, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, b2))

	count, err = db.CountActiveBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	b2.Status = models.StatusCancelled
	require.NoError(t, db.UpdateBookingStateWithVersion(ctx, b2))

	count, err = db.CountActiveBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

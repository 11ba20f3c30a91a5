package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

// Десять конкурирующих созданий одного слота: ровно одно проходит,
// остальные получают конфликт. Проверка и вставка идут в одной
// транзакции, двойной брони быть не может.
func TestConcurrentBookingCreation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 800)
	owner := createTestUser(t, db, 801)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	const attempts = 10
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = db.CreateBookingWithLock(ctx, makeBooking(client.ID, &banya.ID, nil, testDate, 14, 2))
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	active, err := db.GetActiveBanyaBookings(ctx, banya.ID, testDate)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

// Два параллельных перехода из одной версии: один применяется,
// второй получает ErrConcurrentModification.
func TestConcurrentStateUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client := createTestUser(t, db, 810)
	owner := createTestUser(t, db, 811)
	city := createTestCity(t, db, "Москва")
	banya := createTestBanya(t, db, owner.ID, city.ID)

	b := makeBooking(client.ID, &banya.ID, nil, testDate, 10, 1)
	require.NoError(t, db.CreateBookingWithLock(ctx, b))

	first := *b
	second := *b
	first.Status = models.StatusAwaitingConfirmations
	first.BanyaConfirmed = models.ConfirmationConfirmed
	second.Status = models.StatusCancelled
	second.CancelledBy = models.CancelledByClient

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = db.UpdateBookingStateWithVersion(ctx, &first) }()
	go func() { defer wg.Done(); errs[1] = db.UpdateBookingStateWithVersion(ctx, &second) }()
	wg.Wait()

	var applied, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			applied++
		case errors.Is(err, domain.ErrConcurrentModification):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, rejected)

	saved, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)
	// Статус и флаги согласованы с победившей записью
	if saved.Status == models.StatusAwaitingConfirmations {
		assert.Equal(t, models.ConfirmationConfirmed, saved.BanyaConfirmed)
	} else {
		assert.Equal(t, models.StatusCancelled, saved.Status)
		assert.Equal(t, models.CancelledByClient, saved.CancelledBy)
	}
}

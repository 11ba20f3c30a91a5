package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidates(t *testing.T) {
	t.Run("FullWindow", func(t *testing.T) {
		// Открыто 10:00-23:00, длительность 2 часа: старты 10..21.
		got := Candidates(10, 23, 2)
		assert.Len(t, got, 12)
		assert.Equal(t, 10, got[0])
		assert.Equal(t, 21, got[len(got)-1])
	})

	t.Run("DurationFillsWindow", func(t *testing.T) {
		got := Candidates(10, 12, 2)
		assert.Equal(t, []int{10}, got)
	})

	t.Run("DurationExceedsWindow", func(t *testing.T) {
		assert.Nil(t, Candidates(10, 12, 3))
		assert.Nil(t, Candidates(10, 12, 13))
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		assert.Nil(t, Candidates(10, 23, 0))
	})
}

func TestOccupied_LookbackRule(t *testing.T) {
	// Бронь 14:00 на 2 часа. Для новой брони длительностью 2 закрыты
	// часы 14 и 15 (сама бронь) и 13 (старт в 13 пересёкся бы с 14).
	spans := []Span{{StartHour: 14, DurationHours: 2}}
	occupied := Occupied(spans, 10, 2)

	assert.Contains(t, occupied, 13)
	assert.Contains(t, occupied, 14)
	assert.Contains(t, occupied, 15)
	assert.NotContains(t, occupied, 12) // 12+2=14: впритык, без пересечения
	assert.NotContains(t, occupied, 16)
	assert.Len(t, occupied, 3)
}

func TestOccupied_LookbackClampedAtOpening(t *testing.T) {
	spans := []Span{{StartHour: 10, DurationHours: 1}}
	occupied := Occupied(spans, 10, 4)

	// Окно [7,10) лежит до открытия и не закрывается.
	assert.Contains(t, occupied, 10)
	assert.Len(t, occupied, 1)
}

func TestAvailable(t *testing.T) {
	t.Run("NoBookings", func(t *testing.T) {
		got := Available(10, 23, 2, nil)
		assert.Len(t, got, 12)
	})

	t.Run("SpecScenario", func(t *testing.T) {
		// Окно 10-23, бронь 14:00×2ч, запрос на 2 часа:
		// из [10..21] выпадают {13,14,15}, 12 остаётся.
		spans := []Span{{StartHour: 14, DurationHours: 2}}
		got := Available(10, 23, 2, spans)
		assert.Equal(t, []int{10, 11, 12, 16, 17, 18, 19, 20, 21}, got)
	})

	t.Run("BackToBackBookings", func(t *testing.T) {
		spans := []Span{
			{StartHour: 10, DurationHours: 2},
			{StartHour: 12, DurationHours: 2},
		}
		got := Available(10, 16, 2, spans)
		assert.Equal(t, []int{14}, got)
	})

	t.Run("Deterministic", func(t *testing.T) {
		spans := []Span{{StartHour: 12, DurationHours: 3}, {StartHour: 18, DurationHours: 2}}
		first := Available(9, 22, 2, spans)
		second := Available(9, 22, 2, spans)
		assert.Equal(t, first, second)
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, []string{"09:00", "10:00", "21:00"}, Format([]int{9, 10, 21}))
	assert.Empty(t, Format(nil))
}

func TestIntersect(t *testing.T) {
	a := []string{"10:00", "11:00", "12:00", "16:00"}
	b := []string{"11:00", "12:00", "17:00"}
	assert.Equal(t, []string{"11:00", "12:00"}, Intersect(a, b))
	assert.Empty(t, Intersect(a, nil))
}

// Booked slot must disappear from the next query for every overlapping duration.
func TestAvailable_BookedSlotNeverReappears(t *testing.T) {
	free := Available(10, 23, 2, nil)
	start := free[3] // 13:00

	spans := []Span{{StartHour: start, DurationHours: 2}}
	for dur := 1; dur <= 3; dur++ {
		next := Available(10, 23, dur, spans)
		for _, h := range next {
			overlaps := h < start+2 && h+dur > start
			assert.False(t, overlaps, "slot %d for duration %d overlaps booking at %d", h, dur, start)
		}
	}
}

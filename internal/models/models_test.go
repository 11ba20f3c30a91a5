package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserState_Helpers(t *testing.T) {
	now := time.Now()
	state := &UserState{
		TempData: map[string]interface{}{
			"int64":  int64(123),
			"int":    123,
			"float":  123.45,
			"string": "hello",
			"time":   "2025-01-01T10:00:00Z",
			"date":   "2025-06-15",
			"time_t": now,
		},
	}

	t.Run("NilTempData", func(t *testing.T) {
		nilState := &UserState{}
		assert.Equal(t, int64(0), nilState.GetInt64("any"))
		assert.Equal(t, "", nilState.GetString("any"))
		assert.True(t, nilState.GetTime("any").IsZero())
	})

	t.Run("GetInt64", func(t *testing.T) {
		assert.Equal(t, int64(123), state.GetInt64("int64"))
		assert.Equal(t, int64(123), state.GetInt64("int"))
		assert.Equal(t, int64(123), state.GetInt64("float"))
		assert.Equal(t, int64(0), state.GetInt64("string"))
		assert.Equal(t, int64(0), state.GetInt64("missing"))
	})

	t.Run("GetString", func(t *testing.T) {
		assert.Equal(t, "hello", state.GetString("string"))
		assert.Equal(t, "", state.GetString("int"))
		assert.Equal(t, "", state.GetString("missing"))
	})

	t.Run("GetTime", func(t *testing.T) {
		tm := state.GetTime("time")
		assert.False(t, tm.IsZero())
		assert.Equal(t, 2025, tm.Year())

		d := state.GetTime("date")
		assert.Equal(t, time.June, d.Month())
		assert.Equal(t, 15, d.Day())

		tm2 := state.GetTime("time_t")
		assert.Equal(t, now.Unix(), tm2.Unix())

		assert.True(t, state.GetTime("int").IsZero())
		assert.True(t, state.GetTime("string").IsZero())
	})

	t.Run("Set", func(t *testing.T) {
		s := &UserState{}
		s.Set("banya_id", int64(7))
		assert.Equal(t, int64(7), s.GetInt64("banya_id"))
	})
}

func TestConfirmation(t *testing.T) {
	assert.True(t, ConfirmationNotRequired.Satisfied())
	assert.True(t, ConfirmationConfirmed.Satisfied())
	assert.False(t, ConfirmationPending.Satisfied())

	assert.False(t, ConfirmationNotRequired.Required())
	assert.True(t, ConfirmationPending.Required())
	assert.True(t, ConfirmationConfirmed.Required())
}

func TestBooking_Hours(t *testing.T) {
	b := &Booking{
		Date:          time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:00",
		DurationHours: 2,
	}
	assert.Equal(t, 14, b.StartHour())
	assert.Equal(t, 16, b.EndHour())
	assert.Equal(t, time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC), b.EndsAt())
}

func TestBooking_AllConfirmed(t *testing.T) {
	b := &Booking{
		ClientConfirmed: ConfirmationConfirmed,
		BanyaConfirmed:  ConfirmationPending,
		MasterConfirmed: ConfirmationNotRequired,
	}
	assert.False(t, b.AllConfirmed())

	b.BanyaConfirmed = ConfirmationConfirmed
	assert.True(t, b.AllConfirmed())
}

func TestBanya_Hours(t *testing.T) {
	b := &Banya{OpeningTime: "10:00", ClosingTime: "23:00"}
	assert.Equal(t, 10, b.OpeningHour())
	assert.Equal(t, 23, b.ClosingHour())

	midnight := &Banya{OpeningTime: "08:00", ClosingTime: "00:00"}
	assert.Equal(t, 24, midnight.ClosingHour())

	assert.Equal(t, "09:00", FormatHour(9))
	assert.Equal(t, "21:00", FormatHour(21))
}

func TestBathMaster_VisitPrice(t *testing.T) {
	home := 5000.0
	m := &BathMaster{PricePerSession: 3000, HomeVisitPrice: &home}
	assert.Equal(t, 5000.0, m.VisitPrice())

	m2 := &BathMaster{PricePerSession: 3000}
	assert.Equal(t, 3000.0, m2.VisitPrice())
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, IsActiveStatus(StatusPending))
	assert.True(t, IsActiveStatus(StatusAwaitingConfirmations))
	assert.True(t, IsActiveStatus(StatusConfirmed))
	assert.False(t, IsActiveStatus(StatusCancelled))
	assert.False(t, IsActiveStatus(StatusCompleted))

	assert.True(t, IsTerminalStatus(StatusCancelled))
	assert.True(t, IsTerminalStatus(StatusCompleted))
	assert.False(t, IsTerminalStatus(StatusPending))
}

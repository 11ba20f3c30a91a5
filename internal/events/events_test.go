package events

import (
	"encoding/json"
	"testing"
	"time"

	"banyabot/internal/models"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	banyaID := int64(3)
	booking := &models.Booking{
		ID:            42,
		UserID:        7,
		BanyaID:       &banyaID,
		BookingType:   models.BookingTypeBanyaOnly,
		Date:          time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:00",
		DurationHours: 2,
		Status:        models.StatusPending,
	}
	if err := bus.PublishJSON(EventBookingCreated, PayloadFromBooking(booking, 7)); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventBookingCreated {
		t.Errorf("expected type %s, got %s", EventBookingCreated, received.Type)
	}

	var decoded BookingEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.BookingID != 42 {
		t.Errorf("expected booking_id=42, got %d", decoded.BookingID)
	}
	if decoded.Date != "2026-03-14" {
		t.Errorf("expected date 2026-03-14, got %s", decoded.Date)
	}
	if decoded.ActorUserID != 7 {
		t.Errorf("expected actor_user_id=7, got %d", decoded.ActorUserID)
	}
	if decoded.BanyaID == nil || *decoded.BanyaID != 3 {
		t.Errorf("expected banya_id=3, got %v", decoded.BanyaID)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventBookingCancelled, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventBookingCancelled, func(_ *Event) error { count2++; return nil })
	bus.Subscribe(EventBookingCompleted, func(_ *Event) error { t.Error("wrong topic delivered"); return nil })

	if err := bus.PublishJSON(EventBookingCancelled, map[string]int64{"booking_id": 1}); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNilSafe(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventBookingCreated, nil); err != nil {
		t.Fatalf("nil bus should be a no-op, got %v", err)
	}
}

package events

import (
	"encoding/json"
	"sync"
	"time"

	"banyabot/internal/models"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingAwaiting  = "booking.awaiting"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEventPayload снимок брони для подписчиков. Событие несёт всё
// нужное для уведомления, подписчики в базу не ходят.
type BookingEventPayload struct {
	BookingID     int64   `json:"booking_id"`
	UserID        int64   `json:"user_id"`
	BanyaID       *int64  `json:"banya_id,omitempty"`
	BathMasterID  *int64  `json:"bath_master_id,omitempty"`
	BookingType   string  `json:"booking_type"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	DurationHours int     `json:"duration_hours"`
	GuestsCount   int     `json:"guests_count"`
	TotalPrice    float64 `json:"total_price"`
	ActorUserID   int64   `json:"actor_user_id,omitempty"`
	CancelledBy   string  `json:"cancelled_by,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// PayloadFromBooking собирает снимок события. actorUserID задаёт, кто вызвал
// переход; подписчики используют его, чтобы не уведомлять инициатора.
func PayloadFromBooking(b *models.Booking, actorUserID int64) BookingEventPayload {
	return BookingEventPayload{
		BookingID:     b.ID,
		UserID:        b.UserID,
		BanyaID:       b.BanyaID,
		BathMasterID:  b.BathMasterID,
		BookingType:   b.BookingType,
		Status:        b.Status,
		Date:          b.Date.Format("2006-01-02"),
		StartTime:     b.StartTime,
		DurationHours: b.DurationHours,
		GuestsCount:   b.GuestsCount,
		TotalPrice:    b.TotalPrice,
		ActorUserID:   actorUserID,
		CancelledBy:   b.CancelledBy,
		Reason:        b.CancellationReason,
	}
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

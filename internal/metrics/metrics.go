package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banyabot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banyabot",
			Name:      "bot_updates_total",
			Help:      "Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banyabot",
			Name:      "bookings_created_total",
			Help:      "Created bookings by type.",
		},
		[]string{"booking_type"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banyabot",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions.",
		},
		[]string{"status"},
	)

	activeBookings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "banyabot",
			Name:      "active_bookings",
			Help:      "Bookings currently occupying slots.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			botUpdates,
			bookingsCreated,
			bookingTransitions,
			activeBookings,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBotUpdate counts a processed telegram update (message, callback...).
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}

// IncBookingCreated counts a freshly created booking.
func IncBookingCreated(bookingType string) {
	bookingsCreated.WithLabelValues(bookingType).Inc()
}

// IncBookingTransition counts a status change.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// SetActiveBookings updates the active bookings gauge.
func SetActiveBookings(n int64) {
	activeBookings.Set(float64(n))
}

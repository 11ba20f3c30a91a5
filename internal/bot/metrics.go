package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CommandsProcessed    prometheus.Counter
	CallbacksProcessed   prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	BookingsCreated      *prometheus.CounterVec
	BookingDuration      *prometheus.HistogramVec
	NotificationsSent    *prometheus.CounterVec
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_total",
			Help: "Total number of processed messages",
		}),

		CommandsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_commands_total",
			Help: "Total number of processed commands",
		}),

		CallbacksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_total",
			Help: "Total number of processed callback queries",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler errors and panics",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		BookingsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_created_total",
			Help: "Total number of bookings created",
		}, []string{"booking_type"}),

		BookingDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "telegram_bot_booking_duration_seconds",
			Help:    "Time spent creating a booking",
			Buckets: prometheus.DefBuckets,
		}, []string{"booking_type"}),

		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_notifications_total",
			Help: "Booking notifications sent, by event",
		}, []string{"event"}),
	}
}

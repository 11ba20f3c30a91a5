package worker

import (
	"context"
	"errors"
	"time"

	"banyabot/internal/database"
	"banyabot/internal/domain"
	"banyabot/internal/events"
	"banyabot/internal/models"

	"github.com/rs/zerolog"
)

// CompletionJob переводит отгулявшие подтверждённые брони в completed.
// Это единственное место, где появляется статус completed: отзывы
// открываются только после него.
type CompletionJob struct {
	db       *database.DB
	eventBus domain.EventPublisher
	ledger   domain.LedgerEnqueuer
	interval time.Duration
	logger   *zerolog.Logger
}

func NewCompletionJob(db *database.DB, eventBus domain.EventPublisher, ledger domain.LedgerEnqueuer, logger *zerolog.Logger) *CompletionJob {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CompletionJob{
		db:       db,
		eventBus: eventBus,
		ledger:   ledger,
		interval: time.Hour,
		logger:   logger,
	}
}

// Start запускает цикл; первый прогон сразу, дальше раз в час.
func (j *CompletionJob) Start(ctx context.Context) {
	j.logger.Info().Msg("completion_job: started")
	defer j.logger.Info().Msg("completion_job: stopped")

	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce завершает все просроченные подтверждённые брони.
func (j *CompletionJob) RunOnce(ctx context.Context) {
	expired, err := j.db.GetExpiredConfirmedBookings(ctx, time.Now())
	if err != nil {
		j.logger.Error().Err(err).Msg("completion_job: fetch expired bookings")
		return
	}

	for _, booking := range expired {
		if err := j.complete(ctx, booking); err != nil {
			// Проигрыш CAS означает параллельную отмену, не ошибка.
			if errors.Is(err, domain.ErrConcurrentModification) {
				j.logger.Debug().Int64("booking_id", booking.ID).Msg("completion_job: booking changed concurrently, skipped")
				continue
			}
			j.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("completion_job: complete booking")
		}
	}
}

func (j *CompletionJob) complete(ctx context.Context, booking *models.Booking) error {
	booking.Status = models.StatusCompleted
	if err := j.db.UpdateBookingStateWithVersion(ctx, booking); err != nil {
		return err
	}

	j.logger.Info().Int64("booking_id", booking.ID).Msg("completion_job: booking completed")

	if j.eventBus != nil {
		payload := events.PayloadFromBooking(booking, 0)
		if err := j.eventBus.PublishJSON(events.EventBookingCompleted, payload); err != nil {
			j.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("completion_job: publish event")
		}
	}

	if j.ledger != nil {
		if err := j.ledger.EnqueueTask(ctx, models.LedgerTaskStatus, booking.ID, nil, booking.Status); err != nil {
			j.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("completion_job: enqueue ledger task")
		}
	}

	return nil
}

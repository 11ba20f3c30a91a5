package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/events"
	"banyabot/internal/models"
)

// minAddressRunes минимальная длина адреса для выезда на дом.
const minAddressRunes = 5

// BookingServiceImpl реализует workflow бронирования: создание,
// подтверждения сторон и отмену. Свободность слота проверяется один раз,
// при создании, в одной транзакции со вставкой; на подтверждениях
// повторной проверки нет. Все переходы статуса пишутся через
// оптимистичную блокировку по version.
type BookingServiceImpl struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	ledger         domain.LedgerEnqueuer
	maxBookingDays int
	masterDayStart int
	masterDayEnd   int
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, ledger domain.LedgerEnqueuer, cfg config.BookingConfig, logger *zerolog.Logger) *BookingServiceImpl {
	maxDays := cfg.MaxBookingDays
	if maxDays <= 0 {
		maxDays = 365
	}
	dayStart, dayEnd := cfg.MasterDayStart, cfg.MasterDayEnd
	if dayStart == 0 && dayEnd == 0 {
		dayStart, dayEnd = models.DefaultMasterDayStart, models.DefaultMasterDayEnd
	}
	return &BookingServiceImpl{
		repo:           repo,
		eventBus:       eventBus,
		ledger:         ledger,
		maxBookingDays: maxDays,
		masterDayStart: dayStart,
		masterDayEnd:   dayEnd,
		logger:         logger,
	}
}

// ValidateBookingDate проверяет, что дата не в прошлом и не дальше
// горизонта бронирования.
func (s *BookingServiceImpl) ValidateBookingDate(date time.Time) error {
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return domain.ErrPastDate
	}
	if date.After(time.Now().AddDate(0, 0, s.maxBookingDays)) {
		return domain.ErrDateTooFar
	}
	return nil
}

// CreateBooking проверяет ввод, считает цены и вставляет бронирование
// в статусе pending. Клиент подтверждает заявку отдельной операцией.
func (s *BookingServiceImpl) CreateBooking(ctx context.Context, in domain.CreateBookingInput) (*models.Booking, error) {
	if in.BanyaID == nil && in.BathMasterID == nil {
		return nil, fmt.Errorf("%w: нужна баня или мастер", domain.ErrValidation)
	}
	if in.DurationHours < 1 {
		return nil, fmt.Errorf("%w: длительность должна быть не меньше часа", domain.ErrValidation)
	}
	if err := s.ValidateBookingDate(in.Date); err != nil {
		return nil, err
	}
	bookingType, err := resolveBookingType(in)
	if err != nil {
		return nil, err
	}

	guests := in.GuestsCount
	if guests < 1 {
		guests = 1
	}

	booking := &models.Booking{
		UserID:          in.UserID,
		BanyaID:         in.BanyaID,
		BathMasterID:    in.BathMasterID,
		BookingType:     bookingType,
		Date:            in.Date,
		StartTime:       models.FormatHour(in.StartHour),
		DurationHours:   in.DurationHours,
		GuestsCount:     guests,
		ClientAddress:   strings.TrimSpace(in.ClientAddress),
		UserNotes:       strings.TrimSpace(in.UserNotes),
		Status:          models.StatusPending,
		ClientConfirmed: models.ConfirmationPending,
		BanyaConfirmed:  models.ConfirmationNotRequired,
		MasterConfirmed: models.ConfirmationNotRequired,
	}

	if in.BanyaID != nil {
		banya, err := s.repo.GetBanyaByID(ctx, *in.BanyaID)
		if err != nil {
			return nil, err
		}
		if !banya.IsActive {
			return nil, fmt.Errorf("%w: баня сейчас не принимает бронирования", domain.ErrValidation)
		}
		if in.DurationHours < banya.MinHours {
			return nil, fmt.Errorf("%w: минимальная длительность %d ч", domain.ErrValidation, banya.MinHours)
		}
		if banya.MaxGuests > 0 && guests > banya.MaxGuests {
			return nil, fmt.Errorf("%w: вместимость бани %d гостей", domain.ErrValidation, banya.MaxGuests)
		}
		if in.StartHour < banya.OpeningHour() || in.StartHour+in.DurationHours > banya.ClosingHour() {
			return nil, fmt.Errorf("%w: баня работает с %s до %s", domain.ErrValidation, banya.OpeningTime, banya.ClosingTime)
		}
		price := banya.PricePerHour * float64(in.DurationHours)
		booking.BanyaPrice = &price
		booking.BanyaConfirmed = models.ConfirmationPending
	}

	if in.BathMasterID != nil {
		master, err := s.repo.GetBathMasterByID(ctx, *in.BathMasterID)
		if err != nil {
			return nil, err
		}
		if !master.IsAvailable {
			return nil, fmt.Errorf("%w: мастер сейчас не принимает заявки", domain.ErrValidation)
		}
		var price float64
		if in.BanyaID == nil {
			if !master.CanVisitHome {
				return nil, fmt.Errorf("%w: мастер не выезжает на дом", domain.ErrValidation)
			}
			if utf8.RuneCountInString(booking.ClientAddress) < minAddressRunes {
				return nil, fmt.Errorf("%w: укажите адрес выезда, минимум %d символов", domain.ErrValidation, minAddressRunes)
			}
			if in.StartHour < s.masterDayStart || in.StartHour+in.DurationHours > s.masterDayEnd {
				return nil, fmt.Errorf("%w: мастер принимает с %s до %s", domain.ErrValidation,
					models.FormatHour(s.masterDayStart), models.FormatHour(s.masterDayEnd))
			}
			price = master.VisitPrice()
		} else {
			price = master.PricePerSession
		}
		booking.MasterPrice = &price
		booking.MasterConfirmed = models.ConfirmationPending
	}

	var total float64
	if booking.BanyaPrice != nil {
		total += *booking.BanyaPrice
	}
	if booking.MasterPrice != nil {
		total += *booking.MasterPrice
	}
	booking.TotalPrice = total

	// Проверка пересечений и вставка идут одной транзакцией, см.
	// Repository.CreateBookingWithLock.
	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("user_id", booking.UserID).
		Str("booking_type", booking.BookingType).
		Str("date", booking.Date.Format("2006-01-02")).
		Str("start_time", booking.StartTime).
		Int("duration_hours", booking.DurationHours).
		Float64("total_price", booking.TotalPrice).
		Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, booking, in.UserID)
	s.enqueueLedger(ctx, models.LedgerTaskUpsert, booking, "")

	return booking, nil
}

// resolveBookingType выводит тип из набора сторон. Явная подсказка из
// сценария допускается, если сходится с выбранными сторонами.
func resolveBookingType(in domain.CreateBookingInput) (string, error) {
	var derived string
	switch {
	case in.BanyaID != nil && in.BathMasterID != nil:
		derived = models.BookingTypeBanyaWithMaster
	case in.BanyaID != nil:
		derived = models.BookingTypeBanyaOnly
	default:
		derived = models.BookingTypeMasterHomeVisit
	}
	if in.BookingType == "" {
		return derived, nil
	}
	if in.BookingType == derived ||
		(in.BookingType == models.BookingTypeMasterAtBanya && derived == models.BookingTypeBanyaWithMaster) {
		return in.BookingType, nil
	}
	return "", fmt.Errorf("%w: тип %s не соответствует выбранным сторонам", domain.ErrValidation, in.BookingType)
}

type confirmParty int

const (
	partyClient confirmParty = iota
	partyBanya
	partyMaster
)

func (s *BookingServiceImpl) ClientConfirm(ctx context.Context, bookingID int64, actor domain.Actor) (*models.Booking, error) {
	return s.confirm(ctx, bookingID, actor, partyClient)
}

func (s *BookingServiceImpl) BanyaConfirm(ctx context.Context, bookingID int64, actor domain.Actor) (*models.Booking, error) {
	return s.confirm(ctx, bookingID, actor, partyBanya)
}

func (s *BookingServiceImpl) MasterConfirm(ctx context.Context, bookingID int64, actor domain.Actor) (*models.Booking, error) {
	return s.confirm(ctx, bookingID, actor, partyMaster)
}

func (s *BookingServiceImpl) confirm(ctx context.Context, bookingID int64, actor domain.Actor, party confirmParty) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(booking.Status) {
		return nil, fmt.Errorf("%w: бронирование уже %s", domain.ErrInvalidState, booking.Status)
	}
	if err := s.authorizeConfirm(ctx, booking, actor, party); err != nil {
		return nil, err
	}

	flag := s.confirmationOf(booking, party)
	if *flag == models.ConfirmationConfirmed {
		// Повторное нажатие той же стороной идемпотентно: без ошибки,
		// без записи и без повторных уведомлений.
		return booking, nil
	}

	// Клиент подтверждает из pending и открывает сбор остальных
	// подтверждений; баня и мастер подтверждают из awaiting_confirmations.
	required := models.StatusAwaitingConfirmations
	if party == partyClient {
		required = models.StatusPending
	}
	if booking.Status != required {
		return nil, fmt.Errorf("%w: бронирование в статусе %s", domain.ErrInvalidState, booking.Status)
	}

	*flag = models.ConfirmationConfirmed
	if booking.AllConfirmed() {
		booking.Status = models.StatusConfirmed
	} else {
		booking.Status = models.StatusAwaitingConfirmations
	}

	if err := s.repo.UpdateBookingStateWithVersion(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("actor_user_id", actor.UserID).
		Str("status", booking.Status).
		Msg("Booking confirmation recorded")

	if booking.Status == models.StatusConfirmed {
		s.publishEvent(events.EventBookingConfirmed, booking, actor.UserID)
	} else {
		s.publishEvent(events.EventBookingAwaiting, booking, actor.UserID)
	}
	s.enqueueLedger(ctx, models.LedgerTaskStatus, booking, booking.Status)

	return booking, nil
}

func (s *BookingServiceImpl) authorizeConfirm(ctx context.Context, booking *models.Booking, actor domain.Actor, party confirmParty) error {
	switch party {
	case partyBanya:
		if booking.BanyaID == nil {
			return fmt.Errorf("%w: в бронировании нет бани", domain.ErrInvalidState)
		}
		banya, err := s.repo.GetBanyaByID(ctx, *booking.BanyaID)
		if err != nil {
			return err
		}
		if banya.OwnerID != actor.UserID {
			return fmt.Errorf("%w: подтверждает владелец бани", domain.ErrUnauthorized)
		}
	case partyMaster:
		if booking.BathMasterID == nil {
			return fmt.Errorf("%w: в бронировании нет мастера", domain.ErrInvalidState)
		}
		master, err := s.repo.GetBathMasterByID(ctx, *booking.BathMasterID)
		if err != nil {
			return err
		}
		if master.UserID != actor.UserID {
			return fmt.Errorf("%w: подтверждает сам мастер", domain.ErrUnauthorized)
		}
	default:
		if actor.UserID != booking.UserID {
			return fmt.Errorf("%w: подтверждает клиент бронирования", domain.ErrUnauthorized)
		}
	}
	return nil
}

func (s *BookingServiceImpl) confirmationOf(b *models.Booking, party confirmParty) *models.Confirmation {
	switch party {
	case partyBanya:
		return &b.BanyaConfirmed
	case partyMaster:
		return &b.MasterConfirmed
	default:
		return &b.ClientConfirmed
	}
}

// CancelBooking переводит бронирование в cancelled из любого активного
// статуса. Отменить может клиент, владелец бани, мастер или админ;
// cancelled_by определяется первым совпадением именно в этом порядке.
func (s *BookingServiceImpl) CancelBooking(ctx context.Context, bookingID int64, actor domain.Actor, reason string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(booking.Status) {
		return nil, fmt.Errorf("%w: бронирование уже %s", domain.ErrInvalidState, booking.Status)
	}

	cancelledBy, err := s.resolveCanceller(ctx, booking, actor)
	if err != nil {
		return nil, err
	}

	booking.Status = models.StatusCancelled
	booking.CancelledBy = cancelledBy
	booking.CancellationReason = strings.TrimSpace(reason)

	if err := s.repo.UpdateBookingStateWithVersion(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("actor_user_id", actor.UserID).
		Str("cancelled_by", cancelledBy).
		Msg("Booking cancelled")

	s.publishEvent(events.EventBookingCancelled, booking, actor.UserID)
	s.enqueueLedger(ctx, models.LedgerTaskStatus, booking, models.StatusCancelled)

	return booking, nil
}

func (s *BookingServiceImpl) resolveCanceller(ctx context.Context, booking *models.Booking, actor domain.Actor) (string, error) {
	if actor.UserID == booking.UserID {
		return models.CancelledByClient, nil
	}
	if booking.BanyaID != nil {
		banya, err := s.repo.GetBanyaByID(ctx, *booking.BanyaID)
		if err != nil {
			return "", err
		}
		if banya.OwnerID == actor.UserID {
			return models.CancelledByBanya, nil
		}
	}
	if booking.BathMasterID != nil {
		master, err := s.repo.GetBathMasterByID(ctx, *booking.BathMasterID)
		if err != nil {
			return "", err
		}
		if master.UserID == actor.UserID {
			return models.CancelledByMaster, nil
		}
	}
	if actor.IsAdmin {
		return models.CancelledByAdmin, nil
	}
	return "", fmt.Errorf("%w: отменить может только участник бронирования", domain.ErrUnauthorized)
}

func (s *BookingServiceImpl) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingServiceImpl) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *BookingServiceImpl) GetBanyaBookings(ctx context.Context, banyaID int64) ([]*models.Booking, error) {
	return s.repo.GetBanyaBookings(ctx, banyaID)
}

func (s *BookingServiceImpl) GetMasterBookings(ctx context.Context, masterID int64) ([]*models.Booking, error) {
	return s.repo.GetMasterBookings(ctx, masterID)
}

func (s *BookingServiceImpl) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start, end)
}

// publishEvent шлёт событие в шину после того, как переход уже записан.
// Ошибка публикации логируется и глотается, workflow от неё не зависит.
func (s *BookingServiceImpl) publishEvent(eventType string, booking *models.Booking, actorUserID int64) {
	if s.eventBus == nil {
		return
	}
	payload := events.PayloadFromBooking(booking, actorUserID)
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Int64("booking_id", booking.ID).
			Msg("publish event error")
	}
}

func (s *BookingServiceImpl) enqueueLedger(ctx context.Context, taskType string, booking *models.Booking, status string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).
			Str("task_type", taskType).
			Int64("booking_id", booking.ID).
			Msg("enqueue ledger task error")
	}
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"banyabot/internal/api"
	"banyabot/internal/bot"
	"banyabot/internal/config"
	"banyabot/internal/database"
	"banyabot/internal/domain"
	"banyabot/internal/events"
	"banyabot/internal/google"
	"banyabot/internal/logging"
	"banyabot/internal/metrics"
	"banyabot/internal/models"
	"banyabot/internal/repository"
	"banyabot/internal/service"
	"banyabot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerClient := initGoogleLedger(ctx, cfg, &logger)
	redisClient, stateService := initStateService(ctx, cfg, &logger)

	// Воркер реестра поднимаем только при настроенном Google:
	// без него бот работает, брони просто не уходят в таблицу.
	var ledgerEnqueuer domain.LedgerEnqueuer
	if ledgerClient != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		ledgerWorker := worker.NewLedgerWorker(db, ledgerClient, redisClient, retryPolicy, &logger)
		ledgerEnqueuer = ledgerWorker
		go ledgerWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	metrics.Register()
	subscribeMetrics(eventBus)
	go sampleActiveBookings(ctx, db, &logger)

	// Бизнес-сервисы
	bookingService := service.NewBookingService(db, eventBus, ledgerEnqueuer, cfg.Booking, &logger)
	userService := service.NewUserService(db, cfg, &logger)
	catalogService := service.NewCatalogService(db, &logger)
	availabilityService := service.NewAvailabilityService(db, cfg.Booking, &logger)
	reviewService := service.NewReviewService(db, &logger)

	completionJob := worker.NewCompletionJob(db, eventBus, ledgerEnqueuer, &logger)
	go completionJob.Start(ctx)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, catalogService, availabilityService, bookingService, userService, reviewService, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	return startBot(ctx, cfg, stateService, eventBus,
		bookingService, availabilityService, userService, catalogService, reviewService, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}
	return db, nil
}

// initGoogleLedger подключает таблицу-реестр. Реестр опционален:
// без креденшелов возвращаем nil и едем дальше.
func initGoogleLedger(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsLedger {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.LedgerSpreadsheetID == "" {
		logger.Info().Msg("Google ledger не настроен, работаем без реестра")
		return nil
	}

	ledger, err := google.NewSheetsLedger(cfg.Google.GoogleCredentialsFile, cfg.Google.LedgerSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets ledger")
		return nil
	}

	if err := ledger.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	if err := ledger.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets cache warm-up failed")
	}

	logger.Info().Msg("Google Sheets ledger initialized successfully")
	return ledger
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultRedisTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	eventBus *events.EventBus,
	bookingService domain.BookingService,
	availabilityService domain.AvailabilityService,
	userService domain.UserService,
	catalogService domain.CatalogService,
	reviewService domain.ReviewService,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)
	botMetrics := bot.NewMetrics()

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService,
		bookingService, availabilityService, userService, catalogService, reviewService,
		botMetrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	// Уведомления сторонам идут через шину: сервисы публикуют
	// переходы, бот их доставляет в телеграм.
	telegramBot.SubscribeNotifications(eventBus)

	logger.Info().Msg("Бот запущен...")
	telegramBot.StartReminders(ctx)
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeMetrics считает бизнес-метрики по событиям шины: в счётчики
// попадают брони из бота, из встроенного API и из фоновых джоб.
func subscribeMetrics(bus *events.EventBus) {
	decode := func(ev *events.Event) (events.BookingEventPayload, bool) {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return payload, false
		}
		return payload, true
	}

	bus.Subscribe(events.EventBookingCreated, func(ev *events.Event) error {
		if payload, ok := decode(ev); ok {
			metrics.IncBookingCreated(payload.BookingType)
		}
		return nil
	})

	transition := func(ev *events.Event) error {
		if payload, ok := decode(ev); ok {
			metrics.IncBookingTransition(payload.Status)
		}
		return nil
	}
	bus.Subscribe(events.EventBookingAwaiting, transition)
	bus.Subscribe(events.EventBookingConfirmed, transition)
	bus.Subscribe(events.EventBookingCancelled, transition)
	bus.Subscribe(events.EventBookingCompleted, transition)
}

func sampleActiveBookings(ctx context.Context, db *database.DB, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		count, err := db.CountActiveBookings(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("count active bookings")
		} else {
			metrics.SetActiveBookings(count)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

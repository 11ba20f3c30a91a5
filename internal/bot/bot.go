package bot

import (
	"context"
	"errors"
	"os"
	"time"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/metrics"
	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService      domain.TelegramService
	config         *config.Config
	stateService   domain.StateManager
	bookingService domain.BookingService
	availability   domain.AvailabilityService
	userService    domain.UserService
	catalogService domain.CatalogService
	reviewService  domain.ReviewService
	metrics        *Metrics
	logger         *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	stateService domain.StateManager,
	bookingService domain.BookingService,
	availability domain.AvailabilityService,
	userService domain.UserService,
	catalogService domain.CatalogService,
	reviewService domain.ReviewService,
	botMetrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:      tgService,
		config:         config,
		stateService:   stateService,
		bookingService: bookingService,
		availability:   availability,
		userService:    userService,
		catalogService: catalogService,
		reviewService:  reviewService,
		metrics:        botMetrics,
		logger:         logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var from *tgbotapi.User
		if update.Message != nil {
			from = update.Message.From
			metrics.IncBotUpdate("message")
		} else if update.CallbackQuery != nil {
			from = update.CallbackQuery.From
			metrics.IncBotUpdate("callback")
		}

		if from == nil || from.ID == 0 {
			return
		}

		if b.isBlacklisted(from.ID) {
			return
		}

		b.trackActivity(from)

		if !b.isAdmin(from.ID) {
			allowed, err := b.stateService.CheckRateLimit(updateCtx, from.ID,
				b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
			if err != nil {
				b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("Rate limit check failed")
			} else if !allowed {
				b.logger.Warn().Int64("user_id", from.ID).Msg("Rate limit exceeded")
				if update.Message != nil {
					b.sendMessage(update.Message.Chat.ID, "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного.")
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, &update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, &update)
	})
}

func (b *Bot) isAdmin(telegramID int64) bool {
	return b.userService.IsAdmin(telegramID)
}

func (b *Bot) isBlacklisted(telegramID int64) bool {
	return b.userService.IsBlacklisted(telegramID)
}

// resolveUser находит или создаёт пользователя по отправителю апдейта.
// Все сервисные операции работают с внутренним user.ID, не с telegram id.
func (b *Bot) resolveUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	user, err := b.userService.GetUserByTelegramID(ctx, from.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
	if err := b.userService.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// actorOf собирает актора операции бронирования из пользователя.
func (b *Bot) actorOf(user *models.User) domain.Actor {
	return domain.Actor{UserID: user.ID, IsAdmin: b.isAdmin(user.TelegramID)}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("get user state error")
		return nil
	}
	return state
}

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, step, tempData); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("set user state error")
	}
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear user state error")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message error")
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	if _, err := b.tgService.SendHTML(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send html message error")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("answer callback error")
	}
}

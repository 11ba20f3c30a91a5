package bot

import (
	"context"
	"time"

	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

// trackActivity дописывает профиль пользователя из апдейта. Заодно
// обновляется users.updated_at, по нему считается активность.
func (b *Bot) trackActivity(from *tgbotapi.User) {
	if from == nil || from.ID == 0 {
		return
	}
	user := &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
	// Run in background to not block the main loop
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.userService.SaveUser(ctx, user); err != nil {
			b.logger.Error().Err(err).Int64("telegram_id", from.ID).Msg("Failed to track user activity")
		}
	}()
}

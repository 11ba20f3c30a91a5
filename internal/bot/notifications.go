package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"banyabot/internal/events"
	"banyabot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SubscribeNotifications подключает бот к событиям бронирований: каждый
// переход статуса превращается в сообщения заинтересованным сторонам.
// Инициатор перехода уведомление не получает: он и так видит результат.
func (b *Bot) SubscribeNotifications(bus *events.EventBus) {
	if bus == nil {
		return
	}

	decode := func(fn func(ctx context.Context, p *events.BookingEventPayload)) events.EventHandler {
		return func(event *events.Event) error {
			var payload events.BookingEventPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				b.logger.Error().Err(err).Str("event", event.Type).Msg("decode booking event error")
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			fn(ctx, &payload)
			return nil
		}
	}

	bus.Subscribe(events.EventBookingCreated, decode(b.notifyCreated))
	bus.Subscribe(events.EventBookingAwaiting, decode(b.notifyAwaiting))
	bus.Subscribe(events.EventBookingConfirmed, decode(b.notifyConfirmed))
	bus.Subscribe(events.EventBookingCancelled, decode(b.notifyCancelled))
	bus.Subscribe(events.EventBookingCompleted, decode(b.notifyCompleted))
}

// bookingParties телеграм-адресаты бронирования. Любая из сторон
// может отсутствовать: nil-поля просто пропускаются при рассылке.
type bookingParties struct {
	client *models.User
	owner  *models.User
	master *models.User
}

func (b *Bot) resolveParties(ctx context.Context, p *events.BookingEventPayload) bookingParties {
	var parties bookingParties

	if user, err := b.userService.GetUserByID(ctx, p.UserID); err == nil {
		parties.client = user
	} else {
		b.logger.Error().Err(err).Int64("user_id", p.UserID).Msg("notify: resolve client error")
	}

	if p.BanyaID != nil {
		if banya, err := b.catalogService.GetBanyaByID(ctx, *p.BanyaID); err == nil {
			if owner, err := b.userService.GetUserByID(ctx, banya.OwnerID); err == nil {
				parties.owner = owner
			}
		}
	}

	if p.BathMasterID != nil {
		if master, err := b.catalogService.GetBathMasterByID(ctx, *p.BathMasterID); err == nil {
			if user, err := b.userService.GetUserByID(ctx, master.UserID); err == nil {
				parties.master = user
			}
		}
	}

	return parties
}

// notify отправляет сообщение стороне, если она есть и не инициатор.
func (b *Bot) notify(event string, user *models.User, actorUserID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if user == nil || user.TelegramID == 0 || user.ID == actorUserID {
		return
	}

	msg := tgbotapi.NewMessage(user.TelegramID, text)
	msg.ParseMode = models.ParseModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}

	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", user.TelegramID).Str("event", event).Msg("notify: send error")
		return
	}
	if b.metrics != nil {
		b.metrics.NotificationsSent.WithLabelValues(event).Inc()
	}
}

// describeBooking короткая строка «что и когда» для уведомлений.
func (b *Bot) describeBooking(ctx context.Context, p *events.BookingEventPayload) string {
	when := p.Date
	if parsed, err := time.Parse("2006-01-02", p.Date); err == nil {
		when = parsed.Format("02.01.2006")
	}

	place := ""
	if p.BanyaID != nil {
		if banya, err := b.catalogService.GetBanyaByID(ctx, *p.BanyaID); err == nil {
			place = " в «" + banya.Name + "»"
		}
	}

	return fmt.Sprintf("%s, %s (%d ч)%s", when, p.StartTime, p.DurationHours, place)
}

// notifyCreated: заявку создали за клиента (админ или интеграция).
// Самому клиенту через бот она уже показана, инициатора исключаем.
func (b *Bot) notifyCreated(ctx context.Context, p *events.BookingEventPayload) {
	parties := b.resolveParties(ctx, p)

	text := fmt.Sprintf("📝 Для вас создана заявка #%d: %s\n\nПодтвердите её: /booking_%d",
		p.BookingID, b.describeBooking(ctx, p), p.BookingID)
	b.notify(events.EventBookingCreated, parties.client, p.ActorUserID, text, nil)
}

// notifyAwaiting: клиент подтвердил заявку, зовем баню и мастера.
func (b *Bot) notifyAwaiting(ctx context.Context, p *events.BookingEventPayload) {
	parties := b.resolveParties(ctx, p)
	details := b.describeBooking(ctx, p)

	if parties.owner != nil {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("banya_confirm:%d", p.BookingID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("cancel_booking:%d", p.BookingID)),
			),
		)
		text := fmt.Sprintf("🔔 Новая заявка #%d на вашу баню: %s\n👥 Гостей: %d · 💰 %.0f ₽\n\nКарточка: /booking_%d",
			p.BookingID, details, p.GuestsCount, p.TotalPrice, p.BookingID)
		b.notify(events.EventBookingAwaiting, parties.owner, p.ActorUserID, text, &keyboard)
	}

	if parties.master != nil {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("master_confirm:%d", p.BookingID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("cancel_booking:%d", p.BookingID)),
			),
		)
		text := fmt.Sprintf("🔔 Новая заявка #%d: %s\n👥 Гостей: %d\n\nКарточка: /booking_%d",
			p.BookingID, details, p.GuestsCount, p.BookingID)
		b.notify(events.EventBookingAwaiting, parties.master, p.ActorUserID, text, &keyboard)
	}
}

// notifyConfirmed: все стороны подтвердили.
func (b *Bot) notifyConfirmed(ctx context.Context, p *events.BookingEventPayload) {
	parties := b.resolveParties(ctx, p)

	text := fmt.Sprintf("✅ Бронирование #%d подтверждено всеми сторонами!\n%s\n\nКарточка: /booking_%d",
		p.BookingID, b.describeBooking(ctx, p), p.BookingID)

	b.notify(events.EventBookingConfirmed, parties.client, p.ActorUserID, text, nil)
	b.notify(events.EventBookingConfirmed, parties.owner, p.ActorUserID, text, nil)
	b.notify(events.EventBookingConfirmed, parties.master, p.ActorUserID, text, nil)
}

// notifyCancelled: отмена с указанием, кто и почему.
func (b *Bot) notifyCancelled(ctx context.Context, p *events.BookingEventPayload) {
	parties := b.resolveParties(ctx, p)

	text := fmt.Sprintf("🚫 Бронирование #%d отменено (%s): %s",
		p.BookingID, cancelledByLabel(p.CancelledBy), b.describeBooking(ctx, p))
	if p.Reason != "" {
		text += "\nПричина: " + p.Reason
	}

	b.notify(events.EventBookingCancelled, parties.client, p.ActorUserID, text, nil)
	b.notify(events.EventBookingCancelled, parties.owner, p.ActorUserID, text, nil)
	b.notify(events.EventBookingCancelled, parties.master, p.ActorUserID, text, nil)
}

// notifyCompleted: визит состоялся, просим клиента оценить.
func (b *Bot) notifyCompleted(ctx context.Context, p *events.BookingEventPayload) {
	parties := b.resolveParties(ctx, p)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Оставить отзыв", fmt.Sprintf("review:%d", p.BookingID)),
		),
	)
	text := fmt.Sprintf("🏁 Бронирование #%d завершено: %s\n\nКак все прошло? Оцените визит!",
		p.BookingID, b.describeBooking(ctx, p))
	b.notify(events.EventBookingCompleted, parties.client, p.ActorUserID, text, &keyboard)
}

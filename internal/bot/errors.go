package bot

import (
	"errors"
	"strings"

	"banyabot/internal/domain"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, domain.ErrSlotConflict) {
		return "⚠️ Это время уже занято. Пожалуйста, выберите другой слот."
	}

	if errors.Is(err, domain.ErrPastDate) {
		return "⚠️ Нельзя создавать бронирование на прошедшую дату."
	}

	if errors.Is(err, domain.ErrDateTooFar) {
		return "⚠️ Вы не можете бронировать так далеко в будущем. Пожалуйста, выберите более раннюю дату."
	}

	if errors.Is(err, domain.ErrConcurrentModification) {
		return "⚠️ Бронирование только что изменили. Обновите карточку и попробуйте еще раз."
	}

	if errors.Is(err, domain.ErrInvalidState) {
		return "⚠️ " + detailOf(err, "Операция недоступна в текущем статусе бронирования.")
	}

	if errors.Is(err, domain.ErrUnauthorized) {
		return "⚠️ У вас нет прав на эту операцию."
	}

	if errors.Is(err, domain.ErrValidation) {
		return "⚠️ " + detailOf(err, "Проверьте введенные данные.")
	}

	if errors.Is(err, domain.ErrNotFound) {
		return "⚠️ Запись не найдена. Возможно, она была удалена."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}

// detailOf достаёт человекочитаемую часть после "<sentinel>: ".
// Сервисы оборачивают ошибки как fmt.Errorf("%w: пояснение", ...).
func detailOf(err error, fallback string) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 && idx+2 < len(msg) {
		return msg[idx+2:]
	}
	return fallback
}

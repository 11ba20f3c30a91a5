package domain

import "errors"

// Ошибки ядра. Возвращаются синхронно, ядро ничего не ретраит само.
var (
	// ErrNotFound пользователь/баня/мастер/бронирование не существует.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState операция не разрешена в текущем статусе бронирования.
	ErrInvalidState = errors.New("invalid booking state")

	// ErrUnauthorized актор не является стороной, которой разрешена операция.
	ErrUnauthorized = errors.New("actor is not a party to this booking")

	// ErrSlotConflict запрошенное окно уже занято. Отдаётся отдельным
	// кодом, чтобы интерфейс предложил свежие слоты вместо повтора запроса.
	ErrSlotConflict = errors.New("slot is no longer available")

	// ErrValidation некорректный ввод, до хранилища не доходим.
	ErrValidation = errors.New("validation failed")

	// ErrConcurrentModification оптимистичная блокировка не сошлась,
	// запись изменили между чтением и записью.
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrPastDate и ErrDateTooFar уточняют ErrValidation для дат.
	ErrPastDate   = errors.New("booking date is in the past")
	ErrDateTooFar = errors.New("booking date is too far ahead")
)

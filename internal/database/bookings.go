package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

const bookingColumns = `id, user_id, banya_id, bath_master_id, booking_type,
       date(date), start_time, duration_hours, guests_count, client_address,
       banya_price, master_price, total_price, status,
       client_confirmed, banya_confirmed, master_confirmed,
       cancelled_by, cancellation_reason, user_notes,
       version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var (
		dateStr     string
		banyaID     sql.NullInt64
		masterID    sql.NullInt64
		banyaPrice  sql.NullFloat64
		masterPrice sql.NullFloat64
	)
	err := row.Scan(
		&b.ID, &b.UserID, &banyaID, &masterID, &b.BookingType,
		&dateStr, &b.StartTime, &b.DurationHours, &b.GuestsCount, &b.ClientAddress,
		&banyaPrice, &masterPrice, &b.TotalPrice, &b.Status,
		&b.ClientConfirmed, &b.BanyaConfirmed, &b.MasterConfirmed,
		&b.CancelledBy, &b.CancellationReason, &b.UserNotes,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	if banyaID.Valid {
		b.BanyaID = &banyaID.Int64
	}
	if masterID.Valid {
		b.BathMasterID = &masterID.Int64
	}
	if banyaPrice.Valid {
		b.BanyaPrice = &banyaPrice.Float64
	}
	if masterPrice.Valid {
		b.MasterPrice = &masterPrice.Float64
	}
	return b, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// countOverlapping считает активные бронирования цели, чей интервал
// [start, start+duration) пересекается с [newStart, newStart+newDur).
// Час начала хранится как "HH:MM", для арифметики берём первые две цифры.
func countOverlapping(ctx context.Context, tx *sql.Tx, column string, targetID int64, date time.Time, newStart, newDur int) (int, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE ` + column + ` = ? AND date(date) = date(?)
                AND status IN (?, ?, ?)
                AND CAST(substr(start_time, 1, 2) AS INTEGER) < ?
                AND CAST(substr(start_time, 1, 2) AS INTEGER) + duration_hours > ?`
	var count int
	err := tx.QueryRowContext(ctx, query,
		targetID, date.Format("2006-01-02"),
		models.StatusPending, models.StatusAwaitingConfirmations, models.StatusConfirmed,
		newStart+newDur, newStart,
	).Scan(&count)
	return count, err
}

// CreateBookingWithLock проверяет свободу окна и вставляет бронь в одной
// транзакции. Проверка и вставка неразделимы: два конкурирующих создания
// на одно окно сериализуются, проигравший получает ErrSlotConflict.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	startHour := booking.StartHour()
	if booking.BanyaID != nil {
		count, err := countOverlapping(ctx, tx, "banya_id", *booking.BanyaID, booking.Date, startHour, booking.DurationHours)
		if err != nil {
			return fmt.Errorf("failed to check banya availability in tx: %w", err)
		}
		if count > 0 {
			return domain.ErrSlotConflict
		}
	}
	if booking.BathMasterID != nil {
		// Мастер занят в любой бане и на выездах, фильтра по бане нет.
		count, err := countOverlapping(ctx, tx, "bath_master_id", *booking.BathMasterID, booking.Date, startHour, booking.DurationHours)
		if err != nil {
			return fmt.Errorf("failed to check master availability in tx: %w", err)
		}
		if count > 0 {
			return domain.ErrSlotConflict
		}
	}

	query := `INSERT INTO bookings (
				user_id, banya_id, bath_master_id, booking_type,
				date, start_time, duration_hours, guests_count, client_address,
				banya_price, master_price, total_price, status,
				client_confirmed, banya_confirmed, master_confirmed,
				user_notes, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.UserID,
		nullableID(booking.BanyaID),
		nullableID(booking.BathMasterID),
		booking.BookingType,
		booking.Date.Format("2006-01-02"),
		booking.StartTime,
		booking.DurationHours,
		booking.GuestsCount,
		booking.ClientAddress,
		nullablePrice(booking.BanyaPrice),
		nullablePrice(booking.MasterPrice),
		booking.TotalPrice,
		booking.Status,
		booking.ClientConfirmed,
		booking.BanyaConfirmed,
		booking.MasterConfirmed,
		booking.UserNotes,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullablePrice(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// UpdateBookingStateWithVersion записывает статус и флаги подтверждений
// одной операцией под оптимистичной блокировкой: читатель никогда не
// увидит новый статус при старых флагах. При несовпадении версии
// вернётся ErrConcurrentModification.
func (db *DB) UpdateBookingStateWithVersion(ctx context.Context, b *models.Booking) error {
	query := `UPDATE bookings SET
				status = ?, client_confirmed = ?, banya_confirmed = ?, master_confirmed = ?,
				cancelled_by = ?, cancellation_reason = ?,
				version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query,
		b.Status, b.ClientConfirmed, b.BanyaConfirmed, b.MasterConfirmed,
		b.CancelledBy, b.CancellationReason,
		time.Now(), b.ID, b.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	b.Version++
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetActiveBanyaBookings активные брони бани на дату, для расчёта слотов.
func (db *DB) GetActiveBanyaBookings(ctx context.Context, banyaID int64, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE banya_id = ? AND date(date) = date(?) AND status IN (?, ?, ?)
              ORDER BY start_time`
	return db.queryBookings(ctx, query, banyaID, date.Format("2006-01-02"),
		models.StatusPending, models.StatusAwaitingConfirmations, models.StatusConfirmed)
}

// GetActiveMasterBookings активные брони мастера на дату по всем баням
// и выездам: мастер не может быть занят в двух местах.
func (db *DB) GetActiveMasterBookings(ctx context.Context, masterID int64, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE bath_master_id = ? AND date(date) = date(?) AND status IN (?, ?, ?)
              ORDER BY start_time`
	return db.queryBookings(ctx, query, masterID, date.Format("2006-01-02"),
		models.StatusPending, models.StatusAwaitingConfirmations, models.StatusConfirmed)
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? ORDER BY date DESC, start_time DESC`
	return db.queryBookings(ctx, query, userID)
}

func (db *DB) GetBanyaBookings(ctx context.Context, banyaID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE banya_id = ? ORDER BY date DESC, start_time DESC`
	return db.queryBookings(ctx, query, banyaID)
}

func (db *DB) GetMasterBookings(ctx context.Context, masterID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE bath_master_id = ? ORDER BY date DESC, start_time DESC`
	return db.queryBookings(ctx, query, masterID)
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE date(date) >= ? AND date(date) <= ?
              ORDER BY date ASC, start_time ASC`
	return db.queryBookings(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}

// GetExpiredConfirmedBookings подтверждённые брони, чьё время уже
// прошло. Их завершает фоновая джоба, больше completed никто не ставит.
func (db *DB) GetExpiredConfirmedBookings(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status = ?
                AND (date(date) < date(?)
                     OR (date(date) = date(?)
                         AND CAST(substr(start_time, 1, 2) AS INTEGER) + duration_hours <= ?))`
	return db.queryBookings(ctx, query,
		models.StatusConfirmed,
		now.Format("2006-01-02"), now.Format("2006-01-02"), now.Hour())
}

func (db *DB) CountActiveBookings(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE status IN (?, ?, ?)`
	var count int64
	err := db.QueryRowContext(ctx, query,
		models.StatusPending, models.StatusAwaitingConfirmations, models.StatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

const userColumns = `id, telegram_id, username, first_name, last_name, phone, role,
       city_id, rating, rating_count, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var cityID sql.NullInt64
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.Role,
		&cityID, &u.Rating, &u.RatingCount, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cityID.Valid {
		u.CityID = &cityID.Int64
	}
	return u, nil
}

func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`
	u, err := scanUser(db.QueryRowContext(ctx, query, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// CreateOrUpdateUser создаёт пользователя или обновляет профильные поля
// по telegram_id. Роль и город при апсерте не трогаем, их меняют
// отдельные операции.
func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (telegram_id, username, first_name, last_name, phone, role, is_active)
              VALUES (?, ?, ?, ?, ?, ?, 1)
              ON CONFLICT(telegram_id) DO UPDATE SET
                username = excluded.username,
                first_name = excluded.first_name,
                last_name = excluded.last_name,
                updated_at = CURRENT_TIMESTAMP`
	role := user.Role
	if role == "" {
		role = models.RoleClient
	}
	_, err := db.ExecContext(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.LastName, user.Phone, role)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}

	saved, err := db.GetUserByTelegramID(ctx, user.TelegramID)
	if err != nil {
		return err
	}
	*user = *saved
	return nil
}

func (db *DB) UpdateUserRole(ctx context.Context, userID int64, role string) error {
	query := `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, role, userID)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) UpdateUserCity(ctx context.Context, userID int64, cityID int64) error {
	query := `UPDATE users SET city_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, cityID, userID)
	if err != nil {
		return fmt.Errorf("failed to update user city: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	query := `UPDATE users SET phone = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?`
	result, err := db.ExecContext(ctx, query, phone, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update user phone: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) UpdateUserRating(ctx context.Context, userID int64, rating float64, count int64) error {
	query := `UPDATE users SET rating = ?, rating_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, rating, count, userID)
	if err != nil {
		return fmt.Errorf("failed to update user rating: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

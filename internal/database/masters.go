package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

const masterColumns = `id, user_id, bio, experience_years, price_per_session, session_duration_minutes,
       specializes_russian, specializes_finnish, specializes_hammam,
       specializes_massage, specializes_scrub, specializes_aromatherapy,
       can_visit_home, home_visit_price, rating, rating_count, is_available,
       created_at, updated_at`

func scanMaster(row rowScanner) (*models.BathMaster, error) {
	m := &models.BathMaster{}
	var homePrice sql.NullFloat64
	err := row.Scan(
		&m.ID, &m.UserID, &m.Bio, &m.ExperienceYears, &m.PricePerSession, &m.SessionDurationMinutes,
		&m.SpecializesRussian, &m.SpecializesFinnish, &m.SpecializesHammam,
		&m.SpecializesMassage, &m.SpecializesScrub, &m.SpecializesAromatherapy,
		&m.CanVisitHome, &homePrice, &m.Rating, &m.RatingCount, &m.IsAvailable,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if homePrice.Valid {
		m.HomeVisitPrice = &homePrice.Float64
	}
	return m, nil
}

// CreateBathMaster апсерт по user_id: у пользователя ровно один профиль
// мастера, повторная регистрация обновляет его.
func (db *DB) CreateBathMaster(ctx context.Context, master *models.BathMaster) error {
	query := `INSERT INTO bath_masters (
				user_id, bio, experience_years, price_per_session, session_duration_minutes,
				specializes_russian, specializes_finnish, specializes_hammam,
				specializes_massage, specializes_scrub, specializes_aromatherapy,
				can_visit_home, home_visit_price, is_available
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				bio = excluded.bio,
				experience_years = excluded.experience_years,
				price_per_session = excluded.price_per_session,
				session_duration_minutes = excluded.session_duration_minutes,
				specializes_russian = excluded.specializes_russian,
				specializes_finnish = excluded.specializes_finnish,
				specializes_hammam = excluded.specializes_hammam,
				specializes_massage = excluded.specializes_massage,
				specializes_scrub = excluded.specializes_scrub,
				specializes_aromatherapy = excluded.specializes_aromatherapy,
				can_visit_home = excluded.can_visit_home,
				home_visit_price = excluded.home_visit_price,
				updated_at = CURRENT_TIMESTAMP`
	_, err := db.ExecContext(ctx, query,
		master.UserID, master.Bio, master.ExperienceYears, master.PricePerSession, master.SessionDurationMinutes,
		master.SpecializesRussian, master.SpecializesFinnish, master.SpecializesHammam,
		master.SpecializesMassage, master.SpecializesScrub, master.SpecializesAromatherapy,
		master.CanVisitHome, nullablePrice(master.HomeVisitPrice), master.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to create bath master: %w", err)
	}

	saved, err := db.GetBathMasterByUserID(ctx, master.UserID)
	if err != nil {
		return err
	}
	*master = *saved
	return nil
}

func (db *DB) UpdateBathMaster(ctx context.Context, master *models.BathMaster) error {
	query := `UPDATE bath_masters SET
				bio = ?, experience_years = ?, price_per_session = ?, session_duration_minutes = ?,
				specializes_russian = ?, specializes_finnish = ?, specializes_hammam = ?,
				specializes_massage = ?, specializes_scrub = ?, specializes_aromatherapy = ?,
				can_visit_home = ?, home_visit_price = ?, updated_at = CURRENT_TIMESTAMP
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		master.Bio, master.ExperienceYears, master.PricePerSession, master.SessionDurationMinutes,
		master.SpecializesRussian, master.SpecializesFinnish, master.SpecializesHammam,
		master.SpecializesMassage, master.SpecializesScrub, master.SpecializesAromatherapy,
		master.CanVisitHome, nullablePrice(master.HomeVisitPrice),
		master.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bath master: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) GetBathMasterByID(ctx context.Context, id int64) (*models.BathMaster, error) {
	query := `SELECT ` + masterColumns + ` FROM bath_masters WHERE id = ?`
	m, err := scanMaster(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bath master: %w", err)
	}
	return m, nil
}

func (db *DB) GetBathMasterByUserID(ctx context.Context, userID int64) (*models.BathMaster, error) {
	query := `SELECT ` + masterColumns + ` FROM bath_masters WHERE user_id = ?`
	m, err := scanMaster(db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bath master by user: %w", err)
	}
	return m, nil
}

func (db *DB) queryMasters(ctx context.Context, query string, args ...interface{}) ([]*models.BathMaster, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var masters []*models.BathMaster
	for rows.Next() {
		m, err := scanMaster(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bath master: %w", err)
		}
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

func (db *DB) GetAvailableMasters(ctx context.Context) ([]*models.BathMaster, error) {
	query := `SELECT ` + masterColumns + ` FROM bath_masters
              WHERE is_available = 1 ORDER BY rating DESC`
	return db.queryMasters(ctx, query)
}

func (db *DB) GetMastersByBanya(ctx context.Context, banyaID int64) ([]*models.BathMaster, error) {
	query := `SELECT m.id, m.user_id, m.bio, m.experience_years, m.price_per_session, m.session_duration_minutes,
                     m.specializes_russian, m.specializes_finnish, m.specializes_hammam,
                     m.specializes_massage, m.specializes_scrub, m.specializes_aromatherapy,
                     m.can_visit_home, m.home_visit_price, m.rating, m.rating_count, m.is_available,
                     m.created_at, m.updated_at
              FROM bath_masters m
              JOIN banya_bath_masters l ON l.bath_master_id = m.id
              WHERE l.banya_id = ? AND m.is_available = 1
              ORDER BY m.rating DESC`
	return db.queryMasters(ctx, query, banyaID)
}

func (db *DB) SetMasterAvailable(ctx context.Context, id int64, available bool) error {
	query := `UPDATE bath_masters SET is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("failed to set master availability: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) UpdateMasterRating(ctx context.Context, id int64, rating float64, count int64) error {
	query := `UPDATE bath_masters SET rating = ?, rating_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, rating, count, id)
	if err != nil {
		return fmt.Errorf("failed to update master rating: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) LinkMasterToBanya(ctx context.Context, banyaID, masterID int64) error {
	query := `INSERT INTO banya_bath_masters (banya_id, bath_master_id) VALUES (?, ?)
              ON CONFLICT(banya_id, bath_master_id) DO NOTHING`
	_, err := db.ExecContext(ctx, query, banyaID, masterID)
	if err != nil {
		return fmt.Errorf("failed to link master to banya: %w", err)
	}
	return nil
}

func (db *DB) UnlinkMasterFromBanya(ctx context.Context, banyaID, masterID int64) error {
	query := `DELETE FROM banya_bath_masters WHERE banya_id = ? AND bath_master_id = ?`
	_, err := db.ExecContext(ctx, query, banyaID, masterID)
	if err != nil {
		return fmt.Errorf("failed to unlink master from banya: %w", err)
	}
	return nil
}

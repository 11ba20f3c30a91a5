package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

const banyaColumns = `id, owner_id, city_id, name, description, address, phone,
       price_per_hour, min_hours, max_guests, opening_time, closing_time,
       has_russian_banya, has_finnish_sauna, has_hammam, has_infrared_sauna,
       has_pool, has_jacuzzi, has_cold_plunge, has_salt_room, has_rest_room,
       has_billiards, has_karaoke, has_bbq, has_parking,
       provides_veniks, provides_towels, provides_robes, provides_food, provides_drinks,
       rating, rating_count, is_active, is_verified, created_at, updated_at`

func scanBanya(row rowScanner) (*models.Banya, error) {
	b := &models.Banya{}
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.CityID, &b.Name, &b.Description, &b.Address, &b.Phone,
		&b.PricePerHour, &b.MinHours, &b.MaxGuests, &b.OpeningTime, &b.ClosingTime,
		&b.HasRussianBanya, &b.HasFinnishSauna, &b.HasHammam, &b.HasInfraredSauna,
		&b.HasPool, &b.HasJacuzzi, &b.HasColdPlunge, &b.HasSaltRoom, &b.HasRestRoom,
		&b.HasBilliards, &b.HasKaraoke, &b.HasBBQ, &b.HasParking,
		&b.ProvidesVeniks, &b.ProvidesTowels, &b.ProvidesRobes, &b.ProvidesFood, &b.ProvidesDrinks,
		&b.Rating, &b.RatingCount, &b.IsActive, &b.IsVerified, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBanya(ctx context.Context, banya *models.Banya) error {
	query := `INSERT INTO banyas (
				owner_id, city_id, name, description, address, phone,
				price_per_hour, min_hours, max_guests, opening_time, closing_time,
				has_russian_banya, has_finnish_sauna, has_hammam, has_infrared_sauna,
				has_pool, has_jacuzzi, has_cold_plunge, has_salt_room, has_rest_room,
				has_billiards, has_karaoke, has_bbq, has_parking,
				provides_veniks, provides_towels, provides_robes, provides_food, provides_drinks,
				is_active, is_verified
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		banya.OwnerID, banya.CityID, banya.Name, banya.Description, banya.Address, banya.Phone,
		banya.PricePerHour, banya.MinHours, banya.MaxGuests, banya.OpeningTime, banya.ClosingTime,
		banya.HasRussianBanya, banya.HasFinnishSauna, banya.HasHammam, banya.HasInfraredSauna,
		banya.HasPool, banya.HasJacuzzi, banya.HasColdPlunge, banya.HasSaltRoom, banya.HasRestRoom,
		banya.HasBilliards, banya.HasKaraoke, banya.HasBBQ, banya.HasParking,
		banya.ProvidesVeniks, banya.ProvidesTowels, banya.ProvidesRobes, banya.ProvidesFood, banya.ProvidesDrinks,
		banya.IsActive, banya.IsVerified,
	)
	if err != nil {
		return fmt.Errorf("failed to create banya: %w", err)
	}
	banya.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get banya id: %w", err)
	}
	return nil
}

func (db *DB) UpdateBanya(ctx context.Context, banya *models.Banya) error {
	query := `UPDATE banyas SET
				name = ?, description = ?, address = ?, phone = ?,
				price_per_hour = ?, min_hours = ?, max_guests = ?, opening_time = ?, closing_time = ?,
				has_russian_banya = ?, has_finnish_sauna = ?, has_hammam = ?, has_infrared_sauna = ?,
				has_pool = ?, has_jacuzzi = ?, has_cold_plunge = ?, has_salt_room = ?, has_rest_room = ?,
				has_billiards = ?, has_karaoke = ?, has_bbq = ?, has_parking = ?,
				provides_veniks = ?, provides_towels = ?, provides_robes = ?, provides_food = ?, provides_drinks = ?,
				updated_at = CURRENT_TIMESTAMP
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		banya.Name, banya.Description, banya.Address, banya.Phone,
		banya.PricePerHour, banya.MinHours, banya.MaxGuests, banya.OpeningTime, banya.ClosingTime,
		banya.HasRussianBanya, banya.HasFinnishSauna, banya.HasHammam, banya.HasInfraredSauna,
		banya.HasPool, banya.HasJacuzzi, banya.HasColdPlunge, banya.HasSaltRoom, banya.HasRestRoom,
		banya.HasBilliards, banya.HasKaraoke, banya.HasBBQ, banya.HasParking,
		banya.ProvidesVeniks, banya.ProvidesTowels, banya.ProvidesRobes, banya.ProvidesFood, banya.ProvidesDrinks,
		banya.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update banya: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) GetBanyaByID(ctx context.Context, id int64) (*models.Banya, error) {
	query := `SELECT ` + banyaColumns + ` FROM banyas WHERE id = ?`
	b, err := scanBanya(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get banya: %w", err)
	}
	return b, nil
}

func (db *DB) queryBanyas(ctx context.Context, query string, args ...interface{}) ([]*models.Banya, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banyas []*models.Banya
	for rows.Next() {
		b, err := scanBanya(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banya: %w", err)
		}
		banyas = append(banyas, b)
	}
	return banyas, rows.Err()
}

// GetBanyasByCity каталог для клиента, только активные.
func (db *DB) GetBanyasByCity(ctx context.Context, cityID int64) ([]*models.Banya, error) {
	query := `SELECT ` + banyaColumns + ` FROM banyas
              WHERE city_id = ? AND is_active = 1 ORDER BY rating DESC, name`
	return db.queryBanyas(ctx, query, cityID)
}

// GetBanyasByOwner возвращает и скрытые бани, владелец видит всё своё.
func (db *DB) GetBanyasByOwner(ctx context.Context, ownerID int64) ([]*models.Banya, error) {
	query := `SELECT ` + banyaColumns + ` FROM banyas WHERE owner_id = ? ORDER BY name`
	return db.queryBanyas(ctx, query, ownerID)
}

func (db *DB) SetBanyaActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE banyas SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to set banya active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) UpdateBanyaRating(ctx context.Context, id int64, rating float64, count int64) error {
	query := `UPDATE banyas SET rating = ?, rating_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.ExecContext(ctx, query, rating, count, id)
	if err != nil {
		return fmt.Errorf("failed to update banya rating: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) AddBanyaPhoto(ctx context.Context, photo *models.BanyaPhoto) error {
	query := `INSERT INTO banya_photos (banya_id, url, is_main, sort_order) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, photo.BanyaID, photo.URL, photo.IsMain, photo.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to add banya photo: %w", err)
	}
	photo.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get photo id: %w", err)
	}
	return nil
}

func (db *DB) GetBanyaPhotos(ctx context.Context, banyaID int64) ([]*models.BanyaPhoto, error) {
	query := `SELECT id, banya_id, url, is_main, sort_order FROM banya_photos
              WHERE banya_id = ? ORDER BY is_main DESC, sort_order`
	rows, err := db.QueryContext(ctx, query, banyaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get banya photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.BanyaPhoto
	for rows.Next() {
		p := &models.BanyaPhoto{}
		if err := rows.Scan(&p.ID, &p.BanyaID, &p.URL, &p.IsMain, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan banya photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

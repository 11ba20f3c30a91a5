package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

func (db *DB) GetActiveCities(ctx context.Context) ([]*models.City, error) {
	query := `SELECT id, name, region, is_active FROM cities WHERE is_active = 1 ORDER BY name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get cities: %w", err)
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		c := &models.City{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Region, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (db *DB) GetCityByID(ctx context.Context, id int64) (*models.City, error) {
	query := `SELECT id, name, region, is_active FROM cities WHERE id = ?`
	c := &models.City{}
	err := db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Region, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return c, nil
}

// CreateCity апсерт по имени, повторная загрузка фикстур безопасна.
func (db *DB) CreateCity(ctx context.Context, city *models.City) error {
	query := `INSERT INTO cities (name, region, is_active) VALUES (?, ?, 1)
              ON CONFLICT(name) DO UPDATE SET region = excluded.region, is_active = 1`
	_, err := db.ExecContext(ctx, query, city.Name, city.Region)
	if err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}

	city.IsActive = true
	err = db.QueryRowContext(ctx, `SELECT id FROM cities WHERE name = ?`, city.Name).Scan(&city.ID)
	if err != nil {
		return fmt.Errorf("failed to load created city: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

const reviewColumns = `id, booking_id, user_id, banya_id, bath_master_id, rating, comment, created_at`

func scanReview(row rowScanner) (*models.Review, error) {
	r := &models.Review{}
	var banyaID, masterID sql.NullInt64
	err := row.Scan(&r.ID, &r.BookingID, &r.UserID, &banyaID, &masterID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if banyaID.Valid {
		r.BanyaID = &banyaID.Int64
	}
	if masterID.Valid {
		r.BathMasterID = &masterID.Int64
	}
	return r, nil
}

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	query := `INSERT INTO reviews (booking_id, user_id, banya_id, bath_master_id, rating, comment)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		review.BookingID, review.UserID,
		nullableID(review.BanyaID), nullableID(review.BathMasterID),
		review.Rating, review.Comment,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	review.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review id: %w", err)
	}
	return nil
}

func (db *DB) queryReviews(ctx context.Context, query string, args ...interface{}) ([]*models.Review, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (db *DB) GetBanyaReviews(ctx context.Context, banyaID int64, limit int) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews
              WHERE banya_id = ? ORDER BY created_at DESC LIMIT ?`
	return db.queryReviews(ctx, query, banyaID, limit)
}

func (db *DB) GetMasterReviews(ctx context.Context, masterID int64, limit int) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews
              WHERE bath_master_id = ? ORDER BY created_at DESC LIMIT ?`
	return db.queryReviews(ctx, query, masterID, limit)
}

func (db *DB) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = ?`
	r, err := scanReview(db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review by booking: %w", err)
	}
	return r, nil
}

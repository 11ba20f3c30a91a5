package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

// ReviewServiceImpl принимает отзывы по завершённым бронированиям и
// ведёт рейтинги целей отзыва скользящим средним.
type ReviewServiceImpl struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReviewService(repo domain.Repository, logger *zerolog.Logger) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// CreateReview сохраняет отзыв: один на бронирование, только от клиента
// завершённого бронирования. Цели отзыва берутся из самого бронирования,
// а не из ввода.
func (s *ReviewServiceImpl) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, fmt.Errorf("%w: оценка от 1 до 5", domain.ErrValidation)
	}

	booking, err := s.repo.GetBooking(ctx, review.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: отзыв можно оставить после завершения бронирования", domain.ErrInvalidState)
	}
	if booking.UserID != review.UserID {
		return nil, fmt.Errorf("%w: отзыв оставляет клиент бронирования", domain.ErrUnauthorized)
	}

	if _, err := s.repo.GetReviewByBooking(ctx, review.BookingID); err == nil {
		return nil, fmt.Errorf("%w: отзыв по этому бронированию уже есть", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	review.BanyaID = booking.BanyaID
	review.BathMasterID = booking.BathMasterID
	review.Comment = strings.TrimSpace(review.Comment)

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.applyRating(ctx, review)

	s.logger.Info().
		Int64("review_id", review.ID).
		Int64("booking_id", review.BookingID).
		Int("rating", review.Rating).
		Msg("Review created")

	return review, nil
}

// applyRating двигает средние рейтинги целей отзыва. Сам отзыв уже
// сохранён, поэтому ошибки пересчёта логируются и не отменяют операцию.
func (s *ReviewServiceImpl) applyRating(ctx context.Context, review *models.Review) {
	if review.BanyaID != nil {
		banya, err := s.repo.GetBanyaByID(ctx, *review.BanyaID)
		if err == nil {
			rating, count := nextRating(banya.Rating, banya.RatingCount, review.Rating)
			err = s.repo.UpdateBanyaRating(ctx, banya.ID, rating, count)
		}
		if err != nil {
			s.logger.Error().Err(err).Int64("banya_id", *review.BanyaID).Msg("update banya rating error")
		}
	}
	if review.BathMasterID != nil {
		master, err := s.repo.GetBathMasterByID(ctx, *review.BathMasterID)
		if err == nil {
			rating, count := nextRating(master.Rating, master.RatingCount, review.Rating)
			if err = s.repo.UpdateMasterRating(ctx, master.ID, rating, count); err == nil {
				// Личный профиль мастера показывает тот же рейтинг.
				err = s.repo.UpdateUserRating(ctx, master.UserID, rating, count)
			}
		}
		if err != nil {
			s.logger.Error().Err(err).Int64("master_id", *review.BathMasterID).Msg("update master rating error")
		}
	}
}

// nextRating скользящее среднее по счётчику.
func nextRating(current float64, count int64, added int) (float64, int64) {
	newCount := count + 1
	return (current*float64(count) + float64(added)) / float64(newCount), newCount
}

func (s *ReviewServiceImpl) GetBanyaReviews(ctx context.Context, banyaID int64, limit int) ([]*models.Review, error) {
	return s.repo.GetBanyaReviews(ctx, banyaID, limit)
}

func (s *ReviewServiceImpl) GetMasterReviews(ctx context.Context, masterID int64, limit int) ([]*models.Review, error) {
	return s.repo.GetMasterReviews(ctx, masterID, limit)
}

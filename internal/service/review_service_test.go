package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

func newReviewService(repo *mockRepo) *ReviewServiceImpl {
	logger := zerolog.Nop()
	return NewReviewService(repo, &logger)
}

func completedBooking() *models.Booking {
	b := awaitingBooking()
	b.Status = models.StatusCompleted
	b.ClientConfirmed = models.ConfirmationConfirmed
	b.BanyaConfirmed = models.ConfirmationConfirmed
	b.MasterConfirmed = models.ConfirmationConfirmed
	return b
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newReviewService(repo)

		banya := activeBanya()
		banya.Rating = 5.0
		banya.RatingCount = 1
		master := availableMaster()

		repo.On("GetBooking", ctx, int64(100)).Return(completedBooking(), nil).Once()
		repo.On("GetReviewByBooking", ctx, int64(100)).Return(nil, domain.ErrNotFound).Once()
		repo.On("CreateReview", ctx, mock.MatchedBy(func(r *models.Review) bool {
			// Цели отзыва копируются из бронирования.
			return r.BanyaID != nil && *r.BanyaID == 1 && r.BathMasterID != nil && *r.BathMasterID == 3
		})).Return(nil).Once()
		repo.On("GetBanyaByID", ctx, int64(1)).Return(banya, nil).Once()
		// (5*1+3)/2 = 4
		repo.On("UpdateBanyaRating", ctx, int64(1), 4.0, int64(2)).Return(nil).Once()
		repo.On("GetBathMasterByID", ctx, int64(3)).Return(master, nil).Once()
		repo.On("UpdateMasterRating", ctx, int64(3), 3.0, int64(1)).Return(nil).Once()
		repo.On("UpdateUserRating", ctx, int64(30), 3.0, int64(1)).Return(nil).Once()

		review, err := svc.CreateReview(ctx, &models.Review{
			BookingID: 100,
			UserID:    10,
			Rating:    3,
			Comment:   "  Хороший пар, долго ждали полотенца.  ",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Хороший пар, долго ждали полотенца.", review.Comment)
		repo.AssertExpectations(t)
	})

	t.Run("RatingOutOfRange", func(t *testing.T) {
		svc := newReviewService(new(mockRepo))

		_, err := svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 10, Rating: 0})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 10, Rating: 6})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("BookingNotCompleted", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newReviewService(repo)

		repo.On("GetBooking", ctx, int64(100)).Return(awaitingBooking(), nil).Once()

		_, err := svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 10, Rating: 5})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("NotTheClient", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newReviewService(repo)

		repo.On("GetBooking", ctx, int64(100)).Return(completedBooking(), nil).Once()

		_, err := svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 77, Rating: 5})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("DuplicateReview", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newReviewService(repo)

		repo.On("GetBooking", ctx, int64(100)).Return(completedBooking(), nil).Once()
		repo.On("GetReviewByBooking", ctx, int64(100)).Return(&models.Review{ID: 7, BookingID: 100}, nil).Once()

		_, err := svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 10, Rating: 4})
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("RatingUpdateErrorDoesNotFailReview", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newReviewService(repo)

		booking := completedBooking()
		booking.BathMasterID = nil
		booking.MasterConfirmed = models.ConfirmationNotRequired

		repo.On("GetBooking", ctx, int64(100)).Return(booking, nil).Once()
		repo.On("GetReviewByBooking", ctx, int64(100)).Return(nil, domain.ErrNotFound).Once()
		repo.On("CreateReview", ctx, mock.Anything).Return(nil).Once()
		repo.On("GetBanyaByID", ctx, int64(1)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.CreateReview(ctx, &models.Review{BookingID: 100, UserID: 10, Rating: 4})
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateBanyaRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNextRating(t *testing.T) {
	rating, count := nextRating(0, 0, 5)
	assert.Equal(t, 5.0, rating)
	assert.Equal(t, int64(1), count)

	rating, count = nextRating(5, 1, 3)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, int64(2), count)

	rating, count = nextRating(4, 2, 4)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, int64(3), count)
}

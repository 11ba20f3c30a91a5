package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"banyabot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *mockRepo) SetState(ctx context.Context, state *models.UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockRepo) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverStateRepository(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := new(mockRepo)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		state := &models.UserState{UserID: 1, CurrentStep: models.StateSelectDate}
		primary.On("GetState", ctx, int64(1)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "GetState", ctx, int64(1))
	})

	t.Run("PrimaryFailFallbackServes", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := new(mockRepo)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		state := &models.UserState{UserID: 2}
		primary.On("GetState", ctx, int64(2)).Return(nil, errors.New("connection refused")).Once()
		fallback.On("GetState", ctx, int64(2)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := new(mockRepo)
		repo := NewFailoverStateRepository(primary, fallback, &logger)
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Unix())

		state := &models.UserState{UserID: 3}
		fallback.On("SetState", ctx, state).Return(nil).Once()

		err := repo.SetState(ctx, state)
		assert.NoError(t, err)
		primary.AssertNotCalled(t, "SetState", ctx, state)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoversAfterInterval", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := new(mockRepo)
		repo := NewFailoverStateRepository(primary, fallback, &logger)
		repo.isDown.Store(true)
		// Последняя проверка давно, пора пробовать основной снова
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).Unix())

		state := &models.UserState{UserID: 4}
		primary.On("GetState", ctx, int64(4)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RateLimitFallback", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := new(mockRepo)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		primary.On("CheckRateLimit", ctx, int64(5), 10, time.Minute).Return(false, errors.New("down")).Once()
		fallback.On("CheckRateLimit", ctx, int64(5), 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 5, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

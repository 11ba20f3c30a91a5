package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/models"
)

func newUserService(repo *mockRepo) *UserServiceImpl {
	logger := zerolog.Nop()
	cfg := &config.Config{
		Admins:    []int64{111},
		Blacklist: []int64{222},
	}
	return NewUserService(repo, cfg, &logger)
}

func TestUserServiceAccess(t *testing.T) {
	svc := newUserService(new(mockRepo))

	assert.True(t, svc.IsAdmin(111))
	assert.False(t, svc.IsAdmin(112))
	assert.True(t, svc.IsBlacklisted(222))
	assert.False(t, svc.IsBlacklisted(111))
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultRole", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		repo.On("CreateOrUpdateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleClient
		})).Return(nil).Once()

		err := svc.SaveUser(ctx, &models.User{TelegramID: 555, FirstName: "Иван"})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("KeepsExplicitRole", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		repo.On("CreateOrUpdateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleBanyaOwner
		})).Return(nil).Once()

		err := svc.SaveUser(ctx, &models.User{TelegramID: 555, Role: models.RoleBanyaOwner})
		assert.NoError(t, err)
	})
}

func TestSwitchRole(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidRoles", func(t *testing.T) {
		for _, role := range []string{models.RoleClient, models.RoleBanyaOwner, models.RoleBathMaster} {
			repo := new(mockRepo)
			svc := newUserService(repo)
			repo.On("UpdateUserRole", ctx, int64(5), role).Return(nil).Once()

			assert.NoError(t, svc.SwitchRole(ctx, 5, role))
			repo.AssertExpectations(t)
		}
	})

	t.Run("AdminIsNotSwitchable", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		err := svc.SwitchRole(ctx, 5, models.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		svc := newUserService(new(mockRepo))

		err := svc.SwitchRole(ctx, 5, "superuser")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSetCity(t *testing.T) {
	ctx := context.Background()

	t.Run("ActiveCity", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		repo.On("GetCityByID", ctx, int64(2)).Return(&models.City{ID: 2, Name: "Казань", IsActive: true}, nil).Once()
		repo.On("UpdateUserCity", ctx, int64(5), int64(2)).Return(nil).Once()

		assert.NoError(t, svc.SetCity(ctx, 5, 2))
		repo.AssertExpectations(t)
	})

	t.Run("InactiveCity", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		repo.On("GetCityByID", ctx, int64(3)).Return(&models.City{ID: 3, Name: "Тверь"}, nil).Once()

		err := svc.SetCity(ctx, 5, 3)
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "UpdateUserCity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownCity", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newUserService(repo)

		repo.On("GetCityByID", ctx, int64(9)).Return(nil, domain.ErrNotFound).Once()

		err := svc.SetCity(ctx, 5, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateUserPhone(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := newUserService(repo)

	repo.On("UpdateUserPhone", ctx, int64(555), "+79001234567").Return(nil).Once()

	assert.NoError(t, svc.UpdateUserPhone(ctx, 555, "+79001234567"))
	repo.AssertExpectations(t)
}

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/models"
)

// UserServiceImpl пользователи, роли и доступ. Списки админов и
// чёрный список приходят из конфигурации и не хранятся в базе.
type UserServiceImpl struct {
	repo         domain.Repository
	adminsMap    map[int64]bool
	blacklistMap map[int64]bool
	logger       *zerolog.Logger
}

func NewUserService(repo domain.Repository, cfg *config.Config, logger *zerolog.Logger) *UserServiceImpl {
	adminsMap := make(map[int64]bool, len(cfg.Admins))
	for _, id := range cfg.Admins {
		adminsMap[id] = true
	}
	blacklistMap := make(map[int64]bool, len(cfg.Blacklist))
	for _, id := range cfg.Blacklist {
		blacklistMap[id] = true
	}
	return &UserServiceImpl{
		repo:         repo,
		adminsMap:    adminsMap,
		blacklistMap: blacklistMap,
		logger:       logger,
	}
}

func (s *UserServiceImpl) IsAdmin(telegramID int64) bool {
	return s.adminsMap[telegramID]
}

func (s *UserServiceImpl) IsBlacklisted(telegramID int64) bool {
	return s.blacklistMap[telegramID]
}

// SaveUser создаёт или обновляет пользователя по telegram_id.
// Роль и город при повторном сохранении не затираются.
func (s *UserServiceImpl) SaveUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	if err := s.repo.CreateOrUpdateUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("telegram_id", user.TelegramID).Msg("save user error")
		return err
	}
	return nil
}

func (s *UserServiceImpl) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUserByTelegramID(ctx, telegramID)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// SwitchRole переключает роль пользователя. Админство ролью не является,
// оно определяется списком в конфигурации.
func (s *UserServiceImpl) SwitchRole(ctx context.Context, userID int64, role string) error {
	switch role {
	case models.RoleClient, models.RoleBanyaOwner, models.RoleBathMaster:
	default:
		return fmt.Errorf("%w: недопустимая роль %q", domain.ErrValidation, role)
	}
	if err := s.repo.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("role", role).Msg("User role switched")
	return nil
}

func (s *UserServiceImpl) SetCity(ctx context.Context, userID int64, cityID int64) error {
	city, err := s.repo.GetCityByID(ctx, cityID)
	if err != nil {
		return err
	}
	if !city.IsActive {
		return fmt.Errorf("%w: город %s недоступен", domain.ErrValidation, city.Name)
	}
	return s.repo.UpdateUserCity(ctx, userID, cityID)
}

func (s *UserServiceImpl) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	return s.repo.UpdateUserPhone(ctx, telegramID, phone)
}

// GetAllUsers для админской статистики и выгрузки.
func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

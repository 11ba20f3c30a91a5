package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"banyabot/internal/domain"
	"banyabot/internal/models"
)

// CatalogServiceImpl каталог площадок: города, бани, мастера и их связки.
type CatalogServiceImpl struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewCatalogService(repo domain.Repository, logger *zerolog.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogServiceImpl) GetActiveCities(ctx context.Context) ([]*models.City, error) {
	return s.repo.GetActiveCities(ctx)
}

func (s *CatalogServiceImpl) GetCityByID(ctx context.Context, id int64) (*models.City, error) {
	return s.repo.GetCityByID(ctx, id)
}

// SearchBanyas возвращает активные бани города, отсортированные по рейтингу.
func (s *CatalogServiceImpl) SearchBanyas(ctx context.Context, cityID int64) ([]*models.Banya, error) {
	return s.repo.GetBanyasByCity(ctx, cityID)
}

func (s *CatalogServiceImpl) GetBanyaByID(ctx context.Context, id int64) (*models.Banya, error) {
	return s.repo.GetBanyaByID(ctx, id)
}

func (s *CatalogServiceImpl) GetBanyasByOwner(ctx context.Context, ownerID int64) ([]*models.Banya, error) {
	return s.repo.GetBanyasByOwner(ctx, ownerID)
}

func (s *CatalogServiceImpl) GetBanyaPhotos(ctx context.Context, banyaID int64) ([]*models.BanyaPhoto, error) {
	return s.repo.GetBanyaPhotos(ctx, banyaID)
}

func (s *CatalogServiceImpl) RegisterBanya(ctx context.Context, banya *models.Banya) error {
	if err := s.validateBanya(ctx, banya); err != nil {
		return err
	}
	if err := s.repo.CreateBanya(ctx, banya); err != nil {
		return err
	}
	s.logger.Info().
		Int64("banya_id", banya.ID).
		Int64("owner_id", banya.OwnerID).
		Str("name", banya.Name).
		Msg("Banya registered")
	return nil
}

func (s *CatalogServiceImpl) UpdateBanya(ctx context.Context, banya *models.Banya) error {
	if err := s.validateBanya(ctx, banya); err != nil {
		return err
	}
	return s.repo.UpdateBanya(ctx, banya)
}

func (s *CatalogServiceImpl) validateBanya(ctx context.Context, banya *models.Banya) error {
	banya.Name = strings.TrimSpace(banya.Name)
	if banya.Name == "" {
		return fmt.Errorf("%w: укажите название бани", domain.ErrValidation)
	}
	if banya.PricePerHour <= 0 {
		return fmt.Errorf("%w: цена за час должна быть больше нуля", domain.ErrValidation)
	}
	if banya.MinHours < 1 {
		banya.MinHours = 1
	}
	if banya.MaxGuests < 1 {
		return fmt.Errorf("%w: укажите вместимость", domain.ErrValidation)
	}
	if banya.OpeningHour() >= banya.ClosingHour() {
		return fmt.Errorf("%w: часы работы %s-%s некорректны", domain.ErrValidation, banya.OpeningTime, banya.ClosingTime)
	}
	if _, err := s.repo.GetCityByID(ctx, banya.CityID); err != nil {
		return err
	}
	return nil
}

// SetBanyaActive скрывает или показывает баню в поиске. Только владелец.
func (s *CatalogServiceImpl) SetBanyaActive(ctx context.Context, ownerID, banyaID int64, active bool) error {
	banya, err := s.repo.GetBanyaByID(ctx, banyaID)
	if err != nil {
		return err
	}
	if banya.OwnerID != ownerID {
		return fmt.Errorf("%w: баня принадлежит другому владельцу", domain.ErrUnauthorized)
	}
	return s.repo.SetBanyaActive(ctx, banyaID, active)
}

func (s *CatalogServiceImpl) GetAvailableMasters(ctx context.Context) ([]*models.BathMaster, error) {
	return s.repo.GetAvailableMasters(ctx)
}

func (s *CatalogServiceImpl) GetMastersByBanya(ctx context.Context, banyaID int64) ([]*models.BathMaster, error) {
	return s.repo.GetMastersByBanya(ctx, banyaID)
}

func (s *CatalogServiceImpl) GetBathMasterByID(ctx context.Context, id int64) (*models.BathMaster, error) {
	return s.repo.GetBathMasterByID(ctx, id)
}

func (s *CatalogServiceImpl) GetBathMasterByUserID(ctx context.Context, userID int64) (*models.BathMaster, error) {
	return s.repo.GetBathMasterByUserID(ctx, userID)
}

func (s *CatalogServiceImpl) RegisterMaster(ctx context.Context, master *models.BathMaster) error {
	if err := validateMaster(master); err != nil {
		return err
	}
	if err := s.repo.CreateBathMaster(ctx, master); err != nil {
		return err
	}
	s.logger.Info().
		Int64("master_id", master.ID).
		Int64("user_id", master.UserID).
		Msg("Bath master registered")
	return nil
}

func (s *CatalogServiceImpl) UpdateMaster(ctx context.Context, master *models.BathMaster) error {
	if err := validateMaster(master); err != nil {
		return err
	}
	return s.repo.UpdateBathMaster(ctx, master)
}

func validateMaster(master *models.BathMaster) error {
	if master.UserID == 0 {
		return fmt.Errorf("%w: профиль мастера не привязан к пользователю", domain.ErrValidation)
	}
	if master.PricePerSession <= 0 {
		return fmt.Errorf("%w: цена сеанса должна быть больше нуля", domain.ErrValidation)
	}
	if master.SessionDurationMinutes < 1 {
		master.SessionDurationMinutes = 60
	}
	return nil
}

// SetMasterAvailable включает или выключает приём заявок. Мастер управляет
// только собственным профилем, поэтому ищем его по user_id.
func (s *CatalogServiceImpl) SetMasterAvailable(ctx context.Context, userID int64, available bool) error {
	master, err := s.repo.GetBathMasterByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.SetMasterAvailable(ctx, master.ID, available)
}

func (s *CatalogServiceImpl) LinkMasterToBanya(ctx context.Context, banyaID, masterID int64) error {
	if _, err := s.repo.GetBanyaByID(ctx, banyaID); err != nil {
		return err
	}
	if _, err := s.repo.GetBathMasterByID(ctx, masterID); err != nil {
		return err
	}
	return s.repo.LinkMasterToBanya(ctx, banyaID, masterID)
}

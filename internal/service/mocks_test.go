package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"banyabot/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) CreateOrUpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) UpdateUserRole(ctx context.Context, userID int64, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}
func (m *mockRepo) UpdateUserCity(ctx context.Context, userID int64, cityID int64) error {
	return m.Called(ctx, userID, cityID).Error(0)
}
func (m *mockRepo) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	return m.Called(ctx, telegramID, phone).Error(0)
}
func (m *mockRepo) UpdateUserRating(ctx context.Context, userID int64, rating float64, count int64) error {
	return m.Called(ctx, userID, rating, count).Error(0)
}
func (m *mockRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockRepo) GetActiveCities(ctx context.Context) ([]*models.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.City), args.Error(1)
}
func (m *mockRepo) GetCityByID(ctx context.Context, id int64) (*models.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.City), args.Error(1)
}
func (m *mockRepo) CreateCity(ctx context.Context, city *models.City) error {
	return m.Called(ctx, city).Error(0)
}

func (m *mockRepo) CreateBanya(ctx context.Context, banya *models.Banya) error {
	return m.Called(ctx, banya).Error(0)
}
func (m *mockRepo) UpdateBanya(ctx context.Context, banya *models.Banya) error {
	return m.Called(ctx, banya).Error(0)
}
func (m *mockRepo) GetBanyaByID(ctx context.Context, id int64) (*models.Banya, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banya), args.Error(1)
}
func (m *mockRepo) GetBanyasByCity(ctx context.Context, cityID int64) ([]*models.Banya, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Banya), args.Error(1)
}
func (m *mockRepo) GetBanyasByOwner(ctx context.Context, ownerID int64) ([]*models.Banya, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Banya), args.Error(1)
}
func (m *mockRepo) SetBanyaActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) UpdateBanyaRating(ctx context.Context, id int64, rating float64, count int64) error {
	return m.Called(ctx, id, rating, count).Error(0)
}
func (m *mockRepo) AddBanyaPhoto(ctx context.Context, photo *models.BanyaPhoto) error {
	return m.Called(ctx, photo).Error(0)
}
func (m *mockRepo) GetBanyaPhotos(ctx context.Context, banyaID int64) ([]*models.BanyaPhoto, error) {
	args := m.Called(ctx, banyaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BanyaPhoto), args.Error(1)
}

func (m *mockRepo) CreateBathMaster(ctx context.Context, master *models.BathMaster) error {
	return m.Called(ctx, master).Error(0)
}
func (m *mockRepo) UpdateBathMaster(ctx context.Context, master *models.BathMaster) error {
	return m.Called(ctx, master).Error(0)
}
func (m *mockRepo) GetBathMasterByID(ctx context.Context, id int64) (*models.BathMaster, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BathMaster), args.Error(1)
}
func (m *mockRepo) GetBathMasterByUserID(ctx context.Context, userID int64) (*models.BathMaster, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BathMaster), args.Error(1)
}
func (m *mockRepo) GetAvailableMasters(ctx context.Context) ([]*models.BathMaster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BathMaster), args.Error(1)
}
func (m *mockRepo) GetMastersByBanya(ctx context.Context, banyaID int64) ([]*models.BathMaster, error) {
	args := m.Called(ctx, banyaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BathMaster), args.Error(1)
}
func (m *mockRepo) SetMasterAvailable(ctx context.Context, id int64, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}
func (m *mockRepo) UpdateMasterRating(ctx context.Context, id int64, rating float64, count int64) error {
	return m.Called(ctx, id, rating, count).Error(0)
}
func (m *mockRepo) LinkMasterToBanya(ctx context.Context, banyaID, masterID int64) error {
	return m.Called(ctx, banyaID, masterID).Error(0)
}
func (m *mockRepo) UnlinkMasterFromBanya(ctx context.Context, banyaID, masterID int64) error {
	return m.Called(ctx, banyaID, masterID).Error(0)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateBookingWithLock(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) UpdateBookingStateWithVersion(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetActiveBanyaBookings(ctx context.Context, banyaID int64, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, banyaID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetActiveMasterBookings(ctx context.Context, masterID int64, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, masterID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBanyaBookings(ctx context.Context, banyaID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, banyaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetMasterBookings(ctx context.Context, masterID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, masterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetExpiredConfirmedBookings(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) CountActiveBookings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}
func (m *mockRepo) GetBanyaReviews(ctx context.Context, banyaID int64, limit int) ([]*models.Review, error) {
	args := m.Called(ctx, banyaID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) GetMasterReviews(ctx context.Context, masterID int64, limit int) ([]*models.Review, error) {
	args := m.Called(ctx, masterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) EnqueueTask(ctx context.Context, taskType string, bookingID int64, b *models.Booking, status string) error {
	return m.Called(ctx, taskType, bookingID, b, status).Error(0)
}

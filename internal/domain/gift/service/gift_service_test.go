package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	catalogModel "topup_store/internal/domain/catalog/model"
	catalogRepo "topup_store/internal/domain/catalog/repository"
	"topup_store/internal/domain/gift/model"
	"topup_store/internal/domain/gift/repository"
	"topup_store/pkg/response"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGiftRepository struct {
	mock.Mock
}

func (m *MockGiftRepository) CreateGift(ctx context.Context, gift *model.Gift) error {
	return m.Called(gift).Error(0)
}

func (m *MockGiftRepository) GetActiveByLevel(ctx context.Context, productID string, level int) (*model.Gift, error) {
	args := m.Called(productID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Gift), args.Error(1)
}

func (m *MockGiftRepository) ListActive(ctx context.Context, productID string) ([]model.Gift, error) {
	args := m.Called(productID)
	return args.Get(0).([]model.Gift), args.Error(1)
}

func (m *MockGiftRepository) HasClaimed(ctx context.Context, userID, productID string, level int, month string) (bool, error) {
	args := m.Called(userID, productID, level, month)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiftRepository) ClaimedLevels(ctx context.Context, userID, productID, month string) ([]int, error) {
	args := m.Called(userID, productID, month)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockGiftRepository) CreateClaim(ctx context.Context, claim *model.GiftTransaction) error {
	return m.Called(claim).Error(0)
}

type MockSpendCounter struct {
	mock.Mock
}

func (m *MockSpendCounter) SuccessSpend(ctx context.Context, userID, productID string, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(userID, productID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*catalogModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogModel.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *catalogModel.Product) error {
	return m.Called(p).Error(0)
}

var (
	fixedNow   = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	monthStart = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	monthEnd   = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
)

func newTestService(repo *MockGiftRepository, spend *MockSpendCounter, products *MockProductRepository) *giftService {
	s := NewGiftService(repo, spend, products, zap.NewNop()).(*giftService)
	s.now = func() time.Time { return fixedNow }
	return s
}

func activeProducts() *MockProductRepository {
	products := new(MockProductRepository)
	products.On("GetByID", "p1").Return(&catalogModel.Product{Name: "MLBB", GiftActive: true}, nil)
	return products
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAppError(t *testing.T, err error, status, code int) {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPStatus)
	assert.Equal(t, code, appErr.Code)
}

func TestProgress(t *testing.T) {
	repo := new(MockGiftRepository)
	spend := new(MockSpendCounter)
	s := newTestService(repo, spend, new(MockProductRepository))

	spend.On("SuccessSpend", "u1", "p1", monthStart, monthEnd).Return(dec("25.00"), nil)
	repo.On("ListActive", "p1").Return([]model.Gift{
		{Level: 1, Threshold: dec("10"), Reward: "50 diamonds"},
		{Level: 2, Threshold: dec("20"), Reward: "120 diamonds"},
		{Level: 3, Threshold: dec("50"), Reward: "Skin"},
	}, nil)
	repo.On("ClaimedLevels", "u1", "p1", "2026-10").Return([]int{1}, nil)

	p, err := s.Progress(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10", p.Month)
	assert.True(t, p.Spend.Equal(dec("25")))
	require.Len(t, p.Levels, 3)
	assert.True(t, p.Levels[0].Unlocked)
	assert.True(t, p.Levels[0].Claimed)
	assert.True(t, p.Levels[1].Unlocked)
	assert.False(t, p.Levels[1].Claimed)
	assert.False(t, p.Levels[2].Unlocked)
}

func TestClaim(t *testing.T) {
	gift := &model.Gift{Level: 2, ProductID: "p1", Threshold: dec("20"), Reward: "120 diamonds", IsActive: true}
	gift.ID = "gift-2"
	in := ClaimInput{UserID: "u1", ZoneID: "z1", ProductID: "p1", Level: 2}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockGiftRepository)
		spend := new(MockSpendCounter)
		s := newTestService(repo, spend, activeProducts())

		repo.On("GetActiveByLevel", "p1", 2).Return(gift, nil)
		spend.On("SuccessSpend", "u1", "p1", monthStart, monthEnd).Return(dec("20.00"), nil)
		repo.On("HasClaimed", "u1", "p1", 2, "2026-10").Return(false, nil)
		repo.On("CreateClaim", mock.MatchedBy(func(c *model.GiftTransaction) bool {
			return c.GiftID == "gift-2" && c.Month == "2026-10" && c.ZoneID == "z1" && c.Status == model.GiftClaimPending
		})).Return(nil)

		claim, err := s.Claim(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 2, claim.Level)
		repo.AssertExpectations(t)
	})

	t.Run("Gift missing", func(t *testing.T) {
		repo := new(MockGiftRepository)
		s := newTestService(repo, new(MockSpendCounter), new(MockProductRepository))
		repo.On("GetActiveByLevel", "p1", 2).Return(nil, repository.ErrGiftNotFound)

		_, err := s.Claim(context.Background(), in)
		assertAppError(t, err, http.StatusNotFound, response.ErrGiftNotFound)
	})

	t.Run("Gifts disabled on product", func(t *testing.T) {
		repo := new(MockGiftRepository)
		products := new(MockProductRepository)
		s := newTestService(repo, new(MockSpendCounter), products)
		repo.On("GetActiveByLevel", "p1", 2).Return(gift, nil)
		products.On("GetByID", "p1").Return(&catalogModel.Product{GiftActive: false}, nil)

		_, err := s.Claim(context.Background(), in)
		assertAppError(t, err, http.StatusBadRequest, response.ErrGiftLocked)
	})

	t.Run("Spend below threshold", func(t *testing.T) {
		repo := new(MockGiftRepository)
		spend := new(MockSpendCounter)
		s := newTestService(repo, spend, activeProducts())
		repo.On("GetActiveByLevel", "p1", 2).Return(gift, nil)
		spend.On("SuccessSpend", "u1", "p1", monthStart, monthEnd).Return(dec("19.99"), nil)

		_, err := s.Claim(context.Background(), in)
		assertAppError(t, err, http.StatusBadRequest, response.ErrGiftLocked)
		assert.Contains(t, err.Error(), "0.01")
		repo.AssertNotCalled(t, "CreateClaim", mock.Anything)
	})

	t.Run("Already claimed", func(t *testing.T) {
		repo := new(MockGiftRepository)
		spend := new(MockSpendCounter)
		s := newTestService(repo, spend, activeProducts())
		repo.On("GetActiveByLevel", "p1", 2).Return(gift, nil)
		spend.On("SuccessSpend", "u1", "p1", monthStart, monthEnd).Return(dec("30"), nil)
		repo.On("HasClaimed", "u1", "p1", 2, "2026-10").Return(true, nil)

		_, err := s.Claim(context.Background(), in)
		assertAppError(t, err, http.StatusBadRequest, response.ErrGiftClaimed)
		repo.AssertNotCalled(t, "CreateClaim", mock.Anything)
	})

	t.Run("Concurrent duplicate hits unique index", func(t *testing.T) {
		repo := new(MockGiftRepository)
		spend := new(MockSpendCounter)
		s := newTestService(repo, spend, activeProducts())
		repo.On("GetActiveByLevel", "p1", 2).Return(gift, nil)
		spend.On("SuccessSpend", "u1", "p1", monthStart, monthEnd).Return(dec("30"), nil)
		repo.On("HasClaimed", "u1", "p1", 2, "2026-10").Return(false, nil)
		repo.On("CreateClaim", mock.Anything).Return(repository.ErrAlreadyClaimed)

		_, err := s.Claim(context.Background(), in)
		assertAppError(t, err, http.StatusBadRequest, response.ErrGiftClaimed)
	})
}

func TestCreateGift(t *testing.T) {
	t.Run("Invalid threshold", func(t *testing.T) {
		s := newTestService(new(MockGiftRepository), new(MockSpendCounter), new(MockProductRepository))
		_, err := s.CreateGift(context.Background(), CreateGiftInput{ProductID: "p1", Level: 1, Threshold: decimal.Zero})
		assertAppError(t, err, http.StatusBadRequest, response.ErrInvalidParam)
	})

	t.Run("Unknown product", func(t *testing.T) {
		products := new(MockProductRepository)
		s := newTestService(new(MockGiftRepository), new(MockSpendCounter), products)
		products.On("GetByID", "p9").Return(nil, catalogRepo.ErrProductNotFound)

		_, err := s.CreateGift(context.Background(), CreateGiftInput{ProductID: "p9", Level: 1, Threshold: dec("10")})
		assertAppError(t, err, http.StatusNotFound, response.ErrProductNotFound)
	})

	t.Run("Created", func(t *testing.T) {
		repo := new(MockGiftRepository)
		products := new(MockProductRepository)
		s := newTestService(repo, new(MockSpendCounter), products)
		products.On("GetByID", "p1").Return(&catalogModel.Product{Name: "MLBB"}, nil)
		repo.On("CreateGift", mock.AnythingOfType("*model.Gift")).Return(nil)

		g, err := s.CreateGift(context.Background(), CreateGiftInput{ProductID: "p1", Level: 1, Threshold: dec("10"), Reward: "50 diamonds", IsActive: true})
		require.NoError(t, err)
		assert.True(t, g.IsActive)
		repo.AssertExpectations(t)
	})
}

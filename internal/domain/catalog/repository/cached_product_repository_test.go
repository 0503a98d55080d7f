package repository

import (
	"context"
	"testing"
	"topup_store/internal/domain/catalog/model"
	"topup_store/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func TestCachedProductRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{
		Name: "Free Fire",
		Game: "freefire",
		Costs: []model.Cost{
			{Code: "100", Price: decimal.RequireFromString("1.00")},
		},
	}
	product.ID = "p-1"

	t.Run("Second read is served from cache", func(t *testing.T) {
		next := new(MockProductRepository)
		next.On("GetByID", ctx, "p-1").Return(product, nil).Once()

		repo := NewCachedProductRepository(next, cache.NewMemoryCache(), zap.NewNop())

		first, err := repo.GetByID(ctx, "p-1")
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, "p-1")
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		assert.True(t, second.Costs[0].Price.Equal(decimal.RequireFromString("1.00")))
		next.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("Not found is not cached", func(t *testing.T) {
		next := new(MockProductRepository)
		next.On("GetByID", ctx, "missing").Return(nil, ErrProductNotFound).Twice()

		repo := NewCachedProductRepository(next, cache.NewMemoryCache(), zap.NewNop())

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
		next.AssertExpectations(t)
	})
}

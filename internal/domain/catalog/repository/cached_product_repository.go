package repository

import (
	"context"
	"errors"
	"time"
	"topup_store/internal/domain/catalog/model"
	"topup_store/pkg/cache"

	"go.uber.org/zap"
)

const productCacheTTL = 10 * time.Minute

// cachedProductRepository 商品读多写少，读路径走缓存
// 缓存不可用时直接回源，不影响下单
type cachedProductRepository struct {
	next  ProductRepository
	cache cache.CacheService
	log   *zap.Logger
}

// NewCachedProductRepository 创建带缓存的商品仓储
func NewCachedProductRepository(next ProductRepository, c cache.CacheService, log *zap.Logger) ProductRepository {
	if c == nil {
		return next
	}
	return &cachedProductRepository{next: next, cache: c, log: log}
}

func productKey(id string) string {
	return "product:" + id
}

func (r *cachedProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.cache.Get(ctx, productKey(id), &product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, productKey(id), p, productCacheTTL); err != nil {
		r.log.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

func (r *cachedProductRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	return r.cache.Delete(ctx, productKey(product.ID))
}

package repository

import (
	"context"
	"errors"
	"topup_store/internal/domain/coupon/model"

	"gorm.io/gorm"
)

// ErrCouponNotFound 优惠券不存在
var ErrCouponNotFound = errors.New("coupon not found")

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error)
	// WithTx 返回绑定到事务的仓储
	WithTx(tx *gorm.DB) CouponRepository
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepository{db: tx}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// IncrementUsage 原子递增使用次数，返回 false 表示券已不存在
func (r *couponRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("code = ?", code).
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *couponRepository) List(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error) {
	var coupons []model.Coupon
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Coupon{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error
	return coupons, total, err
}

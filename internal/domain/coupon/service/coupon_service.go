package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	catalogModel "topup_store/internal/domain/catalog/model"
	catalogRepo "topup_store/internal/domain/catalog/repository"
	"topup_store/internal/domain/coupon/model"
	"topup_store/internal/domain/coupon/repository"
	"topup_store/pkg/metrics"
	"topup_store/pkg/response"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidateInput 校验优惠券的输入
type ValidateInput struct {
	Code      string
	CostID    string
	Price     decimal.Decimal
	ProductID string
}

// CreateInput 管理员创建优惠券
type CreateInput struct {
	Code            string
	Discount        decimal.Decimal
	Type            model.CouponType
	MaxDiscount     decimal.NullDecimal
	MinAmount       decimal.Decimal
	StartDate       time.Time
	Expiry          time.Time
	IsActive        bool
	Limit           int
	SelectedProduct string
	SelectedCosts   []string
}

type CouponService interface {
	Validate(ctx context.Context, in ValidateInput) (*Quote, error)
	CreateCoupon(ctx context.Context, in CreateInput) (*model.Coupon, error)
	ListCoupons(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error)
	// IncrementUsage 订单支付成功后调用，tx 为 nil 时不使用事务
	IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error)
}

type couponService struct {
	repo     repository.CouponRepository
	products catalogRepo.ProductRepository
	metrics  *metrics.MetricsCollector
	now      func() time.Time
}

func NewCouponService(repo repository.CouponRepository, products catalogRepo.ProductRepository) CouponService {
	return &couponService{
		repo:     repo,
		products: products,
		metrics:  metrics.GetGlobalCollector(),
		now:      time.Now,
	}
}

// NormalizeCode 券码统一大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 逐项校验，每一项失败返回不同的错误信息，全部通过后计算折扣
func (s *couponService) Validate(ctx context.Context, in ValidateInput) (*Quote, error) {
	q, err := s.validate(ctx, in)
	if err != nil {
		s.metrics.RecordCouponCheck("rejected")
		return nil, err
	}
	s.metrics.RecordCouponCheck("accepted")
	return q, nil
}

func (s *couponService) validate(ctx context.Context, in ValidateInput) (*Quote, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, response.BadRequest(response.ErrCouponInvalid, "Coupon code is required")
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, response.NotFound(response.ErrCouponNotFound, "Coupon not found")
		}
		return nil, err
	}

	now := s.now()
	if !c.IsActive {
		return nil, response.BadRequest(response.ErrCouponInactive, "Coupon is not active")
	}
	if !c.StartDate.IsZero() && now.Before(c.StartDate) {
		return nil, response.BadRequest(response.ErrCouponInactive, "Coupon is not valid yet")
	}
	if now.After(c.Expiry) {
		return nil, response.BadRequest(response.ErrCouponExpired, "Coupon has expired")
	}
	if c.Limit > 0 && c.TimesUsed >= c.Limit {
		return nil, response.BadRequest(response.ErrCouponLimit, "Coupon usage limit reached")
	}
	if c.SelectedProduct != in.ProductID {
		return nil, response.BadRequest(response.ErrCouponNotEligible, "Coupon is not valid for this product")
	}
	if in.Price.LessThan(c.MinAmount) {
		return nil, response.BadRequest(response.ErrCouponMinAmount,
			fmt.Sprintf("Minimum purchase of %s required", c.MinAmount.StringFixed(2)))
	}

	costIDs := catalogModel.SplitCostID(in.CostID)
	if len(costIDs) == 0 {
		return nil, response.BadRequest(response.ErrInvalidParam, "Cost id is required")
	}
	for _, id := range costIDs {
		if !c.AllowsCost(id) {
			return nil, response.BadRequest(response.ErrCouponNotEligible, "Coupon is not valid for this package")
		}
	}

	q := Evaluate(in.Price, c)
	return &q, nil
}

func (s *couponService) CreateCoupon(ctx context.Context, in CreateInput) (*model.Coupon, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, response.BadRequest(response.ErrInvalidParam, "Coupon code is required")
	}
	if !in.Discount.IsPositive() {
		return nil, response.BadRequest(response.ErrInvalidParam, "Discount must be positive")
	}
	if !in.Expiry.After(in.StartDate) {
		return nil, response.BadRequest(response.ErrInvalidParam, "Expiry must be after start date")
	}
	if in.Limit < 0 {
		return nil, response.BadRequest(response.ErrInvalidParam, "Limit must not be negative")
	}

	product, err := s.products.GetByID(ctx, in.SelectedProduct)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProductNotFound) {
			return nil, response.NotFound(response.ErrProductNotFound, "Product not found")
		}
		return nil, err
	}

	for _, id := range in.SelectedCosts {
		if _, ok := product.Cost(id); !ok {
			return nil, response.BadRequest(response.ErrInvalidParam, fmt.Sprintf("Unknown cost id %q", id))
		}
	}

	switch in.Type {
	case model.CouponTypePercentage:
		if in.Discount.GreaterThan(hundred) {
			return nil, response.BadRequest(response.ErrInvalidParam, "Percentage discount must not exceed 100")
		}
	case model.CouponTypeFlat:
		// 满减金额不能超过任何可用面额的价格
		for _, cost := range product.Costs {
			if len(in.SelectedCosts) > 0 && !contains(in.SelectedCosts, cost.Code) {
				continue
			}
			if in.Discount.GreaterThan(cost.Price) {
				return nil, response.BadRequest(response.ErrInvalidParam,
					fmt.Sprintf("Flat discount exceeds price of cost %q", cost.Code))
			}
		}
	default:
		return nil, response.BadRequest(response.ErrInvalidParam, "Unknown coupon type")
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, response.BadRequest(response.ErrInvalidParam, "Coupon code already exists")
	} else if !errors.Is(err, repository.ErrCouponNotFound) {
		return nil, err
	}

	coupon := &model.Coupon{
		Code:            code,
		Discount:        in.Discount,
		Type:            in.Type,
		MaxDiscount:     in.MaxDiscount,
		MinAmount:       in.MinAmount,
		StartDate:       in.StartDate,
		Expiry:          in.Expiry,
		IsActive:        in.IsActive,
		Limit:           in.Limit,
		SelectedProduct: product.ID,
		SelectedCosts:   pq.StringArray(in.SelectedCosts),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.BadRequest(response.ErrInvalidParam, "Coupon code already exists")
		}
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *couponService) IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.IncrementUsage(ctx, NormalizeCode(code))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

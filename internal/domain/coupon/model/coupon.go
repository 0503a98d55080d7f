package model

import (
	"time"
	baseModel "topup_store/pkg/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypeFlat       CouponType = "flat"
	CouponTypePercentage CouponType = "percentage"
)

// Coupon 优惠券
// Limit 为 0 表示不限次数；TimesUsed 只在订单支付成功后递增
type Coupon struct {
	baseModel.BaseModel
	Code            string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Discount        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"discount"`
	Type            CouponType          `gorm:"type:varchar(20);not null" json:"type"`
	MaxDiscount     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"maxDiscount"`
	MinAmount       decimal.Decimal     `gorm:"type:numeric(12,2);default:0" json:"minAmount"`
	StartDate       time.Time           `json:"startDate"`
	Expiry          time.Time           `json:"expiry"`
	IsActive        bool                `gorm:"not null" json:"isActive"`
	Limit           int                 `gorm:"column:usage_limit;default:0" json:"limit"`
	TimesUsed       int                 `gorm:"default:0" json:"timesUsed"`
	SelectedProduct string              `gorm:"type:uuid" json:"selectedProduct"`
	SelectedCosts   pq.StringArray      `gorm:"type:text[]" json:"selectedCosts"`
}

// AllowsCost 面额是否在可用范围内，未配置时该商品所有面额都可用
func (c *Coupon) AllowsCost(code string) bool {
	if len(c.SelectedCosts) == 0 {
		return true
	}
	for _, s := range c.SelectedCosts {
		if s == code {
			return true
		}
	}
	return false
}

package service

import (
	"topup_store/internal/domain/coupon/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote 优惠计算结果
type Quote struct {
	Code          string          `json:"code"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      decimal.Decimal `json:"discount"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// Evaluate 计算折扣，纯函数，不做有效性校验
// 百分比券按 MaxDiscount 封顶；满减券原样扣减；最终价格不低于 0，保留两位小数
func Evaluate(price decimal.Decimal, c *model.Coupon) Quote {
	var discount decimal.Decimal
	switch c.Type {
	case model.CouponTypePercentage:
		discount = price.Mul(c.Discount).Div(hundred)
		if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
			discount = c.MaxDiscount.Decimal
		}
	default:
		discount = c.Discount
	}

	final := price.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	final = final.Round(2)

	return Quote{
		Code:          c.Code,
		OriginalPrice: price,
		Discount:      price.Sub(final),
		FinalPrice:    final,
	}
}

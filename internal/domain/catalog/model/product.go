package model

import (
	"fmt"
	"strings"
	baseModel "topup_store/pkg/model"

	"github.com/shopspring/decimal"
)

// BundleSeparator 组合购买时多个面额 ID 用 & 连接
const BundleSeparator = "&"

// Product 游戏商品
type Product struct {
	baseModel.BaseModel
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Game       string `gorm:"type:varchar(50);not null;index" json:"game"`
	APIName    string `gorm:"type:varchar(50)" json:"apiName"` // 供应商，例如 "TopUp Ghor Api"
	IsAPI      bool   `gorm:"default:false" json:"isApi"`      // true 自动充值，false 人工处理
	SpinActive bool   `gorm:"default:false" json:"spinActive"`
	GiftActive bool   `gorm:"default:false" json:"giftActive"`
	Costs      []Cost `gorm:"foreignKey:ProductID" json:"costs"`
}

// Cost 面额
type Cost struct {
	ProductID    string          `gorm:"primaryKey;type:uuid" json:"productId"`
	Code         string          `gorm:"primaryKey;type:varchar(50)" json:"id"`
	Label        string          `gorm:"type:varchar(100)" json:"label"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Amount       int             `json:"amount"`
	SpinEligible bool            `gorm:"default:false" json:"spinEligible"`
}

// SplitCostID 拆分组合面额 ID，忽略空段
func SplitCostID(costID string) []string {
	parts := strings.Split(costID, BundleSeparator)
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// Cost 按编码查找面额
func (p *Product) Cost(code string) (*Cost, bool) {
	for i := range p.Costs {
		if p.Costs[i].Code == code {
			return &p.Costs[i], true
		}
	}
	return nil, false
}

// PriceOf 计算面额 ID（可能是组合）的总价
func (p *Product) PriceOf(costID string) (decimal.Decimal, error) {
	ids := SplitCostID(costID)
	if len(ids) == 0 {
		return decimal.Zero, fmt.Errorf("empty cost id")
	}

	total := decimal.Zero
	for _, id := range ids {
		c, ok := p.Cost(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown cost id %q", id)
		}
		total = total.Add(c.Price)
	}
	return total, nil
}

// SpinEligible 面额是否赠送抽奖机会，组合购买只要有一个面额符合即可
func (p *Product) SpinEligible(costID string) bool {
	for _, id := range SplitCostID(costID) {
		if c, ok := p.Cost(id); ok && c.SpinEligible {
			return true
		}
	}
	return false
}

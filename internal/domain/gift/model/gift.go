package model

import (
	baseModel "topup_store/pkg/model"

	"github.com/shopspring/decimal"
)

type GiftClaimStatus string

const (
	GiftClaimPending   GiftClaimStatus = "pending"
	GiftClaimDelivered GiftClaimStatus = "delivered"
)

// Gift 充值档位奖励：当月累计消费达到 Threshold 可领取
type Gift struct {
	baseModel.BaseModel
	ProductID string          `gorm:"type:uuid;not null;uniqueIndex:idx_gift_product_level" json:"productId"`
	Level     int             `gorm:"not null;uniqueIndex:idx_gift_product_level" json:"level"`
	Threshold decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"threshold"`
	Reward    string          `gorm:"type:varchar(255);not null" json:"reward"`
	IsActive  bool            `gorm:"not null" json:"isActive"`
}

// GiftTransaction 领取记录，每个玩家每个商品每个档位每月一次
type GiftTransaction struct {
	baseModel.BaseModel
	UserID    string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_gift_claim_month" json:"userId"`
	ZoneID    string          `gorm:"type:varchar(64)" json:"zoneId,omitempty"`
	ProductID string          `gorm:"type:uuid;not null;uniqueIndex:idx_gift_claim_month" json:"productId"`
	GiftID    string          `gorm:"type:uuid;not null" json:"giftId"`
	Level     int             `gorm:"not null;uniqueIndex:idx_gift_claim_month" json:"level"`
	Month     string          `gorm:"type:char(7);not null;uniqueIndex:idx_gift_claim_month" json:"month"` // YYYY-MM
	Status    GiftClaimStatus `gorm:"type:varchar(20);not null" json:"status"`
}

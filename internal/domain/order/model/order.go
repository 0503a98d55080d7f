package model

import (
	"time"
	baseModel "topup_store/pkg/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
)

type OrderType string

const (
	OrderTypeAPI    OrderType = "API Order"    // 自动充值
	OrderTypeCustom OrderType = "Custom Order" // 人工处理
)

// GameCredentials 玩家游戏账号
type GameCredentials struct {
	UserID string `gorm:"column:game_user_id;type:varchar(64);not null" json:"userId"`
	ZoneID string `gorm:"column:game_zone_id;type:varchar(64)" json:"zoneId"`
	Game   string `gorm:"column:game;type:varchar(50);not null" json:"game"`
}

// Order 充值订单
// 状态只能从 pending 变为 success 或 failed，TransactionID 创建后不可修改
type Order struct {
	baseModel.BaseModel
	CostID          string          `gorm:"type:varchar(255);not null" json:"costId"`
	OrderDetails    string          `gorm:"type:text" json:"orderDetails"`
	GameCredentials GameCredentials `gorm:"embedded" json:"gameCredentials"`
	Region          string          `gorm:"type:varchar(50)" json:"region"`
	OrderType       OrderType       `gorm:"type:varchar(20);not null" json:"orderType"`
	TransactionID   string          `gorm:"type:varchar(64);uniqueIndex;not null;<-:create" json:"transactionId"`
	ProductID       string          `gorm:"type:uuid;index;not null" json:"productId"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	CouponCode      string          `gorm:"type:varchar(50)" json:"couponCode,omitempty"`
	IsCouponApplied bool            `gorm:"not null" json:"isCouponApplied"`
	CouponDetails   datatypes.JSON  `json:"couponDetails,omitempty"`
	VendorTrx       string          `gorm:"type:varchar(100)" json:"vendorTrx,omitempty"`
	ProvisionResult datatypes.JSON  `json:"provisionResult,omitempty"`
	DispatchedAt    *time.Time      `json:"dispatchedAt,omitempty"`
}

// IsFinal 是否已经是终态
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusSuccess || o.Status == OrderStatusFailed
}

// ClearCoupon 优惠券已被删除时清空订单上的优惠信息
func (o *Order) ClearCoupon() {
	o.CouponCode = ""
	o.IsCouponApplied = false
	o.CouponDetails = nil
}

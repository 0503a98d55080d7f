package model

import (
	baseModel "topup_store/pkg/model"
)

// BetterLuck 未中奖的奖项名，不占库存
const BetterLuck = "Better Luck"

type SpinStatus string

const (
	SpinStatusPending SpinStatus = "pending"
	SpinStatusReject  SpinStatus = "reject"
	SpinStatusSuccess SpinStatus = "success"
)

// SpinTransaction 每笔交易最多一次抽奖机会，IsUsed 只能由 false 变为 true 一次
type SpinTransaction struct {
	baseModel.BaseModel
	UserID        string     `gorm:"type:varchar(64);not null" json:"userId"`
	ZoneID        string     `gorm:"type:varchar(64)" json:"zoneId,omitempty"`
	ProductID     string     `gorm:"type:uuid;not null" json:"productId"`
	CostID        string     `gorm:"type:varchar(255)" json:"costId"`
	TransactionID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"transactionId"`
	Spin          int        `gorm:"not null;check:spin <= 1" json:"spin"`
	IsUsed        bool       `gorm:"not null" json:"isUsed"`
	Prize         string     `gorm:"type:varchar(100)" json:"prize,omitempty"`
	Status        SpinStatus `gorm:"type:varchar(20);not null" json:"status"`
}

// Prize 奖品，Limit 为剩余可发数量，不会小于 0
type Prize struct {
	baseModel.BaseModel
	ProductID string  `gorm:"type:uuid;index;not null" json:"productId"`
	Name      string  `gorm:"type:varchar(100);not null" json:"name"`
	Color     string  `gorm:"type:varchar(20)" json:"color"`
	WinRate   float64 `json:"winRate"`
	Weight    int     `gorm:"not null" json:"weight"`
	Limit     int     `gorm:"column:prize_limit;not null;check:prize_limit >= 0" json:"limit"`
	IsActive  bool    `gorm:"not null" json:"isActive"`
}

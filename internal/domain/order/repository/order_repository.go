package repository

import (
	"context"
	"errors"
	"time"
	"topup_store/internal/domain/order/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByTransactionID(ctx context.Context, tranID string) (*model.Order, error)
	// ClaimDispatch 抢占发货权，只有 pending 且未发货的订单能抢到
	ClaimDispatch(ctx context.Context, id string, at time.Time) (bool, error)
	// FinalizePending pending 订单置为终态，已是终态时返回 false
	FinalizePending(ctx context.Context, id string, status model.OrderStatus, vendorTrx string) (bool, error)
	// RecordDispatch 写入发货结果。status 为终态时只更新仍为 pending 的订单；
	// status 为 pending（异步供应商）时只写 provision_result，不改状态
	RecordDispatch(ctx context.Context, id string, status model.OrderStatus, result datatypes.JSON) (bool, error)
	// ClearCoupon 优惠券已被删除时清空订单上的优惠字段
	ClearCoupon(ctx context.Context, id string) error
	List(ctx context.Context, status string, offset, limit int) ([]model.Order, int64, error)
	// SuccessSpend 统计时间区间内成功订单的消费总额
	SuccessSpend(ctx context.Context, userID, productID string, from, to time.Time) (decimal.Decimal, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) first(ctx context.Context, query string, arg interface{}) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where(query, arg).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *orderRepository) GetByTransactionID(ctx context.Context, tranID string) (*model.Order, error) {
	return r.first(ctx, "transaction_id = ?", tranID)
}


func (r *orderRepository) ClaimDispatch(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND dispatched_at IS NULL AND status = ?", id, model.OrderStatusPending).
		UpdateColumn("dispatched_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) FinalizePending(ctx context.Context, id string, status model.OrderStatus, vendorTrx string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderStatusPending).
		Updates(map[string]interface{}{"status": status, "vendor_trx": vendorTrx})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) RecordDispatch(ctx context.Context, id string, status model.OrderStatus, result datatypes.JSON) (bool, error) {
	db := r.db.WithContext(ctx).Model(&model.Order{})
	var tx *gorm.DB
	if status == model.OrderStatusPending {
		tx = db.Where("id = ?", id).Update("provision_result", result)
	} else {
		tx = db.Where("id = ? AND status = ?", id, model.OrderStatusPending).
			Updates(map[string]interface{}{"status": status, "provision_result": result})
	}
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *orderRepository) ClearCoupon(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"coupon_code": "", "coupon_details": nil, "is_coupon_applied": false}).Error
}

func (r *orderRepository) List(ctx context.Context, status string, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) SuccessSpend(ctx context.Context, userID, productID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(amount)").
		Where("game_user_id = ? AND product_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			userID, productID, model.OrderStatusSuccess, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

package repository

import (
	"context"
	"errors"
	"topup_store/internal/domain/spin/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSpinNotFound 抽奖记录不存在
var ErrSpinNotFound = errors.New("spin transaction not found")

type SpinRepository interface {
	// CreateIfAbsent 按交易号幂等创建，已存在时返回 false
	CreateIfAbsent(ctx context.Context, st *model.SpinTransaction) (bool, error)
	GetByTransactionID(ctx context.Context, tranID string) (*model.SpinTransaction, error)
	// Claim 原子占用抽奖机会 is_used false -> true
	Claim(ctx context.Context, tranID string) (bool, error)
	SaveResult(ctx context.Context, tranID, prize string, status model.SpinStatus) error
	AvailableSpins(ctx context.Context, tranID string) (int64, error)

	ActivePrizes(ctx context.Context, productID string) ([]model.Prize, error)
	// DecrementPrize 库存大于 0 时扣减，返回 false 表示库存已空
	DecrementPrize(ctx context.Context, prizeID string) (bool, error)
	CreatePrize(ctx context.Context, prize *model.Prize) error
	ListPrizes(ctx context.Context, productID string) ([]model.Prize, error)

	// Transaction 在同一个数据库事务中执行 fn
	Transaction(ctx context.Context, fn func(repo SpinRepository) error) error
}

type spinRepository struct {
	db *gorm.DB
}

func NewSpinRepository(db *gorm.DB) SpinRepository {
	return &spinRepository{db: db}
}

func (r *spinRepository) Transaction(ctx context.Context, fn func(repo SpinRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&spinRepository{db: tx})
	})
}

func (r *spinRepository) CreateIfAbsent(ctx context.Context, st *model.SpinTransaction) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "transaction_id"}}, DoNothing: true}).
		Create(st)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *spinRepository) GetByTransactionID(ctx context.Context, tranID string) (*model.SpinTransaction, error) {
	var st model.SpinTransaction
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", tranID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpinNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *spinRepository) Claim(ctx context.Context, tranID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SpinTransaction{}).
		Where("transaction_id = ? AND is_used = false AND spin > 0", tranID).
		UpdateColumn("is_used", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *spinRepository) SaveResult(ctx context.Context, tranID, prize string, status model.SpinStatus) error {
	return r.db.WithContext(ctx).Model(&model.SpinTransaction{}).
		Where("transaction_id = ?", tranID).
		Updates(map[string]interface{}{"prize": prize, "status": status}).Error
}

func (r *spinRepository) AvailableSpins(ctx context.Context, tranID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SpinTransaction{}).
		Where("transaction_id = ? AND is_used = false AND spin > 0", tranID).
		Count(&count).Error
	return count, err
}

func (r *spinRepository) ActivePrizes(ctx context.Context, productID string) ([]model.Prize, error) {
	var prizes []model.Prize
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = true AND prize_limit > 0", productID).
		Order("weight DESC").
		Find(&prizes).Error
	return prizes, err
}

func (r *spinRepository) DecrementPrize(ctx context.Context, prizeID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Prize{}).
		Where("id = ? AND prize_limit > 0", prizeID).
		UpdateColumn("prize_limit", gorm.Expr("prize_limit - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *spinRepository) CreatePrize(ctx context.Context, prize *model.Prize) error {
	return r.db.WithContext(ctx).Create(prize).Error
}

func (r *spinRepository) ListPrizes(ctx context.Context, productID string) ([]model.Prize, error) {
	var prizes []model.Prize
	db := r.db.WithContext(ctx)
	if productID != "" {
		db = db.Where("product_id = ?", productID)
	}
	err := db.Order("weight DESC").Find(&prizes).Error
	return prizes, err
}

package repository

import (
	"context"
	"errors"
	"topup_store/internal/domain/gift/model"

	"gorm.io/gorm"
)

var (
	ErrGiftNotFound   = errors.New("gift not found")
	ErrAlreadyClaimed = errors.New("gift already claimed this month")
)

type GiftRepository interface {
	CreateGift(ctx context.Context, gift *model.Gift) error
	GetActiveByLevel(ctx context.Context, productID string, level int) (*model.Gift, error)
	ListActive(ctx context.Context, productID string) ([]model.Gift, error)
	HasClaimed(ctx context.Context, userID, productID string, level int, month string) (bool, error)
	ClaimedLevels(ctx context.Context, userID, productID, month string) ([]int, error)
	// CreateClaim 唯一索引冲突时返回 ErrAlreadyClaimed
	CreateClaim(ctx context.Context, claim *model.GiftTransaction) error
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) CreateGift(ctx context.Context, gift *model.Gift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}

func (r *giftRepository) GetActiveByLevel(ctx context.Context, productID string, level int) (*model.Gift, error) {
	var gift model.Gift
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND level = ? AND is_active = true", productID, level).
		First(&gift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, err
	}
	return &gift, nil
}

func (r *giftRepository) ListActive(ctx context.Context, productID string) ([]model.Gift, error) {
	var gifts []model.Gift
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = true", productID).
		Order("level ASC").
		Find(&gifts).Error
	return gifts, err
}

func (r *giftRepository) HasClaimed(ctx context.Context, userID, productID string, level int, month string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GiftTransaction{}).
		Where("user_id = ? AND product_id = ? AND level = ? AND month = ?", userID, productID, level, month).
		Count(&count).Error
	return count > 0, err
}

func (r *giftRepository) ClaimedLevels(ctx context.Context, userID, productID, month string) ([]int, error) {
	var levels []int
	err := r.db.WithContext(ctx).Model(&model.GiftTransaction{}).
		Where("user_id = ? AND product_id = ? AND month = ?", userID, productID, month).
		Pluck("level", &levels).Error
	return levels, err
}

func (r *giftRepository) CreateClaim(ctx context.Context, claim *model.GiftTransaction) error {
	err := r.db.WithContext(ctx).Create(claim).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyClaimed
	}
	return err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	catalogRepo "topup_store/internal/domain/catalog/repository"
	"topup_store/internal/domain/gift/model"
	"topup_store/internal/domain/gift/repository"
	"topup_store/pkg/metrics"
	"topup_store/pkg/response"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const monthLayout = "2006-01"

// SpendCounter 统计成功订单消费
type SpendCounter interface {
	SuccessSpend(ctx context.Context, userID, productID string, from, to time.Time) (decimal.Decimal, error)
}

// LevelProgress 单个档位的进度
type LevelProgress struct {
	Level     int             `json:"level"`
	Threshold decimal.Decimal `json:"threshold"`
	Reward    string          `json:"reward"`
	Unlocked  bool            `json:"unlocked"`
	Claimed   bool            `json:"claimed"`
}

// Progress 当月累计消费与各档位状态
type Progress struct {
	Month  string          `json:"month"`
	Spend  decimal.Decimal `json:"spend"`
	Levels []LevelProgress `json:"levels"`
}

type ClaimInput struct {
	UserID    string
	ZoneID    string
	ProductID string
	Level     int
}

type CreateGiftInput struct {
	ProductID string
	Level     int
	Threshold decimal.Decimal
	Reward    string
	IsActive  bool
}

type GiftService interface {
	Progress(ctx context.Context, userID, productID string) (*Progress, error)
	Claim(ctx context.Context, in ClaimInput) (*model.GiftTransaction, error)
	CreateGift(ctx context.Context, in CreateGiftInput) (*model.Gift, error)
}

type giftService struct {
	repo     repository.GiftRepository
	spend    SpendCounter
	products catalogRepo.ProductRepository
	metrics  *metrics.MetricsCollector
	log      *zap.Logger
	now      func() time.Time
}

func NewGiftService(repo repository.GiftRepository, spend SpendCounter, products catalogRepo.ProductRepository, log *zap.Logger) GiftService {
	return &giftService{
		repo:     repo,
		spend:    spend,
		products: products,
		metrics:  metrics.GetGlobalCollector(),
		log:      log,
		now:      time.Now,
	}
}

// monthRange 当前自然月 [月初, 下月初)，按 UTC 计
func (s *giftService) monthRange() (string, time.Time, time.Time) {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from.Format(monthLayout), from, from.AddDate(0, 1, 0)
}

func (s *giftService) Progress(ctx context.Context, userID, productID string) (*Progress, error) {
	month, from, to := s.monthRange()

	spend, err := s.spend.SuccessSpend(ctx, userID, productID, from, to)
	if err != nil {
		return nil, err
	}
	gifts, err := s.repo.ListActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.repo.ClaimedLevels(ctx, userID, productID, month)
	if err != nil {
		return nil, err
	}
	claimedSet := make(map[int]bool, len(claimed))
	for _, l := range claimed {
		claimedSet[l] = true
	}

	levels := make([]LevelProgress, 0, len(gifts))
	for _, g := range gifts {
		levels = append(levels, LevelProgress{
			Level:     g.Level,
			Threshold: g.Threshold,
			Reward:    g.Reward,
			Unlocked:  spend.GreaterThanOrEqual(g.Threshold),
			Claimed:   claimedSet[g.Level],
		})
	}

	return &Progress{Month: month, Spend: spend, Levels: levels}, nil
}

// Claim 领取档位奖励
// 先查询是否已领取，并发重复领取由唯一索引兜底
func (s *giftService) Claim(ctx context.Context, in ClaimInput) (*model.GiftTransaction, error) {
	claim, err := s.claim(ctx, in)
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			s.metrics.RecordGiftClaim("rejected")
		} else {
			s.metrics.RecordGiftClaim("error")
		}
		return nil, err
	}
	s.metrics.RecordGiftClaim("claimed")
	return claim, nil
}

func (s *giftService) claim(ctx context.Context, in ClaimInput) (*model.GiftTransaction, error) {
	gift, err := s.repo.GetActiveByLevel(ctx, in.ProductID, in.Level)
	if err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			return nil, response.NotFound(response.ErrGiftNotFound, "Gift not found")
		}
		return nil, err
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProductNotFound) {
			return nil, response.NotFound(response.ErrProductNotFound, "Product not found")
		}
		return nil, err
	}
	if !product.GiftActive {
		return nil, response.BadRequest(response.ErrGiftLocked, "Gifts are not available for this product")
	}

	month, from, to := s.monthRange()
	spend, err := s.spend.SuccessSpend(ctx, in.UserID, in.ProductID, from, to)
	if err != nil {
		return nil, err
	}
	if spend.LessThan(gift.Threshold) {
		return nil, response.BadRequest(response.ErrGiftLocked,
			fmt.Sprintf("Spend %s more to unlock this gift", gift.Threshold.Sub(spend).StringFixed(2)))
	}

	claimed, err := s.repo.HasClaimed(ctx, in.UserID, in.ProductID, in.Level, month)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, response.BadRequest(response.ErrGiftClaimed, "Gift already claimed this month")
	}

	claim := &model.GiftTransaction{
		UserID:    in.UserID,
		ZoneID:    in.ZoneID,
		ProductID: in.ProductID,
		GiftID:    gift.ID,
		Level:     in.Level,
		Month:     month,
		Status:    model.GiftClaimPending,
	}
	if err := s.repo.CreateClaim(ctx, claim); err != nil {
		if errors.Is(err, repository.ErrAlreadyClaimed) {
			return nil, response.BadRequest(response.ErrGiftClaimed, "Gift already claimed this month")
		}
		return nil, err
	}

	s.log.Info("gift claimed",
		zap.String("user_id", in.UserID), zap.String("product_id", in.ProductID),
		zap.Int("level", in.Level), zap.String("month", month))
	return claim, nil
}

func (s *giftService) CreateGift(ctx context.Context, in CreateGiftInput) (*model.Gift, error) {
	if in.Level <= 0 || !in.Threshold.IsPositive() {
		return nil, response.BadRequest(response.ErrInvalidParam, "Level and threshold must be positive")
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, catalogRepo.ErrProductNotFound) {
			return nil, response.NotFound(response.ErrProductNotFound, "Product not found")
		}
		return nil, err
	}

	gift := &model.Gift{
		ProductID: in.ProductID,
		Level:     in.Level,
		Threshold: in.Threshold,
		Reward:    in.Reward,
		IsActive:  in.IsActive,
	}
	if err := s.repo.CreateGift(ctx, gift); err != nil {
		return nil, err
	}
	return gift, nil
}

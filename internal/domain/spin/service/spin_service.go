package service

import (
	"context"
	"errors"
	"math/rand/v2"
	catalogRepo "topup_store/internal/domain/catalog/repository"
	orderModel "topup_store/internal/domain/order/model"
	orderRepo "topup_store/internal/domain/order/repository"
	"topup_store/internal/domain/spin/model"
	"topup_store/internal/domain/spin/repository"
	"topup_store/pkg/metrics"
	"topup_store/pkg/response"

	"go.uber.org/zap"
)

// OrderLookup 按交易号查订单
type OrderLookup interface {
	GetByTransactionID(ctx context.Context, tranID string) (*orderModel.Order, error)
}

// PrizeView 返回给前端的奖品
type PrizeView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GrantInput 支付成功后发放抽奖机会
type GrantInput struct {
	UserID        string
	ZoneID        string
	ProductID     string
	CostID        string
	TransactionID string
}

type CreatePrizeInput struct {
	ProductID string
	Name      string
	Color     string
	WinRate   float64
	Weight    int
	Limit     int
	IsActive  bool
}

type SpinService interface {
	Spin(ctx context.Context, tranID string) (*PrizeView, error)
	AvailableSpins(ctx context.Context, tranID string) (int64, error)
	GrantSpin(ctx context.Context, in GrantInput) error
	CreatePrize(ctx context.Context, in CreatePrizeInput) (*model.Prize, error)
	ListPrizes(ctx context.Context, productID string) ([]model.Prize, error)
}

type spinService struct {
	repo     repository.SpinRepository
	orders   OrderLookup
	products catalogRepo.ProductRepository
	metrics  *metrics.MetricsCollector
	log      *zap.Logger
	draw     func(n int) int
}

func NewSpinService(repo repository.SpinRepository, orders OrderLookup, products catalogRepo.ProductRepository, log *zap.Logger) SpinService {
	return &spinService{
		repo:     repo,
		orders:   orders,
		products: products,
		metrics:  metrics.GetGlobalCollector(),
		log:      log,
		draw:     rand.IntN,
	}
}

// Spin 占用抽奖机会并抽奖
// 占用、抽奖、扣库存、写结果在同一事务内，任一步失败抽奖机会都会回滚
func (s *spinService) Spin(ctx context.Context, tranID string) (*PrizeView, error) {
	order, err := s.orders.GetByTransactionID(ctx, tranID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			return nil, response.BadRequest(response.ErrOrderNotFound, "Order not found")
		}
		return nil, err
	}

	var view *PrizeView
	err = s.repo.Transaction(ctx, func(repo repository.SpinRepository) error {
		claimed, err := repo.Claim(ctx, tranID)
		if err != nil {
			return err
		}
		if !claimed {
			return response.BadRequest(response.ErrSpinUnavailable, "No spin available for this transaction")
		}

		product, err := s.products.GetByID(ctx, order.ProductID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrProductNotFound) {
				return response.NotFound(response.ErrProductNotFound, "Product not found")
			}
			return err
		}
		if !product.SpinActive {
			return response.BadRequest(response.ErrSpinInactive, "Spin is not active for this product")
		}

		prizes, err := repo.ActivePrizes(ctx, product.ID)
		if err != nil {
			return err
		}
		pool := SelectPool(prizes)
		total := TotalWeight(pool)
		if total == 0 {
			return response.NotFound(response.ErrPrizeNotFound, "No prizes available")
		}

		winner := Pick(pool, s.draw(total))
		status := model.SpinStatusPending
		if winner.ID == pool[0].ID {
			status = model.SpinStatusSuccess
		}
		view = &PrizeView{ID: winner.ID, Name: winner.Name, Color: winner.Color}

		if winner.Name != model.BetterLuck {
			ok, err := repo.DecrementPrize(ctx, winner.ID)
			if err != nil {
				return err
			}
			if !ok {
				// 并发下库存被抢空
				status = model.SpinStatusReject
				view = &PrizeView{Name: model.BetterLuck}
			}
		}

		return repo.SaveResult(ctx, tranID, view.Name, status)
	})
	if err != nil {
		s.metrics.RecordSpin("rejected")
		return nil, err
	}

	if view.Name == model.BetterLuck {
		s.metrics.RecordSpin("better_luck")
	} else {
		s.metrics.RecordSpin("won")
	}
	s.log.Info("spin completed", zap.String("tran_id", tranID), zap.String("prize", view.Name))
	return view, nil
}

func (s *spinService) AvailableSpins(ctx context.Context, tranID string) (int64, error) {
	return s.repo.AvailableSpins(ctx, tranID)
}

// GrantSpin 按交易号幂等发放一次抽奖机会
func (s *spinService) GrantSpin(ctx context.Context, in GrantInput) error {
	created, err := s.repo.CreateIfAbsent(ctx, &model.SpinTransaction{
		UserID:        in.UserID,
		ZoneID:        in.ZoneID,
		ProductID:     in.ProductID,
		CostID:        in.CostID,
		TransactionID: in.TransactionID,
		Spin:          1,
		Status:        model.SpinStatusPending,
	})
	if err != nil {
		return err
	}
	if created {
		s.log.Info("spin granted", zap.String("tran_id", in.TransactionID))
	}
	return nil
}

func (s *spinService) CreatePrize(ctx context.Context, in CreatePrizeInput) (*model.Prize, error) {
	if in.Weight < 0 || in.Limit < 0 {
		return nil, response.BadRequest(response.ErrInvalidParam, "Weight and limit must not be negative")
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, catalogRepo.ErrProductNotFound) {
			return nil, response.NotFound(response.ErrProductNotFound, "Product not found")
		}
		return nil, err
	}

	prize := &model.Prize{
		ProductID: in.ProductID,
		Name:      in.Name,
		Color:     in.Color,
		WinRate:   in.WinRate,
		Weight:    in.Weight,
		Limit:     in.Limit,
		IsActive:  in.IsActive,
	}
	if err := s.repo.CreatePrize(ctx, prize); err != nil {
		return nil, err
	}
	return prize, nil
}

func (s *spinService) ListPrizes(ctx context.Context, productID string) ([]model.Prize, error) {
	return s.repo.ListPrizes(ctx, productID)
}

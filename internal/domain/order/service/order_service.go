package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	catalogModel "topup_store/internal/domain/catalog/model"
	catalogRepo "topup_store/internal/domain/catalog/repository"
	couponService "topup_store/internal/domain/coupon/service"
	"topup_store/internal/domain/order/model"
	"topup_store/internal/domain/order/repository"
	"topup_store/internal/domain/payment/payway"
	provisionService "topup_store/internal/domain/provision/service"
	"topup_store/internal/domain/provision/strategy"
	spinService "topup_store/internal/domain/spin/service"
	"topup_store/pkg/metrics"
	"topup_store/pkg/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 支付回调的提示信息
const (
	MsgOrderPlaced      = "Order placed successfully"
	MsgAlreadyPlaced    = "Order already placed"
	MsgAlreadyProcessed = "Order already processed"
	MsgPaymentFailed    = "Payment was not completed"
)

// recordAttempts 发货结果写库的最大尝试次数
const recordAttempts = 3

// CouponApplier 下单时校验优惠券，支付成功后累加使用次数
type CouponApplier interface {
	Validate(ctx context.Context, in couponService.ValidateInput) (*couponService.Quote, error)
	IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error)
}

// Provisioner 调用充值供应商
type Provisioner interface {
	Dispatch(ctx context.Context, in provisionService.DispatchInput) provisionService.Outcome
}

// SpinGranter 发放抽奖机会
type SpinGranter interface {
	GrantSpin(ctx context.Context, in spinService.GrantInput) error
}

// CheckoutInput 下单参数
type CheckoutInput struct {
	ProductID    string
	CostID       string
	UserID       string
	ZoneID       string
	Game         string
	Region       string
	Coupon       string
	OrderDetails string
}

// CheckoutResult 订单及网关支付参数
type CheckoutResult struct {
	Order   *model.Order          `json:"order"`
	Payment payway.PurchaseParams `json:"payment"`
}

// CallbackInput 网关支付回调
type CallbackInput struct {
	Status int
	TranID string
	APV    string
}

// WebhookInput Bangla 到账通知
type WebhookInput struct {
	Status  string
	UID     string
	Trx     string
	OrderID string // 即订单交易号
}

type OrderService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	HandlePaymentCallback(ctx context.Context, orderID string, in CallbackInput) (string, *model.Order, error)
	HandleBanglaWebhook(ctx context.Context, in WebhookInput) (string, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, status string, offset, limit int) ([]model.Order, int64, error)
}

type orderService struct {
	repo       repository.OrderRepository
	products   catalogRepo.ProductRepository
	coupons    CouponApplier
	gateway    payway.Gateway
	dispatch   Provisioner
	spins      SpinGranter
	metrics    *metrics.MetricsCollector
	log        *zap.Logger
	now        func() time.Time
	retryDelay time.Duration
}

func NewOrderService(
	repo repository.OrderRepository,
	products catalogRepo.ProductRepository,
	coupons CouponApplier,
	gateway payway.Gateway,
	dispatch Provisioner,
	spins SpinGranter,
	log *zap.Logger,
) OrderService {
	return &orderService{
		repo:       repo,
		products:   products,
		coupons:    coupons,
		gateway:    gateway,
		dispatch:   dispatch,
		spins:      spins,
		metrics:    metrics.GetGlobalCollector(),
		log:        log,
		now:        time.Now,
		retryDelay: 200 * time.Millisecond,
	}
}

func (s *orderService) loadProduct(ctx context.Context, id string) (*catalogModel.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProductNotFound) {
			return nil, response.NotFound(response.ErrProductNotFound, "Product not found")
		}
		return nil, err
	}
	return product, nil
}

// newTransactionID 时间戳 + 6 位十六进制，共 20 位，满足网关长度限制
func (s *orderService) newTransactionID() string {
	return s.now().UTC().Format("20060102150405") + uuid.New().String()[:6]
}

func (s *orderService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.Game != "" && !strings.EqualFold(strings.TrimSpace(in.Game), product.Game) {
		return nil, response.BadRequest(response.ErrInvalidParam, "Game does not match product")
	}
	// 自动充值商品下单前确认有可用供应商，避免付款后才发现无法发货
	if product.IsAPI {
		if _, err := strategy.Resolve(product.Game, in.Region, product.APIName); err != nil {
			return nil, response.BadRequest(response.ErrInvalidParam, "Region is not supported for this product")
		}
	}

	price, err := product.PriceOf(in.CostID)
	if err != nil {
		return nil, response.BadRequest(response.ErrInvalidParam, err.Error())
	}

	order := &model.Order{
		CostID:       in.CostID,
		OrderDetails: in.OrderDetails,
		GameCredentials: model.GameCredentials{
			UserID: strings.TrimSpace(in.UserID),
			ZoneID: strings.TrimSpace(in.ZoneID),
			Game:   product.Game,
		},
		Region:        strings.ToLower(in.Region),
		OrderType:     model.OrderTypeCustom,
		TransactionID: s.newTransactionID(),
		ProductID:     product.ID,
		Amount:        price,
		Status:        model.OrderStatusPending,
	}
	if product.IsAPI {
		order.OrderType = model.OrderTypeAPI
	}

	if in.Coupon != "" {
		quote, err := s.coupons.Validate(ctx, couponService.ValidateInput{
			Code:      in.Coupon,
			CostID:    in.CostID,
			Price:     price,
			ProductID: product.ID,
		})
		if err != nil {
			return nil, err
		}
		details, err := json.Marshal(quote)
		if err != nil {
			return nil, err
		}
		order.Amount = quote.FinalPrice
		order.CouponCode = quote.Code
		order.IsCouponApplied = true
		order.CouponDetails = datatypes.JSON(details)
	}

	if !order.Amount.IsPositive() {
		return nil, response.BadRequest(response.ErrInvalidParam, "Order amount must be greater than zero")
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("tran_id", order.TransactionID),
		zap.String("amount", order.Amount.StringFixed(2)))

	return &CheckoutResult{
		Order:   order,
		Payment: s.gateway.PurchaseParams(order.TransactionID, order.Amount),
	}, nil
}

// HandlePaymentCallback 支付回调：核验交易、幂等判断、发货、核销优惠券、发放抽奖机会
func (s *orderService) HandlePaymentCallback(ctx context.Context, orderID string, in CallbackInput) (string, *model.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return "", nil, response.NotFound(response.ErrOrderNotFound, "Order not found")
		}
		return "", nil, err
	}

	if order.TransactionID != in.TranID {
		return "", nil, response.BadRequest(response.ErrTransactionMismatch, "Transaction id does not match order")
	}

	if err := s.gateway.Verify(ctx, in.TranID, in.APV); err != nil {
		s.log.Warn("payment verification failed", zap.String("tran_id", in.TranID), zap.Error(err))
		return "", nil, response.BadRequest(response.ErrTransactionInvalid, err.Error())
	}

	switch order.Status {
	case model.OrderStatusSuccess:
		return MsgAlreadyPlaced, order, nil
	case model.OrderStatusFailed:
		return MsgAlreadyProcessed, order, nil
	}

	if in.Status != 0 {
		if _, err := s.repo.FinalizePending(ctx, order.ID, model.OrderStatusFailed, ""); err != nil {
			return "", nil, err
		}
		order.Status = model.OrderStatusFailed
		s.metrics.RecordOrderFinalized(string(order.Status))
		return MsgPaymentFailed, order, nil
	}

	product, err := s.loadProduct(ctx, order.ProductID)
	if err != nil {
		return "", nil, err
	}

	// 抢占发货权之后不再跟随请求取消：网关断开连接时供应商可能仍会到账，发货和落库必须做完
	ctx = context.WithoutCancel(ctx)

	// 抢占发货权，重复回调不会重复调用供应商
	now := s.now()
	claimed, err := s.repo.ClaimDispatch(ctx, order.ID, now)
	if err != nil {
		return "", nil, err
	}
	if !claimed {
		return MsgAlreadyPlaced, order, nil
	}
	order.DispatchedAt = &now

	status := model.OrderStatusSuccess
	var failure *response.AppError
	if order.OrderType == model.OrderTypeAPI {
		outcome := s.dispatch.Dispatch(ctx, provisionService.DispatchInput{
			TransactionID: order.TransactionID,
			CostID:        order.CostID,
			Game:          order.GameCredentials.Game,
			Region:        order.Region,
			APIName:       product.APIName,
			UserID:        order.GameCredentials.UserID,
			ZoneID:        order.GameCredentials.ZoneID,
		})
		if raw, err := json.Marshal(outcome); err == nil {
			order.ProvisionResult = datatypes.JSON(raw)
		}

		switch {
		case !outcome.Result.OK():
			status = model.OrderStatusFailed
			msg := outcome.Result.Error
			if msg == "" {
				msg = "Provisioning failed"
			}
			failure = response.NewError(http.StatusInternalServerError, response.ErrProvisionFailed, msg)
		case outcome.Async():
			status = model.OrderStatusPending
		}
	}

	// 只写回调负责的列，且终态只覆盖 pending，webhook 先到时不会被改回
	updated, err := s.recordDispatch(ctx, order.ID, status, order.ProvisionResult)
	if err != nil {
		s.log.Error("dispatch result not persisted, order needs reconciliation",
			zap.String("order_id", order.ID), zap.String("tran_id", order.TransactionID),
			zap.String("status", string(status)), zap.Error(err))
		return "", nil, err
	}
	if status != model.OrderStatusPending {
		if !updated {
			s.log.Warn("order finalized elsewhere during dispatch", zap.String("order_id", order.ID))
			return MsgAlreadyProcessed, order, nil
		}
		order.Status = status
		s.metrics.RecordOrderFinalized(string(status))
	}
	if failure != nil {
		return "", nil, failure
	}

	s.applyCoupon(ctx, order)

	if order.Status == model.OrderStatusSuccess {
		s.grantSpin(ctx, order, product)
	}

	return MsgOrderPlaced, order, nil
}

// recordDispatch 发货结果落库，数据库抖动时有限重试
func (s *orderService) recordDispatch(ctx context.Context, id string, status model.OrderStatus, result datatypes.JSON) (bool, error) {
	var err error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		var updated bool
		if updated, err = s.repo.RecordDispatch(ctx, id, status, result); err == nil {
			return updated, nil
		}
		s.log.Warn("record dispatch result failed", zap.String("order_id", id), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < recordAttempts {
			time.Sleep(s.retryDelay * time.Duration(attempt))
		}
	}
	return false, err
}

// applyCoupon 核销优惠券；失败只记日志，不影响已落库的订单状态
func (s *orderService) applyCoupon(ctx context.Context, order *model.Order) {
	if !order.IsCouponApplied {
		return
	}
	cleared := false
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		ok, err := s.coupons.IncrementUsage(ctx, tx, order.CouponCode)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.log.Warn("coupon no longer exists, clearing from order",
			zap.String("order_id", order.ID), zap.String("coupon", order.CouponCode))
		cleared = true
		return s.repo.WithTx(tx).ClearCoupon(ctx, order.ID)
	})
	if err != nil {
		s.log.Error("coupon usage not recorded",
			zap.String("order_id", order.ID), zap.String("coupon", order.CouponCode), zap.Error(err))
		return
	}
	if cleared {
		order.ClearCoupon()
	}
}

// grantSpin 发放失败只记日志，不影响订单
func (s *orderService) grantSpin(ctx context.Context, order *model.Order, product *catalogModel.Product) {
	if !product.SpinEligible(order.CostID) {
		return
	}
	err := s.spins.GrantSpin(ctx, spinService.GrantInput{
		UserID:        order.GameCredentials.UserID,
		ZoneID:        order.GameCredentials.ZoneID,
		ProductID:     order.ProductID,
		CostID:        order.CostID,
		TransactionID: order.TransactionID,
	})
	if err != nil {
		s.log.Error("grant spin failed", zap.String("tran_id", order.TransactionID), zap.Error(err))
	}
}

// HandleBanglaWebhook 返回处理结果说明，错误只用于日志，调用方始终返回 200
func (s *orderService) HandleBanglaWebhook(ctx context.Context, in WebhookInput) (string, error) {
	if in.Status == "" || in.UID == "" || in.Trx == "" || in.OrderID == "" {
		return "Missing required fields", errors.New("webhook payload missing fields")
	}

	var status model.OrderStatus
	switch strings.ToLower(in.Status) {
	case "success", "completed":
		status = model.OrderStatusSuccess
	case "failed", "cancelled":
		status = model.OrderStatusFailed
	default:
		return "Unknown status", errors.New("webhook status not recognised: " + in.Status)
	}

	order, err := s.repo.GetByTransactionID(ctx, in.OrderID)
	if err != nil {
		return "Order not found", err
	}
	if order.GameCredentials.UserID != in.UID {
		return "Player mismatch", errors.New("webhook uid does not match order player")
	}
	if order.IsFinal() {
		return MsgAlreadyProcessed, nil
	}

	updated, err := s.repo.FinalizePending(ctx, order.ID, status, in.Trx)
	if err != nil {
		return "Update failed", err
	}
	if !updated {
		return MsgAlreadyProcessed, nil
	}
	order.Status = status
	order.VendorTrx = in.Trx
	s.metrics.RecordOrderFinalized(string(status))

	if status == model.OrderStatusSuccess {
		product, err := s.products.GetByID(ctx, order.ProductID)
		if err != nil {
			s.log.Error("load product for spin grant", zap.String("tran_id", order.TransactionID), zap.Error(err))
		} else {
			s.grantSpin(ctx, order, product)
		}
	}

	return "Order updated", nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, response.NotFound(response.ErrOrderNotFound, "Order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, offset, limit int) ([]model.Order, int64, error) {
	return s.repo.List(ctx, status, offset, limit)
}

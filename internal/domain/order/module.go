package order

import (
	"topup_store/internal/domain/catalog"
	"topup_store/internal/domain/coupon"
	"topup_store/internal/domain/order/handler"
	"topup_store/internal/domain/order/repository"
	"topup_store/internal/domain/order/service"
	"topup_store/internal/domain/payment/payway"
	"topup_store/internal/domain/provision"
	"topup_store/internal/domain/spin"
	"topup_store/internal/pkg/middleware"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单与支付回调模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 30
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	dispatcher, err := provision.NewDispatcher(ctx)
	if err != nil {
		return err
	}

	oService := service.NewOrderService(
		repository.NewOrderRepository(ctx.DB),
		catalog.NewRepository(ctx),
		coupon.NewService(ctx),
		payway.NewClient(ctx.Config.PayWay, ctx.Logger),
		dispatcher,
		spin.NewService(ctx),
		ctx.Logger,
	)
	oHandler := handler.NewOrderHandler(oService, ctx.Logger)

	// 2. 路由注册
	setupRoutes(ctx.Router, oHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	r.POST("/api/order", h.Checkout)
	r.POST("/payment/pay", h.PaymentCallback)
	r.POST("/api/webhook/bangla", h.BanglaWebhook)

	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListOrders)
		admin.GET("/:id", h.GetOrder)
	}
}

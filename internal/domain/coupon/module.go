package coupon

import (
	"topup_store/internal/domain/catalog"
	"topup_store/internal/domain/coupon/handler"
	"topup_store/internal/domain/coupon/repository"
	"topup_store/internal/domain/coupon/service"
	"topup_store/internal/pkg/middleware"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CouponModule 优惠券模块
type CouponModule struct{}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 10
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	cHandler := handler.NewCouponHandler(NewService(ctx))

	// 2. 路由注册
	setupRoutes(ctx.Router, cHandler)

	return nil
}

// NewService 订单模块下单和支付回调时复用
func NewService(ctx *registry.ModuleContext) service.CouponService {
	return service.NewCouponService(repository.NewCouponRepository(ctx.DB), catalog.NewRepository(ctx))
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler) {
	r.POST("/api/coupon/validate", h.ValidateCoupon)

	// 需要管理员权限的路由组
	admin := r.Group("/admin/coupons")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateCoupon)
		admin.GET("", h.ListCoupons)
	}
}

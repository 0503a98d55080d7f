package spin

import (
	"topup_store/internal/domain/catalog"
	orderRepo "topup_store/internal/domain/order/repository"
	"topup_store/internal/domain/spin/handler"
	"topup_store/internal/domain/spin/repository"
	"topup_store/internal/domain/spin/service"
	"topup_store/internal/pkg/middleware"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// SpinModule 抽奖模块
type SpinModule struct{}

func init() {
	registry.Register(&SpinModule{})
}

func (m *SpinModule) Name() string {
	return "spin"
}

func (m *SpinModule) Priority() int {
	return 20
}

func (m *SpinModule) Init(ctx *registry.ModuleContext) error {
	sHandler := handler.NewSpinHandler(NewService(ctx))
	setupRoutes(ctx.Router, sHandler)
	return nil
}

// NewService 订单模块支付成功后用它发放抽奖机会
func NewService(ctx *registry.ModuleContext) service.SpinService {
	return service.NewSpinService(
		repository.NewSpinRepository(ctx.DB),
		orderRepo.NewOrderRepository(ctx.DB),
		catalog.NewRepository(ctx),
		ctx.Logger,
	)
}

func setupRoutes(r *gin.Engine, h *handler.SpinHandler) {
	g := r.Group("/api/spin")
	{
		g.POST("", h.Spin)
		g.GET("", h.GetSpins)
	}

	admin := r.Group("/admin/prizes")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreatePrize)
		admin.GET("", h.ListPrizes)
	}
}

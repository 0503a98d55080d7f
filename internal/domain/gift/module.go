package gift

import (
	"topup_store/internal/domain/catalog"
	"topup_store/internal/domain/gift/handler"
	"topup_store/internal/domain/gift/repository"
	"topup_store/internal/domain/gift/service"
	orderRepo "topup_store/internal/domain/order/repository"
	"topup_store/internal/pkg/middleware"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// GiftModule 充值档位礼包模块
type GiftModule struct{}

func init() {
	registry.Register(&GiftModule{})
}

func (m *GiftModule) Name() string {
	return "gift"
}

func (m *GiftModule) Priority() int {
	return 40
}

func (m *GiftModule) Init(ctx *registry.ModuleContext) error {
	svc := service.NewGiftService(
		repository.NewGiftRepository(ctx.DB),
		orderRepo.NewOrderRepository(ctx.DB),
		catalog.NewRepository(ctx),
		ctx.Logger,
	)
	setupRoutes(ctx.Router, handler.NewGiftHandler(svc))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.GiftHandler) {
	g := r.Group("/api/gift")
	{
		g.GET("/progress", h.GetProgress)
		g.POST("/claim", h.Claim)
	}

	admin := r.Group("/admin/gifts")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateGift)
	}
}

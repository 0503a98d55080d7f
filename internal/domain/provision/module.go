package provision

import (
	"fmt"
	"topup_store/internal/domain/provision/handler"
	"topup_store/internal/domain/provision/service"
	"topup_store/internal/domain/provision/strategy"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ProvisionModule 充值供应商模块
type ProvisionModule struct{}

func init() {
	registry.Register(&ProvisionModule{})
}

func (m *ProvisionModule) Name() string {
	return "provision"
}

func (m *ProvisionModule) Priority() int {
	return 5
}

func (m *ProvisionModule) Init(ctx *registry.ModuleContext) error {
	vendors := ctx.Config.Vendors
	pService := service.NewPlayerService(
		strategy.NewSmileOneProvider(vendors.SmileOne),
		strategy.NewUniPinValidator(vendors.UniPin),
		ctx.Logger,
	)
	setupRoutes(ctx.Router, handler.NewPlayerHandler(pService))
	return nil
}

// NewDispatcher 按配置注册所有供应商，供订单模块使用
func NewDispatcher(ctx *registry.ModuleContext) (service.Dispatcher, error) {
	vendors := ctx.Config.Vendors

	ghor, err := strategy.NewGhorProvider(vendors.Ghor)
	if err != nil {
		return nil, fmt.Errorf("init ghor provider: %w", err)
	}

	d := service.NewDispatcher(ctx.Alerter, ctx.Logger)
	d.RegisterProvider(ghor)
	d.RegisterProvider(strategy.NewSmileOneProvider(vendors.SmileOne))
	d.RegisterProvider(strategy.NewBanglaProvider(vendors.Bangla))
	return d, nil
}

func setupRoutes(r *gin.Engine, h *handler.PlayerHandler) {
	r.POST("/api/player/verify", h.VerifyPlayer)
}

package catalog

import (
	"topup_store/internal/domain/catalog/handler"
	"topup_store/internal/domain/catalog/repository"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CatalogModule 商品模块
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 1
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	pRepo := NewRepository(ctx)
	pHandler := handler.NewProductHandler(pRepo)

	setupRoutes(ctx.Router, pHandler)
	return nil
}

// NewRepository 其他模块共用的商品仓储（带缓存）
func NewRepository(ctx *registry.ModuleContext) repository.ProductRepository {
	return repository.NewCachedProductRepository(repository.NewProductRepository(ctx.DB), ctx.Cache, ctx.Logger)
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler) {
	g := r.Group("/api/products")
	{
		g.GET("/:id", h.GetProduct)
	}
}

package common

import (
	"context"
	"net/http"
	"time"
	"topup_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommonModule 通用功能模块：健康检查
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	setupRoutes(ctx.Router, ctx.DB, ctx.Redis)
	return nil
}

func setupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	r.GET("/health", healthHandler(db, rdb))
}

// healthHandler 依赖不可用时返回 503，供负载均衡摘除实例
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		status := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
				status = http.StatusServiceUnavailable
			}
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "topup_store/docs"
	_ "topup_store/internal/domain/catalog"
	_ "topup_store/internal/domain/common"
	_ "topup_store/internal/domain/coupon"
	_ "topup_store/internal/domain/gift"
	_ "topup_store/internal/domain/order"
	_ "topup_store/internal/domain/provision"
	_ "topup_store/internal/domain/spin"
	"topup_store/internal/pkg/config"
	"topup_store/internal/pkg/middleware"
	"topup_store/internal/pkg/notify"
	"topup_store/internal/pkg/registry"
	"topup_store/internal/pkg/worker"
	"topup_store/pkg/cache"
	"topup_store/pkg/database"
	"topup_store/pkg/logger"
	"topup_store/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title Top-up Store API
// @version 1.0
// @description 游戏充值订单、支付回调、抽奖与礼包服务
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadConfig(); err != nil {
		panic(err)
	}
	cfg := &config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatal("connect database failed", zap.Error(err))
	}
	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		log.Fatal("connect redis failed", zap.Error(err))
	}
	defer rdb.Close()

	collector := metrics.GetGlobalCollector()
	if err := database.RegisterPoolMetrics(db, prometheus.DefaultRegisterer); err != nil {
		log.Warn("register pool metrics failed", zap.Error(err))
	}

	// 告警邮件走 worker pool，队列满或重试耗尽只记日志
	pool := worker.NewWorkerPool(cfg.Worker.Num, cfg.Worker.BufferSize, log, func(task worker.Task, err error) {
		collector.RecordAlertDropped()
		log.Warn("alert dropped", zap.String("task", task.Name), zap.Error(err))
	})
	pool.Start()
	defer pool.Stop()

	var alerter notify.Alerter = notify.NewLogAlerter(log)
	if cfg.Mail.Host != "" && cfg.Mail.AlertTo != "" {
		mailer, err := notify.NewSMTPMailer(cfg.Mail)
		if err != nil {
			log.Fatal("init mailer failed", zap.Error(err))
		}
		alerter = notify.NewMailAlerter(pool, mailer, cfg.Mail.AlertTo)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
			ExposeHeaders:    []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		gin.Recovery(),
		middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(20), 40)),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.App.Env != "prod" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if err := registry.InitModules(&registry.ModuleContext{
		DB:      db,
		Redis:   rdb,
		Cache:   cache.NewRedisCache(rdb, cfg.App.Env),
		Router:  r,
		Config:  cfg,
		Logger:  log,
		Alerter: alerter,
	}); err != nil {
		log.Fatal("init modules failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

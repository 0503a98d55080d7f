package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	catalogModel "topup_store/internal/domain/catalog/model"
	"topup_store/internal/domain/provision/strategy"
	"topup_store/internal/pkg/notify"
	"topup_store/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxParallelCalls = 4

// DispatchInput 一笔订单的充值参数
type DispatchInput struct {
	TransactionID string
	CostID        string // 可能是 & 连接的组合
	Game          string
	Region        string
	APIName       string
	UserID        string
	ZoneID        string
}

// SubResult 组合购买中单个面额的结果
type SubResult struct {
	CostID string          `json:"costId"`
	Result strategy.Result `json:"result"`
}

// Outcome 汇总结果：任意一个面额成功即视为成功，否则取第一个失败
type Outcome struct {
	Provider string          `json:"provider"`
	Result   strategy.Result `json:"result"`
	Subs     []SubResult     `json:"subs"`
}

// Async 供应商是否异步到账（等待 webhook）
func (o Outcome) Async() bool {
	return o.Provider == strategy.ProviderBangla
}

type Dispatcher interface {
	Dispatch(ctx context.Context, in DispatchInput) Outcome
	RegisterProvider(p strategy.Provider)
}

type dispatcher struct {
	providers map[string]strategy.Provider
	alerter   notify.Alerter
	metrics   *metrics.MetricsCollector
	log       *zap.Logger
}

func NewDispatcher(alerter notify.Alerter, log *zap.Logger) Dispatcher {
	return &dispatcher{
		providers: make(map[string]strategy.Provider),
		alerter:   alerter,
		metrics:   metrics.GetGlobalCollector(),
		log:       log,
	}
}

// RegisterProvider 注册供应商策略
func (d *dispatcher) RegisterProvider(p strategy.Provider) {
	d.providers[p.Name()] = p
}

func (d *dispatcher) Dispatch(ctx context.Context, in DispatchInput) Outcome {
	out := d.dispatch(ctx, in)
	if !out.Result.OK() {
		d.log.Error("provisioning failed",
			zap.String("tran_id", in.TransactionID),
			zap.String("provider", out.Provider),
			zap.Int("status", out.Result.Status),
			zap.String("error", out.Result.Error))
		d.alerter.Alert(
			fmt.Sprintf("Top-up failed: %s", in.TransactionID),
			fmt.Sprintf("Transaction: %s\nGame: %s\nRegion: %s\nPlayer: %s (%s)\nCost: %s\nProvider: %s\nStatus: %d\nError: %s\n",
				in.TransactionID, in.Game, in.Region, in.UserID, in.ZoneID, in.CostID,
				out.Provider, out.Result.Status, out.Result.Error),
		)
	}
	return out
}

func (d *dispatcher) dispatch(ctx context.Context, in DispatchInput) Outcome {
	route, err := strategy.Resolve(in.Game, in.Region, in.APIName)
	if err != nil {
		return Outcome{Result: strategy.Failure(http.StatusBadRequest, err.Error())}
	}

	provider, ok := d.providers[route.Provider]
	if !ok {
		return Outcome{
			Provider: route.Provider,
			Result:   strategy.Failure(http.StatusInternalServerError, fmt.Sprintf("provider %s is not configured", route.Provider)),
		}
	}

	costIDs := catalogModel.SplitCostID(in.CostID)
	if len(costIDs) == 0 {
		return Outcome{Provider: route.Provider, Result: strategy.Failure(http.StatusBadRequest, "empty cost id")}
	}

	// 每个面额一次调用，并发执行，结果按面额顺序保存
	subs := make([]SubResult, len(costIDs))
	var g errgroup.Group
	g.SetLimit(maxParallelCalls)
	for i, id := range costIDs {
		g.Go(func() error {
			start := time.Now()
			res := provider.Provision(ctx, strategy.Request{
				TransactionID: in.TransactionID,
				CostID:        id,
				ProductCode:   route.ProductCode,
				Game:          strings.ToLower(in.Game),
				Region:        strings.ToLower(in.Region),
				UserID:        in.UserID,
				ZoneID:        in.ZoneID,
			})
			d.metrics.RecordProvision(route.Provider, res.OK(), time.Since(start))
			subs[i] = SubResult{CostID: id, Result: res}
			return nil
		})
	}
	_ = g.Wait()

	return Outcome{Provider: route.Provider, Result: aggregate(subs), Subs: subs}
}

func aggregate(subs []SubResult) strategy.Result {
	for _, s := range subs {
		if s.Result.OK() {
			return s.Result
		}
	}
	return subs[0].Result
}

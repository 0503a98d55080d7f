package strategy

import (
	"context"
	"encoding/json"
	"net/http"
)

// 供应商名称
const (
	ProviderGhor     = "ghor"
	ProviderSmileOne = "smileone"
	ProviderBangla   = "bangla"
)

// Request 一次充值调用（组合购买时每个面额单独一次）
type Request struct {
	TransactionID string
	CostID        string // 单个面额 ID
	ProductCode   string // 供应商侧商品编码
	Game          string
	Region        string
	UserID        string
	ZoneID        string
}

// Result 各供应商返回统一成 {status, data|error}
type Result struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OK 供应商是否受理成功
func (r Result) OK() bool {
	return r.Status == http.StatusOK
}

// Failure 构造失败结果
func Failure(status int, msg string) Result {
	if status == http.StatusOK || status == 0 {
		status = http.StatusBadGateway
	}
	return Result{Status: status, Error: msg}
}

// Provider 充值供应商策略
type Provider interface {
	Name() string
	Provision(ctx context.Context, req Request) Result
}

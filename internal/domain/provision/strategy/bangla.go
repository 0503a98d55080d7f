package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"topup_store/internal/pkg/config"
)

// BanglaProvider Bangla API 只受理下单，到账结果通过 webhook 异步通知
type BanglaProvider struct {
	cfg    config.BanglaConfig
	client *http.Client
}

func NewBanglaProvider(cfg config.BanglaConfig) *BanglaProvider {
	return &BanglaProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *BanglaProvider) Name() string {
	return ProviderBangla
}

type banglaPurchaseRequest struct {
	PlayerID string `json:"playerid"`
	OrderID  string `json:"orderid"`
	Package  string `json:"package"`
}

type banglaPurchaseResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *BanglaProvider) Provision(ctx context.Context, req Request) Result {
	body, err := json.Marshal(banglaPurchaseRequest{
		PlayerID: req.UserID,
		OrderID:  req.TransactionID,
		Package:  req.CostID,
	})
	if err != nil {
		return Failure(http.StatusInternalServerError, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/purchase", bytes.NewReader(body))
	if err != nil {
		return Failure(http.StatusInternalServerError, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Failure(http.StatusBadGateway, fmt.Sprintf("bangla request failed: %v", err))
	}
	defer resp.Body.Close()

	var out banglaPurchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Failure(resp.StatusCode, fmt.Sprintf("bangla response decode failed: %v", err))
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("bangla returned http %d", resp.StatusCode)
		}
		return Failure(resp.StatusCode, msg)
	}

	return Result{Status: http.StatusOK, Data: out.Data}
}

var _ Provider = (*BanglaProvider)(nil)

package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"topup_store/internal/pkg/config"
)

// GhorProvider TopUp Ghor，只接受白名单 IP，请求经固定出口代理
type GhorProvider struct {
	cfg    config.GhorConfig
	client *http.Client
}

// NewGhorProvider 创建 Ghor 供应商，配置了代理时所有请求走代理
func NewGhorProvider(cfg config.GhorConfig) (*GhorProvider, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ghor proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &GhorProvider{
		cfg:    cfg,
		client: &http.Client{Transport: transport},
	}, nil
}

func (p *GhorProvider) Name() string {
	return ProviderGhor
}

type ghorOrderRequest struct {
	ProductCode  string `json:"product_code"`
	Denomination string `json:"denomination"`
	PlayerID     string `json:"player_id"`
	ZoneID       string `json:"zone_id,omitempty"`
	Reference    string `json:"reference"`
}

type ghorOrderResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *GhorProvider) Provision(ctx context.Context, req Request) Result {
	body, err := json.Marshal(ghorOrderRequest{
		ProductCode:  req.ProductCode,
		Denomination: req.CostID,
		PlayerID:     req.UserID,
		ZoneID:       req.ZoneID,
		Reference:    req.TransactionID + "-" + req.CostID,
	})
	if err != nil {
		return Failure(http.StatusInternalServerError, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Failure(http.StatusInternalServerError, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Failure(http.StatusBadGateway, fmt.Sprintf("ghor request failed: %v", err))
	}
	defer resp.Body.Close()

	var out ghorOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Failure(resp.StatusCode, fmt.Sprintf("ghor response decode failed: %v", err))
	}
	if resp.StatusCode != http.StatusOK || out.Status != "success" {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("ghor returned http %d", resp.StatusCode)
		}
		return Failure(resp.StatusCode, msg)
	}

	return Result{Status: http.StatusOK, Data: out.Data}
}

var _ Provider = (*GhorProvider)(nil)

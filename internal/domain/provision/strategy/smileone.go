package strategy

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"topup_store/internal/pkg/config"
)

// smileOneRegionPath SmileOne 按区服使用不同的站点路径
var smileOneRegionPath = map[string]string{
	"brazil":      "",
	"philippines": "/ph",
}

// SmileOneProvider SmileOne 直连接口，表单参数 md5 签名
type SmileOneProvider struct {
	cfg    config.SmileOneConfig
	client *http.Client
	now    func() time.Time
}

func NewSmileOneProvider(cfg config.SmileOneConfig) *SmileOneProvider {
	return &SmileOneProvider{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}
}

func (p *SmileOneProvider) Name() string {
	return ProviderSmileOne
}

// sign md5(md5(按 key 排序的 k=v& 拼接 + key))
func (p *SmileOneProvider) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params.Get(k))
		b.WriteString("&")
	}
	b.WriteString(p.cfg.Key)

	first := md5.Sum([]byte(b.String()))
	second := md5.Sum([]byte(hex.EncodeToString(first[:])))
	return hex.EncodeToString(second[:])
}

type smileOneResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	OrderID  string `json:"order_id,omitempty"`
	Username string `json:"username,omitempty"`
}

func (p *SmileOneProvider) post(ctx context.Context, region, api string, params url.Values) (*smileOneResponse, int, error) {
	prefix, ok := smileOneRegionPath[strings.ToLower(region)]
	if !ok {
		return nil, http.StatusBadRequest, fmt.Errorf("smileone does not serve region %q", region)
	}

	params.Set("uid", p.cfg.UID)
	params.Set("email", p.cfg.Email)
	params.Set("product", "mobilelegends")
	params.Set("time", strconv.FormatInt(p.now().Unix(), 10))
	params.Set("sign", p.sign(params))

	endpoint := p.cfg.BaseURL + prefix + "/smilecoin/api/" + api
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, http.StatusBadGateway, fmt.Errorf("smileone request failed: %w", err)
	}
	defer resp.Body.Close()

	var out smileOneResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("smileone response decode failed: %w", err)
	}
	return &out, resp.StatusCode, nil
}

func (p *SmileOneProvider) Provision(ctx context.Context, req Request) Result {
	params := url.Values{}
	params.Set("userid", req.UserID)
	params.Set("zoneid", req.ZoneID)
	params.Set("productid", req.CostID)

	out, status, err := p.post(ctx, req.Region, "createorder", params)
	if err != nil {
		return Failure(status, err.Error())
	}
	if out.Status != http.StatusOK {
		return Failure(status, out.Message)
	}

	data, _ := json.Marshal(map[string]string{"order_id": out.OrderID})
	return Result{Status: http.StatusOK, Data: data}
}

// LookupRole 查询玩家角色名，用于下单前校验账号
func (p *SmileOneProvider) LookupRole(ctx context.Context, region, userID, zoneID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, playerLookupTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("userid", userID)
	params.Set("zoneid", zoneID)

	out, _, err := p.post(ctx, region, "getrole", params)
	if err != nil {
		return "", err
	}
	if out.Status != http.StatusOK {
		return "", fmt.Errorf("smileone role lookup: %s", out.Message)
	}
	return out.Username, nil
}

var _ Provider = (*SmileOneProvider)(nil)

package payway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"topup_store/internal/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	checkTransactionPath = "/api/payment-gateway/v1/payments/check-transaction-2"
	purchasePath         = "/api/payment-gateway/v1/payments/purchase"

	reqTimeLayout = "20060102150405"

	// statusTransactionNotFound 网关返回码 6 表示交易不存在
	statusTransactionNotFound = 6
	paymentStatusApproved     = "APPROVED"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionInvalid  = errors.New("transaction is not valid")
	ErrPaymentNotApproved  = errors.New("payment is not approved")
	ErrApprovalMismatch    = errors.New("approval code does not match")
)

// Gateway 支付网关，下单生成支付参数，回调时核验交易
type Gateway interface {
	PurchaseParams(tranID string, amount decimal.Decimal) PurchaseParams
	Verify(ctx context.Context, tranID, apv string) error
}

// StatusCode 网关返回码，可能是 "00" 这样的字符串也可能是数字
type StatusCode int

func (s *StatusCode) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid status code %q: %w", raw, err)
	}
	*s = StatusCode(n)
	return nil
}

// CheckResponse 交易查询结果
type CheckResponse struct {
	Data struct {
		PaymentStatusCode int             `json:"payment_status_code"`
		PaymentStatus     string          `json:"payment_status"`
		TotalAmount       decimal.Decimal `json:"total_amount"`
		PaymentAmount     decimal.Decimal `json:"payment_amount"`
		PaymentCurrency   string          `json:"payment_currency"`
		APV               string          `json:"apv"`
		TransactionDate   string          `json:"transaction_date"`
	} `json:"data"`
	Status struct {
		Code    StatusCode `json:"code"`
		Message string     `json:"message"`
		TranID  string     `json:"tran_id"`
	} `json:"status"`
}

// PurchaseParams 前端提交到网关收银台的表单字段
type PurchaseParams struct {
	Action      string `json:"action"`
	ReqTime     string `json:"req_time"`
	MerchantID  string `json:"merchant_id"`
	TranID      string `json:"tran_id"`
	Amount      string `json:"amount"`
	ReturnURL   string `json:"return_url"`
	ContinueURL string `json:"continue_success_url"`
	Hash        string `json:"hash"`
}

// Client ABA PayWay 客户端
type Client struct {
	cfg        config.PayWayConfig
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
}

// NewClient 创建 PayWay 客户端
func NewClient(cfg config.PayWayConfig, log *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log,
		now:        time.Now,
	}
}

// sign base64(HMAC-SHA512(api_key, 各字段顺序拼接))
func (c *Client) sign(fields ...string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.APIKey))
	for _, f := range fields {
		mac.Write([]byte(f))
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) reqTime() string {
	return c.now().UTC().Format(reqTimeLayout)
}

// CheckTransaction 查询交易状态，网络或解析失败统一视为交易不存在，不重试
func (c *Client) CheckTransaction(ctx context.Context, tranID string) (*CheckResponse, error) {
	reqTime := c.reqTime()
	body, err := json.Marshal(map[string]string{
		"req_time":    reqTime,
		"merchant_id": c.cfg.MerchantID,
		"tran_id":     tranID,
		"hash":        c.sign(reqTime, c.cfg.MerchantID, tranID),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+checkTransactionPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("payway check transaction failed", zap.String("tran_id", tranID), zap.Error(err))
		return nil, ErrTransactionNotFound
	}
	defer resp.Body.Close()

	var out CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn("payway check transaction decode failed",
			zap.String("tran_id", tranID), zap.Int("http_status", resp.StatusCode), zap.Error(err))
		return nil, ErrTransactionNotFound
	}
	return &out, nil
}

// Verify 核验交易：返回码不为 6，支付状态为 APPROVED，且授权码一致
func (c *Client) Verify(ctx context.Context, tranID, apv string) error {
	res, err := c.CheckTransaction(ctx, tranID)
	if err != nil {
		return err
	}
	if int(res.Status.Code) == statusTransactionNotFound {
		return ErrTransactionInvalid
	}
	if res.Data.PaymentStatus != paymentStatusApproved {
		return ErrPaymentNotApproved
	}
	if apv == "" || res.Data.APV != apv {
		return ErrApprovalMismatch
	}
	return nil
}

// PurchaseParams 生成带签名的收银台参数
func (c *Client) PurchaseParams(tranID string, amount decimal.Decimal) PurchaseParams {
	reqTime := c.reqTime()
	amt := amount.StringFixed(2)
	return PurchaseParams{
		Action:      c.cfg.BaseURL + purchasePath,
		ReqTime:     reqTime,
		MerchantID:  c.cfg.MerchantID,
		TranID:      tranID,
		Amount:      amt,
		ReturnURL:   c.cfg.ReturnURL,
		ContinueURL: c.cfg.ContinueURL,
		Hash:        c.sign(reqTime, c.cfg.MerchantID, tranID, amt, c.cfg.ReturnURL, c.cfg.ContinueURL),
	}
}

var _ Gateway = (*Client)(nil)

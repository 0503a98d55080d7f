package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"topup_store/internal/domain/order/model"
	"topup_store/internal/domain/order/service"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, in service.CheckoutInput) (*service.CheckoutResult, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) HandlePaymentCallback(ctx context.Context, orderID string, in service.CallbackInput) (string, *model.Order, error) {
	args := m.Called(orderID, in)
	var order *model.Order
	if o := args.Get(1); o != nil {
		order = o.(*model.Order)
	}
	return args.String(0), order, args.Error(2)
}

func (m *MockOrderService) HandleBanglaWebhook(ctx context.Context, in service.WebhookInput) (string, error) {
	args := m.Called(in)
	return args.String(0), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, status string, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func setupRouter(svc service.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOrderHandler(svc, zap.NewNop())
	r.POST("/api/order", h.Checkout)
	r.POST("/payment/pay", h.PaymentCallback)
	r.POST("/api/webhook/bangla", h.BanglaWebhook)
	return r
}

func post(r http.Handler, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout(t *testing.T) {
	t.Run("Game forwarded to service", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Checkout", mock.MatchedBy(func(in service.CheckoutInput) bool {
			return in.Game == "freefire" && in.Region == "bangladesh"
		})).Return(nil, response.BadRequest(response.ErrInvalidParam, "Game does not match product"))

		w := post(setupRouter(svc), "/api/order",
			`{"productId":"p-1","costId":"86","userId":"12345","game":"freefire","region":"bangladesh"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Game does not match product")
		svc.AssertExpectations(t)
	})
}

func TestPaymentCallback(t *testing.T) {
	t.Run("String status code accepted", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandlePaymentCallback", "o-1", service.CallbackInput{Status: 0, TranID: "TX1", APV: "1"}).
			Return(service.MsgAlreadyPlaced, &model.Order{Status: model.OrderStatusSuccess}, nil)

		w := post(setupRouter(svc), "/payment/pay?orderId=o-1", `{"status":"00","tran_id":"TX1","apv":"1"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), service.MsgAlreadyPlaced)
	})

	t.Run("Missing order id", func(t *testing.T) {
		w := post(setupRouter(new(MockOrderService)), "/payment/pay", `{"status":0,"tran_id":"TX1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Vendor failure surfaces 500", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandlePaymentCallback", "o-1", mock.Anything).
			Return("", nil, response.NewError(http.StatusInternalServerError, response.ErrProvisionFailed, "insufficient balance"))

		w := post(setupRouter(svc), "/payment/pay?orderId=o-1", `{"status":0,"tran_id":"TX1","apv":"1"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient balance")
	})
}

func TestBanglaWebhookAlwaysOK(t *testing.T) {
	t.Run("Rejected payload", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandleBanglaWebhook", mock.Anything).Return("Player mismatch", errors.New("uid mismatch"))

		w := post(setupRouter(svc), "/api/webhook/bangla", `{"status":"success","uid":"x","trx":"t","orderid":"o"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		w := post(setupRouter(new(MockOrderService)), "/api/webhook/bangla", `not json`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

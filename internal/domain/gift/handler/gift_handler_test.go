package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"topup_store/internal/domain/gift/model"
	"topup_store/internal/domain/gift/service"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGiftService struct {
	mock.Mock
}

func (m *MockGiftService) Progress(ctx context.Context, userID, productID string) (*service.Progress, error) {
	args := m.Called(userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}

func (m *MockGiftService) Claim(ctx context.Context, in service.ClaimInput) (*model.GiftTransaction, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GiftTransaction), args.Error(1)
}

func (m *MockGiftService) CreateGift(ctx context.Context, in service.CreateGiftInput) (*model.Gift, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Gift), args.Error(1)
}

func setupRouter(svc service.GiftService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewGiftHandler(svc)
	r.GET("/api/gift/progress", h.GetProgress)
	r.POST("/api/gift/claim", h.Claim)
	r.POST("/admin/gifts", h.CreateGift)
	return r
}

func TestGiftHandler(t *testing.T) {
	t.Run("Progress", func(t *testing.T) {
		svc := new(MockGiftService)
		svc.On("Progress", "u1", "p1").Return(&service.Progress{Month: "2026-10", Spend: decimal.RequireFromString("12.5")}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gift/progress?userId=u1&productId=p1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"month":"2026-10"`)
	})

	t.Run("Progress missing params", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockGiftService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gift/progress?userId=u1", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Claim already claimed", func(t *testing.T) {
		svc := new(MockGiftService)
		svc.On("Claim", service.ClaimInput{UserID: "u1", ZoneID: "z1", ProductID: "p1", Level: 1}).
			Return(nil, response.BadRequest(response.ErrGiftClaimed, "Gift already claimed this month"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/gift/claim", strings.NewReader(`{"userId":"u1","zoneId":"z1","productId":"p1","level":1}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already claimed")
	})

	t.Run("Claim success", func(t *testing.T) {
		svc := new(MockGiftService)
		svc.On("Claim", mock.Anything).Return(&model.GiftTransaction{Level: 1, Month: "2026-10"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/gift/claim", strings.NewReader(`{"userId":"u1","productId":"p1","level":1}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"Gift claimed"`)
	})

	t.Run("Create defaults to active", func(t *testing.T) {
		svc := new(MockGiftService)
		svc.On("CreateGift", mock.MatchedBy(func(in service.CreateGiftInput) bool {
			return in.IsActive && in.Threshold.Equal(decimal.NewFromInt(20))
		})).Return(&model.Gift{Level: 2}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/gifts", strings.NewReader(`{"productId":"p1","level":2,"threshold":"20","reward":"Skin"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

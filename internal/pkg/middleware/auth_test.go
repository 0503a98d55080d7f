package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"topup_store/internal/pkg/config"
	"topup_store/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret-42"

	r := gin.New()
	r.GET("/admin/ping", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r
}

func doRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	r := setupAuthRouter()

	t.Run("Missing header", func(t *testing.T) {
		w := doRequest(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		w := doRequest(r, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Non-admin token", func(t *testing.T) {
		token, _, err := utils.GenerateToken("u-1", utils.RoleUser, time.Hour)
		require.NoError(t, err)

		w := doRequest(r, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin token", func(t *testing.T) {
		token, _, err := utils.GenerateToken("admin-1", utils.RoleAdmin, time.Hour)
		require.NoError(t, err)

		w := doRequest(r, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin-1", w.Body.String())
	})

	t.Run("Expired token", func(t *testing.T) {
		token, _, err := utils.GenerateToken("admin-1", utils.RoleAdmin, -time.Minute)
		require.NoError(t, err)

		w := doRequest(r, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimitMiddleware(NewIPRateLimiter(rate.Limit(1), 2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

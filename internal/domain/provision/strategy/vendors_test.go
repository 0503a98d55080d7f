package strategy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
	"topup_store/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReq = Request{
	TransactionID: "20250101000000abcdef",
	CostID:        "86",
	ProductCode:   "1101",
	Game:          "mobilelegends",
	Region:        "brazil",
	UserID:        "12345678",
	ZoneID:        "2001",
}

func TestGhorProvider(t *testing.T) {
	t.Run("Success through proxy", func(t *testing.T) {
		// 代理收到的是绝对 URI，目标主机不可达也没关系
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "ghor.invalid", r.URL.Host)
			assert.Equal(t, "/api/v1/orders", r.URL.Path)
			assert.Equal(t, "k", r.Header.Get("X-API-Key"))

			var body ghorOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "1101", body.ProductCode)
			assert.Equal(t, "86", body.Denomination)
			assert.Equal(t, "12345678", body.PlayerID)

			w.Write([]byte(`{"status":"success","data":{"order":"G1"}}`))
		}))
		defer proxy.Close()

		p, err := NewGhorProvider(config.GhorConfig{BaseURL: "http://ghor.invalid", APIKey: "k", ProxyURL: proxy.URL})
		require.NoError(t, err)

		res := p.Provision(context.Background(), testReq)
		assert.True(t, res.OK())
		assert.JSONEq(t, `{"order":"G1"}`, string(res.Data))
	})

	t.Run("Vendor error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"status":"error","message":"invalid player"}`))
		}))
		defer srv.Close()

		p, err := NewGhorProvider(config.GhorConfig{BaseURL: srv.URL})
		require.NoError(t, err)

		res := p.Provision(context.Background(), testReq)
		assert.False(t, res.OK())
		assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
		assert.Equal(t, "invalid player", res.Error)
	})

	t.Run("Bad proxy url", func(t *testing.T) {
		_, err := NewGhorProvider(config.GhorConfig{ProxyURL: "://bad"})
		assert.Error(t, err)
	})
}

func TestSmileOneProvider(t *testing.T) {
	cfg := config.SmileOneConfig{UID: "u1", Email: "ops@example.com", Key: "smilekey"}

	t.Run("Signed create order", func(t *testing.T) {
		var p *SmileOneProvider
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/smilecoin/api/createorder", r.URL.Path)
			require.NoError(t, r.ParseForm())

			form := url.Values{}
			for k, v := range r.PostForm {
				if k != "sign" {
					form[k] = v
				}
			}
			assert.Equal(t, p.sign(form), r.PostForm.Get("sign"))
			assert.Equal(t, "86", r.PostForm.Get("productid"))
			assert.Equal(t, "1700000000", r.PostForm.Get("time"))

			w.Write([]byte(`{"status":200,"message":"success","order_id":"S1"}`))
		}))
		defer srv.Close()

		cfg := cfg
		cfg.BaseURL = srv.URL
		p = NewSmileOneProvider(cfg)
		p.now = func() time.Time { return time.Unix(1700000000, 0) }

		res := p.Provision(context.Background(), testReq)
		assert.True(t, res.OK())
		assert.JSONEq(t, `{"order_id":"S1"}`, string(res.Data))
	})

	t.Run("Philippines uses regional path", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ph/smilecoin/api/getrole", r.URL.Path)
			w.Write([]byte(`{"status":200,"username":"Hero"}`))
		}))
		defer srv.Close()

		cfg := cfg
		cfg.BaseURL = srv.URL
		name, err := NewSmileOneProvider(cfg).LookupRole(context.Background(), "philippines", "1", "2")
		require.NoError(t, err)
		assert.Equal(t, "Hero", name)
	})

	t.Run("Rejected order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":201,"message":"insufficient balance"}`))
		}))
		defer srv.Close()

		cfg := cfg
		cfg.BaseURL = srv.URL
		res := NewSmileOneProvider(cfg).Provision(context.Background(), testReq)
		assert.False(t, res.OK())
		assert.Equal(t, "insufficient balance", res.Error)
	})

	t.Run("Unsupported region", func(t *testing.T) {
		req := testReq
		req.Region = "indonesia"
		res := NewSmileOneProvider(cfg).Provision(context.Background(), req)
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})
}

func TestBanglaProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body banglaPurchaseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, banglaPurchaseRequest{PlayerID: "12345678", OrderID: testReq.TransactionID, Package: "86"}, body)
		w.Write([]byte(`{"success":true,"data":{"queued":true}}`))
	}))
	defer srv.Close()

	res := NewBanglaProvider(config.BanglaConfig{BaseURL: srv.URL}).Provision(context.Background(), testReq)
	assert.True(t, res.OK())
}

func TestUniPinValidator(t *testing.T) {
	t.Run("Valid player", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "p1", r.Header.Get("partnerid"))
			assert.NotEmpty(t, r.Header.Get("auth"))

			var body struct {
				GameCode string            `json:"game_code"`
				Fields   map[string]string `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pubgm", body.GameCode)
			w.Write([]byte(`{"status":1,"username":"Sniper"}`))
		}))
		defer srv.Close()

		name, err := NewUniPinValidator(config.UniPinConfig{BaseURL: srv.URL, PartnerID: "p1", SecretKey: "s"}).
			Validate(context.Background(), "pubg", "5555", "")
		require.NoError(t, err)
		assert.Equal(t, "Sniper", name)
	})

	t.Run("Unknown player", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":0,"error":{"message":"invalid user id"}}`))
		}))
		defer srv.Close()

		_, err := NewUniPinValidator(config.UniPinConfig{BaseURL: srv.URL}).
			Validate(context.Background(), "pubg", "0", "")
		assert.EqualError(t, err, "unipin: invalid user id")
	})
}

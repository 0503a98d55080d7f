package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"topup_store/internal/domain/provision/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider 按面额返回预设结果并记录调用
type fakeProvider struct {
	name    string
	results map[string]strategy.Result

	mu    sync.Mutex
	calls []strategy.Request
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Provision(ctx context.Context, req strategy.Request) strategy.Result {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if r, ok := f.results[req.CostID]; ok {
		return r
	}
	return strategy.Result{Status: http.StatusOK}
}

type recordingAlerter struct {
	mu       sync.Mutex
	subjects []string
}

func (a *recordingAlerter) Alert(subject, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subjects = append(a.subjects, subject)
}

func newTestDispatcher(providers ...strategy.Provider) (Dispatcher, *recordingAlerter) {
	alerter := &recordingAlerter{}
	d := NewDispatcher(alerter, zap.NewNop())
	for _, p := range providers {
		d.RegisterProvider(p)
	}
	return d, alerter
}

func TestDispatch_Routing(t *testing.T) {
	ghor := &fakeProvider{name: strategy.ProviderGhor}
	smile := &fakeProvider{name: strategy.ProviderSmileOne}
	d, alerter := newTestDispatcher(ghor, smile)

	out := d.Dispatch(context.Background(), DispatchInput{
		TransactionID: "TX1",
		CostID:        "86",
		Game:          "mobilelegends",
		Region:        "brazil",
		APIName:       "Smile One",
		UserID:        "1",
		ZoneID:        "2",
	})

	assert.True(t, out.Result.OK())
	assert.Equal(t, strategy.ProviderSmileOne, out.Provider)
	assert.Len(t, smile.calls, 1)
	assert.Empty(t, ghor.calls)
	assert.Empty(t, alerter.subjects)
}

func TestDispatch_Bundle(t *testing.T) {
	in := DispatchInput{TransactionID: "TX2", CostID: "a&b&c", Game: "pubg", UserID: "9"}

	t.Run("One call per part", func(t *testing.T) {
		ghor := &fakeProvider{name: strategy.ProviderGhor}
		d, _ := newTestDispatcher(ghor)

		out := d.Dispatch(context.Background(), in)
		require.Len(t, out.Subs, 3)
		assert.Len(t, ghor.calls, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{out.Subs[0].CostID, out.Subs[1].CostID, out.Subs[2].CostID})
		for _, c := range ghor.calls {
			assert.Equal(t, "1301", c.ProductCode)
		}
	})

	t.Run("Any success wins", func(t *testing.T) {
		ghor := &fakeProvider{name: strategy.ProviderGhor, results: map[string]strategy.Result{
			"a": strategy.Failure(http.StatusBadGateway, "a down"),
			"c": strategy.Failure(http.StatusBadGateway, "c down"),
		}}
		d, alerter := newTestDispatcher(ghor)

		out := d.Dispatch(context.Background(), in)
		assert.True(t, out.Result.OK())
		assert.False(t, out.Subs[0].Result.OK())
		assert.Empty(t, alerter.subjects)
	})

	t.Run("All failed returns first failure and alerts", func(t *testing.T) {
		ghor := &fakeProvider{name: strategy.ProviderGhor, results: map[string]strategy.Result{
			"a": strategy.Failure(http.StatusBadGateway, "a down"),
			"b": strategy.Failure(http.StatusUnprocessableEntity, "b rejected"),
			"c": strategy.Failure(http.StatusBadGateway, "c down"),
		}}
		d, alerter := newTestDispatcher(ghor)

		out := d.Dispatch(context.Background(), in)
		assert.False(t, out.Result.OK())
		assert.Equal(t, "a down", out.Result.Error)
		assert.Equal(t, []string{"Top-up failed: TX2"}, alerter.subjects)
	})
}

func TestDispatch_Unroutable(t *testing.T) {
	d, alerter := newTestDispatcher()

	out := d.Dispatch(context.Background(), DispatchInput{TransactionID: "TX3", CostID: "1", Game: "valorant"})
	assert.Equal(t, http.StatusBadRequest, out.Result.Status)
	assert.Len(t, alerter.subjects, 1)

	out = d.Dispatch(context.Background(), DispatchInput{TransactionID: "TX4", CostID: "1", Game: "freefire"})
	assert.Equal(t, strategy.ProviderBangla, out.Provider)
	assert.Equal(t, http.StatusInternalServerError, out.Result.Status)
}

func TestOutcomeAsync(t *testing.T) {
	assert.True(t, Outcome{Provider: strategy.ProviderBangla}.Async())
	assert.False(t, Outcome{Provider: strategy.ProviderGhor}.Async())
}

package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/shared/ratelimiter"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{APIKey: "test-key", BaseURL: server.URL, Timeout: time.Second}
	return NewProvider(cfg, server.Client(), ratelimiter.NewSlidingWindow(0, 0), nil)
}

func TestWithExchange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "AAPL", want: "AAPL.US"},
		{in: "aapl", want: "AAPL.US"},
		{in: "2222.SR", want: "2222.SR"},
		{in: "2222", want: "2222.SR"},
		{in: "4280.SAU", want: "4280.SR"},
		{in: "VOD.L", want: "VOD.LSE"},
		{in: "BARC.LON", want: "BARC.LSE"},
		{in: "SAP.DE", want: "SAP.XETRA"},
		{in: "7203.T", want: "7203.TSE"},
		{in: "BRK.B", want: "BRK-B.US"},
		{in: "GSPC.INDX", want: "GSPC.INDX"},
		{in: "^GSPC", want: "GSPC.INDX"},
		{in: "BTC-USD", want: "BTC-USD.CC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withExchange(tt.in), tt.in)
	}
}

func TestProvider_Quote_ResolverSpellings(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/VOD.LSE", r.URL.Path)
		assert.Equal(t, "BRK-B.US,2222.SR", r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(`[
			{"code": "VOD.LSE", "timestamp": 1736951400, "close": 70.1, "change": 0.2, "change_p": 0.29, "volume": 10},
			{"code": "BRK-B.US", "timestamp": 1736951400, "close": 460.0, "change": 1, "change_p": 0.2, "volume": 20},
			{"code": "2222.SR", "timestamp": 1736951400, "close": 27.9, "change": -0.1, "change_p": -0.36, "volume": 30}
		]`))
	})

	quotes, err := p.Quote(context.Background(), []string{"VOD.L", "BRK.B", "2222"})
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "VOD.L", quotes[0].Symbol)
	assert.Equal(t, "BRK.B", quotes[1].Symbol)
	assert.Equal(t, "2222", quotes[2].Symbol)
}

func TestProvider_Quote_Batch(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/AAPL.US", r.URL.Path)
		assert.Equal(t, "MSFT.US,2222.SR", r.URL.Query().Get("s"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		_, _ = w.Write([]byte(`[
			{"code": "AAPL.US", "timestamp": 1736951400, "close": 150.5, "change": 1.5, "change_p": 1.01, "volume": 1000},
			{"code": "MSFT.US", "timestamp": "NA", "close": "NA", "change": "NA", "change_p": "NA", "volume": "NA"},
			{"code": "2222.SR", "timestamp": 1736951400, "close": 27.9, "change": -0.1, "change_p": -0.36, "volume": 5000}
		]`))
	})

	quotes, err := p.Quote(context.Background(), []string{"AAPL", "MSFT", "2222.SR"})
	require.NoError(t, err)
	require.Len(t, quotes, 2, "NA rows are skipped")

	assert.Equal(t, "AAPL", quotes[0].Symbol, "exchange suffix is stripped back to the requested spelling")
	assert.Equal(t, 150.5, quotes[0].Price)
	assert.Equal(t, int64(1000), quotes[0].Volume)
	assert.Equal(t, "2222.SR", quotes[1].Symbol)
	assert.Equal(t, -0.36, quotes[1].ChangePercent)
}

func TestProvider_Quote_SingleObject(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(`{"code": "TSLA.US", "timestamp": 1736951400, "close": "250.10", "change": "2", "change_p": "0.8"}`))
	})

	quotes, err := p.Quote(context.Background(), []string{"TSLA"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "TSLA", quotes[0].Symbol)
	assert.Equal(t, 250.10, quotes[0].Price)
}

func TestProvider_Quote_Unavailable(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})

	quotes, err := p.Quote(context.Background(), []string{"TSLA"})
	assert.Empty(t, quotes)
	assert.True(t, domain.IsProviderUnavailable(err))
}

func TestProvider_Search(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/aramco", r.URL.Path)
		_, _ = w.Write([]byte(`[{"Code": "2222", "Exchange": "SR", "Name": "Saudi Arabian Oil Co", "Type": "Common Stock", "Currency": "SAR"}]`))
	})

	got := p.Search(context.Background(), "aramco")
	require.Len(t, got, 1)
	assert.Equal(t, "2222", got[0].Symbol)
	assert.Equal(t, "SAR", got[0].Currency)
}

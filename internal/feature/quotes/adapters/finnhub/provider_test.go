package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/shared/ratelimiter"
)

func newTestProvider(t *testing.T, limiter ratelimiter.Limiter, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if limiter == nil {
		limiter = ratelimiter.NewSlidingWindow(0, 0)
	}
	cfg := Config{APIKey: "test-key", BaseURL: server.URL, Timeout: time.Second}
	return NewProvider(cfg, server.Client(), limiter, nil)
}

func TestProvider_Quote_FanOut(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			_, _ = w.Write([]byte(`{"c": 150.5, "d": 1.5, "dp": 1.01, "h": 151, "l": 149, "o": 149.5, "pc": 149, "t": 1736951400}`))
		case "MSFT":
			_, _ = w.Write([]byte(`{"c": 410, "d": -2, "dp": -0.49, "h": 0, "l": 0, "o": 0, "pc": 412, "t": 1736951400}`))
		default:
			// Finnhub answers unknown symbols with zeros
			_, _ = w.Write([]byte(`{"c": 0, "d": null, "dp": null, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0}`))
		}
	})

	quotes, err := p.Quote(context.Background(), []string{"AAPL", "MSFT", "ZZZZ"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, 150.5, quotes[0].Price)
	assert.Equal(t, 1.01, quotes[0].ChangePercent)
	assert.Equal(t, time.Unix(1736951400, 0).UTC(), quotes[0].Timestamp)
	assert.Equal(t, "MSFT", quotes[1].Symbol)
	assert.Equal(t, -2.0, quotes[1].Change)
}

func TestProvider_Quote_PartialFailure(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"c": 10, "d": 0, "dp": 0, "t": 1}`))
	})

	quotes, err := p.Quote(context.Background(), []string{"GOOD", "BAD"})
	require.Error(t, err)
	assert.True(t, domain.IsProviderUnavailable(err))
	require.Len(t, quotes, 1)
	assert.Equal(t, "GOOD", quotes[0].Symbol)
}

func TestProvider_Quote_NeverExceedsLimiter(t *testing.T) {
	t.Parallel()

	var calls int32
	p := newTestProvider(t, ratelimiter.NewSlidingWindow(3, time.Minute), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"c": 10, "t": 1}`))
	})

	quotes, err := p.Quote(context.Background(), []string{"A", "B", "C", "D", "E", "F"})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Len(t, quotes, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestProvider_Quote_MissingKey(t *testing.T) {
	t.Parallel()

	p := NewProvider(Config{}, &http.Client{}, ratelimiter.NewSlidingWindow(0, 0), nil)
	_, err := p.Quote(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestProvider_Search(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "tesla", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"count": 1, "result": [{"description": "TESLA INC", "displaySymbol": "TSLA", "symbol": "TSLA", "type": "Common Stock"}]}`))
	})

	got := p.Search(context.Background(), "tesla")
	require.Len(t, got, 1)
	assert.Equal(t, "TSLA", got[0].Symbol)
	assert.Equal(t, "TESLA INC", got[0].Name)
}

func TestProvider_Search_FailureIsEmpty(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	got := p.Search(context.Background(), "tesla")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProvider_MarketSnapshot_UsesFinnhubSpelling(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "^GSPC" {
			_, _ = w.Write([]byte(`{"c": 5000, "d": 10, "dp": 0.2, "t": 1736951400}`))
			return
		}
		_, _ = w.Write([]byte(`{"c": 0, "t": 0}`))
	})

	snap := p.MarketSnapshot(context.Background())
	assert.False(t, snap.Fallback)
	require.Len(t, snap.Quotes, 1)
	assert.Equal(t, "SPX", snap.Quotes[0].Symbol)
	assert.Equal(t, "USD", snap.Quotes[0].Currency)
	assert.Equal(t, entity.ProviderFinnhub, snap.Provider)
}

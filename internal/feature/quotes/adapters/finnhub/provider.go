package finnhub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"market_backend/internal/feature/quotes/adapters"
	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/quotes/usecase"
	"market_backend/internal/shared/ratelimiter"
)

// quoteResponse は /quote のレスポンスです。
// 未知の銘柄でも 200 が返り、c と t がともに 0 になります。
type quoteResponse struct {
	Current       adapters.Number `json:"c"`
	Change        adapters.Number `json:"d"`
	PercentChange adapters.Number `json:"dp"`
	High          adapters.Number `json:"h"`
	Low           adapters.Number `json:"l"`
	Open          adapters.Number `json:"o"`
	PrevClose     adapters.Number `json:"pc"`
	Timestamp     int64           `json:"t"`
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

// Provider は Finnhub API から相場を取得する QuoteProvider 実装です。
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
	mapping entity.SymbolMapping
}

var _ usecase.QuoteProvider = (*Provider)(nil)

// NewProvider は Provider の新しいインスタンスを生成します。
func NewProvider(cfg Config, client *http.Client, limiter ratelimiter.Limiter, mapping entity.SymbolMapping) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if mapping == nil {
		mapping = entity.DefaultSymbolMapping()
	}
	return &Provider{cfg: cfg, client: client, limiter: limiter, mapping: mapping}
}

func (p *Provider) Name() string      { return entity.ProviderFinnhub }
func (p *Provider) MaxBatchSize() int { return p.cfg.BatchSize }

// Ready は API キーが設定されているかを確認します。
func (p *Provider) Ready() error {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return fmt.Errorf("%s: %w", p.Name(), domain.ErrMissingCredential)
	}
	return nil
}

// Quote は銘柄ごとに /quote を並行して呼び出し、取得できた相場を返します。
// 個々の失敗は結果から除外され、まとめてエラーとして返されます。
func (p *Provider) Quote(ctx context.Context, symbols []string) ([]entity.Quote, error) {
	if err := p.Ready(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	var (
		mu   sync.Mutex
		out  = make([]entity.Quote, 0, len(symbols))
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, s := range symbols {
		s := s
		g.Go(func() error {
			q, ok, err := p.quoteOne(gctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			if ok {
				out = append(out, q)
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, errors.Join(errs...)
}

func (p *Provider) quoteOne(ctx context.Context, symbol string) (entity.Quote, bool, error) {
	if !p.limiter.TryAcquire() {
		slog.Warn("rate limit reached, skipping quote call", "provider", p.Name(), "symbol", symbol)
		return entity.Quote{}, false, fmt.Errorf("%s quote %s: %w", p.Name(), symbol, domain.ErrRateLimited)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", p.cfg.APIKey)
	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(p.cfg.BaseURL, "/"), q.Encode())

	var body quoteResponse
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "quote", u, &body); err != nil {
		return entity.Quote{}, false, err
	}
	// 未対応の銘柄
	if !body.Current.Valid || (body.Current.Value == 0 && body.Timestamp == 0) {
		slog.Debug("no data for symbol", "provider", p.Name(), "symbol", symbol)
		return entity.Quote{}, false, nil
	}

	quote := entity.Quote{
		Symbol:        symbol,
		Price:         body.Current.Float(),
		Change:        body.Change.Float(),
		ChangePercent: body.PercentChange.Float(),
	}
	if body.Timestamp > 0 {
		quote.Timestamp = time.Unix(body.Timestamp, 0).UTC()
	}
	return quote, true, nil
}

// Search はフリーテキストで銘柄を検索します。失敗時は空のスライスを返します。
func (p *Provider) Search(ctx context.Context, query string) []entity.TickerCandidate {
	query = strings.TrimSpace(query)
	if query == "" || p.Ready() != nil {
		return []entity.TickerCandidate{}
	}
	if !p.limiter.TryAcquire() {
		slog.Warn("rate limit reached, skipping search", "provider", p.Name())
		return []entity.TickerCandidate{}
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("token", p.cfg.APIKey)
	u := fmt.Sprintf("%s/search?%s", strings.TrimRight(p.cfg.BaseURL, "/"), q.Encode())

	var body searchResponse
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "search", u, &body); err != nil {
		slog.Warn("search failed", "provider", p.Name(), "error", err)
		return []entity.TickerCandidate{}
	}

	out := make([]entity.TickerCandidate, 0, len(body.Result))
	for _, r := range body.Result {
		sym := r.Symbol
		if sym == "" {
			sym = r.DisplaySymbol
		}
		out = append(out, entity.TickerCandidate{
			Symbol: sym,
			Name:   r.Description,
			Type:   r.Type,
		})
	}
	return out
}

// MarketSnapshot はベンチマーク指数の相場を返します。取得できなければフォールバック値です。
func (p *Provider) MarketSnapshot(ctx context.Context) entity.MarketSnapshot {
	symbols, reverse := adapters.BenchmarkSymbols(p.mapping, p.Name())
	qs, err := p.Quote(ctx, symbols)
	return adapters.SnapshotOrFallback(p.Name(), adapters.Canonicalize(qs, reverse), err)
}

package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"market_backend/internal/feature/quotes/adapters"
	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/quotes/usecase"
	"market_backend/internal/shared/ratelimiter"
)

// realTimeQuote は /real-time の 1 銘柄分です。値が取れない項目は "NA" になります。
type realTimeQuote struct {
	Code          string          `json:"code"`
	Timestamp     adapters.Number `json:"timestamp"`
	Open          adapters.Number `json:"open"`
	High          adapters.Number `json:"high"`
	Low           adapters.Number `json:"low"`
	Close         adapters.Number `json:"close"`
	Volume        adapters.Number `json:"volume"`
	PreviousClose adapters.Number `json:"previousClose"`
	Change        adapters.Number `json:"change"`
	ChangePercent adapters.Number `json:"change_p"`
}

type searchHit struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Currency string `json:"Currency"`
}

// Provider は EODHD API から相場を取得する QuoteProvider 実装です。
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
	if mapping == nil {
		mapping = entity.DefaultSymbolMapping()
	}
	return &Provider{cfg: cfg, client: client, limiter: limiter, mapping: mapping}
}

func (p *Provider) Name() string      { return entity.ProviderEODHD }
func (p *Provider) MaxBatchSize() int { return p.cfg.BatchSize }

// Ready は API キーが設定されているかを確認します。
func (p *Provider) Ready() error {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return fmt.Errorf("%s: %w", p.Name(), domain.ErrMissingCredential)
	}
	return nil
}

// exchangeSuffixes はティッカーの市場サフィックスを EODHD の取引所コードに対応付けます。
// EODHD 自身のコードもそのまま通します。
var exchangeSuffixes = map[string]string{
	"US": "US", "LSE": "LSE", "LON": "LSE", "L": "LSE",
	"SR": "SR", "SAU": "SR",
	"T": "TSE", "TSE": "TSE", "HK": "HK", "TO": "TO",
	"DE": "XETRA", "XETRA": "XETRA", "PA": "PA", "AS": "AS",
	"INDX": "INDX", "CC": "CC", "FOREX": "FOREX",
}

var (
	cryptoSuffixes = []string{"-USD", "-USDT", "-BTC"}
	// 4 桁の数字のみのティッカーはサウジ市場 (EODHD の SR)
	bareNumeric = regexp.MustCompile(`^[0-9]{4}$`)
)

// withExchange は EODHD が要求する "TICKER.EXCHANGE" 形式に変換します。
// 取引所として解釈できないドット ("BRK.B") は株式クラスとみなし、"BRK-B.US" にします。
func withExchange(symbol string) string {
	t := strings.ToUpper(strings.TrimSpace(symbol))

	if strings.HasPrefix(t, "^") {
		return strings.TrimPrefix(t, "^") + ".INDX"
	}
	for _, s := range cryptoSuffixes {
		if strings.HasSuffix(t, s) {
			return t + ".CC"
		}
	}
	if bareNumeric.MatchString(t) {
		return t + ".SR"
	}
	if i := strings.LastIndex(t, "."); i > 0 && i < len(t)-1 {
		if code, ok := exchangeSuffixes[t[i+1:]]; ok {
			return t[:i] + "." + code
		}
		t = strings.ReplaceAll(t, ".", "-")
	}
	return t + "." + defaultExchangeSuffix
}

// Quote は /real-time の s パラメータで複数銘柄をまとめて取得します。
func (p *Provider) Quote(ctx context.Context, symbols []string) ([]entity.Quote, error) {
	if err := p.Ready(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	var (
		out  []entity.Quote
		errs []error
	)
	for _, batch := range adapters.Chunk(symbols, p.cfg.BatchSize) {
		qs, err := p.quoteBatch(ctx, batch)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, qs...)
	}
	return out, errors.Join(errs...)
}

func (p *Provider) quoteBatch(ctx context.Context, symbols []string) ([]entity.Quote, error) {
	if !p.limiter.TryAcquire() {
		slog.Warn("rate limit reached, skipping quote call", "provider", p.Name(), "symbols", len(symbols))
		return nil, fmt.Errorf("%s quote: %w", p.Name(), domain.ErrRateLimited)
	}

	requested := make(map[string]string, len(symbols))
	codes := make([]string, 0, len(symbols))
	for _, s := range symbols {
		code := withExchange(s)
		codes = append(codes, code)
		requested[strings.ToUpper(code)] = s
	}

	q := url.Values{}
	if len(codes) > 1 {
		q.Set("s", strings.Join(codes[1:], ","))
	}
	q.Set("api_token", p.cfg.APIKey)
	q.Set("fmt", "json")
	u := fmt.Sprintf("%s/real-time/%s?%s",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(codes[0]), q.Encode())

	var raw json.RawMessage
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "quote", u, &raw); err != nil {
		return nil, err
	}
	rows, err := decodeRealTime(raw)
	if err != nil {
		return nil, &domain.ProviderUnavailableError{Provider: p.Name(), Op: "quote", Err: err}
	}

	out := make([]entity.Quote, 0, len(rows))
	for _, r := range rows {
		if !r.Close.Valid {
			continue
		}
		symbol := r.Code
		if orig, ok := requested[strings.ToUpper(r.Code)]; ok {
			symbol = orig
		}
		quote := entity.Quote{
			Symbol:        symbol,
			Price:         r.Close.Float(),
			Change:        r.Change.Float(),
			ChangePercent: r.ChangePercent.Float(),
			Volume:        r.Volume.Int64(),
		}
		if r.Timestamp.Valid && r.Timestamp.Value > 0 {
			quote.Timestamp = time.Unix(r.Timestamp.Int64(), 0).UTC()
		}
		out = append(out, quote)
	}
	return out, nil
}

// decodeRealTime は単一銘柄のオブジェクトと複数銘柄の配列の両方を受け付けます。
func decodeRealTime(raw json.RawMessage) ([]realTimeQuote, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []realTimeQuote
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode real-time list: %w", err)
		}
		return rows, nil
	}
	var row realTimeQuote
	if err := json.Unmarshal(trimmed, &row); err != nil {
		return nil, fmt.Errorf("decode real-time: %w", err)
	}
	return []realTimeQuote{row}, nil
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
	q.Set("api_token", p.cfg.APIKey)
	q.Set("fmt", "json")
	u := fmt.Sprintf("%s/search/%s?%s", strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(query), q.Encode())

	var hits []searchHit
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "search", u, &hits); err != nil {
		slog.Warn("search failed", "provider", p.Name(), "error", err)
		return []entity.TickerCandidate{}
	}

	out := make([]entity.TickerCandidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, entity.TickerCandidate{
			Symbol:   h.Code,
			Name:     h.Name,
			Type:     h.Type,
			Exchange: h.Exchange,
			Currency: h.Currency,
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

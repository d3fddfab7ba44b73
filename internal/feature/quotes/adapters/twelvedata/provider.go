package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"market_backend/internal/feature/quotes/adapters"
	"market_backend/internal/feature/quotes/adapters/twelvedata/dto"
	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/quotes/usecase"
	"market_backend/internal/shared/ratelimiter"
)

// Provider は Twelve Data API から相場を取得する QuoteProvider 実装です。
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
	mapping entity.SymbolMapping
}

// Provider が QuoteProvider を実装していることをコンパイル時に検証します。
var _ usecase.QuoteProvider = (*Provider)(nil)

// NewProvider は指定された設定・HTTP クライアント・レートリミッターで Provider を生成します。
// limiter はこのプロバイダー専用のインスタンスを渡してください。
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

// Name はデータソース名を返します。
func (p *Provider) Name() string { return entity.ProviderTwelveData }

// MaxBatchSize は 1 回の Quote 呼び出しで送れるシンボル数です。
func (p *Provider) MaxBatchSize() int { return p.cfg.BatchSize }

// Ready は API キーが設定されているかを確認します。
func (p *Provider) Ready() error {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return fmt.Errorf("%s: %w", p.Name(), domain.ErrMissingCredential)
	}
	return nil
}

// Quote は symbols の最新相場をまとめて取得します。
// 一部の銘柄しか返らない場合も正常とし、取得できた分だけを返します。
// 戻り値の Quote.Symbol には呼び出し側が指定した表記をそのまま設定します。
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
			// 1 バッチの失敗で取得済みの相場は捨てない
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

	q := url.Values{}
	q.Set("symbol", strings.Join(symbols, ","))
	q.Set("apikey", p.cfg.APIKey)
	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(p.cfg.BaseURL, "/"), q.Encode())

	var raw json.RawMessage
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "quote", u, &raw); err != nil {
		return nil, err
	}

	entries, err := decodeQuotes(raw)
	if err != nil {
		// 単一銘柄のリクエストでは銘柄単位のエラーがトップレベルで返るため、未収録として扱う
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.symbolRejected() && len(symbols) == 1 {
			slog.Debug("symbol rejected by provider", "provider", p.Name(), "symbol", symbols[0], "message", apiErr.Message)
			return []entity.Quote{}, nil
		}
		return nil, &domain.ProviderUnavailableError{Provider: p.Name(), Op: "quote", Err: err}
	}

	requested := make(map[string]string, len(symbols))
	for _, s := range symbols {
		requested[strings.ToUpper(s)] = s
	}

	out := make([]entity.Quote, 0, len(entries))
	for key, e := range entries {
		if e.IsError() {
			slog.Debug("symbol rejected by provider", "provider", p.Name(), "symbol", key, "message", e.Message)
			continue
		}
		price := e.Close
		if !price.Valid {
			price = e.Price
		}
		if !price.Valid {
			continue
		}

		symbol := e.Symbol
		if orig, ok := requested[strings.ToUpper(key)]; ok {
			symbol = orig
		} else if orig, ok := requested[strings.ToUpper(e.Symbol)]; ok {
			symbol = orig
		}

		quote := entity.Quote{
			Symbol:        symbol,
			Name:          e.Name,
			Price:         price.Float(),
			Change:        e.Change.Float(),
			ChangePercent: e.PercentChange.Float(),
			Currency:      e.Currency,
			Volume:        e.Volume.Int64(),
		}
		if e.Timestamp > 0 {
			quote.Timestamp = time.Unix(e.Timestamp, 0).UTC()
		}
		out = append(out, quote)
	}
	return out, nil
}

// apiError は /quote がトップレベルで返したエラーオブジェクトです。
type apiError struct {
	Code    int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("twelvedata: %s (code %d)", e.Message, e.Code)
}

// symbolRejected は銘柄そのものが拒否されたエラーかを判定します。
// 認証エラー (401/403) やクォータ超過 (429) は含みません。
func (e *apiError) symbolRejected() bool {
	return e.Code == http.StatusBadRequest || e.Code == http.StatusNotFound
}

// decodeQuotes は /quote のレスポンスを銘柄ごとのエントリに展開します。
// 単一銘柄ならオブジェクト、複数銘柄ならシンボルをキーとした map、失敗時はエラーオブジェクトが返されます。
func decodeQuotes(raw json.RawMessage) (map[string]dto.QuoteResponse, error) {
	var single dto.QuoteResponse
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if single.IsError() {
		return nil, &apiError{Code: single.Code, Message: single.Message}
	}
	if single.Symbol != "" {
		return map[string]dto.QuoteResponse{single.Symbol: single}, nil
	}

	var many map[string]dto.QuoteResponse
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode quote map: %w", err)
	}
	return many, nil
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
	q.Set("symbol", query)
	q.Set("apikey", p.cfg.APIKey)
	u := fmt.Sprintf("%s/symbol_search?%s", strings.TrimRight(p.cfg.BaseURL, "/"), q.Encode())

	var body dto.SymbolSearchResponse
	if err := adapters.GetJSON(ctx, p.client, p.Name(), "search", u, &body); err != nil {
		slog.Warn("search failed", "provider", p.Name(), "error", err)
		return []entity.TickerCandidate{}
	}
	if body.Status == "error" {
		slog.Warn("search rejected", "provider", p.Name(), "message", body.Message)
		return []entity.TickerCandidate{}
	}

	out := make([]entity.TickerCandidate, 0, len(body.Data))
	for _, d := range body.Data {
		out = append(out, entity.TickerCandidate{
			Symbol:   d.Symbol,
			Name:     d.InstrumentName,
			Type:     d.InstrumentType,
			Exchange: d.Exchange,
			Currency: d.Currency,
		})
	}
	return out
}

// MarketSnapshot はベンチマーク指数の相場を取得します。
// 取得できなかった場合は Fallback フラグ付きの固定値を返します。
func (p *Provider) MarketSnapshot(ctx context.Context) entity.MarketSnapshot {
	symbols, reverse := adapters.BenchmarkSymbols(p.mapping, p.Name())
	qs, err := p.Quote(ctx, symbols)
	return adapters.SnapshotOrFallback(p.Name(), adapters.Canonicalize(qs, reverse), err)
}

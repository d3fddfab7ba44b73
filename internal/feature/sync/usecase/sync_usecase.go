package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	pentity "market_backend/internal/feature/prices/domain/entity"
	qdomain "market_backend/internal/feature/quotes/domain"
	qentity "market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/sync/domain/entity"
)

const (
	defaultMaxConcurrency = 4
	defaultCallTimeout    = 10 * time.Second
)

// Provider は同期に使うクォート取得元です。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Provider interface {
	Name() string
	MaxBatchSize() int
	Ready() error
	// Quote は部分的な結果とエラーを同時に返すことがあります。
	Quote(ctx context.Context, symbols []string) ([]qentity.Quote, error)
}

// Store は同期対象の選択と価格の書き込みを担うストアです。
type Store interface {
	SymbolsNeedingRefresh(ctx context.Context) ([]pentity.RefreshCandidate, error)
	ActiveTrackedIndices(ctx context.Context) ([]pentity.TrackedIndex, error)
	UpsertPrices(ctx context.Context, batch []pentity.PriceSnapshot) (int, error)
	UpsertTrackedIndexPrices(ctx context.Context, batch []pentity.IndexSnapshot) (int, error)
}

// Config は同期処理の並行数とプロバイダー呼び出しごとのタイムアウトです。
type Config struct {
	MaxConcurrency int
	CallTimeout    time.Duration
}

// SyncUsecase は保有銘柄とベンチマーク指数の最新価格を外部プロバイダーから取得して保存します。
// 定期実行と手動実行は同じ処理を通ります。
type SyncUsecase struct {
	store     Store
	providers []Provider
	mapping   qentity.SymbolMapping
	cfg       Config
	now       func() time.Time
}

// NewSyncUsecase は providers を優先順に使う SyncUsecase を生成します。
func NewSyncUsecase(store Store, mapping qentity.SymbolMapping, cfg Config, providers ...Provider) *SyncUsecase {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if mapping == nil {
		mapping = qentity.DefaultSymbolMapping()
	}
	return &SyncUsecase{
		store:     store,
		providers: providers,
		mapping:   mapping,
		cfg:       cfg,
		now:       time.Now,
	}
}

// indexExchangeCode は指数として登録された銘柄の取引所コードです。
const indexExchangeCode = "INDEX"

// target は同期対象の 1 件です。id は symbol_id または tracked_index_id です。
// index が立っている対象だけがプロバイダーごとの指数表記に変換されます。
// 保有銘柄の "DAX" などを指数の表記で問い合わせないためです。
type target struct {
	id     uint
	ticker string
	index  bool
}

// providerTicker はプロバイダーに問い合わせるときの表記を返します。
func (t target) providerTicker(mapping qentity.SymbolMapping, provider string) string {
	if !t.index {
		return t.ticker
	}
	return mapping.Translate(provider, t.ticker)
}

// matched はプロバイダーの結果と対象を突き合わせた 1 件です。
type matched struct {
	target
	quote    qentity.Quote
	provider string
}

// RunSync は更新が必要な保有銘柄の価格を同期します。
// 対象がなければ NothingToDo を立てて正常終了します。
// プロバイダーの失敗は report.Errors に記録され、エラーとしては返りません。
// 書き込み失敗は ErrCommitFailure でラップして返します。
func (u *SyncUsecase) RunSync(ctx context.Context) (entity.SyncReport, error) {
	load := func(ctx context.Context) ([]target, error) {
		cands, err := u.store.SymbolsNeedingRefresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("select symbols needing refresh: %w", err)
		}
		ts := make([]target, 0, len(cands))
		for _, c := range cands {
			ts = append(ts, target{id: c.SymbolID, ticker: c.Ticker, index: strings.EqualFold(c.ExchangeCode, indexExchangeCode)})
		}
		return ts, nil
	}
	commit := func(ctx context.Context, fetchedAt time.Time, ms []matched) (int, error) {
		batch := make([]pentity.PriceSnapshot, 0, len(ms))
		for _, m := range ms {
			s := pentity.PriceSnapshot{
				SymbolID:      m.id,
				Price:         m.quote.Price,
				Change:        m.quote.Change,
				ChangePercent: m.quote.ChangePercent,
				DataSource:    m.provider,
				MarketSession: pentity.SessionRegular,
				FetchedAt:     fetchedAt,
			}
			if m.quote.Volume > 0 {
				v := m.quote.Volume
				s.Volume = &v
			}
			batch = append(batch, s)
		}
		return u.store.UpsertPrices(ctx, batch)
	}
	return u.run(ctx, entity.KindSymbols, load, commit)
}

// RunIndexSync は有効なベンチマーク指数を保有状況に関係なく同期します。
// 一致判定と書き込みの規則は RunSync と同じです。
func (u *SyncUsecase) RunIndexSync(ctx context.Context) (entity.SyncReport, error) {
	load := func(ctx context.Context) ([]target, error) {
		indices, err := u.store.ActiveTrackedIndices(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tracked indices: %w", err)
		}
		ts := make([]target, 0, len(indices))
		for _, idx := range indices {
			ts = append(ts, target{id: idx.ID, ticker: idx.Symbol, index: true})
		}
		return ts, nil
	}
	commit := func(ctx context.Context, fetchedAt time.Time, ms []matched) (int, error) {
		batch := make([]pentity.IndexSnapshot, 0, len(ms))
		for _, m := range ms {
			batch = append(batch, pentity.IndexSnapshot{
				TrackedIndexID: m.id,
				Price:          m.quote.Price,
				Change:         m.quote.Change,
				ChangePercent:  m.quote.ChangePercent,
				DataSource:     m.provider,
				FetchedAt:      fetchedAt,
			})
		}
		return u.store.UpsertTrackedIndexPrices(ctx, batch)
	}
	return u.run(ctx, entity.KindIndices, load, commit)
}

func (u *SyncUsecase) run(
	ctx context.Context,
	kind string,
	load func(context.Context) ([]target, error),
	commit func(context.Context, time.Time, []matched) (int, error),
) (entity.SyncReport, error) {
	started := u.now()
	report := entity.SyncReport{Kind: kind, StartedAt: started, Errors: []string{}, Providers: []string{}}

	providers, err := u.readyProviders()
	if err != nil {
		return report, err
	}

	targets, err := load(ctx)
	if err != nil {
		return report, err
	}
	report.Requested = len(targets)
	if len(targets) == 0 {
		report.NothingToDo = true
		report.Duration = u.now().Sub(started)
		logReport(report)
		return report, nil
	}

	ms, unmatched, errs, used := u.fetch(ctx, providers, targets)
	report.Matched = len(ms)
	report.Unmatched = unmatched
	report.Errors = append(report.Errors, errs...)
	report.Providers = append(report.Providers, used...)

	if len(ms) > 0 {
		n, err := commit(ctx, started.UTC(), ms)
		if err != nil {
			report.Duration = u.now().Sub(started)
			slog.Error("failed to commit sync batch", "kind", kind, "matched", len(ms), "error", err)
			return report, fmt.Errorf("%w: %w", ErrCommitFailure, err)
		}
		report.Committed = n
	}

	report.Duration = u.now().Sub(started)
	logReport(report)
	return report, nil
}

// readyProviders は認証情報が揃ったプロバイダーだけを優先順に返します。
// 1 つも使えない場合は最後に観測した Ready のエラーを返します。
func (u *SyncUsecase) readyProviders() ([]Provider, error) {
	if len(u.providers) == 0 {
		return nil, ErrNoProviders
	}
	var (
		ready   []Provider
		lastErr error
	)
	for _, p := range u.providers {
		if err := p.Ready(); err != nil {
			slog.Warn("quote provider not ready", "provider", p.Name(), "error", err)
			lastErr = err
			continue
		}
		ready = append(ready, p)
	}
	if len(ready) == 0 {
		return nil, fmt.Errorf("no quote provider is ready: %w", lastErr)
	}
	return ready, nil
}

// fetch はプロバイダーを優先順に試し、前のプロバイダーで一致しなかった対象だけを次へ回します。
func (u *SyncUsecase) fetch(ctx context.Context, providers []Provider, targets []target) ([]matched, int, []string, []string) {
	var (
		out       []matched
		errs      []string
		used      []string
		unmatched int
	)
	remaining := targets
	for _, p := range providers {
		if len(remaining) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err.Error())
			break
		}

		quotes, callErrs := u.fetchFrom(ctx, p, remaining)
		errs = append(errs, callErrs...)

		hits, dropped := matchQuotes(u.mapping, p.Name(), remaining, quotes)
		unmatched += dropped
		if len(hits) > 0 {
			used = append(used, p.Name())
		}

		next := make([]target, 0, len(remaining))
		for _, t := range remaining {
			q, ok := hits[t.id]
			if !ok {
				next = append(next, t)
				continue
			}
			out = append(out, matched{target: t, quote: q, provider: p.Name()})
		}
		remaining = next
	}
	if unmatched > 0 {
		slog.Info("dropped quotes without a matching instrument", "count", unmatched)
	}
	return out, unmatched, errs, used
}

// fetchFrom は対象をプロバイダーの表記に変換し、バッチ単位で並行に取得します。
// 呼び出しごとにタイムアウトを設け、失敗したバッチは他のバッチの結果を妨げません。
func (u *SyncUsecase) fetchFrom(ctx context.Context, p Provider, targets []target) ([]qentity.Quote, []string) {
	seen := make(map[string]struct{}, len(targets))
	symbols := make([]string, 0, len(targets))
	for _, t := range targets {
		s := t.providerTicker(u.mapping, p.Name())
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}

	var (
		mu     sync.Mutex
		quotes []qentity.Quote
		errs   []string
	)
	g := new(errgroup.Group)
	g.SetLimit(u.cfg.MaxConcurrency)
	for _, batch := range chunk(symbols, p.MaxBatchSize()) {
		batch := batch
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, u.cfg.CallTimeout)
			defer cancel()

			qs, err := p.Quote(callCtx, batch)

			mu.Lock()
			defer mu.Unlock()
			quotes = append(quotes, qs...)
			if err != nil {
				if errors.Is(err, qdomain.ErrRateLimited) {
					slog.Warn("quote call rate limited", "provider", p.Name(), "symbols", len(batch))
				} else {
					slog.Warn("quote call failed", "provider", p.Name(), "symbols", len(batch), "error", err)
				}
				errs = append(errs, fmt.Sprintf("%s: %v", p.Name(), err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return quotes, errs
}

// matchQuotes は返ってきたクォートを、変換後または元のティッカーで対象に突き合わせます。
// プロバイダーは要求した表記をそのまま返すとは限りません。
// 一致しないクォートと価格が正でないクォートは捨てられ、件数だけが返ります。
func matchQuotes(mapping qentity.SymbolMapping, provider string, targets []target, quotes []qentity.Quote) (map[uint]qentity.Quote, int) {
	byTranslated := make(map[string][]uint, len(targets))
	byOriginal := make(map[string][]uint, len(targets))
	for _, t := range targets {
		tr := strings.ToUpper(t.providerTicker(mapping, provider))
		byTranslated[tr] = append(byTranslated[tr], t.id)
		orig := strings.ToUpper(t.ticker)
		byOriginal[orig] = append(byOriginal[orig], t.id)
	}

	out := make(map[uint]qentity.Quote, len(quotes))
	dropped := 0
	for _, q := range quotes {
		if !(q.Price > 0) {
			dropped++
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(q.Symbol))
		ids, ok := byTranslated[key]
		if !ok {
			ids, ok = byOriginal[key]
		}
		if !ok {
			slog.Debug("unmatched quote", "provider", provider, "symbol", q.Symbol)
			dropped++
			continue
		}
		for _, id := range ids {
			out[id] = q
		}
	}
	return out, dropped
}

func chunk(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var out [][]string
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

func logReport(r entity.SyncReport) {
	slog.Info("sync run finished",
		"kind", r.Kind,
		"provider", strings.Join(r.Providers, ","),
		"requested", r.Requested,
		"matched", r.Matched,
		"committed", r.Committed,
		"unmatched", r.Unmatched,
		"errors", len(r.Errors),
		"nothing_to_do", r.NothingToDo,
		"duration", r.Duration,
	)
}

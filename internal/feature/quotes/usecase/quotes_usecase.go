// Package usecase は銘柄検索とマーケットスナップショットのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"market_backend/internal/feature/quotes/domain/entity"
)

// ErrEmptyQuery は検索クエリが空の場合に返されます。
var ErrEmptyQuery = errors.New("search query is empty")

// QuoteProvider は外部マーケットデータプロバイダーの共通インターフェースです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteProvider interface {
	// Name は data_source として記録されるプロバイダー名を返します。
	Name() string
	// MaxBatchSize は 1 回の Quote 呼び出しで送れるシンボル数の上限です。
	MaxBatchSize() int
	// Ready は認証情報などの前提条件が揃っているかを返します。
	Ready() error
	// Search は失敗時も含めエラーを返さず、空のスライスで応答します。
	Search(ctx context.Context, query string) []entity.TickerCandidate
	// Quote は部分的な結果とエラーを同時に返すことがあります。
	Quote(ctx context.Context, symbols []string) ([]entity.Quote, error)
	// MarketSnapshot はベンチマーク指数を返し、取得できなければフォールバック値を返します。
	MarketSnapshot(ctx context.Context) entity.MarketSnapshot
}

// QuotesUsecase は複数プロバイダーを優先順に使って検索とスナップショットを提供します。
type QuotesUsecase struct {
	providers []QuoteProvider
}

// NewQuotesUsecase は providers を優先順に保持する QuotesUsecase を生成します。
func NewQuotesUsecase(providers ...QuoteProvider) *QuotesUsecase {
	return &QuotesUsecase{providers: providers}
}

// Search は準備済みのプロバイダーを順に問い合わせ、最初に結果を返したものを採用します。
// どのプロバイダーも結果を返さない場合は空のスライスです。
func (u *QuotesUsecase) Search(ctx context.Context, query string) ([]entity.TickerCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	for _, p := range u.providers {
		if p.Ready() != nil {
			continue
		}
		if hits := p.Search(ctx, query); len(hits) > 0 {
			return hits, nil
		}
	}
	return []entity.TickerCandidate{}, nil
}

// MarketSnapshot は最初にライブデータを返したプロバイダーのスナップショットを返します。
// すべてがフォールバックの場合は最初のフォールバックを返します。
func (u *QuotesUsecase) MarketSnapshot(ctx context.Context) entity.MarketSnapshot {
	var fallback *entity.MarketSnapshot
	for _, p := range u.providers {
		if p.Ready() != nil {
			continue
		}
		snap := p.MarketSnapshot(ctx)
		if !snap.Fallback {
			return snap
		}
		if fallback == nil {
			fallback = &snap
		}
	}
	if fallback != nil {
		return *fallback
	}
	slog.Warn("no quote provider is configured, serving static benchmarks")
	return entity.FallbackSnapshot("static")
}

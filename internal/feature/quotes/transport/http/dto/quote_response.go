// Package dto は quotes フィーチャーのレスポンス DTO を定義します。
package dto

import (
	"time"

	"market_backend/internal/feature/quotes/domain/entity"
)

// QuoteResponse は 1 銘柄分の相場レスポンスです。
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"` // RFC3339
}

// MarketSnapshotResponse はベンチマーク指数の一覧です。
// fallback が true の場合、値は固定のデモ値でありライブデータではありません。
type MarketSnapshotResponse struct {
	Provider string          `json:"provider"`
	Fallback bool            `json:"fallback"`
	Quotes   []QuoteResponse `json:"quotes"`
}

// TickerCandidateResponse は検索結果の 1 件です。
type TickerCandidateResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromSnapshot はドメインのスナップショットをレスポンスに変換します。
func FromSnapshot(s entity.MarketSnapshot) MarketSnapshotResponse {
	out := MarketSnapshotResponse{
		Provider: s.Provider,
		Fallback: s.Fallback,
		Quotes:   make([]QuoteResponse, 0, len(s.Quotes)),
	}
	for _, q := range s.Quotes {
		r := QuoteResponse{
			Symbol:        q.Symbol,
			Name:          q.Name,
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
			Currency:      q.Currency,
		}
		if !q.Timestamp.IsZero() {
			r.Timestamp = q.Timestamp.UTC().Format(time.RFC3339)
		}
		out.Quotes = append(out.Quotes, r)
	}
	return out
}

// FromCandidates は検索結果をレスポンスに変換します。
func FromCandidates(cs []entity.TickerCandidate) []TickerCandidateResponse {
	out := make([]TickerCandidateResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, TickerCandidateResponse{
			Symbol:   c.Symbol,
			Name:     c.Name,
			Type:     c.Type,
			Exchange: c.Exchange,
			Currency: c.Currency,
		})
	}
	return out
}

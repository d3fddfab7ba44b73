// Package dto は prices フィーチャーのレスポンス DTO を定義します。
package dto

import (
	"time"

	"market_backend/internal/feature/prices/domain/entity"
)

// PriceResponse は 1 銘柄分の最新価格です。
type PriceResponse struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	ExchangeCode  string  `json:"exchange_code"`
	Currency      string  `json:"currency"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	DataSource    string  `json:"data_source"`
	FetchedAt     string  `json:"fetched_at"` // RFC3339
}

// IndexPriceResponse は 1 指数分の最新値です。
type IndexPriceResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Currency      string  `json:"currency"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	DataSource    string  `json:"data_source"`
	FetchedAt     string  `json:"fetched_at"`
}

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromLatestPrices はエンティティをレスポンスに変換します。
func FromLatestPrices(ps []entity.LatestPrice) []PriceResponse {
	out := make([]PriceResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, PriceResponse{
			Ticker:        p.Ticker,
			Name:          p.Name,
			ExchangeCode:  p.ExchangeCode,
			Currency:      p.Currency,
			Price:         p.Price,
			Change:        p.Change,
			ChangePercent: p.ChangePercent,
			DataSource:    p.DataSource,
			FetchedAt:     p.FetchedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// FromIndexPrices はエンティティをレスポンスに変換します。
func FromIndexPrices(ps []entity.IndexPrice) []IndexPriceResponse {
	out := make([]IndexPriceResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, IndexPriceResponse{
			Symbol:        p.Symbol,
			Name:          p.Name,
			Currency:      p.Currency,
			Price:         p.Price,
			Change:        p.Change,
			ChangePercent: p.ChangePercent,
			DataSource:    p.DataSource,
			FetchedAt:     p.FetchedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

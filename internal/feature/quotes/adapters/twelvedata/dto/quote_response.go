// Package dto は Twelve Data API のレスポンス形式を定義します。
package dto

import "market_backend/internal/feature/quotes/adapters"

// QuoteResponse は /quote の 1 銘柄分のレスポンスです。
// 複数銘柄を要求した場合はシンボルをキーとした map で返されます。
type QuoteResponse struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Exchange      string           `json:"exchange"`
	Currency      string           `json:"currency"`
	Timestamp     int64            `json:"timestamp"`
	Close         adapters.Number  `json:"close"`
	Price         adapters.Number  `json:"price"`
	Change        adapters.Number  `json:"change"`
	PercentChange adapters.Number  `json:"percent_change"`
	Volume        adapters.Number  `json:"volume"`
	FiftyTwoWeek  *FiftyTwoWeekDTO `json:"fifty_two_week,omitempty"`

	// エラー時のみ設定される
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// FiftyTwoWeekDTO は 52 週レンジです。
type FiftyTwoWeekDTO struct {
	Low  adapters.Number `json:"low"`
	High adapters.Number `json:"high"`
}

// IsError は API がエラーを返したかどうかを判定します。
func (q QuoteResponse) IsError() bool {
	return q.Status == "error"
}

// SymbolSearchResponse は /symbol_search のレスポンスです。
type SymbolSearchResponse struct {
	Data []struct {
		Symbol         string `json:"symbol"`
		InstrumentName string `json:"instrument_name"`
		Exchange       string `json:"exchange"`
		InstrumentType string `json:"instrument_type"`
		Country        string `json:"country"`
		Currency       string `json:"currency"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

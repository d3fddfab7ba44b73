// Package entity defines the price snapshot models for the prices feature.
package entity

import "time"

// Market sessions a snapshot can reflect.
const (
	SessionRegular = "regular"
	SessionPre     = "pre"
	SessionPost    = "post"
)

// PriceSnapshot is the latest known price of one symbol.
// The store keeps exactly one row per SymbolID.
type PriceSnapshot struct {
	SymbolID      uint
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        *int64
	MarketCap     *float64
	High52        *float64
	Low52         *float64
	DividendYield *float64
	DataSource    string // provider name
	MarketSession string
	FetchedAt     time.Time
}

// IndexSnapshot is the latest known level of one tracked index.
type IndexSnapshot struct {
	TrackedIndexID uint
	Price          float64
	Change         float64
	ChangePercent  float64
	DataSource     string
	FetchedAt      time.Time
}

// RefreshCandidate is a tracked symbol selected for the next sync run.
type RefreshCandidate struct {
	SymbolID        uint
	Ticker          string
	ExchangeCode    string
	LastRefreshedAt *time.Time // nil when no price has been stored yet
}

// TrackedIndex is a benchmark refreshed regardless of user holdings.
type TrackedIndex struct {
	ID       uint
	Symbol   string // canonical mnemonic, e.g. "SPX"
	Name     string
	Currency string
}

// LatestPrice is a symbol joined with its current snapshot, for read APIs.
type LatestPrice struct {
	SymbolID      uint      `json:"symbol_id"`
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	ExchangeCode  string    `json:"exchange_code"`
	Currency      string    `json:"currency"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	DataSource    string    `json:"data_source"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// IndexPrice is a tracked index joined with its current snapshot.
type IndexPrice struct {
	TrackedIndexID uint      `json:"tracked_index_id"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Currency       string    `json:"currency"`
	Price          float64   `json:"price"`
	Change         float64   `json:"change"`
	ChangePercent  float64   `json:"change_percent"`
	DataSource     string    `json:"data_source"`
	FetchedAt      time.Time `json:"fetched_at"`
}

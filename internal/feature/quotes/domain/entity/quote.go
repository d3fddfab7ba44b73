// Package entity defines the canonical market-data shapes every provider adapter maps into.
package entity

import "time"

// Quote is a provider-agnostic price record for one instrument.
// Symbol always carries the spelling the caller asked for, not the provider's echo.
type Quote struct {
	Symbol        string    // requested ticker (e.g., "AAPL", "^GSPC")
	Name          string    // display name when the provider returns one
	Price         float64   // last traded / close price
	Change        float64   // absolute change from previous close
	ChangePercent float64   // percentage change from previous close
	Currency      string    // ISO currency code
	Volume        int64     // 0 when unknown
	Timestamp     time.Time // provider timestamp, zero when unknown
}

// TickerCandidate is one free-text search hit.
type TickerCandidate struct {
	Symbol   string
	Name     string
	Type     string // provider's instrument type label (e.g., "Common Stock")
	Exchange string
	Currency string
}

// MarketSnapshot is the benchmark basket shown in the ticker strip.
// Fallback is true when the quotes are the built-in static basket rather than
// live provider data; such quotes must never be persisted or used for P&L.
type MarketSnapshot struct {
	Provider string
	Quotes   []Quote
	Fallback bool
}

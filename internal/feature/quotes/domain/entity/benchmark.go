package entity

// Benchmark is a market index displayed regardless of user holdings.
type Benchmark struct {
	Symbol   string // canonical mnemonic, e.g. "SPX"
	Name     string
	Currency string
}

// Benchmarks is the basket fetched by MarketSnapshot, in display order.
var Benchmarks = []Benchmark{
	{Symbol: "SPX", Name: "S&P 500", Currency: "USD"},
	{Symbol: "DJI", Name: "Dow Jones Industrial Average", Currency: "USD"},
	{Symbol: "IXIC", Name: "NASDAQ Composite", Currency: "USD"},
	{Symbol: "UKX", Name: "FTSE 100", Currency: "GBP"},
	{Symbol: "DAX", Name: "DAX Performance Index", Currency: "EUR"},
	{Symbol: "TASI", Name: "Tadawul All Share Index", Currency: "SAR"},
}

// fallbackBasket holds demo values for the ticker strip when no provider answers.
var fallbackBasket = []Quote{
	{Symbol: "SPX", Name: "S&P 500", Price: 4700, Change: 25.5, ChangePercent: 0.55, Currency: "USD"},
	{Symbol: "DJI", Name: "Dow Jones Industrial Average", Price: 36000, Change: -45.2, ChangePercent: -0.13, Currency: "USD"},
	{Symbol: "IXIC", Name: "NASDAQ Composite", Price: 14500, Change: 85.7, ChangePercent: 0.59, Currency: "USD"},
	{Symbol: "UKX", Name: "FTSE 100", Price: 8100, Change: 12.3, ChangePercent: 0.15, Currency: "GBP"},
	{Symbol: "DAX", Name: "DAX Performance Index", Price: 17000, Change: -23.1, ChangePercent: -0.14, Currency: "EUR"},
	{Symbol: "TASI", Name: "Tadawul All Share Index", Price: 11500, Change: 45.2, ChangePercent: 0.39, Currency: "SAR"},
}

// FallbackSnapshot returns a copy of the static benchmark basket flagged as fallback.
func FallbackSnapshot(provider string) MarketSnapshot {
	qs := make([]Quote, len(fallbackBasket))
	copy(qs, fallbackBasket)
	return MarketSnapshot{Provider: provider, Quotes: qs, Fallback: true}
}

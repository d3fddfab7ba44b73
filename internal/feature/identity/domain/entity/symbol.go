// Package entity defines the domain models for the identity feature.
package entity

import "time"

// InstrumentClass is the coarse instrument category inferred from a ticker.
type InstrumentClass string

const (
	ClassStock  InstrumentClass = "stock"
	ClassCrypto InstrumentClass = "crypto"
	ClassIndex  InstrumentClass = "index"
)

// SymbolInfo is the canonical identity a raw ticker resolves to.
type SymbolInfo struct {
	ExchangeCode string
	Currency     string
	Class        InstrumentClass
}

// Exchange represents a trading venue. Created lazily, never deleted.
type Exchange struct {
	ID        uint
	Code      string // unique uppercase token, e.g. "TADAWUL"
	Name      string
	Country   string // ISO 3166-1 alpha-2
	Currency  string
	Timezone  string // IANA name
	OpenTime  string // "HH:MM" local time
	CloseTime string
	IsOpen    bool
}

// Symbol represents one tradable instrument.
// Ticker is globally unique and always stored uppercased.
type Symbol struct {
	ID           uint
	Ticker       string
	Name         string
	ExchangeID   uint
	ExchangeCode string
	Currency     string
	Sector       string
	Industry     string
	IsTracked    bool // refreshed by sync while someone holds it
	IsActive     bool
	AltNames     []string
	IsCompliant  *bool // nil when the screening rule has not been evaluated
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package entity

import "strings"

// Provider names used as data_source tags and mapping keys.
const (
	ProviderTwelveData = "twelvedata"
	ProviderFinnhub    = "finnhub"
	ProviderEODHD      = "eodhd"
)

// SymbolMapping translates a canonical ticker into a provider's own spelling.
// Keyed [provider][canonical ticker] = provider ticker. Read-only after load.
type SymbolMapping map[string]map[string]string

// DefaultSymbolMapping returns the built-in index spellings per provider.
func DefaultSymbolMapping() SymbolMapping {
	return SymbolMapping{
		ProviderFinnhub: {
			"SPX":  "^GSPC",
			"IXIC": "^IXIC",
			"DJI":  "^DJI",
			"UKX":  "^FTSE",
			"DAX":  "^GDAXI",
			"TASI": "TASI.SR",
		},
		ProviderTwelveData: {
			"SPX":  "SPX",
			"IXIC": "IXIC",
			"DJI":  "DJI",
			"UKX":  "UKX",
			"DAX":  "DAX",
			"TASI": "TASI.TADAWUL",
		},
		ProviderEODHD: {
			"SPX":  "GSPC.INDX",
			"IXIC": "IXIC.INDX",
			"DJI":  "DJI.INDX",
			"UKX":  "FTSE.INDX",
			"DAX":  "GDAXI.INDX",
			"TASI": "TASI.INDX",
		},
	}
}

// Translate returns the provider spelling of ticker, or ticker itself when
// the provider has no entry for it.
func (m SymbolMapping) Translate(provider, ticker string) string {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if v, ok := m[provider][key]; ok && v != "" {
		return v
	}
	return ticker
}

// Merge overlays other on top of m and returns the result. m is not modified.
func (m SymbolMapping) Merge(other SymbolMapping) SymbolMapping {
	out := make(SymbolMapping, len(m)+len(other))
	for p, entries := range m {
		out[p] = make(map[string]string, len(entries))
		for k, v := range entries {
			out[p][k] = v
		}
	}
	for p, entries := range other {
		p = strings.ToLower(p)
		if out[p] == nil {
			out[p] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			out[p][strings.ToUpper(k)] = v
		}
	}
	return out
}

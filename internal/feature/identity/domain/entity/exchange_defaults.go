package entity

// exchangeDefaults holds display metadata for venues created on demand.
var exchangeDefaults = map[string]Exchange{
	"NYSE":     {Code: "NYSE", Name: "New York Stock Exchange", Country: "US", Currency: "USD", Timezone: "America/New_York", OpenTime: "09:30", CloseTime: "16:00"},
	"NASDAQ":   {Code: "NASDAQ", Name: "NASDAQ", Country: "US", Currency: "USD", Timezone: "America/New_York", OpenTime: "09:30", CloseTime: "16:00"},
	"TADAWUL":  {Code: "TADAWUL", Name: "Saudi Stock Exchange", Country: "SA", Currency: "SAR", Timezone: "Asia/Riyadh", OpenTime: "10:00", CloseTime: "15:00"},
	"LSE":      {Code: "LSE", Name: "London Stock Exchange", Country: "GB", Currency: "GBP", Timezone: "Europe/London", OpenTime: "08:00", CloseTime: "16:30"},
	"XETRA":    {Code: "XETRA", Name: "Deutsche Boerse Xetra", Country: "DE", Currency: "EUR", Timezone: "Europe/Berlin", OpenTime: "09:00", CloseTime: "17:30"},
	"EURONEXT": {Code: "EURONEXT", Name: "Euronext", Country: "FR", Currency: "EUR", Timezone: "Europe/Paris", OpenTime: "09:00", CloseTime: "17:30"},
	"TSE":      {Code: "TSE", Name: "Tokyo Stock Exchange", Country: "JP", Currency: "JPY", Timezone: "Asia/Tokyo", OpenTime: "09:00", CloseTime: "15:00"},
	"HKEX":     {Code: "HKEX", Name: "Hong Kong Exchanges", Country: "HK", Currency: "HKD", Timezone: "Asia/Hong_Kong", OpenTime: "09:30", CloseTime: "16:00"},
	"TSX":      {Code: "TSX", Name: "Toronto Stock Exchange", Country: "CA", Currency: "CAD", Timezone: "America/Toronto", OpenTime: "09:30", CloseTime: "16:00"},
	"CRYPTO":   {Code: "CRYPTO", Name: "Cryptocurrency", Country: "US", Currency: "USD", Timezone: "UTC", OpenTime: "00:00", CloseTime: "23:59", IsOpen: true},
	"INDEX":    {Code: "INDEX", Name: "Market Indices", Country: "US", Currency: "USD", Timezone: "America/New_York", OpenTime: "09:30", CloseTime: "16:00"},
}

// exchangeAliases maps display names callers sometimes send as an override.
var exchangeAliases = map[string]string{
	"SAUDI STOCK EXCHANGE":    "TADAWUL",
	"SAUDI EXCHANGE":          "TADAWUL",
	"LONDON STOCK EXCHANGE":   "LSE",
	"NEW YORK STOCK EXCHANGE": "NYSE",
}

// CanonicalExchangeCode normalizes a caller supplied exchange code.
func CanonicalExchangeCode(code string) string {
	if alias, ok := exchangeAliases[code]; ok {
		return alias
	}
	return code
}

// DefaultCurrency returns the venue's usual currency, or "" when unknown.
func DefaultCurrency(code string) string {
	return exchangeDefaults[code].Currency
}

// NewExchange returns the metadata used when an exchange row is first created.
// Unknown codes get the code as name and US defaults.
func NewExchange(code, currency string) Exchange {
	ex, ok := exchangeDefaults[code]
	if !ok {
		ex = Exchange{
			Code:      code,
			Name:      code,
			Country:   "US",
			Currency:  "USD",
			Timezone:  "America/New_York",
			OpenTime:  "09:30",
			CloseTime: "16:00",
		}
	}
	if currency != "" {
		ex.Currency = currency
	}
	return ex
}

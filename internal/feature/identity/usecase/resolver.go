package usecase

import (
	"regexp"
	"strings"

	"market_backend/internal/feature/identity/domain/entity"
)

// DefaultExchangeCode は判定できなかった銘柄に割り当てる米国取引所です。
const DefaultExchangeCode = "NYSE"

var (
	cryptoSuffixes = []string{"-USD", "-USDT", "-BTC"}

	// 4 桁の数字のみのティッカーはサウジ市場の銘柄コード
	bareNumeric = regexp.MustCompile(`^[0-9]{4}$`)

	regionalSuffixes = []suffixRule{
		{suffix: ".SR", info: entity.SymbolInfo{ExchangeCode: "TADAWUL", Currency: "SAR", Class: entity.ClassStock}},
		{suffix: ".SAU", info: entity.SymbolInfo{ExchangeCode: "TADAWUL", Currency: "SAR", Class: entity.ClassStock}},
		{suffix: ".T", info: entity.SymbolInfo{ExchangeCode: "TSE", Currency: "JPY", Class: entity.ClassStock}},
		{suffix: ".HK", info: entity.SymbolInfo{ExchangeCode: "HKEX", Currency: "HKD", Class: entity.ClassStock}},
		{suffix: ".TO", info: entity.SymbolInfo{ExchangeCode: "TSX", Currency: "CAD", Class: entity.ClassStock}},
	}

	europeanSuffixes = []suffixRule{
		{suffix: ".LON", info: entity.SymbolInfo{ExchangeCode: "LSE", Currency: "GBP", Class: entity.ClassStock}},
		{suffix: ".L", info: entity.SymbolInfo{ExchangeCode: "LSE", Currency: "GBP", Class: entity.ClassStock}},
		{suffix: ".DE", info: entity.SymbolInfo{ExchangeCode: "XETRA", Currency: "EUR", Class: entity.ClassStock}},
		{suffix: ".PA", info: entity.SymbolInfo{ExchangeCode: "EURONEXT", Currency: "EUR", Class: entity.ClassStock}},
		{suffix: ".AS", info: entity.SymbolInfo{ExchangeCode: "EURONEXT", Currency: "EUR", Class: entity.ClassStock}},
	}

	indexMnemonics = map[string]struct{}{
		"SPY": {}, "QQQ": {}, "DIA": {}, "IWM": {},
	}
)

type suffixRule struct {
	suffix string
	info   entity.SymbolInfo
}

// Resolve は生のティッカー文字列から取引所・通貨・商品区分を推定します。
// 入力文字列のみから決まる純粋関数で、どんな入力にも結果を返します。
// 規則は上から順に評価され、最初に一致したものが採用されます。
func Resolve(raw string) entity.SymbolInfo {
	t := strings.ToUpper(strings.TrimSpace(raw))

	for _, s := range cryptoSuffixes {
		if strings.HasSuffix(t, s) {
			return entity.SymbolInfo{ExchangeCode: "CRYPTO", Currency: "USD", Class: entity.ClassCrypto}
		}
	}

	if bareNumeric.MatchString(t) {
		return entity.SymbolInfo{ExchangeCode: "TADAWUL", Currency: "SAR", Class: entity.ClassStock}
	}
	if info, ok := matchSuffix(t, regionalSuffixes); ok {
		return info
	}

	if info, ok := matchSuffix(t, europeanSuffixes); ok {
		return info
	}

	if _, ok := indexMnemonics[t]; ok || strings.HasPrefix(t, "^") {
		return entity.SymbolInfo{ExchangeCode: "INDEX", Currency: "USD", Class: entity.ClassIndex}
	}

	return entity.SymbolInfo{ExchangeCode: DefaultExchangeCode, Currency: "USD", Class: entity.ClassStock}
}

func matchSuffix(t string, rules []suffixRule) (entity.SymbolInfo, bool) {
	for _, r := range rules {
		if strings.HasSuffix(t, r.suffix) && len(t) > len(r.suffix) {
			return r.info, true
		}
	}
	return entity.SymbolInfo{}, false
}

// resolveWithOverride は呼び出し側が取引所を指定した場合、それを正として扱います。
// 通貨は指定値、取引所の既定通貨、推定結果の順に決定します。
func resolveWithOverride(ticker, exchangeOverride, currencyOverride string) entity.SymbolInfo {
	info := Resolve(ticker)

	if code := strings.ToUpper(strings.TrimSpace(exchangeOverride)); code != "" {
		code = entity.CanonicalExchangeCode(code)
		info.ExchangeCode = code
		if cur := entity.DefaultCurrency(code); cur != "" {
			info.Currency = cur
		}
		if code == "INDEX" {
			info.Class = entity.ClassIndex
		}
	}
	if cur := strings.ToUpper(strings.TrimSpace(currencyOverride)); cur != "" {
		info.Currency = cur
	}
	return info
}

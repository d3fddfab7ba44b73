// Package dto は identity フィーチャーのリクエスト・レスポンス DTO を定義します。
package dto

import "market_backend/internal/feature/identity/domain/entity"

// TrackRequest は保有銘柄追加時のリクエストです。
// exchange と currency は省略時にティッカーから推定されます。
type TrackRequest struct {
	Ticker   string `json:"ticker" binding:"required"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// TrackResponse は登録された銘柄 ID です。
type TrackResponse struct {
	SymbolID uint `json:"symbol_id"`
}

// ResolveResponse はティッカーの推定結果です。
type ResolveResponse struct {
	Ticker          string `json:"ticker"`
	ExchangeCode    string `json:"exchange_code"`
	Currency        string `json:"currency"`
	InstrumentClass string `json:"instrument_class"`
}

// IdentityErrorResponse は銘柄登録失敗時のレスポンスです。
type IdentityErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

// SymbolResponse は登録済み銘柄のレスポンスです。
type SymbolResponse struct {
	ID           uint   `json:"id"`
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	ExchangeCode string `json:"exchange_code"`
	Currency     string `json:"currency"`
	IsTracked    bool   `json:"is_tracked"`
	IsActive     bool   `json:"is_active"`
}

// FromSymbol はエンティティをレスポンスに変換します。
func FromSymbol(s *entity.Symbol) SymbolResponse {
	return SymbolResponse{
		ID:           s.ID,
		Ticker:       s.Ticker,
		Name:         s.Name,
		ExchangeCode: s.ExchangeCode,
		Currency:     s.Currency,
		IsTracked:    s.IsTracked,
		IsActive:     s.IsActive,
	}
}

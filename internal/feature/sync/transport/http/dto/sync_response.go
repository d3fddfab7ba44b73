// Package dto は sync フィーチャーのレスポンス DTO を定義します。
package dto

import "market_backend/internal/feature/sync/domain/entity"

// SyncResponse は 1 回の同期結果です。
type SyncResponse struct {
	Kind        string   `json:"kind"`
	Requested   int      `json:"requested"`
	Matched     int      `json:"matched"`
	Committed   int      `json:"committed"`
	Unmatched   int      `json:"unmatched"`
	Errors      []string `json:"errors"`
	Providers   []string `json:"providers"`
	NothingToDo bool     `json:"nothing_to_do"`
	DurationMS  int64    `json:"duration_ms"`
}

// ErrorResponse はエラー時のレスポンスです。stage は失敗した段階を示します。
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// FromReport はエンティティをレスポンスに変換します。
func FromReport(r entity.SyncReport) SyncResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	providers := r.Providers
	if providers == nil {
		providers = []string{}
	}
	return SyncResponse{
		Kind:        r.Kind,
		Requested:   r.Requested,
		Matched:     r.Matched,
		Committed:   r.Committed,
		Unmatched:   r.Unmatched,
		Errors:      errs,
		Providers:   providers,
		NothingToDo: r.NothingToDo,
		DurationMS:  r.Duration.Milliseconds(),
	}
}

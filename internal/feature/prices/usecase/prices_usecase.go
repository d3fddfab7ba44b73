// Package usecase は最新価格の保存と参照のビジネスロジックを実装します。
package usecase

import (
	"context"
	"strings"

	"market_backend/internal/feature/prices/domain/entity"
)

// PriceRepository は最新価格ストアを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceRepository interface {
	// SymbolsNeedingRefresh はストア側の選択ポリシーに従って更新対象の銘柄を返します。
	SymbolsNeedingRefresh(ctx context.Context) ([]entity.RefreshCandidate, error)
	// ActiveTrackedIndices は常に更新するベンチマーク指数を返します。
	ActiveTrackedIndices(ctx context.Context) ([]entity.TrackedIndex, error)
	// UpsertPrices は symbol_id ごとに 1 行を保つようにまとめて書き込みます。全件成功か全件失敗です。
	UpsertPrices(ctx context.Context, batch []entity.PriceSnapshot) (int, error)
	// UpsertTrackedIndexPrices は tracked_index_id をキーに UpsertPrices と同じ契約で書き込みます。
	UpsertTrackedIndexPrices(ctx context.Context, batch []entity.IndexSnapshot) (int, error)
	// ListLatestPrices は有効な銘柄の最新価格を返します。
	ListLatestPrices(ctx context.Context) ([]entity.LatestPrice, error)
	// ListIndexPrices は有効な指数の最新値を返します。
	ListIndexPrices(ctx context.Context) ([]entity.IndexPrice, error)
}

// PricesUsecase は最新価格の参照を提供します。
type PricesUsecase struct {
	repo PriceRepository
}

// NewPricesUsecase は PricesUsecase の新しいインスタンスを生成します。
func NewPricesUsecase(repo PriceRepository) *PricesUsecase {
	return &PricesUsecase{repo: repo}
}

// LatestPrices は最新価格を返します。tickers を指定した場合はその銘柄だけに絞り込みます。
func (u *PricesUsecase) LatestPrices(ctx context.Context, tickers []string) ([]entity.LatestPrice, error) {
	all, err := u.repo.ListLatestPrices(ctx)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return all, nil
	}

	want := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			want[t] = struct{}{}
		}
	}
	out := make([]entity.LatestPrice, 0, len(want))
	for _, p := range all {
		if _, ok := want[p.Ticker]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// IndexPrices はベンチマーク指数の最新値を返します。
func (u *PricesUsecase) IndexPrices(ctx context.Context) ([]entity.IndexPrice, error) {
	return u.repo.ListIndexPrices(ctx)
}

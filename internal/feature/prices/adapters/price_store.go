// Package adapters はpricesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"market_backend/internal/feature/prices/domain/entity"
	"market_backend/internal/feature/prices/usecase"
)

// upsertBatchSize は 1 回の INSERT 文に含める行数です。
const upsertBatchSize = 200

// priceStore は PriceRepository の GORM 実装です。
type priceStore struct {
	db     *gorm.DB
	policy SelectionPolicy
	now    func() time.Time
}

// priceStoreがPriceRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PriceRepository = (*priceStore)(nil)

// NewPriceStore は指定された選択ポリシーで priceStore を生成します。policy が nil の場合は AllTrackedActive です。
func NewPriceStore(db *gorm.DB, policy SelectionPolicy) *priceStore {
	if policy == nil {
		policy = AllTrackedActive{}
	}
	return &priceStore{db: db, policy: policy, now: time.Now}
}

// refreshRow は SymbolsNeedingRefresh のスキャン先です。
type refreshRow struct {
	SymbolID        uint
	Ticker          string
	ExchangeCode    string
	LastRefreshedAt *time.Time
}

// SymbolsNeedingRefresh は同期対象かつ有効な銘柄のうち、ポリシーに合致するものを返します。
func (r *priceStore) SymbolsNeedingRefresh(ctx context.Context) ([]entity.RefreshCandidate, error) {
	q := r.db.WithContext(ctx).
		Table("symbols AS s").
		Select("s.id AS symbol_id, s.symbol AS ticker, e.code AS exchange_code, sp.fetched_at AS last_refreshed_at").
		Joins("JOIN exchanges AS e ON e.id = s.exchange_id").
		Joins("LEFT JOIN symbol_prices AS sp ON sp.symbol_id = s.id").
		Where("s.is_active = ? AND s.is_in_portfolio = ?", true, true)
	q = r.policy.Apply(q, r.now()).Order("s.id ASC")

	var rows []refreshRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.RefreshCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.RefreshCandidate(row))
	}
	return out, nil
}

// ActiveTrackedIndices は有効なベンチマーク指数を表示順に返します。
func (r *priceStore) ActiveTrackedIndices(ctx context.Context) ([]entity.TrackedIndex, error) {
	var ms []TrackedIndexModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.TrackedIndex, 0, len(ms))
	for _, m := range ms {
		out = append(out, entity.TrackedIndex{ID: m.ID, Symbol: m.Symbol, Name: m.Name, Currency: m.Currency})
	}
	return out, nil
}

// SeedTrackedIndices は存在しない指数だけを追加します。既存の行は変更しません。
func (r *priceStore) SeedTrackedIndices(ctx context.Context, indices []entity.TrackedIndex) error {
	if len(indices) == 0 {
		return nil
	}
	ms := make([]TrackedIndexModel, 0, len(indices))
	for i, idx := range indices {
		ms = append(ms, TrackedIndexModel{
			Symbol:    idx.Symbol,
			Name:      idx.Name,
			Currency:  idx.Currency,
			IsActive:  true,
			SortOrder: i,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "symbol"}}, DoNothing: true}).
		Create(&ms).Error
}

// UpsertPrices は symbol_id をキーに最新価格を置き換えます。
// 同じ symbol_id がバッチ内に複数ある場合は後ろの要素が採用されます。
// 書き込みは 1 トランザクションで行われ、失敗時はどの行も更新されません。
func (r *priceStore) UpsertPrices(ctx context.Context, batch []entity.PriceSnapshot) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	ms := make([]SymbolPriceModel, 0, len(batch))
	pos := make(map[uint]int, len(batch))
	for _, p := range batch {
		m := SymbolPriceModel{
			SymbolID:      p.SymbolID,
			Price:         p.Price,
			Change:        p.Change,
			ChangePercent: p.ChangePercent,
			Volume:        p.Volume,
			MarketCap:     p.MarketCap,
			High52:        p.High52,
			Low52:         p.Low52,
			DividendYield: p.DividendYield,
			DataSource:    p.DataSource,
			MarketSession: p.MarketSession,
			FetchedAt:     p.FetchedAt.UTC(),
		}
		if m.MarketSession == "" {
			m.MarketSession = entity.SessionRegular
		}
		// 1 つの INSERT に同じキーが 2 回現れると ON CONFLICT が失敗するため事前に畳み込む
		if i, ok := pos[p.SymbolID]; ok {
			ms[i] = m
			continue
		}
		pos[p.SymbolID] = len(ms)
		ms = append(ms, m)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price", "change", "change_percent", "volume", "market_cap",
				"week_52_high", "week_52_low", "dividend_yield",
				"data_source", "market_session", "fetched_at", "updated_at",
			}),
		}).CreateInBatches(&ms, upsertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

// UpsertTrackedIndexPrices は tracked_index_id をキーに指数の最新値を置き換えます。
func (r *priceStore) UpsertTrackedIndexPrices(ctx context.Context, batch []entity.IndexSnapshot) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	ms := make([]IndexPriceModel, 0, len(batch))
	pos := make(map[uint]int, len(batch))
	for _, p := range batch {
		m := IndexPriceModel{
			TrackedIndexID: p.TrackedIndexID,
			Price:          p.Price,
			Change:         p.Change,
			ChangePercent:  p.ChangePercent,
			DataSource:     p.DataSource,
			FetchedAt:      p.FetchedAt.UTC(),
		}
		if i, ok := pos[p.TrackedIndexID]; ok {
			ms[i] = m
			continue
		}
		pos[p.TrackedIndexID] = len(ms)
		ms = append(ms, m)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tracked_index_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "change", "change_percent", "data_source", "fetched_at", "updated_at"}),
		}).CreateInBatches(&ms, upsertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

// ListLatestPrices は有効な銘柄のうち価格を持つものをティッカー順に返します。
func (r *priceStore) ListLatestPrices(ctx context.Context) ([]entity.LatestPrice, error) {
	var rows []entity.LatestPrice
	err := r.db.WithContext(ctx).
		Table("symbol_prices AS sp").
		Select(`s.id AS symbol_id, s.symbol AS ticker, s.name AS name, e.code AS exchange_code, s.currency AS currency,
			sp.price AS price, sp.change AS change, sp.change_percent AS change_percent,
			sp.data_source AS data_source, sp.fetched_at AS fetched_at`).
		Joins("JOIN symbols AS s ON s.id = sp.symbol_id").
		Joins("JOIN exchanges AS e ON e.id = s.exchange_id").
		Where("s.is_active = ?", true).
		Order("s.symbol ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListIndexPrices は有効な指数の最新値を表示順に返します。
func (r *priceStore) ListIndexPrices(ctx context.Context) ([]entity.IndexPrice, error) {
	var rows []entity.IndexPrice
	err := r.db.WithContext(ctx).
		Table("index_prices AS ip").
		Select(`ti.id AS tracked_index_id, ti.symbol AS symbol, ti.name AS name, ti.currency AS currency,
			ip.price AS price, ip.change AS change, ip.change_percent AS change_percent,
			ip.data_source AS data_source, ip.fetched_at AS fetched_at`).
		Joins("JOIN tracked_indices AS ti ON ti.id = ip.tracked_index_id").
		Where("ti.is_active = ?", true).
		Order("ti.sort_order ASC, ti.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

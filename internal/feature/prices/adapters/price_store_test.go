package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	identityadapters "market_backend/internal/feature/identity/adapters"
	"market_backend/internal/feature/prices/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	models := append([]any{&identityadapters.ExchangeModel{}, &identityadapters.SymbolModel{}}, Models()...)
	require.NoError(t, db.AutoMigrate(models...), "failed to migrate tables")
	return db
}

// seedSymbol は取引所と銘柄を 1 件ずつ登録し、銘柄IDを返します。
func seedSymbol(t *testing.T, db *gorm.DB, ticker, exchange string, tracked, active bool) uint {
	t.Helper()

	ex := identityadapters.ExchangeModel{Code: exchange, Name: exchange, Timezone: "UTC"}
	require.NoError(t, db.Where(identityadapters.ExchangeModel{Code: exchange}).FirstOrCreate(&ex).Error)

	s := identityadapters.SymbolModel{Ticker: ticker, Name: ticker + " Inc", ExchangeID: ex.ID, Currency: "USD", IsInPortfolio: tracked, IsActive: true}
	require.NoError(t, db.Create(&s).Error)
	if !active {
		require.NoError(t, db.Model(&s).Update("is_active", false).Error)
	}
	return s.ID
}

func TestPriceStore_SymbolsNeedingRefresh_AllTrackedActive(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	aapl := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	aramco := seedSymbol(t, db, "2222", "TADAWUL", true, true)
	seedSymbol(t, db, "MSFT", "NYSE", false, true) // not tracked
	seedSymbol(t, db, "GE", "NYSE", true, false)   // retired

	store := NewPriceStore(db, AllTrackedActive{})
	got, err := store.SymbolsNeedingRefresh(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, aapl, got[0].SymbolID)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, "NYSE", got[0].ExchangeCode)
	assert.Nil(t, got[0].LastRefreshedAt)
	assert.Equal(t, aramco, got[1].SymbolID)
	assert.Equal(t, "TADAWUL", got[1].ExchangeCode)
}

func TestPriceStore_SymbolsNeedingRefresh_StaleOlderThan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	fresh := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	stale := seedSymbol(t, db, "TSLA", "NYSE", true, true)
	never := seedSymbol(t, db, "NVDA", "NYSE", true, true)

	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := NewPriceStore(db, StaleOlderThan{Threshold: 15 * time.Minute})
	store.now = func() time.Time { return now }

	_, err := store.UpsertPrices(ctx, []entity.PriceSnapshot{
		{SymbolID: fresh, Price: 190, DataSource: "twelvedata", FetchedAt: now.Add(-5 * time.Minute)},
		{SymbolID: stale, Price: 250, DataSource: "twelvedata", FetchedAt: now.Add(-time.Hour)},
	})
	require.NoError(t, err)

	got, err := store.SymbolsNeedingRefresh(ctx)
	require.NoError(t, err)

	ids := make([]uint, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.SymbolID)
	}
	assert.Equal(t, []uint{stale, never}, ids)
	require.NotNil(t, got[0].LastRefreshedAt)
	assert.Nil(t, got[1].LastRefreshedAt)
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "all_tracked_active", PolicyFor(0).Name())
	assert.Equal(t, "all_tracked_active", PolicyFor(-time.Minute).Name())
	assert.Equal(t, StaleOlderThan{Threshold: time.Hour}, PolicyFor(time.Hour))
}

func TestPriceStore_UpsertPrices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	id := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	store := NewPriceStore(db, nil)

	t1 := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	vol := int64(1200)

	n, err := store.UpsertPrices(ctx, []entity.PriceSnapshot{{SymbolID: id, Price: 100, DataSource: "twelvedata", FetchedAt: t1}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.UpsertPrices(ctx, []entity.PriceSnapshot{{SymbolID: id, Price: 101.5, Change: 1.5, ChangePercent: 1.5, Volume: &vol, DataSource: "finnhub", FetchedAt: t2}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var rows []SymbolPriceModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "one row per symbol")
	assert.Equal(t, 101.5, rows[0].Price)
	assert.Equal(t, "finnhub", rows[0].DataSource)
	assert.Equal(t, entity.SessionRegular, rows[0].MarketSession)
	require.NotNil(t, rows[0].Volume)
	assert.Equal(t, vol, *rows[0].Volume)
	assert.True(t, rows[0].FetchedAt.Equal(t2))
}

func TestPriceStore_UpsertPrices_DuplicateInBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	id := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	store := NewPriceStore(db, nil)

	now := time.Now().UTC()
	n, err := store.UpsertPrices(ctx, []entity.PriceSnapshot{
		{SymbolID: id, Price: 1, DataSource: "a", FetchedAt: now},
		{SymbolID: id, Price: 2, DataSource: "b", FetchedAt: now},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var row SymbolPriceModel
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 2.0, row.Price, "last entry in the batch wins")
}

func TestPriceStore_UpsertPrices_Empty(t *testing.T) {
	t.Parallel()

	store := NewPriceStore(setupTestDB(t), nil)
	n, err := store.UpsertPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPriceStore_UpsertPrices_StoreError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	id := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	store := NewPriceStore(db, nil)

	require.NoError(t, db.Migrator().DropTable(&SymbolPriceModel{}))
	_, err := store.UpsertPrices(ctx, []entity.PriceSnapshot{{SymbolID: id, Price: 1, DataSource: "a", FetchedAt: time.Now()}})
	assert.Error(t, err)
}

func TestPriceStore_TrackedIndices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	store := NewPriceStore(db, nil)

	seed := []entity.TrackedIndex{
		{Symbol: "SPX", Name: "S&P 500", Currency: "USD"},
		{Symbol: "TASI", Name: "Tadawul All Share", Currency: "SAR"},
	}
	require.NoError(t, store.SeedTrackedIndices(ctx, seed))
	// 二度目の投入は既存行を変更しない
	require.NoError(t, store.SeedTrackedIndices(ctx, []entity.TrackedIndex{{Symbol: "SPX", Name: "renamed", Currency: "USD"}}))

	indices, err := store.ActiveTrackedIndices(ctx)
	require.NoError(t, err)
	require.Len(t, indices, 2)
	assert.Equal(t, "SPX", indices[0].Symbol)
	assert.Equal(t, "S&P 500", indices[0].Name)
	assert.Equal(t, "TASI", indices[1].Symbol)

	now := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	n, err := store.UpsertTrackedIndexPrices(ctx, []entity.IndexSnapshot{
		{TrackedIndexID: indices[0].ID, Price: 5000, Change: 10, ChangePercent: 0.2, DataSource: "twelvedata", FetchedAt: now},
		{TrackedIndexID: indices[1].ID, Price: 12000, DataSource: "twelvedata", FetchedAt: now},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.UpsertTrackedIndexPrices(ctx, []entity.IndexSnapshot{
		{TrackedIndexID: indices[0].ID, Price: 5010, DataSource: "finnhub", FetchedAt: now.Add(time.Minute)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	prices, err := store.ListIndexPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "SPX", prices[0].Symbol)
	assert.Equal(t, 5010.0, prices[0].Price)
	assert.Equal(t, "finnhub", prices[0].DataSource)
	assert.Equal(t, "SAR", prices[1].Currency)

	var count int64
	require.NoError(t, db.Model(&IndexPriceModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPriceStore_ListLatestPrices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	tsla := seedSymbol(t, db, "TSLA", "NASDAQ", true, true)
	aapl := seedSymbol(t, db, "AAPL", "NYSE", true, true)
	ge := seedSymbol(t, db, "GE", "NYSE", true, true)
	store := NewPriceStore(db, nil)

	now := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	_, err := store.UpsertPrices(ctx, []entity.PriceSnapshot{
		{SymbolID: tsla, Price: 250, DataSource: "twelvedata", FetchedAt: now},
		{SymbolID: aapl, Price: 190, DataSource: "twelvedata", FetchedAt: now},
		{SymbolID: ge, Price: 160, DataSource: "twelvedata", FetchedAt: now},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&identityadapters.SymbolModel{}).Where("id = ?", ge).Update("is_active", false).Error)

	got, err := store.ListLatestPrices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, "NYSE", got[0].ExchangeCode)
	assert.Equal(t, 190.0, got[0].Price)
	assert.Equal(t, "TSLA", got[1].Ticker)
	assert.Equal(t, "NASDAQ", got[1].ExchangeCode)
}

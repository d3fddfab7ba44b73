package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/platform/cache"
	infradb "market_backend/internal/platform/db"
)

func TestLoadSettings(t *testing.T) {
	t.Setenv("SYNC_PROVIDERS", "Finnhub, eodhd")
	t.Setenv("SYNC_STALE_AFTER", "0")
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("SYNC_MAX_CONCURRENCY", "8")

	s := LoadSettings()
	assert.Equal(t, []string{"finnhub", "eodhd"}, s.Providers)
	assert.Zero(t, s.StaleAfter)
	assert.Equal(t, 5*time.Minute, s.SyncInterval)
	assert.Equal(t, 8, s.MaxConcurrency)
	assert.Equal(t, "8080", s.Port)
}

func TestNewQuoteProviders(t *testing.T) {
	t.Setenv("TWELVE_DATA_API_KEY", "td-key")
	t.Setenv("FINNHUB_API_KEY", "")

	ps := NewQuoteProviders([]string{"twelvedata", "unknown", "finnhub"}, entity.DefaultSymbolMapping())
	require.Len(t, ps, 2)
	assert.Equal(t, entity.ProviderTwelveData, ps[0].Name())
	assert.NoError(t, ps[0].Ready())
	assert.Equal(t, entity.ProviderFinnhub, ps[1].Name())
	assert.Error(t, ps[1].Ready(), "finnhub has no key")

	assert.Len(t, SyncProviders(ps), 2)
}

func TestNewPriceRepository_WithoutRedis(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	repo := NewPriceRepository(nil, db, time.Minute, 0)
	_, cached := repo.(*cache.CachingPriceRepository)
	assert.False(t, cached)
}

func TestNewIdentityUsecase_DeactivateWithoutCache(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, infradb.Migrate(context.Background(), db))

	uc := NewIdentityUsecase(db, NewPriceRepository(nil, db, time.Minute, 0))
	id, err := uc.EnsureTracked(context.Background(), "aapl", "Apple Inc.", "", "")
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(context.Background(), id))
	sym, err := uc.GetSymbol(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, sym.IsActive)
	assert.False(t, sym.IsTracked)
}

package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	priceadapters "market_backend/internal/feature/prices/adapters"
	"market_backend/internal/feature/prices/usecase"
	"market_backend/internal/feature/quotes/domain/entity"
	quotesusecase "market_backend/internal/feature/quotes/usecase"
	syncusecase "market_backend/internal/feature/sync/usecase"
	"market_backend/internal/platform/cache"
)

// NewPriceRepository creates the price store.
// If Redis is available, reads are served through the cache and writes invalidate it.
func NewPriceRepository(rdb *redis.Client, db *gorm.DB, cacheTTL, staleAfter time.Duration) usecase.PriceRepository {
	store := priceadapters.NewPriceStore(db, priceadapters.PolicyFor(staleAfter))
	if rdb != nil {
		return cache.NewCachingPriceRepository(rdb, cacheTTL, store, "prices")
	}
	return store
}

// NewSyncUsecase wires the orchestrator over the price repository and quote providers.
func NewSyncUsecase(s Settings, prices usecase.PriceRepository, mapping entity.SymbolMapping, providers []quotesusecase.QuoteProvider) *syncusecase.SyncUsecase {
	cfg := syncusecase.Config{MaxConcurrency: s.MaxConcurrency, CallTimeout: s.CallTimeout}
	return syncusecase.NewSyncUsecase(prices, mapping, cfg, SyncProviders(providers)...)
}

package di

import (
	"gorm.io/gorm"

	identityadapters "market_backend/internal/feature/identity/adapters"
	identityusecase "market_backend/internal/feature/identity/usecase"
	"market_backend/internal/feature/prices/usecase"
	"market_backend/internal/platform/cache"
)

var _ identityusecase.PriceCache = (*cache.CachingPriceRepository)(nil)

// NewIdentityUsecase wires symbol registration over the identity store.
// When prices are served through the Redis cache, deactivation also drops the cached listings.
func NewIdentityUsecase(db *gorm.DB, prices usecase.PriceRepository) *identityusecase.IdentityUsecase {
	uc := identityusecase.NewIdentityUsecase(identityadapters.NewIdentityRepository(db))
	if pc, ok := prices.(identityusecase.PriceCache); ok {
		uc.WithPriceCache(pc)
	}
	return uc
}

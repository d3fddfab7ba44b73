// Command sync runs one index refresh and one holdings refresh, then exits.
// Intended for cron or a scheduled job instead of the in-process scheduler.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"market_backend/internal/app/di"
	quotesadapters "market_backend/internal/feature/quotes/adapters"
	syncusecase "market_backend/internal/feature/sync/usecase"
	"market_backend/internal/platform/config"
	infradb "market_backend/internal/platform/db"
	infraredis "market_backend/internal/platform/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.LoadDotEnv()
	config.SetupLogger(os.Stdout)
	settings := di.LoadSettings()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := infradb.OpenDB(ctx, infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}

	// キャッシュを使っている場合は書き込みで無効化するため、サーバーと同じ Redis に接続する
	redisCfg := infraredis.LoadConfig()
	rdb, err := infraredis.NewRedisClient(ctx, redisCfg)
	if err != nil {
		slog.Warn("Redis unavailable. Cached reads may be stale until TTL expiry.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	mapping, err := quotesadapters.LoadSymbolMapping(settings.MappingFile)
	if err != nil {
		slog.Error("failed to load symbol mapping", "error", err)
		return 1
	}

	priceRepo := di.NewPriceRepository(rdb, db, redisCfg.CacheTTL, settings.StaleAfter)
	uc := di.NewSyncUsecase(settings, priceRepo, mapping, di.NewQuoteProviders(settings.Providers, mapping))

	code := 0
	if _, err := uc.RunIndexSync(ctx); err != nil {
		slog.Error("index sync failed", "error", err)
		code = 1
	}
	if _, err := uc.RunSync(ctx); err != nil {
		slog.Error("symbol sync failed", "error", err, "commit_failure", errors.Is(err, syncusecase.ErrCommitFailure))
		code = 1
	}
	return code
}

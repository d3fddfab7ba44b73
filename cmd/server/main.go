package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market_backend/internal/app/di"
	"market_backend/internal/app/router"
	identityhandler "market_backend/internal/feature/identity/transport/handler"
	priceshandler "market_backend/internal/feature/prices/transport/handler"
	pricesusecase "market_backend/internal/feature/prices/usecase"
	quotesadapters "market_backend/internal/feature/quotes/adapters"
	quoteshandler "market_backend/internal/feature/quotes/transport/handler"
	quotesusecase "market_backend/internal/feature/quotes/usecase"
	synchandler "market_backend/internal/feature/sync/transport/handler"
	syncusecase "market_backend/internal/feature/sync/usecase"
	"market_backend/internal/platform/config"
	infradb "market_backend/internal/platform/db"
	healthhandler "market_backend/internal/platform/http/handler"
	infraredis "market_backend/internal/platform/redis"
)

func main() {
	config.LoadDotEnv()
	config.SetupLogger(os.Stdout)
	settings := di.LoadSettings()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(ctx, infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis（任意）
	redisCfg := infraredis.LoadConfig()
	rdb, err := infraredis.NewRedisClient(ctx, redisCfg)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	mapping, err := quotesadapters.LoadSymbolMapping(settings.MappingFile)
	if err != nil {
		slog.Error("failed to load symbol mapping", "error", err)
		os.Exit(1)
	}

	// Repository
	priceRepo := di.NewPriceRepository(rdb, db, redisCfg.CacheTTL, settings.StaleAfter)
	providers := di.NewQuoteProviders(settings.Providers, mapping)

	// Usecase
	identityUC := di.NewIdentityUsecase(db, priceRepo)
	pricesUC := pricesusecase.NewPricesUsecase(priceRepo)
	quotesUC := quotesusecase.NewQuotesUsecase(providers...)
	syncUC := di.NewSyncUsecase(settings, priceRepo, mapping, providers)

	// readiness
	checks := map[string]healthhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Quotes:    quoteshandler.NewQuotesHandler(quotesUC),
		Symbols:   identityhandler.NewSymbolHandler(identityUC),
		Prices:    priceshandler.NewPricesHandler(pricesUC),
		Sync:      synchandler.NewSyncHandler(syncUC),
		Readiness: healthhandler.Readiness(checks),
	}, settings.JWTSecret)

	if settings.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Authenticated routes will answer 500.")
	}

	// バックグラウンド同期
	go syncusecase.NewScheduler(syncUC, settings.SyncInterval).Start(ctx)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

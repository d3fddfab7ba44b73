package di

import (
	"log/slog"

	"market_backend/internal/feature/quotes/adapters/eodhd"
	"market_backend/internal/feature/quotes/adapters/finnhub"
	"market_backend/internal/feature/quotes/adapters/twelvedata"
	"market_backend/internal/feature/quotes/domain/entity"
	quotesusecase "market_backend/internal/feature/quotes/usecase"
	syncusecase "market_backend/internal/feature/sync/usecase"
	infrahttp "market_backend/internal/platform/http"
	"market_backend/internal/shared/ratelimiter"
)

// NewQuoteProviders builds one adapter per name, in order.
// Each adapter owns its own rate limiter and HTTP client. Unknown names are skipped.
func NewQuoteProviders(names []string, mapping entity.SymbolMapping) []quotesusecase.QuoteProvider {
	out := make([]quotesusecase.QuoteProvider, 0, len(names))
	for _, name := range names {
		switch name {
		case entity.ProviderTwelveData:
			cfg := twelvedata.LoadConfig()
			out = append(out, twelvedata.NewProvider(cfg, infrahttp.NewHTTPClient(cfg.Timeout), ratelimiter.NewSlidingWindow(cfg.MaxRPM, ratelimiter.DefaultWindow), mapping))
		case entity.ProviderFinnhub:
			cfg := finnhub.LoadConfig()
			out = append(out, finnhub.NewProvider(cfg, infrahttp.NewHTTPClient(cfg.Timeout), ratelimiter.NewSlidingWindow(cfg.MaxRPM, ratelimiter.DefaultWindow), mapping))
		case entity.ProviderEODHD:
			cfg := eodhd.LoadConfig()
			out = append(out, eodhd.NewProvider(cfg, infrahttp.NewHTTPClient(cfg.Timeout), ratelimiter.NewSlidingWindow(cfg.MaxRPM, ratelimiter.DefaultWindow), mapping))
		default:
			slog.Warn("unknown quote provider, skipping", "provider", name)
			continue
		}
		slog.Info("quote provider configured", "provider", name, "ready", out[len(out)-1].Ready() == nil)
	}
	return out
}

// SyncProviders narrows the quote providers to what the sync orchestrator needs.
func SyncProviders(ps []quotesusecase.QuoteProvider) []syncusecase.Provider {
	out := make([]syncusecase.Provider, 0, len(ps))
	for _, p := range ps {
		out = append(out, p)
	}
	return out
}

// Package router wires the HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"

	identityhandler "market_backend/internal/feature/identity/transport/handler"
	priceshandler "market_backend/internal/feature/prices/transport/handler"
	quoteshandler "market_backend/internal/feature/quotes/transport/handler"
	synchandler "market_backend/internal/feature/sync/transport/handler"
	"market_backend/internal/platform/http/handler"
	jwtmw "market_backend/internal/platform/jwt"
)

// Handlers groups every feature handler the router needs.
type Handlers struct {
	Quotes    *quoteshandler.QuotesHandler
	Symbols   *identityhandler.SymbolHandler
	Prices    *priceshandler.PricesHandler
	Sync      *synchandler.SyncHandler
	Readiness gin.HandlerFunc
}

func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	if h.Readiness != nil {
		r.GET("/readyz", h.Readiness)
	}
	// 参照系
	r.GET("/markets", h.Quotes.Markets)
	r.GET("/search", h.Quotes.Search)
	r.GET("/symbols/resolve/:ticker", h.Symbols.Resolve)
	r.GET("/symbols/:id", h.Symbols.Get)
	r.GET("/prices", h.Prices.List)
	r.GET("/indices", h.Prices.Indices)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.POST("/symbols/track", h.Symbols.Track)
		auth.DELETE("/symbols/:id/track", h.Symbols.Untrack)
		auth.DELETE("/symbols/:id", h.Symbols.Deactivate)
		auth.POST("/sync", h.Sync.Sync)
		auth.POST("/sync/indices", h.Sync.SyncIndices)
	}

	return r
}

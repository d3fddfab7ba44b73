// Package handler は prices フィーチャーの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/prices/domain/entity"
	"market_backend/internal/feature/prices/transport/http/dto"
)

// PricesUsecase は最新価格参照のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricesUsecase interface {
	LatestPrices(ctx context.Context, tickers []string) ([]entity.LatestPrice, error)
	IndexPrices(ctx context.Context) ([]entity.IndexPrice, error)
}

// PricesHandler は最新価格の HTTP リクエストを処理します。
type PricesHandler struct {
	uc PricesUsecase
}

// NewPricesHandler は PricesHandler の新しいインスタンスを生成します。
func NewPricesHandler(uc PricesUsecase) *PricesHandler {
	return &PricesHandler{uc: uc}
}

// List は保存済みの最新価格を返します。
//
// エンドポイント例:
// GET /prices?symbols=AAPL,2222
func (h *PricesHandler) List(c *gin.Context) {
	var tickers []string
	if raw := c.Query("symbols"); raw != "" {
		tickers = strings.Split(raw, ",")
	}

	ps, err := h.uc.LatestPrices(c.Request.Context(), tickers)
	if err != nil {
		slog.Error("failed to list prices", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load prices"})
		return
	}
	c.JSON(http.StatusOK, dto.FromLatestPrices(ps))
}

// Indices はベンチマーク指数の最新値を返します。
//
// エンドポイント例:
// GET /indices
func (h *PricesHandler) Indices(c *gin.Context) {
	ps, err := h.uc.IndexPrices(c.Request.Context())
	if err != nil {
		slog.Error("failed to list index prices", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load index prices"})
		return
	}
	c.JSON(http.StatusOK, dto.FromIndexPrices(ps))
}

// Package handler は quotes フィーチャーの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/quotes/transport/http/dto"
	"market_backend/internal/feature/quotes/usecase"
)

// QuotesUsecase は検索とスナップショットのユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuotesUsecase interface {
	Search(ctx context.Context, query string) ([]entity.TickerCandidate, error)
	MarketSnapshot(ctx context.Context) entity.MarketSnapshot
}

// QuotesHandler は銘柄検索とマーケット概況の HTTP リクエストを処理します。
type QuotesHandler struct {
	uc QuotesUsecase
}

// NewQuotesHandler は QuotesHandler の新しいインスタンスを生成します。
func NewQuotesHandler(uc QuotesUsecase) *QuotesHandler {
	return &QuotesHandler{uc: uc}
}

// Search は外部プロバイダーで銘柄を検索します。
// プロバイダー障害時も 200 と空配列を返します。
//
// エンドポイント例:
// GET /search?q=apple
func (h *QuotesHandler) Search(c *gin.Context) {
	hits, err := h.uc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "query parameter q is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromCandidates(hits))
}

// Markets はベンチマーク指数のスナップショットを返します。
//
// エンドポイント例:
// GET /markets
func (h *QuotesHandler) Markets(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromSnapshot(h.uc.MarketSnapshot(c.Request.Context())))
}

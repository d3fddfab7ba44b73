// Package handler は sync フィーチャーの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	qdomain "market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/sync/domain/entity"
	"market_backend/internal/feature/sync/transport/http/dto"
	"market_backend/internal/feature/sync/usecase"
	jwtmw "market_backend/internal/platform/jwt"
)

// SyncUsecase は手動同期のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SyncUsecase interface {
	RunSync(ctx context.Context) (entity.SyncReport, error)
	RunIndexSync(ctx context.Context) (entity.SyncReport, error)
}

// SyncHandler は「今すぐ同期」の HTTP リクエストを処理します。
type SyncHandler struct {
	uc SyncUsecase
}

// NewSyncHandler は SyncHandler の新しいインスタンスを生成します。
func NewSyncHandler(uc SyncUsecase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// Sync は保有銘柄の価格を同期します。部分的な取得でも 200 を返します。
//
// エンドポイント例:
// POST /sync
func (h *SyncHandler) Sync(c *gin.Context) {
	h.respond(c, h.uc.RunSync)
}

// SyncIndices はベンチマーク指数を同期します。
//
// エンドポイント例:
// POST /sync/indices
func (h *SyncHandler) SyncIndices(c *gin.Context) {
	h.respond(c, h.uc.RunIndexSync)
}

func (h *SyncHandler) respond(c *gin.Context, run func(context.Context) (entity.SyncReport, error)) {
	report, err := run(c.Request.Context())
	if err == nil {
		c.JSON(http.StatusOK, dto.FromReport(report))
		return
	}

	slog.Error("manual sync failed", "user_id", c.GetUint(jwtmw.ContextUserID), "kind", report.Kind, "error", err)
	switch {
	case errors.Is(err, usecase.ErrCommitFailure):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "prices were fetched but could not be saved", Stage: "commit"})
	case errors.Is(err, qdomain.ErrMissingCredential), errors.Is(err, usecase.ErrNoProviders):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "no market data provider is configured", Stage: "setup"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "sync failed", Stage: "select"})
	}
}

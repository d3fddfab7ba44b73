// Package handler は identity フィーチャーの HTTP ハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/identity/domain/entity"
	"market_backend/internal/feature/identity/transport/http/dto"
	"market_backend/internal/feature/identity/usecase"
	jwtmw "market_backend/internal/platform/jwt"
)

// IdentityUsecase は銘柄登録のユースケースインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type IdentityUsecase interface {
	Resolve(raw string) entity.SymbolInfo
	EnsureTracked(ctx context.Context, rawTicker, displayName, exchangeOverride, currencyOverride string) (uint, error)
	Untrack(ctx context.Context, symbolID uint) error
	GetSymbol(ctx context.Context, symbolID uint) (*entity.Symbol, error)
	Deactivate(ctx context.Context, symbolID uint) error
}

// SymbolHandler は銘柄の解決と同期対象の登録を処理します。
type SymbolHandler struct {
	uc IdentityUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc IdentityUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// Resolve はティッカーの取引所・通貨・商品区分を推定して返します。
//
// エンドポイント例:
// GET /symbols/resolve/2222
func (h *SymbolHandler) Resolve(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	info := h.uc.Resolve(ticker)
	c.JSON(http.StatusOK, dto.ResolveResponse{
		Ticker:          ticker,
		ExchangeCode:    info.ExchangeCode,
		Currency:        info.Currency,
		InstrumentClass: string(info.Class),
	})
}

// Track は保有銘柄として追加されたティッカーを登録し、同期対象にします。
// 登録できなかった場合は 422 と利用者向けのメッセージを返します。
//
// エンドポイント例:
// POST /symbols/track {"ticker":"2222","name":"Saudi Aramco"}
func (h *SymbolHandler) Track(c *gin.Context) {
	var req dto.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	id, err := h.uc.EnsureTracked(c.Request.Context(), req.Ticker, req.Name, req.Exchange, req.Currency)
	if err != nil {
		var ice *usecase.IdentityCreationError
		if errors.As(err, &ice) {
			slog.Warn("failed to register symbol", "ticker", ice.Ticker, "stage", ice.Stage,
				"user_id", c.GetUint(jwtmw.ContextUserID), "error", ice.Err)
			c.JSON(http.StatusUnprocessableEntity, dto.IdentityErrorResponse{Error: ice.UserMessage(), Stage: ice.Stage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.TrackResponse{SymbolID: id})
}

// Untrack は最後の保有が削除された銘柄を同期対象から外します。
//
// エンドポイント例:
// DELETE /symbols/42/track
func (h *SymbolHandler) Untrack(c *gin.Context) {
	id, ok := symbolID(c)
	if !ok {
		return
	}
	if err := h.uc.Untrack(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Get は登録済み銘柄を返します。
//
// エンドポイント例:
// GET /symbols/42
func (h *SymbolHandler) Get(c *gin.Context) {
	id, ok := symbolID(c)
	if !ok {
		return
	}
	sym, err := h.uc.GetSymbol(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromSymbol(sym))
}

// Deactivate は銘柄を無効化し、最新価格を取り下げます。
//
// エンドポイント例:
// DELETE /symbols/42
func (h *SymbolHandler) Deactivate(c *gin.Context) {
	id, ok := symbolID(c)
	if !ok {
		return
	}
	if err := h.uc.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		slog.Error("failed to deactivate symbol", "symbol_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate symbol"})
		return
	}
	slog.Info("symbol deactivated by user", "symbol_id", id, "user_id", c.GetUint(jwtmw.ContextUserID))
	c.Status(http.StatusNoContent)
}

// symbolID はパスパラメータ :id を読み取ります。不正な場合は 400 を書き込んで false を返します。
func symbolID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol id"})
		return 0, false
	}
	return uint(id), true
}

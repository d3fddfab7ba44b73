package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/feature/quotes/transport/handler"
	"market_backend/internal/feature/quotes/transport/http/dto"
	"market_backend/internal/feature/quotes/usecase"
)

// mockQuotesUsecase は QuotesUsecase のモック実装です。
type mockQuotesUsecase struct {
	SearchFunc   func(ctx context.Context, query string) ([]entity.TickerCandidate, error)
	SnapshotFunc func(ctx context.Context) entity.MarketSnapshot
}

func (m *mockQuotesUsecase) Search(ctx context.Context, query string) ([]entity.TickerCandidate, error) {
	return m.SearchFunc(ctx, query)
}

func (m *mockQuotesUsecase) MarketSnapshot(ctx context.Context) entity.MarketSnapshot {
	return m.SnapshotFunc(ctx)
}

func TestQuotesHandler_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		mockSearch     func(ctx context.Context, query string) ([]entity.TickerCandidate, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			url:  "/search?q=apple",
			mockSearch: func(ctx context.Context, query string) ([]entity.TickerCandidate, error) {
				assert.Equal(t, "apple", query)
				return []entity.TickerCandidate{{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ"}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"symbol":"AAPL","name":"Apple Inc","exchange":"NASDAQ"}]`,
		},
		{
			name: "provider down still returns empty list",
			url:  "/search?q=apple",
			mockSearch: func(ctx context.Context, query string) ([]entity.TickerCandidate, error) {
				return []entity.TickerCandidate{}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "missing query",
			url:  "/search",
			mockSearch: func(ctx context.Context, query string) ([]entity.TickerCandidate, error) {
				return nil, usecase.ErrEmptyQuery
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"query parameter q is required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewQuotesHandler(&mockQuotesUsecase{SearchFunc: tt.mockSearch})

			router := gin.New()
			router.GET("/search", h.Search)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestQuotesHandler_Markets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ts := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		snapshot     entity.MarketSnapshot
		wantFallback bool
		wantFirst    dto.QuoteResponse
	}{
		{
			name: "live snapshot",
			snapshot: entity.MarketSnapshot{Provider: "twelvedata", Quotes: []entity.Quote{
				{Symbol: "SPX", Name: "S&P 500", Price: 5000, Change: 10, ChangePercent: 0.2, Currency: "USD", Timestamp: ts},
			}},
			wantFallback: false,
			wantFirst: dto.QuoteResponse{
				Symbol: "SPX", Name: "S&P 500", Price: 5000, Change: 10, ChangePercent: 0.2, Currency: "USD",
				Timestamp: "2025-01-15T14:30:00Z",
			},
		},
		{
			name:         "fallback is flagged",
			snapshot:     entity.FallbackSnapshot("twelvedata"),
			wantFallback: true,
			wantFirst: dto.QuoteResponse{
				Symbol: "SPX", Name: "S&P 500", Price: 4700, Change: 25.5, ChangePercent: 0.55, Currency: "USD",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewQuotesHandler(&mockQuotesUsecase{
				SnapshotFunc: func(context.Context) entity.MarketSnapshot { return tt.snapshot },
			})

			router := gin.New()
			router.GET("/markets", h.Markets)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/markets", nil)
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var got dto.MarketSnapshotResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantFallback, got.Fallback)
			require.NotEmpty(t, got.Quotes)
			assert.Equal(t, tt.wantFirst, got.Quotes[0])
		})
	}
}

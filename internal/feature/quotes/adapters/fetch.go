// Package adapters は外部マーケットデータプロバイダー共通の HTTP ヘルパーを提供します。
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"market_backend/internal/feature/quotes/domain"
	"market_backend/internal/feature/quotes/domain/entity"
)

// maxErrorBody はエラーログに残すレスポンスボディの最大バイト数です。
const maxErrorBody = 512

// GetJSON は rawURL に GET リクエストを送り、レスポンスを out にデコードします。
// 通信エラー・HTTP 4xx/5xx・デコード失敗はすべて ProviderUnavailableError に変換されます。
func GetJSON(ctx context.Context, client *http.Client, provider, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &domain.ProviderUnavailableError{Provider: provider, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return &domain.ProviderUnavailableError{Provider: provider, Op: op, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "provider", provider, "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &domain.ProviderUnavailableError{Provider: provider, Op: op, StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode >= 400 {
		slog.Warn("provider returned error status",
			"provider", provider, "op", op, "status", res.StatusCode, "body", truncate(body, maxErrorBody))
		return &domain.ProviderUnavailableError{
			Provider:   provider,
			Op:         op,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%s http %d", provider, res.StatusCode),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ProviderUnavailableError{
			Provider:   provider,
			Op:         op,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// Number は数値・数値文字列・"NA" や null のいずれでも受け付ける JSON 数値です。
// 値を持たない場合 Valid は false になります。
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON は Number の JSON デコードを実装します。
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "N/A") {
			*n = Number{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// 数値として解釈できない値は欠損扱い
		*n = Number{}
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// Float は値を返します。欠損時は 0 です。
func (n Number) Float() float64 { return n.Value }

// Int64 は値を整数に切り捨てて返します。
func (n Number) Int64() int64 { return int64(n.Value) }

// Chunk は items を size 件ずつに分割します。size が 0 以下なら分割しません。
func Chunk(items []string, size int) [][]string {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]string{items}
	}
	out := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

// SnapshotOrFallback は取得できた相場が 1 件以上あればそれをスナップショットとして返し、
// 1 件も取得できなかった場合は固定のフォールバック値を返します。
func SnapshotOrFallback(provider string, quotes []entity.Quote, err error) entity.MarketSnapshot {
	if len(quotes) == 0 {
		slog.Warn("market snapshot unavailable, serving fallback", "provider", provider, "error", err)
		return entity.FallbackSnapshot(provider)
	}
	if err != nil {
		slog.Warn("market snapshot is partial", "provider", provider, "quotes", len(quotes), "error", err)
	}
	return entity.MarketSnapshot{Provider: provider, Quotes: quotes}
}

// BenchmarkSymbols は指定プロバイダー表記に変換したベンチマーク指数のティッカー一覧を返します。
// 戻り値の map はプロバイダー表記から正規ティッカーへの逆引きです。
func BenchmarkSymbols(mapping entity.SymbolMapping, provider string) ([]string, map[string]string) {
	symbols := make([]string, 0, len(entity.Benchmarks))
	reverse := make(map[string]string, len(entity.Benchmarks))
	for _, b := range entity.Benchmarks {
		s := mapping.Translate(provider, b.Symbol)
		symbols = append(symbols, s)
		reverse[strings.ToUpper(s)] = b.Symbol
	}
	return symbols, reverse
}

// Canonicalize はプロバイダー表記のシンボルを正規ティッカーに戻します。
// 名前と通貨が空の場合はベンチマーク定義で補完します。
func Canonicalize(quotes []entity.Quote, reverse map[string]string) []entity.Quote {
	byTicker := make(map[string]entity.Benchmark, len(entity.Benchmarks))
	for _, b := range entity.Benchmarks {
		byTicker[b.Symbol] = b
	}
	out := make([]entity.Quote, 0, len(quotes))
	for _, q := range quotes {
		if canon, ok := reverse[strings.ToUpper(q.Symbol)]; ok {
			q.Symbol = canon
			if b, ok := byTicker[canon]; ok {
				if q.Name == "" {
					q.Name = b.Name
				}
				if q.Currency == "" {
					q.Currency = b.Currency
				}
			}
		}
		out = append(out, q)
	}
	return out
}

// Package finnhub は Finnhub API 向けのプロバイダーアダプターを提供します。
// Finnhub の /quote は 1 銘柄ずつしか受け付けないため、Quote は銘柄ごとに並行して呼び出します。
package finnhub

import (
	"time"

	"market_backend/internal/platform/config"
)

const (
	defaultBaseURL     = "https://finnhub.io/api/v1"
	defaultMaxRPM      = 30
	defaultBatchSize   = 25
	defaultConcurrency = 5
)

// Config は Finnhub API クライアントの設定を保持します。
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxRPM      int
	BatchSize   int // 1 回の Quote で受け付けるシンボル数
	Concurrency int // 銘柄ごとのリクエストの同時実行数
}

// LoadConfig は環境変数から Finnhub の設定を読み込みます。
func LoadConfig() Config {
	return Config{
		APIKey:      config.String("FINNHUB_API_KEY", ""),
		BaseURL:     config.String("FINNHUB_BASE_URL", defaultBaseURL),
		Timeout:     config.Duration("PROVIDER_TIMEOUT", 10*time.Second),
		MaxRPM:      config.Int("FINNHUB_MAX_RPM", defaultMaxRPM),
		BatchSize:   defaultBatchSize,
		Concurrency: defaultConcurrency,
	}
}

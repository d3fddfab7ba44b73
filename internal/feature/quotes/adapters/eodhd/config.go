// Package eodhd は EODHD (EOD Historical Data) API 向けのプロバイダーアダプターを提供します。
package eodhd

import (
	"time"

	"market_backend/internal/platform/config"
)

const (
	defaultBaseURL   = "https://eodhd.com/api"
	defaultMaxRPM    = 20
	defaultBatchSize = 15
	// defaultExchangeSuffix は取引所サフィックスのないティッカーに付与されます。
	defaultExchangeSuffix = "US"
)

// Config は EODHD API クライアントの設定を保持します。
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxRPM    int
	BatchSize int
}

// LoadConfig は環境変数から EODHD の設定を読み込みます。
func LoadConfig() Config {
	return Config{
		APIKey:    config.String("EODHD_API_KEY", ""),
		BaseURL:   config.String("EODHD_BASE_URL", defaultBaseURL),
		Timeout:   config.Duration("PROVIDER_TIMEOUT", 10*time.Second),
		MaxRPM:    config.Int("EODHD_MAX_RPM", defaultMaxRPM),
		BatchSize: defaultBatchSize,
	}
}

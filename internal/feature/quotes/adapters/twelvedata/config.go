// Package twelvedata は Twelve Data API 向けのプロバイダーアダプターを提供します。
package twelvedata

import (
	"time"

	"market_backend/internal/platform/config"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"
	defaultMaxRPM  = 30
	// defaultBatchSize は /quote に 1 回で渡すシンボル数の上限です。
	defaultBatchSize = 50
)

// Config は Twelve Data API クライアントの設定を保持します。
type Config struct {
	APIKey    string        // 認証用 API キー
	BaseURL   string        // API のベース URL (例: "https://api.twelvedata.com")
	Timeout   time.Duration // 1 リクエストあたりのタイムアウト
	MaxRPM    int           // 1 分あたりの最大リクエスト数
	BatchSize int           // /quote の最大シンボル数
}

// LoadConfig は環境変数から Twelve Data の設定を読み込みます。
func LoadConfig() Config {
	return Config{
		APIKey:    config.String("TWELVE_DATA_API_KEY", ""),
		BaseURL:   config.String("TWELVE_DATA_BASE_URL", defaultBaseURL),
		Timeout:   config.Duration("PROVIDER_TIMEOUT", 10*time.Second),
		MaxRPM:    config.Int("TWELVE_DATA_MAX_RPM", defaultMaxRPM),
		BatchSize: defaultBatchSize,
	}
}

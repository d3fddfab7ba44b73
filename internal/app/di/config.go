// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"market_backend/internal/platform/config"
)

// Settings holds the process-wide knobs that span several features.
type Settings struct {
	Port           string
	JWTSecret      string
	Providers      []string // ordered; the first ready provider is tried first
	MappingFile    string
	StaleAfter     time.Duration
	SyncInterval   time.Duration
	MaxConcurrency int
	CallTimeout    time.Duration
}

// LoadSettings reads the settings from the environment.
func LoadSettings() Settings {
	return Settings{
		Port:           config.String("PORT", "8080"),
		JWTSecret:      config.String("JWT_SECRET", ""),
		Providers:      config.List("SYNC_PROVIDERS", []string{"twelvedata", "finnhub", "eodhd"}),
		MappingFile:    config.String("SYMBOL_MAPPING_FILE", ""),
		StaleAfter:     config.Duration("SYNC_STALE_AFTER", 5*time.Minute),
		SyncInterval:   config.Duration("SYNC_INTERVAL", 5*time.Minute),
		MaxConcurrency: config.Int("SYNC_MAX_CONCURRENCY", 4),
		CallTimeout:    config.Duration("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

// Package redis opens the optional Redis connection used for read caching.
package redis

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"market_backend/internal/platform/config"
)

// Config holds the Redis connection settings. An empty Host disables Redis.
type Config struct {
	Host     string
	Port     string
	Password string
	CacheTTL time.Duration
}

// LoadConfig reads REDIS_* variables.
func LoadConfig() Config {
	return Config{
		Host:     config.String("REDIS_HOST", ""),
		Port:     config.String("REDIS_PORT", "6379"),
		Password: config.String("REDIS_PASSWORD", ""),
		CacheTTL: config.Duration("PRICE_CACHE_TTL", time.Minute),
	}
}

// Enabled reports whether a Redis host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

// Addr returns host:port.
func (c Config) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// NewRedisClient connects and pings Redis.
// It returns (nil, nil) when Redis is not configured; callers then run without a cache.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("Redis not configured, running without cache")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}

// Package db opens the PostgreSQL connection and owns schema migration.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	identityadapters "market_backend/internal/feature/identity/adapters"
	priceadapters "market_backend/internal/feature/prices/adapters"
	pentity "market_backend/internal/feature/prices/domain/entity"
	qentity "market_backend/internal/feature/quotes/domain/entity"
	"market_backend/internal/platform/config"
)

const retryInterval = 3 * time.Second

// Config holds the connection settings.
// When InstanceName is set the Cloud SQL unix socket is used instead of Host/Port.
type Config struct {
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	InstanceName  string
	RunMigrations bool
}

// LoadConfigFromEnv reads DB_* variables.
func LoadConfigFromEnv() Config {
	return Config{
		User:          config.String("DB_USER", "postgres"),
		Password:      config.String("DB_PASSWORD", ""),
		Name:          config.String("DB_NAME", "market"),
		Host:          config.String("DB_HOST", "localhost"),
		Port:          config.String("DB_PORT", "5432"),
		SSLMode:       config.String("DB_SSLMODE", "disable"),
		InstanceName:  config.String("INSTANCE_CONNECTION_NAME", ""),
		RunMigrations: config.Bool("RUN_MIGRATIONS", false),
	}
}

// BuildDSN returns a libpq key/value DSN.
func BuildDSN(cfg Config) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{"host=" + quote(host)}
	if port != "" {
		parts = append(parts, "port="+quote(port))
	}
	parts = append(parts,
		"user="+quote(cfg.User),
		"password="+quote(cfg.Password),
		"dbname="+quote(cfg.Name),
		"sslmode="+quote(sslmode),
	)
	return strings.Join(parts, " ")
}

// quote escapes a libpq value when it is empty or contains spaces, quotes or backslashes.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
// The database container often starts after the API, so the first attempts may fail.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenPostgres opens a gorm connection with driver errors translated to gorm errors,
// so unique violations surface as gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// OpenDB connects with a 60 second retry budget and migrates when cfg.RunMigrations is set.
func OpenDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, OpenPostgres)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := Migrate(ctx, db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table and seeds the default tracked indices.
// Seeding never overwrites an existing index row.
func Migrate(ctx context.Context, db *gorm.DB) error {
	models := append([]any{&identityadapters.ExchangeModel{}, &identityadapters.SymbolModel{}}, priceadapters.Models()...)
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	indices := make([]pentity.TrackedIndex, 0, len(qentity.Benchmarks))
	for _, b := range qentity.Benchmarks {
		indices = append(indices, pentity.TrackedIndex{Symbol: b.Symbol, Name: b.Name, Currency: b.Currency})
	}
	if err := priceadapters.NewPriceStore(db, nil).SeedTrackedIndices(ctx, indices); err != nil {
		return fmt.Errorf("failed to seed tracked indices: %w", err)
	}
	slog.Info("database migrated", "tables", len(models), "tracked_indices", len(indices))
	return nil
}

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	priceadapters "market_backend/internal/feature/prices/adapters"
)

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "tcp",
			cfg:  Config{User: "testuser", Password: "testpass", Name: "testdb", Host: "localhost", Port: "5432"},
			want: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "cloud sql socket",
			cfg:  Config{User: "testuser", Password: "testpass", Name: "testdb", InstanceName: "project:region:instance"},
			want: "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "cloud sql takes precedence over host",
			cfg:  Config{User: "u", Password: "p", Name: "d", Host: "localhost", Port: "5432", InstanceName: "p:r:i", SSLMode: "require"},
			want: "host=/cloudsql/p:r:i user=u password=p dbname=d sslmode=require",
		},
		{
			name: "password with spaces and quotes",
			cfg:  Config{User: "u", Password: `it's a secret`, Name: "d", Host: "db", Port: "5432"},
			want: `host=db port=5432 user=u password='it\'s a secret' dbname=d sslmode=disable`,
		},
		{
			name: "empty password",
			cfg:  Config{User: "u", Name: "d", Host: "db", Port: "5432"},
			want: "host=db port=5432 user=u password='' dbname=d sslmode=disable",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 10*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	attempts := 0
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, refused
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, refused)
	assert.Equal(t, 1, attempts)
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("INSTANCE_CONNECTION_NAME", "")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, Config{
		User:          "envuser",
		Password:      "envpass",
		Name:          "envdb",
		Host:          "envhost",
		Port:          "5433",
		SSLMode:       "require",
		RunMigrations: true,
	}, cfg)
}

func TestMigrate_SeedsTrackedIndicesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migration is re-runnable")

	for _, table := range []string{"exchanges", "symbols", "symbol_prices", "tracked_indices", "index_prices"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	indices, err := priceadapters.NewPriceStore(db, nil).ActiveTrackedIndices(ctx)
	require.NoError(t, err)
	require.Len(t, indices, 6)
	assert.Equal(t, "SPX", indices[0].Symbol)
	assert.Equal(t, "TASI", indices[5].Symbol)
	assert.Equal(t, "SAR", indices[5].Currency)
}

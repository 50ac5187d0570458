package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "0123456789abcdef0123456789abcdef-pos"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POS_BACKEND_BASE_URL", "http://localhost:8000/api")
	t.Setenv("POS_AUTH_JWT_SECRET", strongSecret)
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		setBaseEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-gateway", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 100, cfg.Backend.PageSize)
		assert.Equal(t, 12*time.Hour, cfg.Terminal.IdleTTL)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, "memory", cfg.Idempotency.Store)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.True(t, cfg.Journal.Enabled)
		assert.Equal(t, "sqlite", cfg.Journal.Driver)
		assert.Equal(t, 5*time.Minute, cfg.MasterData.TTL)
		assert.Equal(t, "pos-gateway", cfg.Telemetry.ServiceName)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_APP_PORT", "9000")
		t.Setenv("POS_BACKEND_TIMEOUT", "5s")
		t.Setenv("POS_TERMINAL_DEFAULT_BRANCH_ID", "3")
		t.Setenv("POS_TERMINAL_DEFAULT_POINT_OF_SALE_ID", "7")
		t.Setenv("POS_IDEMPOTENCY_STORE", "redis")
		t.Setenv("POS_IDEMPOTENCY_ENABLED", "false")
		t.Setenv("POS_REDIS_HOST", "cache.local")
		t.Setenv("POS_JOURNAL_DRIVER", "postgres")
		t.Setenv("POS_MASTER_DATA_TTL", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, int64(3), cfg.Terminal.DefaultBranchID)
		assert.Equal(t, int64(7), cfg.Terminal.DefaultPointOfSaleID)
		assert.Equal(t, "redis", cfg.Idempotency.Store)
		assert.False(t, cfg.Idempotency.Enabled)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, "postgres", cfg.Journal.Driver)
		assert.Equal(t, 30*time.Second, cfg.MasterData.TTL)
	})

	t.Run("requires backend base url", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.base_url is required")
	})

	t.Run("rejects relative backend url", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "/api")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absolute URL")
	})

	t.Run("rejects unknown idempotency store", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_IDEMPOTENCY_STORE", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.store")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_JOURNAL_MAX_OPEN_CONNS", "2")
		t.Setenv("POS_JOURNAL_MAX_IDLE_CONNS", "5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates sampling ratio", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires https backend in production", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("requires SSL for postgres journal in production", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "https://erp.example.com/api")
		t.Setenv("POS_AUTH_JWT_SECRET", strongSecret)
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_JOURNAL_DRIVER", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "journal.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "https://erp.example.com/api")
		t.Setenv("POS_AUTH_JWT_SECRET", strongSecret)
		t.Setenv("POS_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestLoad_AuthValidation(t *testing.T) {
	t.Run("requires a token secret", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_AUTH_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt_secret is required")
	})

	t.Run("terminal header allowed without secret outside production", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("POS_AUTH_JWT_SECRET", "")
		t.Setenv("POS_AUTH_ALLOW_TERMINAL_HEADER", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Auth.AllowTerminalHeader)
	})

	t.Run("terminal header rejected in production", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "https://erp.example.com/api")
		t.Setenv("POS_AUTH_JWT_SECRET", strongSecret)
		t.Setenv("POS_AUTH_ALLOW_TERMINAL_HEADER", "true")
		t.Setenv("POS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allow_terminal_header")
	})

	t.Run("short secret rejected in production", func(t *testing.T) {
		t.Setenv("POS_BACKEND_BASE_URL", "https://erp.example.com/api")
		t.Setenv("POS_AUTH_JWT_SECRET", "short")
		t.Setenv("POS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})
}

func TestJournalConfig_DSN(t *testing.T) {
	t.Run("sqlite returns the path", func(t *testing.T) {
		cfg := JournalConfig{Driver: "sqlite", Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := JournalConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "pos",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
		assert.Contains(t, dsn, "sslmode=disable")
		assert.Contains(t, dsn, "localhost:5432")
	})
}

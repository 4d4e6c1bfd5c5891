package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoad_SQLiteNeedsNoCredentials(t *testing.T) {
    t.Setenv("DB_DRIVER", "sqlite")
    t.Setenv("SQLITE_PATH", "/tmp/graves.db")
    t.Setenv("API_PREFIX", "v1/")
    t.Setenv("APP_ENV", "test")
    t.Setenv("DB_TX_TIMEOUT", "")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, DriverSQLite, cfg.DBDriver)
    assert.Equal(t, "/tmp/graves.db", cfg.SQLitePath)
    assert.Equal(t, "/v1", cfg.APIPrefix)
    assert.Equal(t, 5*time.Second, cfg.DBTxTimeout)
    assert.False(t, cfg.IsProduction())
}

func TestLoad_MySQLReportsAllMissingVars(t *testing.T) {
    t.Setenv("DB_DRIVER", "mysql")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_NAME", "")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_NAME")
    assert.Contains(t, err.Error(), "DB_USER")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
    t.Setenv("DB_DRIVER", "oracle")

    _, err := Load()
    require.Error(t, err)
}

func TestLoad_ClampsPoolSettings(t *testing.T) {
    t.Setenv("DB_DRIVER", "sqlite")
    t.Setenv("DB_MAX_OPEN_CONNS", "0")
    t.Setenv("DB_MAX_IDLE_CONNS", "8")
    t.Setenv("APP_ENV", "production")
    t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 1, cfg.DBMaxOpenConns)
    assert.Equal(t, 1, cfg.DBMaxIdleConns)
    assert.True(t, cfg.IsProduction())
    assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
    cfg := LoadRateLimitConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, 100, cfg.Capacity)
    assert.Equal(t, 9*time.Second, cfg.RefillInterval)
    assert.InDelta(t, 1.0/9.0, cfg.RefillRate(), 1e-9)
}

func TestLoadRateLimitConfig_RefillEveryOverrides(t *testing.T) {
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "5")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig_ParsesMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "1m")

    cfg := LoadCacheConfig()
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
    assert.Equal(t, time.Minute, cfg.TTL)
}

func TestNewRedisClient_DisabledReturnsNil(t *testing.T) {
    assert.Nil(t, NewRedisClient(RedisConfig{Enabled: false}))
}

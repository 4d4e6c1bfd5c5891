package config

// Redis backs the distributed rate limiter and the response cache.  It is
// optional: when the server cannot be reached at startup the gateway falls
// back to an in-process limiter and serves reads uncached.

import (
    "context"
    "crypto/tls"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the Redis client.
//   REDIS_ADDR – host:port shorthand (REDIS_HOST/REDIS_PORT take precedence when both set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
//   REDIS_DIAL_TIMEOUT – how long the startup ping may take
type RedisConfig struct {
    Enabled     bool
    Addr        string
    Password    string
    DB          int
    TLS         bool
    DialTimeout time.Duration
}

// LoadRedisConfig reads the REDIS_* variables.
func LoadRedisConfig() RedisConfig {
    addr := getenv("REDIS_ADDR", "localhost:6379")
    host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", "")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    tlsEnv := getenv("REDIS_TLS", "")
    return RedisConfig{
        Enabled:     envBool("REDIS_ENABLED", true),
        Addr:        addr,
        Password:    getenv("REDIS_PASSWORD", ""),
        DB:          envInt("REDIS_DB", 0),
        TLS:         strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
        DialTimeout: envDur("REDIS_DIAL_TIMEOUT", 2*time.Second),
    }
}

// NewRedisClient builds a client from cfg and pings it.  It returns nil when
// Redis is disabled or unreachable; callers degrade by skipping the cache
// and limiting requests in process.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    if !cfg.Enabled {
        return nil
    }
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:        cfg.Addr,
        Password:    cfg.Password,
        DB:          cfg.DB,
        TLSConfig:   tlsConf,
        DialTimeout: cfg.DialTimeout,
    })
    ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}

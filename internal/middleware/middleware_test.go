package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/grave-assignment/internal/config"
)

func limiterConfig(capacity int) config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       capacity,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            time.Hour,
        KeyStrategy:    "ip",
        Prefix:         "rl",
    }
}

func serve(e *echo.Echo, remote string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/api/sections", nil)
    req.RemoteAddr = remote
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestRateLimiter_LocalAllowsThenRejects(t *testing.T) {
    cfg := limiterConfig(2)
    e := echo.New()
    e.Use(NewRateLimiter(cfg, nil, NewLocalStore(cfg)))
    calls := 0
    e.GET("/api/sections", func(c echo.Context) error {
        calls++
        return c.NoContent(http.StatusOK)
    })

    rec := serve(e, "10.0.0.1:1234")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

    require.Equal(t, http.StatusOK, serve(e, "10.0.0.1:1234").Code)

    rec = serve(e, "10.0.0.1:1234")
    require.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))
    assert.JSONEq(t, `{"success":false,"message":"`+rateLimitMessage+`"}`, rec.Body.String())

    // other clients have their own bucket
    assert.Equal(t, http.StatusOK, serve(e, "10.0.0.2:1234").Code)
    assert.Equal(t, 3, calls)
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
    cfg := limiterConfig(1)
    cfg.Enabled = false
    e := echo.New()
    e.Use(NewRateLimiter(cfg, nil, NewLocalStore(cfg)))
    e.GET("/api/sections", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

    for i := 0; i < 5; i++ {
        assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1:1").Code)
    }
}

func TestLocalStore_CleanupEvictsIdleKeys(t *testing.T) {
    cfg := limiterConfig(5)
    cfg.TTL = time.Minute
    s := NewLocalStore(cfg)
    now := time.Now()
    s.now = func() time.Time { return now }

    s.Take("a")
    s.Take("b")
    require.Equal(t, 2, s.Len())

    now = now.Add(30 * time.Second)
    s.Take("b")
    now = now.Add(45 * time.Second)
    s.Cleanup()
    assert.Equal(t, 1, s.Len())
}

func TestLocalStore_RefillsOverTime(t *testing.T) {
    cfg := limiterConfig(1)
    cfg.RefillInterval = time.Second
    s := NewLocalStore(cfg)
    now := time.Now()
    s.now = func() time.Time { return now }

    ok, _, _ := s.Take("k")
    require.True(t, ok)
    ok, _, retry := s.Take("k")
    require.False(t, ok)
    assert.InDelta(t, time.Second.Seconds(), retry.Seconds(), 0.01)

    now = now.Add(time.Second)
    ok, _, _ = s.Take("k")
    assert.True(t, ok)
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/api/assignments", nil)
    req.RemoteAddr = "10.1.1.1:80"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/api/assignments")

    cfg := limiterConfig(1)
    assert.Equal(t, "rl:ip:10.1.1.1", buildRateKey(cfg, c))
    cfg.KeyStrategy = "ip_route"
    assert.Equal(t, "rl:ip:10.1.1.1:route:POST /api/assignments", buildRateKey(cfg, c))
}

func TestPayloadCodec(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"success":true}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"success":true}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 1})
    assert.False(t, ok)
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
    key := func(target string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/api/sections")
        return cacheKeyFrom(cfg, c)
    }
    assert.Equal(t, key("/api/sections?a=1"), key("/api/sections?a=1"))
    assert.NotEqual(t, key("/api/sections?a=1"), key("/api/sections?a=2"))
    assert.Contains(t, key("/api/sections"), "cache:")
}

func TestCacheWithoutRedisPassesThrough(t *testing.T) {
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, Prefix: "cache"}
    e := echo.New()
    e.Use(NewRedisCache(cfg, nil), InvalidateCache(cfg, nil))
    e.GET("/api/sections", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

    rec := serve(e, "10.0.0.1:1")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
}

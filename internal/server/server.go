// Package server assembles the Echo instance: shared middleware, the
// validator, the error handler and the cemetery routes.
package server

import (
    "database/sql"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    emw "github.com/labstack/echo/v4/middleware"
    "github.com/labstack/gommon/log"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/grave-assignment/internal/config"
    "github.com/iliyamo/grave-assignment/internal/handler"
    "github.com/iliyamo/grave-assignment/internal/middleware"
    "github.com/iliyamo/grave-assignment/internal/repository"
    "github.com/iliyamo/grave-assignment/internal/router"
    "github.com/iliyamo/grave-assignment/internal/service"
    "github.com/iliyamo/grave-assignment/internal/validation"
)

// Deps are the process-wide resources the server is built from.  Redis,
// LocalLimiter and Publisher are optional.
type Deps struct {
    Config       config.Config
    RateLimit    config.RateLimitConfig
    Cache        config.CacheConfig
    DB           *sql.DB
    Redis        *redis.Client
    LocalLimiter *middleware.LocalStore
    Publisher    service.Publisher
}

// New returns a ready-to-start Echo instance.
func New(d Deps) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.Logger.SetLevel(ParseLevel(d.Config.LogLevel))
    v := validation.New()
    e.Validator = v
    e.HTTPErrorHandler = handler.ErrorHandler(!d.Config.IsProduction())

    e.Use(emw.Recover())
    e.Use(emw.RequestIDWithConfig(emw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(requestLogger())
    e.Use(emw.Secure())
    e.Use(emw.CORSWithConfig(emw.CORSConfig{AllowOrigins: d.Config.CORSAllowOrigins}))
    bodyLimit := d.Config.BodyLimit
    if bodyLimit == "" {
        bodyLimit = "10M"
    }
    e.Use(emw.BodyLimit(bodyLimit))
    local := d.LocalLimiter
    if d.Redis != nil {
        local = nil
    }
    e.Use(middleware.NewRateLimiter(d.RateLimit, d.Redis, local))

    sections := repository.NewSectionRepo(d.DB)
    graves := repository.NewGraveRepo(d.DB, d.Config.DBDriver)
    deceased := repository.NewDeceasedRepo(d.DB)
    assignments := repository.NewAssignmentRepo(d.DB)
    engine := service.NewAssignmentService(d.DB, graves, sections, deceased, assignments, v,
        service.Options{Publisher: d.Publisher, Logger: e.Logger, TxTimeout: d.Config.DBTxTimeout})

    h := handler.New(d.DB, sections, graves, deceased, assignments, repository.NewStatisticsRepo(d.DB), engine, d.Config.DBTxTimeout)
    router.RegisterRoutes(e, d.Config.APIPrefix, h, router.Middlewares{
        Cache:      middleware.NewRedisCache(d.Cache, d.Redis),
        Invalidate: middleware.InvalidateCache(d.Cache, d.Redis),
    })
    return e
}

// requestLogger writes one JSON line per request through the Echo logger.
func requestLogger() echo.MiddlewareFunc {
    return emw.RequestLoggerWithConfig(emw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        LogValuesFunc: func(c echo.Context, v emw.RequestLoggerValues) error {
            entry := log.JSON{
                "id":         v.RequestID,
                "remote_ip":  v.RemoteIP,
                "method":     v.Method,
                "uri":        v.URI,
                "status":     v.Status,
                "latency_ms": v.Latency.Milliseconds(),
            }
            if v.Error != nil {
                entry["error"] = v.Error.Error()
            }
            c.Logger().Infoj(entry)
            return nil
        },
    })
}

// ParseLevel maps LOG_LEVEL onto a gommon level; unknown values mean INFO.
func ParseLevel(s string) log.Lvl {
    switch strings.ToUpper(s) {
    case "DEBUG":
        return log.DEBUG
    case "WARN", "WARNING":
        return log.WARN
    case "ERROR":
        return log.ERROR
    case "OFF":
        return log.OFF
    }
    return log.INFO
}

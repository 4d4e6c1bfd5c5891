package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health is used by load balancers and monitoring to check that the API can
// reach its store.  It answers 200 when a ping succeeds and 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if err := h.DB.PingContext(ctx); err != nil {
        c.Logger().Warnf("health: ping failed: %v", err)
        return fail(c, http.StatusServiceUnavailable, "Database connection failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":   true,
        "message":   "API is healthy",
        "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
    })
}

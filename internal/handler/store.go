package handler

import (
    "context"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/database"
)

// ctx derives the request context bounded by the query timeout.
func (h *Handler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), h.QueryTimeout)
}

// storeError wraps an unexpected repository error.
func storeError(err error) error {
    if database.IsRetryable(err) {
        return apperr.Unavailable(err)
    }
    return apperr.Internal(err)
}

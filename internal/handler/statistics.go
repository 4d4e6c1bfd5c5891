package handler

import "github.com/labstack/echo/v4"

// GetStatistics handles GET /statistics: per-section grave counts with
// occupancy and overall burial counts.
func (h *Handler) GetStatistics(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    stats, err := h.Statistics.Get(ctx)
    if err != nil {
        return storeError(err)
    }
    return ok(c, stats)
}

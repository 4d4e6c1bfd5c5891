package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/grave-assignment/internal/handler"
)

// Middlewares are applied to selected routes.  Cache serves the aggregate
// listings from Redis; Invalidate clears it after successful writes.  Nil
// entries are skipped.
type Middlewares struct {
	Cache      echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
}

// RegisterRoutes mounts the cemetery API under prefix (e.g. "/api").
func RegisterRoutes(e *echo.Echo, prefix string, h *handler.Handler, m Middlewares) {
	cached := only(m.Cache)
	g := e.Group(prefix, only(m.Invalidate)...)

	g.GET("/health", h.Health)

	// Cemetery sections
	g.GET("/sections", h.ListSections, cached...)
	g.GET("/sections/:sectionId", h.GetSection)
	g.POST("/sections", h.CreateSection)

	// Graves.  /graves/available/:sectionId is registered before
	// /graves/:graveId; echo prefers the static segment either way.
	g.GET("/graves", h.ListGraves)
	g.GET("/graves/available/:sectionId", h.ListAvailableGraves)
	g.GET("/graves/:graveId", h.GetGrave)
	g.POST("/graves", h.CreateGrave)

	// Deceased persons
	g.GET("/deceased", h.ListDeceased)
	g.GET("/deceased/:id", h.GetDeceased)
	g.POST("/deceased", h.CreateDeceased)

	// Grave assignments
	g.GET("/assignments", h.ListAssignments)
	g.GET("/assignments/:id", h.GetAssignment)
	g.POST("/assignments", h.CreateAssignment)
	g.PATCH("/assignments/:id/complete", h.CompleteAssignment)

	g.GET("/statistics", h.GetStatistics, cached...)
}

func only(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

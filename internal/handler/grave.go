package handler

import (
    "errors"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/model"
    "github.com/iliyamo/grave-assignment/internal/repository"
)

type createGraveRequest struct {
    GraveID   string `json:"grave_id" validate:"notblank" msg:"Grave ID is required"`
    Section   string `json:"section" validate:"notblank" msg:"Section is required"`
    GraveRow  *int   `json:"grave_row" validate:"required,min=1" msg:"Grave row must be a positive integer"`
    GravePlot *int   `json:"grave_plot" validate:"required,min=1" msg:"Grave plot must be a positive integer"`
    Status    string `json:"status" validate:"omitempty,oneof=available maintenance" msg:"Status must be available or maintenance"`
}

// ListGraves handles GET /graves with optional section, status, page and
// limit query parameters.
func (h *Handler) ListGraves(c echo.Context) error {
    status := model.GraveStatus(c.QueryParam("status"))
    if status != "" && !status.Valid() {
        return apperr.Validation(apperr.FieldError{Field: "status", Message: "Invalid status", Value: string(status)})
    }
    page, err := parsePage(c)
    if err != nil {
        return err
    }
    f := repository.GraveFilter{Section: c.QueryParam("section"), Status: status, Limit: page.Limit, Offset: page.offset()}

    ctx, cancel := h.ctx(c)
    defer cancel()
    total, err := h.Graves.Count(ctx, f)
    if err != nil {
        return storeError(err)
    }
    items, err := h.Graves.List(ctx, f)
    if err != nil {
        return storeError(err)
    }
    return paged(c, items, page.of(total))
}

// ListAvailableGraves handles GET /graves/available/:sectionId.
func (h *Handler) ListAvailableGraves(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    items, err := h.Graves.ListAvailableBySection(ctx, c.Param("sectionId"))
    if err != nil {
        return storeError(err)
    }
    return ok(c, items)
}

// GetGrave handles GET /graves/:graveId.
func (h *Handler) GetGrave(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    g, err := h.Graves.GetByID(ctx, c.Param("graveId"))
    if err != nil {
        if errors.Is(err, repository.ErrGraveNotFound) {
            return apperr.NotFound("grave", "Grave not found")
        }
        return storeError(err)
    }
    return ok(c, g)
}

// CreateGrave handles POST /graves.  A grave in an unknown section is a
// validation failure rather than a missing resource.
func (h *Handler) CreateGrave(c echo.Context) error {
    var body createGraveRequest
    if err := bindAndValidate(c, &body); err != nil {
        return err
    }
    g := &model.Grave{
        GraveID:   body.GraveID,
        Section:   body.Section,
        GraveRow:  *body.GraveRow,
        GravePlot: *body.GravePlot,
        Status:    model.GraveStatus(body.Status),
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    if err := h.Graves.Create(ctx, g); err != nil {
        switch {
        case errors.Is(err, repository.ErrDuplicate):
            return apperr.Conflict("grave", "Grave ID already exists")
        case errors.Is(err, repository.ErrInvalidReference):
            return apperr.Validation(apperr.FieldError{Field: "section", Message: "Cemetery section not found", Value: body.Section})
        case errors.Is(err, repository.ErrInvalidStatus):
            return apperr.Validation(apperr.FieldError{Field: "status", Message: "Status must be available or maintenance", Value: body.Status})
        }
        return storeError(err)
    }
    return created(c, "Grave created successfully", echo.Map{"data": g})
}

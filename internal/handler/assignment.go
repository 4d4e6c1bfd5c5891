package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/repository"
    "github.com/iliyamo/grave-assignment/internal/service"
)

// ListAssignments handles GET /assignments.  Results are joined with the
// deceased person, grave and section, newest first, and may be filtered by
// grave_id or deceased_id; a caller unsure whether an earlier create
// committed can look its grave up here.
func (h *Handler) ListAssignments(c echo.Context) error {
    page, err := parsePage(c)
    if err != nil {
        return err
    }
    f := repository.AssignmentFilter{GraveID: c.QueryParam("grave_id"), Limit: page.Limit, Offset: page.offset()}
    if v := c.QueryParam("deceased_id"); v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil || id == 0 {
            return apperr.Validation(apperr.FieldError{Field: "deceased_id", Message: "Invalid deceased person ID", Value: v})
        }
        f.DeceasedID = id
    }

    ctx, cancel := h.ctx(c)
    defer cancel()
    items, total, err := h.Assignments.List(ctx, f)
    if err != nil {
        return storeError(err)
    }
    return paged(c, items, page.of(total))
}

// GetAssignment handles GET /assignments/:id.
func (h *Handler) GetAssignment(c echo.Context) error {
    id, err := parseID(c, "id", "Invalid assignment ID")
    if err != nil {
        return err
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    a, err := h.Assignments.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrAssignmentNotFound) {
            return apperr.NotFound("assignment", "Grave assignment not found")
        }
        return storeError(err)
    }
    return ok(c, a)
}

// CreateAssignment handles POST /assignments.  A missing grave or deceased
// person and an unavailable grave are reported as 400, with the engine's
// message.
func (h *Handler) CreateAssignment(c echo.Context) error {
    var in service.CreateAssignmentInput
    if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
        return invalidBody()
    }
    a, err := h.Engine.CreateAssignment(c.Request().Context(), in)
    if err != nil {
        if ae, ok := apperr.As(err); ok && (ae.Kind == apperr.KindNotFound || ae.Kind == apperr.KindConflict) {
            return &apperr.Error{Kind: apperr.KindValidation, Resource: ae.Resource, Message: ae.Message}
        }
        return err
    }
    return created(c, "Grave assignment created successfully", echo.Map{"assignment_id": a.AssignmentID, "data": a})
}

// CompleteAssignment handles PATCH /assignments/:id/complete.
func (h *Handler) CompleteAssignment(c echo.Context) error {
    id, err := parseID(c, "id", "Invalid assignment ID")
    if err != nil {
        return err
    }
    if err := h.Engine.CompleteAssignment(c.Request().Context(), id); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, envelope{Success: true, Message: "Burial marked as completed"})
}

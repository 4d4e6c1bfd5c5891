package handler

import (
    "errors"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/model"
    "github.com/iliyamo/grave-assignment/internal/repository"
)

type createSectionRequest struct {
    SectionID      string  `json:"section_id" validate:"notblank" msg:"Section ID is required"`
    SectionName    string  `json:"section_name" validate:"notblank" msg:"Section name is required"`
    TotalPlots     *int    `json:"total_plots" validate:"required,min=0" msg:"Total plots must be a positive integer"`
    AvailablePlots *int    `json:"available_plots" validate:"required,min=0" msg:"Available plots must be a positive integer"`
    Description    *string `json:"description"`
}

// ListSections handles GET /sections and returns every section with grave
// counts computed from its graves.
func (h *Handler) ListSections(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    items, err := h.Sections.ListWithCounts(ctx)
    if err != nil {
        return storeError(err)
    }
    return ok(c, items)
}

// GetSection handles GET /sections/:sectionId.
func (h *Handler) GetSection(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    s, err := h.Sections.GetByID(ctx, c.Param("sectionId"))
    if err != nil {
        if errors.Is(err, repository.ErrSectionNotFound) {
            return apperr.NotFound("section", "Cemetery section not found")
        }
        return storeError(err)
    }
    return ok(c, s)
}

// CreateSection handles POST /sections.
func (h *Handler) CreateSection(c echo.Context) error {
    var body createSectionRequest
    if err := bindAndValidate(c, &body); err != nil {
        return err
    }
    s := &model.Section{
        SectionID:      body.SectionID,
        SectionName:    body.SectionName,
        TotalPlots:     *body.TotalPlots,
        AvailablePlots: *body.AvailablePlots,
        Description:    body.Description,
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    if err := h.Sections.Create(ctx, s); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return apperr.Conflict("section", "Section ID already exists")
        }
        return storeError(err)
    }
    return created(c, "Cemetery section created successfully", echo.Map{"data": s})
}

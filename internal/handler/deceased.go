package handler

import (
    "errors"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/model"
    "github.com/iliyamo/grave-assignment/internal/repository"
)

type createDeceasedRequest struct {
    FullNameArabic  string  `json:"full_name_arabic" validate:"notblank" msg:"Arabic name is required"`
    FullNameEnglish *string `json:"full_name_english"`
    EID             string  `json:"eid" validate:"notblank" msg:"Emirates ID is required"`
    AgeAtDeath      *int    `json:"age_at_death" validate:"required,min=0" msg:"Age at death must be a positive integer"`
    Gender          string  `json:"gender" validate:"required,oneof=male female" msg:"Gender must be male or female"`
    DateOfDeath     string  `json:"date_of_death" validate:"required,datetime=2006-01-02" msg:"Valid date of death is required"`
    DateOfBurial    *string `json:"date_of_burial" validate:"omitempty,datetime=2006-01-02" msg:"Invalid burial date"`
    Nationality     *string `json:"nationality"`
    SpecialRequests *string `json:"special_requests"`
}

// ListDeceased handles GET /deceased with an optional search term.
func (h *Handler) ListDeceased(c echo.Context) error {
    ctx, cancel := h.ctx(c)
    defer cancel()
    items, err := h.Deceased.List(ctx, c.QueryParam("search"))
    if err != nil {
        return storeError(err)
    }
    return ok(c, items)
}

// GetDeceased handles GET /deceased/:id.
func (h *Handler) GetDeceased(c echo.Context) error {
    id, err := parseID(c, "id", "Invalid deceased person ID")
    if err != nil {
        return err
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    d, err := h.Deceased.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrDeceasedNotFound) {
            return apperr.NotFound("deceased person", "Deceased person not found")
        }
        return storeError(err)
    }
    return ok(c, d)
}

// CreateDeceased handles POST /deceased and answers with the generated
// deceased_id.
func (h *Handler) CreateDeceased(c echo.Context) error {
    var body createDeceasedRequest
    if err := bindAndValidate(c, &body); err != nil {
        return err
    }
    d := &model.Deceased{
        FullNameArabic:  body.FullNameArabic,
        FullNameEnglish: body.FullNameEnglish,
        EID:             body.EID,
        AgeAtDeath:      *body.AgeAtDeath,
        Gender:          body.Gender,
        DateOfDeath:     body.DateOfDeath,
        DateOfBurial:    body.DateOfBurial,
        Nationality:     body.Nationality,
        SpecialRequests: body.SpecialRequests,
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    if err := h.Deceased.Create(ctx, d); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return apperr.Conflict("deceased person", "Emirates ID already exists")
        }
        return storeError(err)
    }
    return created(c, "Deceased person record created successfully", echo.Map{"deceased_id": d.DeceasedID, "data": d})
}

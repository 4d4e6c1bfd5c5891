package handler

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/grave-assignment/internal/apperr"
)

const (
    defaultPageLimit = 50
    maxPageLimit     = 100
)

type pageRequest struct {
    Page  int
    Limit int
}

// parsePage reads ?page= and ?limit=.  Both default when absent and must
// be positive integers when present; limit is capped at maxPageLimit.
func parsePage(c echo.Context) (pageRequest, error) {
    p := pageRequest{Page: 1, Limit: defaultPageLimit}
    var fields []apperr.FieldError
    if v := c.QueryParam("page"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            fields = append(fields, apperr.FieldError{Field: "page", Message: "page must be a positive integer", Value: v})
        } else {
            p.Page = n
        }
    }
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            fields = append(fields, apperr.FieldError{Field: "limit", Message: "limit must be a positive integer", Value: v})
        } else {
            p.Limit = min(n, maxPageLimit)
        }
    }
    if len(fields) > 0 {
        return pageRequest{}, apperr.Validation(fields...)
    }
    return p, nil
}

func (p pageRequest) offset() int { return (p.Page - 1) * p.Limit }

func (p pageRequest) of(total int) Pagination {
    return Pagination{
        Page:       p.Page,
        Limit:      p.Limit,
        Total:      total,
        TotalPages: (total + p.Limit - 1) / p.Limit,
    }
}

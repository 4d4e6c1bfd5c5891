package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/labstack/gommon/log"

    "github.com/iliyamo/grave-assignment/internal/apperr"
)

// envelope is the body of every API response.
type envelope struct {
    Success bool                `json:"success"`
    Message string              `json:"message,omitempty"`
    Data    any                 `json:"data,omitempty"`
    Errors  []apperr.FieldError `json:"errors,omitempty"`
    Error   string              `json:"error,omitempty"` // internal detail, never set in production
}

// Pagination describes one page of a listing.
type Pagination struct {
    Page       int `json:"page"`
    Limit      int `json:"limit"`
    Total      int `json:"total"`
    TotalPages int `json:"total_pages"`
}

func ok(c echo.Context, data any) error {
    return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func paged(c echo.Context, data any, p Pagination) error {
    return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "pagination": p})
}

// created answers 201 with message and extra top-level fields such as the
// generated id.
func created(c echo.Context, message string, fields echo.Map) error {
    body := echo.Map{"success": true, "message": message}
    for k, v := range fields {
        body[k] = v
    }
    return c.JSON(http.StatusCreated, body)
}

func fail(c echo.Context, status int, message string) error {
    return c.JSON(status, envelope{Success: false, Message: message})
}

// invalidBody is returned when the request body cannot be decoded.
func invalidBody() error {
    return apperr.Validation(apperr.FieldError{Field: "body", Message: "Invalid request body"})
}

// bindAndValidate decodes the JSON body into v and runs the registered
// validator on it.
func bindAndValidate(c echo.Context, v any) error {
    if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
        return invalidBody()
    }
    return c.Validate(v)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name, message string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, apperr.Validation(apperr.FieldError{Field: name, Message: message, Value: c.Param(name)})
    }
    return id, nil
}

// ErrorHandler renders every error returned by a handler or middleware in
// the response envelope.  apperr kinds choose the status; echo errors keep
// theirs.  Internal details are attached only when showDetails is set.
func ErrorHandler(showDetails bool) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        status, body := render(err, showDetails)
        if status >= http.StatusInternalServerError {
            c.Logger().Errorj(log.JSON{
                "msg":        "request failed",
                "request_id": c.Response().Header().Get(echo.HeaderXRequestID),
                "method":     c.Request().Method,
                "uri":        c.Request().RequestURI,
                "status":     status,
                "error":      err.Error(),
            })
        }
        if status == http.StatusServiceUnavailable {
            c.Response().Header().Set("Retry-After", "1")
        }
        var werr error
        if c.Request().Method == http.MethodHead {
            werr = c.NoContent(status)
        } else {
            werr = c.JSON(status, body)
        }
        if werr != nil {
            c.Logger().Error(werr)
        }
    }
}

func render(err error, showDetails bool) (int, envelope) {
    if ae, ok := apperr.As(err); ok {
        body := envelope{Success: false, Message: ae.Message, Errors: ae.Fields}
        status := statusOf(ae.Kind)
        if showDetails && ae.Err != nil && status >= http.StatusInternalServerError {
            body.Error = ae.Err.Error()
        }
        return status, body
    }

    var he *echo.HTTPError
    if errors.As(err, &he) {
        switch he.Code {
        case http.StatusNotFound:
            return he.Code, envelope{Message: "Endpoint not found"}
        case http.StatusMethodNotAllowed:
            return he.Code, envelope{Message: "Method not allowed"}
        case http.StatusRequestEntityTooLarge:
            return he.Code, envelope{Message: "Request body too large"}
        }
        msg := http.StatusText(he.Code)
        if s, ok := he.Message.(string); ok && s != "" {
            msg = s
        }
        return he.Code, envelope{Message: msg}
    }

    body := envelope{Message: "Internal server error"}
    if showDetails {
        body.Error = err.Error()
    }
    return http.StatusInternalServerError, body
}

func statusOf(k apperr.Kind) int {
    switch k {
    case apperr.KindValidation:
        return http.StatusBadRequest
    case apperr.KindNotFound:
        return http.StatusNotFound
    case apperr.KindConflict:
        return http.StatusConflict
    case apperr.KindUnavailable:
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}

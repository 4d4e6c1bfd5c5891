// Package validation checks the shape of incoming requests with
// go-playground/validator.  Every violated field is reported at once, using
// the JSON field name and the message from the field's `msg` tag.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/grave-assignment/internal/apperr"
)

// clockPattern accepts H:MM:SS or HH:MM:SS with hour 0-23.
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`)

// Validator wraps a configured *validator.Validate.  It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags used by the request types:
//   hhmmss  – a clock time matching clockPattern
//   notblank – a string containing something other than whitespace
//   posint   – a decimal integer greater than zero
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("hhmmss", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("posint", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseUint(fl.Field().String(), 10, 64)
		return err == nil && n > 0
	})
	return &Validator{v: v}
}

// Struct validates s.  It returns nil or an *apperr.Error of kind
// validation listing every violated field.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Validation(apperr.FieldError{Field: "body", Message: "Invalid request body"})
	}
	typ := reflect.TypeOf(s)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	fields := make([]apperr.FieldError, 0, len(ve))
	seen := make(map[string]bool, len(ve))
	for _, fe := range ve {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: message(typ, fe),
			Value:   fe.Value(),
		})
	}
	return apperr.Validation(fields...)
}

// Validate satisfies echo.Validator.
func (val *Validator) Validate(i interface{}) error {
	return val.Struct(i)
}

// NormalizeClock pads a validated H:MM:SS value to HH:MM:SS.
func NormalizeClock(s string) string {
	if len(s) == len("9:00:00") {
		return "0" + s
	}
	return s
}

func message(typ reflect.Type, fe validator.FieldError) string {
	if typ.Kind() == reflect.Struct {
		if f, ok := typ.FieldByName(fe.StructField()); ok {
			if m := f.Tag.Get("msg"); m != "" {
				return m
			}
		}
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date (YYYY-MM-DD)"
	}
	return fe.Field() + " is invalid"
}

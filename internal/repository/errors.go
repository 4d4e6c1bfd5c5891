// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// assignment service and the handlers to distinguish between different
// failure scenarios without looking at driver error text. Driver errors are
// classified once, here, through the database package.
package repository

import (
	"errors"

	"github.com/iliyamo/grave-assignment/internal/database"
)

// ErrDuplicate is returned when an insert violates a unique key, such as a
// section_id, grave_id or Emirates ID that already exists. Handlers
// translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidReference is returned when an insert references a parent row
// that does not exist (for example a grave in an unknown section).
var ErrInvalidReference = errors.New("invalid reference")

// ErrConflict is returned when a conditional update finds the row in an
// unexpected state, e.g. a grave that is no longer available.
var ErrConflict = errors.New("conflict")

// ErrInvalidStatus is returned when a grave is created in a status it may
// only reach through an assignment.
var ErrInvalidStatus = errors.New("invalid status")

// ErrDeceasedAssigned is returned when an insert would give a deceased
// person a second grave assignment.
var ErrDeceasedAssigned = errors.New("deceased person already assigned")

// classify maps constraint violations onto the sentinels above and returns
// any other error unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsDuplicate(err):
		return ErrDuplicate
	case database.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return err
}

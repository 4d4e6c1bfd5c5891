package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_FollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("create assignment: %w", Conflict("grave", "Grave is not available for assignment"))

	assert.Equal(t, KindConflict, KindOf(err))
	ae, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "grave", ae.Resource)
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Unavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestValidation_KeepsEveryField(t *testing.T) {
	err := Validation(
		FieldError{Field: "grave_id", Message: "Grave ID is required"},
		FieldError{Field: "burial_time", Message: "Valid burial time is required (HH:MM:SS)"},
	)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Len(t, err.Fields, 2)
}

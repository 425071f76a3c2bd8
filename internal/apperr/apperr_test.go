package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("deleting node: %w", NotFound("node %d", 7))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "NOT_FOUND: node 7 not found", errors.Unwrap(err).Error())
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("title is required"), http.StatusBadRequest},
		{NotFound("edge 3"), http.StatusNotFound},
		{Conflict("duplicate"), http.StatusConflict},
		{Internal(errors.New("disk"), "write"), http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestInternal_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "inserting node")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

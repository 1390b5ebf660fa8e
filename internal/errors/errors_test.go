package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUpstream, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
		{Code("TEAPOT"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("select result: %w", Validationf("no result at index %d", 7))

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Upstream("book lookup failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "book lookup failed: dial tcp: connection refused", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestValidationWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed: theme", map[string]string{"theme": "must be light or dark"})

	assert.Equal(t, "validation failed: theme", err.Error())
	assert.Equal(t, map[string]string{"theme": "must be light or dark"}, err.Details)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFoundf("book %s not found", "book-1")))
}

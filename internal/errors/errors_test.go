package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("recipe %d not found", 42)

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, "recipe 42 not found", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("update recipe: %w", AlreadyExists("tag name taken"))

	assert.True(t, Is(err, ErrAlreadyExists))

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, CodeAlreadyExists, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ErrInternal.WithCause(cause)

	assert.Equal(t, "internal error: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrInternal.Unwrap(), "sentinel must not be mutated")
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

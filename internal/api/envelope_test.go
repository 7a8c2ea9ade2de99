package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/store"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"title": "Soup"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(Envelope)
	require.True(t, ok, "Expected Envelope type")
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_FailureStatusWithBody(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "503", map[string]string{"status": "unhealthy"})
	require.NoError(t, err)

	envelope := result.(Envelope)
	assert.False(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
}

func TestEnvelopeTransformer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain error",
			err:     domainerrors.NotFound("recipe not found"),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "recipe not found",
		},
		{
			name:    "wrapped store error",
			err:     fmt.Errorf("rename tag: %w", store.ErrAlreadyExists),
			status:  http.StatusConflict,
			code:    "ALREADY_EXISTS",
			message: "resource already exists",
		},
		{
			name:    "api error",
			err:     &APIError{status: http.StatusTooManyRequests, Code: "RATE_LIMITED", Message: "slow down"},
			status:  http.StatusTooManyRequests,
			code:    "RATE_LIMITED",
			message: "slow down",
		},
		{
			name:    "unknown error is hidden",
			err:     errors.New("pq: connection reset"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, toAPIError(tt.err).GetStatus())

			result, err := EnvelopeTransformer(nil, "500", tt.err)
			require.NoError(t, err)

			envelope := result.(Envelope)
			assert.Equal(t, EnvelopeVersion, envelope.Version)
			assert.False(t, envelope.Success)
			assert.Nil(t, envelope.Data)
			assert.Equal(t, tt.code, envelope.Code)
			assert.Equal(t, tt.message, envelope.Error)
			assert.Equal(t, tt.message, envelope.Message)
		})
	}
}

func TestEnvelopeTransformer_ValidationDetails(t *testing.T) {
	details := map[string]string{"title": "is required"}

	result, err := EnvelopeTransformer(nil, "400", domainerrors.ValidationWithDetails("validation failed", details))
	require.NoError(t, err)

	envelope := result.(Envelope)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, details, envelope.Details)
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/store"
)

// EnvelopeVersion is the "v" field of every response body.
const EnvelopeVersion = 1

// Envelope is the JSON shape of every response body.
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"recipe not found","code":"NOT_FOUND","message":"recipe not found"}
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps handler output in an Envelope. Errors arrive
// here as the value huma is about to write. A non-error body sent with a
// failure status (an unhealthy health check) keeps its data but reports
// success false.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if err, ok := v.(error); ok {
		apiErr := toAPIError(err)
		return Envelope{
			Version: EnvelopeVersion,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	code, err := strconv.Atoi(status)
	success := err != nil || code < 400
	return Envelope{Version: EnvelopeVersion, Success: success, Data: v}, nil
}

// toAPIError converts anything handlers may return into an APIError.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    statusToCode(storeErr.HTTPCode()),
			Message: storeErr.Message,
		}
	}

	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

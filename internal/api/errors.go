package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// APIError is the huma.StatusError every handler failure becomes.
type APIError struct { //nolint:revive // stutters with the package name
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Per-field problems or other context"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.status }

// ContentType keeps error bodies JSON regardless of Accept.
func (e *APIError) ContentType(string) string { return "application/json" }

func newAPIError(status int, message string, details any) *APIError {
	return &APIError{status: status, Code: codeForStatus(status), Message: message, Details: details}
}

// RegisterErrorHandler routes huma's error construction through
// classify. Call it before registering operations.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := classify(err); apiErr != nil {
				return apiErr
			}
		}

		var details any
		if len(errs) > 0 && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) {
			problems := make([]string, len(errs))
			for i, err := range errs {
				problems[i] = err.Error()
			}
			details = problems
		}
		return newAPIError(status, message, details)
	}
}

// classify maps errors returned by services to API errors. It returns nil
// for anything it does not recognise so huma's own message is kept.
func classify(err error) *APIError {
	var domainErr *domainerrors.Error
	var storeErr *store.Error

	switch {
	case errors.As(err, &domainErr):
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	case errors.As(err, &storeErr):
		return newAPIError(storeErr.HTTPCode(), storeErr.Error(), nil)
	case errors.Is(err, metadata.ErrUpstream), errors.Is(err, metadata.ErrDecode):
		return newAPIError(http.StatusBadGateway, "book metadata service unavailable", nil)
	default:
		return nil
	}
}

var codeByStatus = map[int]domainerrors.Code{
	http.StatusBadRequest:          domainerrors.CodeValidation,
	http.StatusUnprocessableEntity: domainerrors.CodeValidation,
	http.StatusNotFound:            domainerrors.CodeNotFound,
	http.StatusConflict:            domainerrors.CodeConflict,
	http.StatusBadGateway:          domainerrors.CodeUpstream,
}

func codeForStatus(status int) string {
	if code, ok := codeByStatus[status]; ok {
		return string(code)
	}
	return string(domainerrors.CodeInternal)
}

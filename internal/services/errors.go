// Package services provides the business logic layer between the HTTP
// handlers, the CLI and the forecasting engine.
package services

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/modelstore"
)

// Service error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidParameters   = "INVALID_PARAMETERS"
	CodeInvalidSchema       = "INVALID_SCHEMA"
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeEmptyHistory        = "EMPTY_HISTORY"
	CodeInsufficientHistory = "INSUFFICIENT_HISTORY"
	CodeTrainingFailed      = "TRAINING_FAILED"
	CodeModelNotFound       = "MODEL_NOT_FOUND"
	CodeModelCorrupt        = "MODEL_CORRUPT"
	CodePredictionFailed    = "PREDICTION_FAILED"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the engine error the service error was built from
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the HTTP status code for the error code
func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeInvalidParameters, CodeInvalidSchema,
		CodeMissingColumn, CodeEmptyHistory, CodeInsufficientHistory:
		return http.StatusBadRequest
	case CodeTrainingFailed:
		return http.StatusUnprocessableEntity
	case CodeModelNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// wrapError translates an engine error into a ServiceError. fallback is
// the code used when err matches no known condition.
func wrapError(err error, fallback string) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	code := fallback
	var details map[string]interface{}

	var trainErr *forecast.TrainingError
	switch {
	case errors.As(err, &trainErr):
		code = CodeTrainingFailed
		failed := make(map[string]string, len(trainErr.Failed))
		for _, f := range trainErr.Failed {
			failed[f.ID] = f.Err.Error()
		}
		details = map[string]interface{}{
			"failed_entities": failed,
			"fitted":          trainErr.Fitted,
		}
	case errors.Is(err, forecast.ErrEmptyHistory):
		code = CodeEmptyHistory
	case errors.Is(err, forecast.ErrInsufficientHistory):
		code = CodeInsufficientHistory
	case errors.Is(err, forecast.ErrMissingColumn):
		code = CodeMissingColumn
	case errors.Is(err, forecast.ErrInvalidLags):
		code = CodeInvalidParameters
	case errors.Is(err, forecast.ErrMalformedState):
		code = CodeModelCorrupt
	case errors.Is(err, forecast.ErrNotFitted):
		code = CodeModelNotFound
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, modelstore.ErrNoModelDir):
		code = CodeModelNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = CodeTimeout
	}

	return &ServiceError{
		Code:    code,
		Message: err.Error(),
		Details: details,
		cause:   err,
	}
}

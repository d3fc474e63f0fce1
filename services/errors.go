package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is the typed failure surface handlers translate for the API.
type ServiceError struct {
	Type       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError reports a missing achievement or ledger record.
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError reports a caller without the required capability.
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewValidationError reports malformed input such as out-of-range thresholds.
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewPersistenceError reports a store failure or write conflict.
func NewPersistenceError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "PERSISTENCE_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// StatusOf maps an error to the HTTP status handlers should respond with.
func StatusOf(err error) int {
	var se *ServiceError
	if errors.As(err, &se) && se.StatusCode > 0 {
		return se.StatusCode
	}
	return http.StatusInternalServerError
}

// Package errors defines the structured application error type used across
// the service and the mapping from error categories to HTTP status codes.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error.
type AppError struct {
	// HTTPStatusCode is the HTTP status code to return.
	HTTPStatusCode int `json:"-"`
	// Code is an internal error code string.
	Code string `json:"code"`
	// Message is the user-facing error message.
	Message string `json:"message"`
	// Err is the underlying error (not marshaled to JSON).
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ToJSON returns the JSON byte representation of the error.
func (e *AppError) ToJSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// New creates a new AppError.
func New(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		HTTPStatusCode: statusCode,
		Code:           code,
		Message:        message,
		Err:            err,
	}
}

// NotFound builds an AppError for an absent entity, file or log.
func NotFound(message string, err error) *AppError {
	return New(http.StatusNotFound, "not_found", message, err)
}

// InvalidArgument builds an AppError for malformed identifiers, blank search
// keywords, missing upload files and similar caller mistakes.
func InvalidArgument(message string, err error) *AppError {
	return New(http.StatusBadRequest, "invalid_argument", message, err)
}

// StoreUnavailable builds an AppError for an unreachable backing store.
func StoreUnavailable(message string, err error) *AppError {
	return New(http.StatusInternalServerError, "store_unavailable", message, err)
}

// Internal builds the catch-all AppError. The underlying detail is logged by
// the caller, never surfaced to the client.
func Internal(message string, err error) *AppError {
	return New(http.StatusInternalServerError, "internal", message, err)
}

// AsAppError extracts an *AppError from err's chain, or wraps err into the
// catch-all category so every failure carries an HTTP status.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("an unexpected error occurred", err)
}

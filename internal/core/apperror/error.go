// Package apperror defines the error taxonomy shared by the domain, storage and HTTP layers.
// Anything a client can act on is an *AppError; the transport renders it as-is.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// 5xx
	CodeInternal           = "INTERNAL_ERROR"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"

	// 400
	CodeValidation      = "VALIDATION_ERROR"
	CodeMalformedNumber = "MALFORMED_NUMBER"

	// 422
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeInvalidState      = "INVALID_STATE"

	// 404
	CodeNotFound = "NOT_FOUND"

	// 409
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError is a classified failure. Err is the internal cause and is never serialized.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Retryable  bool           `json:"retryable,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail sets one detail entry and returns e for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, status int, message string, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message, nil)
}

// NewMalformedNumber reports a number outside the PREFIX-YYYY-NNNN format.
func NewMalformedNumber(number string) *AppError {
	return newError(CodeMalformedNumber, http.StatusBadRequest,
		"Invoice number does not follow the legal format PREFIX-YYYY-NNNN",
		map[string]any{"number": number})
}

// NewIllegalTransition carries the refused status pair as from/to details.
func NewIllegalTransition(from, to string) *AppError {
	return newError(CodeIllegalTransition, http.StatusUnprocessableEntity,
		fmt.Sprintf("Status transition from %s to %s is not allowed", from, to),
		map[string]any{"from": from, "to": to})
}

// NewInvalidState rejects a mutation the current status forbids.
func NewInvalidState(status, message string) *AppError {
	return newError(CodeInvalidState, http.StatusUnprocessableEntity, message,
		map[string]any{"status": status})
}

// NewStorageUnavailable wraps a durable store failure. Nothing was committed, so it is retryable.
func NewStorageUnavailable(err error) *AppError {
	e := newError(CodeStorageUnavailable, http.StatusServiceUnavailable,
		"Storage is temporarily unavailable, retry later", nil)
	e.Retryable = true
	e.Err = err
	return e
}

func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound,
		entity+" not found",
		map[string]any{"entity": entity, "id": id})
}

// NewConcurrentModification is returned when the optimistic lock rejects a write.
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(CodeConcurrentModification, http.StatusConflict,
		"Record was modified by another user. Please refresh and try again.",
		map[string]any{"entity": entity, "id": id})
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *AppError {
	e := newError(CodeInternal, http.StatusInternalServerError, "Internal server error", nil)
	e.Err = err
	return e
}

func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, http.StatusConflict,
		fmt.Sprintf("%s with this %s already exists", entity, field),
		map[string]any{"entity": entity, "field": field, "value": value})
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetHTTPStatus maps any error to a status; unclassified errors are 500.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsRetryable reports whether the caller may retry the failed operation unchanged.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

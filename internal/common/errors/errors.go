package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error for HTTP mapping and logging.
type ErrorCode string

const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"

	ErrCodeTokenExpired     ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
)

// AppError is the error type every handler boundary understands.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsInternal reports whether the error should be hidden from clients and
// logged at error level.
func (e *AppError) IsInternal() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeDatabase, ErrCodeConfiguration:
		return true
	}
	return false
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Common constructors.

func NewValidationError(reason string) *AppError {
	return New(ErrCodeValidation, reason)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, reason)
}

func NewNotFoundError(resource string) *AppError {
	return Newf(ErrCodeNotFound, "%s not found", resource)
}

// NewConfigurationError is surfaced to clients as a generic failure; the
// missing key lives only in the server-side log.
func NewConfigurationError(detail string) *AppError {
	return New(ErrCodeConfiguration, detail)
}

func NewUpstreamError(service string, err error) *AppError {
	return Wrapf(err, ErrCodeUpstream, "%s unavailable", service)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrapf(err, ErrCodeDatabase, "database operation failed: %s", operation)
}

// AsAppError unwraps err looking for an *AppError anywhere in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

package util

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

// ErrorType classifies an AppError for the HTTP layer.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// IsErrorType reports whether err carries an AppError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// RespondError writes err with the status code matching its AppError type.
// Internal errors never leak their cause to the client.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		CallServerError(c, APIErrorParams{Msg: "Internal server error", Err: errors.New("internal server error")})
		return
	}

	params := APIErrorParams{Msg: appErr.Message, Err: errors.New(appErr.Message)}
	switch appErr.Type {
	case ErrorTypeValidation:
		CallUserError(c, params)
	case ErrorTypeNotFound:
		CallErrorNotFound(c, params)
	case ErrorTypeUnauthorized:
		CallUserNotAuthorized(c, params)
	default:
		CallServerError(c, APIErrorParams{Msg: appErr.Message, Err: errors.New("internal server error")})
	}
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypePrecondition indicates a caller-visible, non-retryable rule
	// violation (insufficient energy, self-trade, defeated ship)
	ErrorTypePrecondition ErrorType = "precondition"
	// ErrorTypeConflict indicates the operation lost a race against
	// concurrent state (listing already sold, sector created concurrently)
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeWorldAccess indicates the persistent store was unavailable;
	// the operation committed nothing
	ErrorTypeWorldAccess ErrorType = "world_access"
	// ErrorTypeInvariant indicates a programmer error that valid inputs can
	// never reach
	ErrorTypeInvariant ErrorType = "invariant"
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation indicates invalid input data
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeUnauthorized indicates authentication failure
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeMethodNotAllowed indicates an unsupported HTTP method
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "internal"
)

// AppError is the base error type for application errors
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Precondition creates a precondition error
func Precondition(message string) error {
	return &AppError{
		Type:    ErrorTypePrecondition,
		Message: message,
	}
}

// Preconditionf creates a precondition error with formatting
func Preconditionf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypePrecondition,
		Message: fmt.Sprintf(format, args...),
	}
}

// Conflict creates a conflict error
func Conflict(message string) error {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// Conflictf creates a conflict error with formatting
func Conflictf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapWorldAccess wraps a storage failure as a world access error
func WrapWorldAccess(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeWorldAccess,
		Message: message,
		Err:     err,
	}
}

// Invariantf creates an invariant violation with formatting. These mark
// states valid inputs can never reach and are never shown to end users.
func Invariantf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeInvariant,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundf creates a not found error with formatting
func NotFoundf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation creates a validation error
func Validation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// Validationf creates a validation error with formatting
func Validationf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Err:     err,
	}
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) error {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// MethodNotAllowed creates a method not allowed error
func MethodNotAllowed(method string) error {
	return &AppError{
		Type:    ErrorTypeMethodNotAllowed,
		Message: fmt.Sprintf("method %s not allowed", method),
	}
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// GetType returns the error type of an error
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err carries the given error type
func Is(err error, t ErrorType) bool {
	return GetType(err) == t
}

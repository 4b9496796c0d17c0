package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Resource validation errors. These are raised before any side effect.
	ErrFlavorUnsupported ErrorCode = "FLAVOR_UNSUPPORTED"
	ErrSourceUnsupported ErrorCode = "SOURCE_UNSUPPORTED"
	ErrManifest          ErrorCode = "MANIFEST"

	// Install step errors
	ErrFetch   ErrorCode = "FETCH"
	ErrExtract ErrorCode = "EXTRACT"
	ErrCommand ErrorCode = "COMMAND"
	ErrState   ErrorCode = "STATE"
)

// AppboxError represents a structured error with code and details
type AppboxError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *AppboxError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppboxError) Unwrap() error {
	return e.Wrapped
}

// Is matches any *AppboxError carrying the same code.
func (e *AppboxError) Is(target error) bool {
	var targetErr *AppboxError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new AppboxError with the given code and message
func New(code ErrorCode, message string) *AppboxError {
	return &AppboxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new AppboxError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppboxError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppboxError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppboxError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *AppboxError) WithDetail(key string, value interface{}) *AppboxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var appErr *AppboxError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an AppboxError
func GetErrorCode(err error) ErrorCode {
	var appErr *AppboxError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an AppboxError
func GetErrorDetails(err error) map[string]interface{} {
	var appErr *AppboxError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// IsConfigurationError reports whether err was raised while validating a
// resource or loading configuration, i.e. before any side effect happened.
func IsConfigurationError(err error) bool {
	switch GetErrorCode(err) {
	case ErrInvalidInput, ErrConfigLoad, ErrConfigParse, ErrConfigValid,
		ErrFlavorUnsupported, ErrSourceUnsupported, ErrManifest:
		return true
	}
	return false
}

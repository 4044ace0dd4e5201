package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a howto error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrRateLimited    ErrorCode = "RATE_LIMITED"    // 429
	ErrConfiguration  ErrorCode = "CONFIGURATION"   // 500
	ErrUpstream       ErrorCode = "UPSTREAM"        // 500
	ErrStorage        ErrorCode = "STORAGE"         // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// HowtoError represents a structured error with code, status, and details.
type HowtoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *HowtoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *HowtoError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for input that fails validation.
func NewInvalidRequest(msg string) *HowtoError {
	return &HowtoError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing saved tutorial.
func NewNotFound(identifier string) *HowtoError {
	return &HowtoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("saved tutorial not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *HowtoError {
	return &HowtoError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewRateLimited creates a 429 error when a client exceeds the request budget.
func NewRateLimited() *HowtoError {
	return &HowtoError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: "too many requests, slow down",
	}
}

// NewMissingCredential creates a 500 error for an absent provider credential.
// name is the environment variable the credential is read from.
func NewMissingCredential(name string) *HowtoError {
	return &HowtoError{
		Code:    ErrConfiguration,
		Status:  500,
		Message: fmt.Sprintf("%s not configured", name),
		Details: map[string]any{"credential": name},
	}
}

// NewUpstream creates a 500 error for a failed provider call.
func NewUpstream(provider string, err error) *HowtoError {
	msg := fmt.Sprintf("%s request failed", provider)
	if err != nil {
		msg = fmt.Sprintf("%s: %s", provider, err.Error())
	}
	return &HowtoError{
		Code:    ErrUpstream,
		Status:  500,
		Message: msg,
		Details: map[string]any{"provider": provider},
		cause:   err,
	}
}

// NewStorage creates a 500 error for a local persistence failure.
func NewStorage(err error) *HowtoError {
	msg := "storage error"
	if err != nil {
		msg = err.Error()
	}
	return &HowtoError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HowtoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HowtoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// As returns the HowtoError in err's chain, if any.
func As(err error) (*HowtoError, bool) {
	var hErr *HowtoError
	if stderrors.As(err, &hErr) {
		return hErr, true
	}
	return nil, false
}

// Is checks if an error is a HowtoError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := As(err); ok {
		return hErr.Code == code
	}
	return false
}

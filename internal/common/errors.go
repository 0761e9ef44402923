package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried on AppError. Stable strings; they appear in logs and in
// result reasons.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeAcquisitionFailed = "ACQUISITION_FAILED"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeExternalService   = "EXTERNAL_SERVICE"
	CodeCacheError        = "CACHE_ERROR"
	CodeConfigError       = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrEmptyText    = errors.New("no usable text")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAcquisitionError marks a document that could not be turned into text:
// unreadable input, or every fallback produced nothing.
func NewAcquisitionError(message string, cause error) *AppError {
	return NewAppError(CodeAcquisitionFailed, message, cause)
}

// NewUnsupportedFormatError marks an input whose format the pipeline does not
// handle at all.
func NewUnsupportedFormatError(message string) *AppError {
	return NewAppError(CodeUnsupportedFormat, message, ErrInvalidInput)
}

// NewExtractionError marks a run whose chosen backend produced no parseable
// field mapping.
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(CodeExtractionFailed, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf extracts the AppError code from err, or "" when err carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsAcquisitionError reports whether err is an acquisition or format failure.
func IsAcquisitionError(err error) bool {
	code := CodeOf(err)
	return code == CodeAcquisitionFailed || code == CodeUnsupportedFormat
}

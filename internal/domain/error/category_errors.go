// Package error defines domain-specific errors for the household ledger.
package error

import "errors"

// Category domain errors.
var (
	// ErrClassifierUnavailable is returned when no AI credential is configured.
	ErrClassifierUnavailable = errors.New("category classifier is not configured")

	// ErrClassificationFailed is returned when the AI call or its response is unusable.
	ErrClassificationFailed = errors.New("category classification failed")

	// ErrEmptyClassificationInput is returned when there is no description to classify.
	ErrEmptyClassificationInput = errors.New("description is required for classification")
)

// CategoryErrorCode defines error codes for category errors.
// Format: CAT-XXYYYY where XX is category and YYYY is specific error.
type CategoryErrorCode string

const (
	ErrCodeEmptyClassificationInput CategoryErrorCode = "CAT-010001"
	ErrCodeClassifierUnavailable    CategoryErrorCode = "CAT-020001"
	ErrCodeClassificationFailed     CategoryErrorCode = "CAT-020002"
)

// CategoryError represents a category error with code and message.
type CategoryError struct {
	Code    CategoryErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// NewCategoryError creates a new CategoryError with the given code and message.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return &CategoryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

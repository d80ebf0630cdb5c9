// Package error defines domain-specific errors for the household ledger.
package error

import "errors"

// Transaction domain errors.
var (
	// ErrInvalidTransactionDate is returned when the transaction date is not a YYYY-MM-DD calendar date.
	ErrInvalidTransactionDate = errors.New("invalid transaction date")

	// ErrInvalidDateRange is returned when a range query has firstDay after lastDay.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyDescription is returned when the transaction description is blank.
	ErrEmptyDescription = errors.New("description is required")

	// ErrDescriptionTooLong is returned when the transaction description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrInvalidTransactionCategory is returned when the category is outside the vocabulary.
	ErrInvalidTransactionCategory = errors.New("invalid transaction category")

	// ErrMissingOwner is returned when a store call carries no owner.
	ErrMissingOwner = errors.New("transaction owner is required")
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidTransactionDate     TransactionErrorCode = "TXN-010001"
	ErrCodeInvalidDateRange           TransactionErrorCode = "TXN-010002"
	ErrCodeEmptyDescription           TransactionErrorCode = "TXN-010003"
	ErrCodeDescriptionTooLong         TransactionErrorCode = "TXN-010004"
	ErrCodeInvalidTransactionCategory TransactionErrorCode = "TXN-010005"
	ErrCodeMissingTransactionFields   TransactionErrorCode = "TXN-010006"

	// Store errors (02XXXX)
	ErrCodeTransactionReadFailed  TransactionErrorCode = "TXN-020001"
	ErrCodeTransactionWriteFailed TransactionErrorCode = "TXN-020002"
)

// TransactionError represents a transaction error with code and message.
type TransactionError struct {
	Code    TransactionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NewTransactionError creates a new TransactionError with the given code and message.
func NewTransactionError(code TransactionErrorCode, message string, err error) *TransactionError {
	return &TransactionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Processor Errors (PROCESSOR_*)
	ErrorCodeProcessorError    ErrorCode = "PROCESSOR_ERROR"
	ErrorCodeProcessorTimeout  ErrorCode = "PROCESSOR_TIMEOUT"
	ErrorCodeProcessorDeclined ErrorCode = "PROCESSOR_DECLINED"

	// Webhook Errors (WEBHOOK_*)
	ErrorCodeSignatureInvalid ErrorCode = "WEBHOOK_SIGNATURE_INVALID"

	// Settlement Errors (SETTLEMENT_*)
	ErrorCodePaymentNotCompleted ErrorCode = "SETTLEMENT_PAYMENT_NOT_COMPLETED"
	ErrorCodeLedgerWriteConflict ErrorCode = "SETTLEMENT_LEDGER_WRITE_CONFLICT"

	// Registration Errors (REGISTRATION_*)
	ErrorCodeRegistrationNotFound ErrorCode = "REGISTRATION_NOT_FOUND"

	// Invoice Errors (INVOICE_*)
	ErrorCodeInvoiceNotFound ErrorCode = "INVOICE_NOT_FOUND"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsProcessorError checks if an error originated at the payment processor
func IsProcessorError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeProcessorError ||
		code == ErrorCodeProcessorTimeout ||
		code == ErrorCodeProcessorDeclined
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeRegistrationNotFound ||
		code == ErrorCodeInvoiceNotFound
}

// Structured error instances
var (
	ErrProcessorError    = NewDomainError(ErrorCodeProcessorError, "payment processor error")
	ErrProcessorTimedOut = NewDomainError(ErrorCodeProcessorTimeout, "payment processor timeout")
	ErrProcessorDeclined = NewDomainError(ErrorCodeProcessorDeclined, "payment declined by processor")

	ErrSignatureInvalid = NewDomainError(ErrorCodeSignatureInvalid, "webhook signature verification failed")

	ErrPaymentNotCompleted = NewDomainError(ErrorCodePaymentNotCompleted, "payment intent has not succeeded")
	ErrLedgerWriteConflict = NewDomainError(ErrorCodeLedgerWriteConflict, "conflicting ledger write for intent")

	ErrRegistrationNotFound = NewDomainError(ErrorCodeRegistrationNotFound, "registration not found")
	ErrInvoiceNotFound      = NewDomainError(ErrorCodeInvoiceNotFound, "invoice not found")

	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)

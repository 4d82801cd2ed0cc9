package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrors_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"processor_error", ErrProcessorError, "payment processor error"},
		{"processor_timeout", ErrProcessorTimedOut, "payment processor timeout"},
		{"processor_declined", ErrProcessorDeclined, "payment declined"},
		{"signature_invalid", ErrSignatureInvalid, "webhook signature verification failed"},
		{"payment_not_completed", ErrPaymentNotCompleted, "has not succeeded"},
		{"ledger_write_conflict", ErrLedgerWriteConflict, "conflicting ledger write"},
		{"registration_not_found", ErrRegistrationNotFound, "registration not found"},
		{"invoice_not_found", ErrInvoiceNotFound, "invoice not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("expected error to be defined, got nil")
			}
			if !strings.Contains(strings.ToLower(tt.err.Error()), tt.contains) {
				t.Errorf("error message %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestDomainError_WrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(ErrorCodeProcessorError, "create payment intent failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if got := GetErrorCode(err); got != ErrorCodeProcessorError {
		t.Errorf("GetErrorCode = %q, want %q", got, ErrorCodeProcessorError)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error string %q should include the cause", err.Error())
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodeValidationFailed, "participants exceeds maximum").
		WithDetail("max_participants", 10)

	if err.Details["max_participants"] != 10 {
		t.Errorf("detail not recorded: %v", err.Details)
	}
}

func TestIsDomainError(t *testing.T) {
	err := NewDomainError(ErrorCodeLedgerWriteConflict, "duplicate intent id")

	if !IsDomainError(err, ErrorCodeLedgerWriteConflict) {
		t.Error("IsDomainError should match the code")
	}
	if IsDomainError(err, ErrorCodeProcessorError) {
		t.Error("IsDomainError should not match a different code")
	}
	if IsDomainError(fmt.Errorf("plain"), ErrorCodeProcessorError) {
		t.Error("IsDomainError should reject non-domain errors")
	}

	// Matches through wrapping
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsDomainError(wrapped, ErrorCodeLedgerWriteConflict) {
		t.Error("IsDomainError should match through wrapping")
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsProcessorError(ErrProcessorTimedOut) {
		t.Error("timeout should classify as processor error")
	}
	if !IsValidationError(NewDomainError(ErrorCodeValidationMissingField, "email is required")) {
		t.Error("missing field should classify as validation error")
	}
	if !IsNotFoundError(ErrRegistrationNotFound) {
		t.Error("registration not found should classify as not found")
	}
	if IsProcessorError(ErrSignatureInvalid) {
		t.Error("signature failure is not a processor error")
	}
}

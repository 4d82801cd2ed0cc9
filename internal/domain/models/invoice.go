package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusVoid    InvoiceStatus = "VOID"
)

// Invoice is the downstream billing record linked to a registration.
// This subsystem does not own the invoice lifecycle; it only transitions
// PENDING invoices to PAID after the linked registration settles.
type Invoice struct {
	ID             uuid.UUID
	RegistrationID uuid.UUID
	InvoiceNumber  string
	Amount         int64 // minor units
	Currency       string
	Status         InvoiceStatus
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

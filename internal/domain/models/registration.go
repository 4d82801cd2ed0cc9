package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents whether a registration has been paid for
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "Unpaid"
	PaymentStatusPaid   PaymentStatus = "Paid"
)

// OrderStatus represents the lifecycle state of a registration order
type OrderStatus string

const (
	OrderStatusIncomplete OrderStatus = "Incomplete"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// PaymentMethod identifies how the buyer paid
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
)

// Registration represents one checkout attempt for a course booking.
// A row is created Unpaid/Incomplete when the payment intent is issued and
// transitioned to Paid/Completed exactly once by reconciliation. Rows are
// never deleted by this subsystem.
type Registration struct {
	ID            uuid.UUID
	IntentID      string // processor payment intent id, unique per row
	Email         string
	FullName      string
	Phone         string
	CourseID      string
	ScheduleID    string
	Participants  int32
	Amount        int64 // minor units
	Currency      string
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	SettledAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Settled reports whether the registration has reached its terminal paid state.
func (r *Registration) Settled() bool {
	return r.PaymentStatus == PaymentStatusPaid && r.OrderStatus == OrderStatusCompleted
}

// CorrelationKey is the business identifier (buyer + payment method) used to
// describe duplicate settlement attempts in logs and metrics. Ledger
// idempotency itself is keyed on the processor intent id.
func (r *Registration) CorrelationKey() string {
	return r.Email + "/" + string(r.PaymentMethod)
}

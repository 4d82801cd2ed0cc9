package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/checkout-service/internal/domain/models"
)

// InvoiceRepository reads and transitions invoices linked to registrations
type InvoiceRepository interface {
	// GetByRegistrationID retrieves the invoice linked to a registration,
	// or ErrInvoiceNotFound
	GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*models.Invoice, error)

	// MarkPaid transitions a PENDING invoice for the registration to PAID
	// with the given payment date. Marking an already-PAID invoice is a no-op.
	MarkPaid(ctx context.Context, registrationID uuid.UUID, paidAt time.Time) error
}

// ScheduleRepository looks up course schedules for fee resolution
type ScheduleRepository interface {
	// GetByID retrieves a schedule, or nil when the schedule does not exist.
	// A missing schedule is not an error at issuance time; the issuer falls
	// back to the documented default fee.
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
)

// InvoiceRepository implements ports.InvoiceRepository against PostgreSQL
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// GetByRegistrationID retrieves the invoice linked to a registration
func (r *InvoiceRepository) GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*models.Invoice, error) {
	const q = `SELECT id, registration_id, invoice_number, amount, currency, status, paid_at, created_at, updated_at
		FROM invoices WHERE registration_id = $1`

	var inv models.Invoice
	err := r.pool.QueryRow(ctx, q, registrationID).Scan(
		&inv.ID, &inv.RegistrationID, &inv.InvoiceNumber, &inv.Amount, &inv.Currency,
		&inv.Status, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeInvoiceNotFound, "invoice not found").
				WithDetail("registration_id", registrationID.String())
		}
		return nil, fmt.Errorf("get invoice by registration id: %w", err)
	}
	return &inv, nil
}

// MarkPaid transitions a PENDING invoice for the registration to PAID.
// The status guard makes repeated sync attempts no-ops.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, registrationID uuid.UUID, paidAt time.Time) error {
	const q = `UPDATE invoices SET status = $2, paid_at = $3, updated_at = NOW()
		WHERE registration_id = $1 AND status = $4`

	_, err := r.pool.Exec(ctx, q, registrationID, models.InvoiceStatusPaid, paidAt, models.InvoiceStatusPending)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	return nil
}

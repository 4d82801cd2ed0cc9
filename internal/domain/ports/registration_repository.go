package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursedesk/checkout-service/internal/domain/models"
)

// RegistrationRepository persists registration records in the settlement ledger.
//
// Ledger idempotency contract: rows are unique on the processor intent id.
// MarkPaid and CreateSettled are each a single atomic conditional operation
// against the store; callers never implement read-then-write settlement.
type RegistrationRepository interface {
	// Create inserts a provisional Unpaid/Incomplete registration
	Create(ctx context.Context, tx DBTX, reg *models.Registration) error

	// GetByID retrieves a registration by its ledger id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)

	// GetByIntentID retrieves the registration for a processor intent id,
	// or ErrRegistrationNotFound
	GetByIntentID(ctx context.Context, intentID string) (*models.Registration, error)

	// MarkPaid conditionally transitions the registration for intentID from
	// Unpaid/Incomplete to Paid/Completed. Returns the updated row and true
	// when this call performed the transition; (nil, false) when no Unpaid
	// row matched, either because the row is already settled or absent.
	MarkPaid(ctx context.Context, intentID string) (*models.Registration, bool, error)

	// CreateSettled inserts an already-Paid/Completed registration built from
	// intent metadata (webhook arrived with no provisional row). A concurrent
	// insert for the same intent id fails with ErrLedgerWriteConflict.
	CreateSettled(ctx context.Context, reg *models.Registration) error
}

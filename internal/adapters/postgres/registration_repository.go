package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

const uniqueViolation = "23505"

const registrationColumns = `id, intent_id, email, full_name, phone, course_id, schedule_id,
	participants, amount, currency, payment_method, payment_status, order_status,
	settled_at, created_at, updated_at`

// RegistrationRepository implements ports.RegistrationRepository against PostgreSQL.
// The intent_id unique constraint is the ledger-side idempotency guard; all
// settlement writes are single conditional statements, never read-then-write.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Create inserts a provisional Unpaid/Incomplete registration
func (r *RegistrationRepository) Create(ctx context.Context, tx ports.DBTX, reg *models.Registration) error {
	var db ports.DBTX = r.pool
	if tx != nil {
		db = tx
	}

	const q = `INSERT INTO registrations (
		id, intent_id, email, full_name, phone, course_id, schedule_id,
		participants, amount, currency, payment_method, payment_status, order_status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING created_at, updated_at`

	err := db.QueryRow(ctx, q,
		reg.ID, reg.IntentID, reg.Email, reg.FullName, reg.Phone,
		reg.CourseID, reg.ScheduleID, reg.Participants, reg.Amount, reg.Currency,
		reg.PaymentMethod, reg.PaymentStatus, reg.OrderStatus,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrorCodeLedgerWriteConflict, "registration exists for intent", err).
				WithDetail("intent_id", reg.IntentID)
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// GetByID retrieves a registration by its ledger id
func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	q := fmt.Sprintf(`SELECT %s FROM registrations WHERE id = $1`, registrationColumns)
	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeRegistrationNotFound, "registration not found").
				WithDetail("registration_id", id.String())
		}
		return nil, fmt.Errorf("get registration by id: %w", err)
	}
	return reg, nil
}

// GetByIntentID retrieves the registration for a processor intent id
func (r *RegistrationRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Registration, error) {
	q := fmt.Sprintf(`SELECT %s FROM registrations WHERE intent_id = $1`, registrationColumns)
	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeRegistrationNotFound, "registration not found").
				WithDetail("intent_id", intentID)
		}
		return nil, fmt.Errorf("get registration by intent id: %w", err)
	}
	return reg, nil
}

// MarkPaid conditionally transitions the Unpaid/Incomplete registration for
// intentID to Paid/Completed. The WHERE clause makes the transition atomic:
// under concurrent reconciliation only one caller sees a row come back, and a
// row in any other state (settled already, or Cancelled) is never touched.
func (r *RegistrationRepository) MarkPaid(ctx context.Context, intentID string) (*models.Registration, bool, error) {
	q := fmt.Sprintf(`UPDATE registrations
		SET payment_status = $2, order_status = $3, settled_at = NOW(), updated_at = NOW()
		WHERE intent_id = $1 AND payment_status = $4 AND order_status = $5
		RETURNING %s`, registrationColumns)

	reg, err := scanRegistration(r.pool.QueryRow(ctx, q,
		intentID, models.PaymentStatusPaid, models.OrderStatusCompleted,
		models.PaymentStatusUnpaid, models.OrderStatusIncomplete))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mark registration paid: %w", err)
	}
	return reg, true, nil
}

// CreateSettled inserts an already-Paid/Completed registration. The unique
// constraint on intent_id turns a concurrent duplicate into
// ErrLedgerWriteConflict, which callers reinterpret as already-settled.
func (r *RegistrationRepository) CreateSettled(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (
		id, intent_id, email, full_name, phone, course_id, schedule_id,
		participants, amount, currency, payment_method, payment_status, order_status, settled_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	RETURNING settled_at, created_at, updated_at`

	err := r.pool.QueryRow(ctx, q,
		reg.ID, reg.IntentID, reg.Email, reg.FullName, reg.Phone,
		reg.CourseID, reg.ScheduleID, reg.Participants, reg.Amount, reg.Currency,
		reg.PaymentMethod, models.PaymentStatusPaid, models.OrderStatusCompleted,
	).Scan(&reg.SettledAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrorCodeLedgerWriteConflict, "registration exists for intent", err).
				WithDetail("intent_id", reg.IntentID)
		}
		return fmt.Errorf("create settled registration: %w", err)
	}
	reg.PaymentStatus = models.PaymentStatusPaid
	reg.OrderStatus = models.OrderStatusCompleted
	return nil
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID, &reg.IntentID, &reg.Email, &reg.FullName, &reg.Phone,
		&reg.CourseID, &reg.ScheduleID, &reg.Participants, &reg.Amount, &reg.Currency,
		&reg.PaymentMethod, &reg.PaymentStatus, &reg.OrderStatus,
		&reg.SettledAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursedesk/checkout-service/internal/domain/models"
)

// ScheduleRepository implements ports.ScheduleRepository against PostgreSQL
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// GetByID retrieves a schedule by id. Returns (nil, nil) when the schedule
// does not exist; the issuer substitutes the default fee in that case.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	const q = `SELECT id, course_id, start_date, fee, currency, created_at FROM schedules WHERE id = $1`

	var s models.Schedule
	var fee pgtype.Numeric
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.CourseID, &s.StartDate, &fee, &s.Currency, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}

	s.Fee, err = pgNumericToDecimal(fee)
	if err != nil {
		return nil, fmt.Errorf("convert schedule fee: %w", err)
	}
	return &s, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Schedule is a scheduled run of a course with a per-participant fee.
// Fees are stored as decimal major units and converted to minor units at
// intent issuance time.
type Schedule struct {
	ID        string
	CourseID  string
	StartDate time.Time
	Fee       decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// FeeMinorUnits returns the per-participant fee in minor units (e.g. cents).
func (s *Schedule) FeeMinorUnits() int64 {
	return s.Fee.Shift(2).Round(0).IntPart()
}

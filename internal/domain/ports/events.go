package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SettlementEvent is emitted after a registration settles. Downstream
// consumers (invoice sync) own their own retry policy; emission is
// best-effort and never rolls back the settlement itself.
type SettlementEvent struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	IntentID       string    `json:"intent_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	SettledAt      time.Time `json:"settled_at"`
}

// SettlementPublisher publishes settlement events for downstream consumers
type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, event SettlementEvent) error
}

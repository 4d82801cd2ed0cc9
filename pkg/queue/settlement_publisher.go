package queue

import (
	"context"

	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

// SettlementPublisher adapts the Redis job queue to the SettlementPublisher
// port.
type SettlementPublisher struct {
	queue *Queue
}

// NewSettlementPublisher creates a queue-backed settlement publisher
func NewSettlementPublisher(q *Queue) *SettlementPublisher {
	return &SettlementPublisher{queue: q}
}

// PublishSettlement enqueues a settlement sync job for the worker
func (p *SettlementPublisher) PublishSettlement(ctx context.Context, event ports.SettlementEvent) error {
	return p.queue.EnqueueSettlementSync(ctx, SettlementSyncPayload{
		RegistrationID: event.RegistrationID,
		IntentID:       event.IntentID,
		Amount:         event.Amount,
		Currency:       event.Currency,
		SettledAt:      event.SettledAt,
	})
}

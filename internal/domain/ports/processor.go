package ports

import (
	"context"

	"github.com/coursedesk/checkout-service/internal/domain/models"
)

// CreateIntentRequest represents a request to create a processor payment intent
type CreateIntentRequest struct {
	Amount   int64 // minor units
	Currency string
	Metadata map[string]string
}

// PaymentProcessor defines the interface to the external payment processor.
// The concrete implementation wraps the official stripe-go SDK.
type PaymentProcessor interface {
	// CreateIntent creates a pending payment intent carrying the given metadata
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*models.PaymentIntent, error)

	// GetIntent fetches the authoritative intent state by id. Callers must
	// never trust a caller-supplied status string in place of this lookup.
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
}

// WebhookEvent is a verified processor callback event
type WebhookEvent struct {
	ID       string
	Type     string
	IntentID string
	Raw      []byte
}

// WebhookVerifier authenticates inbound processor callbacks. Verification
// runs over the raw, unparsed request body; parsing before verifying
// invalidates the signature and must never happen.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

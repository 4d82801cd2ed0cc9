package stripe

import (
	"encoding/json"

	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

// WebhookVerifier implements ports.WebhookVerifier using Stripe's signed
// event scheme. Verification runs over the raw request body, so callers must
// pass the payload exactly as received, before any JSON decoding.
type WebhookVerifier struct {
	secret string
	logger *zap.Logger
}

// NewWebhookVerifier creates a verifier bound to one endpoint secret
func NewWebhookVerifier(secret string, logger *zap.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		secret: secret,
		logger: logger,
	}
}

// VerifyEvent checks the signature header against the raw payload and
// returns the parsed event. A failed check never reveals which part of the
// signature was wrong.
func (v *WebhookVerifier) VerifyEvent(payload []byte, signatureHeader string) (*ports.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		v.logger.Warn("webhook signature verification failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeSignatureInvalid, "webhook signature verification failed", err)
	}

	evt := &ports.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  event.Data.Raw,
	}

	// Payment intent events carry the intent id as the object id. Other
	// event types are passed through with an empty IntentID and the caller
	// decides whether it cares.
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err == nil {
		evt.IntentID = obj.ID
	}

	return evt, nil
}

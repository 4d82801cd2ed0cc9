package checkout

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain/ports"
	checkoutsvc "github.com/coursedesk/checkout-service/internal/services/checkout"
	"github.com/coursedesk/checkout-service/pkg/observability"
)

// Webhook body size cap. Stripe events are small; anything larger is not a
// legitimate event.
const maxWebhookBodyBytes = 65536

// Event types this service acts on. Everything else is acknowledged and
// ignored so the processor does not retry.
const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookHandler receives processor callbacks. The signature is verified
// over the raw body before anything is parsed, and verification failures
// are rejected without reconciliation.
type WebhookHandler struct {
	verifier   ports.WebhookVerifier
	reconciler *checkoutsvc.Reconciler
	logger     *zap.Logger
}

// NewWebhookHandler creates a new processor webhook handler
func NewWebhookHandler(verifier ports.WebhookVerifier, reconciler *checkoutsvc.Reconciler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleWebhook handles POST /api/v1/webhooks/processor
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("webhook body read failed", zap.Error(err))
		http.Error(w, "unable to read request body", http.StatusBadRequest)
		return
	}

	event, err := h.verifier.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		observability.RecordWebhookEvent("unknown", "signature_invalid")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case eventPaymentSucceeded:
		h.handleSucceeded(w, r, event)
	case eventPaymentFailed:
		observability.RecordWebhookEvent(event.Type, "accepted")
		h.logger.Info("payment failed event received",
			zap.String("event_id", event.ID),
			zap.String("intent_id", event.IntentID))
		h.ack(w)
	default:
		observability.RecordWebhookEvent(event.Type, "ignored")
		h.logger.Debug("ignoring webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type))
		h.ack(w)
	}
}

func (h *WebhookHandler) handleSucceeded(w http.ResponseWriter, r *http.Request, event *ports.WebhookEvent) {
	if event.IntentID == "" {
		observability.RecordWebhookEvent(event.Type, "ignored")
		h.logger.Warn("succeeded event carries no intent id", zap.String("event_id", event.ID))
		h.ack(w)
		return
	}

	_, err := h.reconciler.Reconcile(r.Context(), event.IntentID, checkoutsvc.SourceWebhook)
	if err != nil {
		observability.RecordWebhookEvent(event.Type, "failed")
		h.logger.Error("webhook reconciliation failed",
			zap.String("event_id", event.ID),
			zap.String("intent_id", event.IntentID),
			zap.Error(err))
		// 500 makes the processor redeliver; reconciliation is idempotent
		// so a retry is safe.
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	observability.RecordWebhookEvent(event.Type, "accepted")
	h.ack(w)
}

// ack acknowledges receipt so the processor stops redelivering
func (h *WebhookHandler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

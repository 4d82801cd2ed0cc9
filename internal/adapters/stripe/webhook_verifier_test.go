package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain"
)

const testWebhookSecret = "whsec_test_secret_key"

// signPayload builds a Stripe-Signature header the way Stripe does: an HMAC
// over "<timestamp>.<payload>" keyed by the endpoint secret.
func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func succeededEventPayload() []byte {
	return []byte(`{
		"id": "evt_test_001",
		"object": "event",
		"api_version": "2025-03-31",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_test_abc123",
				"object": "payment_intent",
				"amount": 50000,
				"currency": "usd",
				"status": "succeeded"
			}
		}
	}`)
}

func TestWebhookVerifier_VerifyEvent_ValidSignature(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, zap.NewNop())

	payload := succeededEventPayload()
	header := signPayload(t, payload, testWebhookSecret, time.Now())

	event, err := verifier.VerifyEvent(payload, header)
	require.NoError(t, err)

	assert.Equal(t, "evt_test_001", event.ID)
	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "pi_test_abc123", event.IntentID)
	assert.NotEmpty(t, event.Raw)
}

func TestWebhookVerifier_VerifyEvent_WrongSecret(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, zap.NewNop())

	payload := succeededEventPayload()
	header := signPayload(t, payload, "whsec_some_other_secret", time.Now())

	event, err := verifier.VerifyEvent(payload, header)
	require.Error(t, err)
	assert.Nil(t, event)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
}

func TestWebhookVerifier_VerifyEvent_TamperedPayload(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, zap.NewNop())

	payload := succeededEventPayload()
	header := signPayload(t, payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id":"evt_test_001","type":"payment_intent.succeeded","data":{"object":{"id":"pi_attacker"}}}`)

	event, err := verifier.VerifyEvent(tampered, header)
	require.Error(t, err)
	assert.Nil(t, event)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
}

func TestWebhookVerifier_VerifyEvent_StaleTimestamp(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, zap.NewNop())

	payload := succeededEventPayload()
	header := signPayload(t, payload, testWebhookSecret, time.Now().Add(-time.Hour))

	event, err := verifier.VerifyEvent(payload, header)
	require.Error(t, err)
	assert.Nil(t, event)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
}

func TestWebhookVerifier_VerifyEvent_MalformedHeader(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, zap.NewNop())

	payload := succeededEventPayload()

	event, err := verifier.VerifyEvent(payload, "not-a-signature-header")
	require.Error(t, err)
	assert.Nil(t, event)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
}

package checkout_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/config"
	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	checkoutHandler "github.com/coursedesk/checkout-service/internal/handlers/checkout"
	checkoutService "github.com/coursedesk/checkout-service/internal/services/checkout"
)

func newTestHandler(processor *MockPaymentProcessor, regRepo *MockRegistrationRepository, schedRepo *MockScheduleRepository, publisher *MockSettlementPublisher) *checkoutHandler.HTTPHandler {
	cfg := config.CheckoutConfig{Currency: "usd", DefaultFeeMinor: 25000, MaxParticipants: 10}
	issuer := checkoutService.NewIssuer(new(MockDBPort), regRepo, schedRepo, processor, cfg, nopLogger{})
	reconciler := checkoutService.NewReconciler(processor, regRepo, publisher, nopLogger{})
	return checkoutHandler.NewHTTPHandler(issuer, reconciler, zap.NewNop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateIntent_Success(t *testing.T) {
	processor := new(MockPaymentProcessor)
	regRepo := new(MockRegistrationRepository)
	schedRepo := new(MockScheduleRepository)
	publisher := new(MockSettlementPublisher)

	schedRepo.On("GetByID", mock.Anything, "sched-1").Return(nil, nil)
	processor.On("CreateIntent", mock.Anything, mock.Anything).Return(&models.PaymentIntent{
		ID:           "pi_api_1",
		ClientSecret: "pi_api_1_secret",
		Amount:       50000,
		Currency:     "usd",
		Status:       models.IntentStatusRequiresAction,
	}, nil)
	regRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(processor, regRepo, schedRepo, publisher)

	rec := postJSON(t, h.CreateIntent, "/api/v1/checkout/intents", map[string]interface{}{
		"email":        "buyer@example.com",
		"full_name":    "Test Buyer",
		"course_id":    "course-1",
		"schedule_id":  "sched-1",
		"participants": 2,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pi_api_1", body["intent_id"])
	assert.Equal(t, "pi_api_1_secret", body["client_secret"])
	assert.Equal(t, float64(50000), body["amount"])
}

func TestCreateIntent_ValidationErrorReturns400(t *testing.T) {
	h := newTestHandler(new(MockPaymentProcessor), new(MockRegistrationRepository), new(MockScheduleRepository), new(MockSettlementPublisher))

	rec := postJSON(t, h.CreateIntent, "/api/v1/checkout/intents", map[string]interface{}{
		"full_name":    "No Email",
		"course_id":    "course-1",
		"participants": 1,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.ErrorCodeValidationMissingField), body["code"])
}

func TestReconcile_Success(t *testing.T) {
	processor := new(MockPaymentProcessor)
	regRepo := new(MockRegistrationRepository)
	publisher := new(MockSettlementPublisher)

	processor.On("GetIntent", mock.Anything, "pi_api_2").Return(&models.PaymentIntent{
		ID:       "pi_api_2",
		Amount:   25000,
		Currency: "usd",
		Status:   models.IntentStatusSucceeded,
		Metadata: map[string]string{},
	}, nil)
	regRepo.On("MarkPaid", mock.Anything, "pi_api_2").Return(settledRegistration("pi_api_2"), true, nil)
	publisher.On("PublishSettlement", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(processor, regRepo, new(MockScheduleRepository), publisher)

	rec := postJSON(t, h.Reconcile, "/api/v1/checkout/reconcile", map[string]string{
		"intent_id": "pi_api_2",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pi_api_2", body["intent_id"])
	assert.Equal(t, string(models.PaymentStatusPaid), body["payment_status"])
	assert.Equal(t, string(models.OrderStatusCompleted), body["order_status"])
}

func TestReconcile_NotCompletedReturns400(t *testing.T) {
	processor := new(MockPaymentProcessor)
	regRepo := new(MockRegistrationRepository)
	publisher := new(MockSettlementPublisher)

	processor.On("GetIntent", mock.Anything, "pi_api_3").Return(&models.PaymentIntent{
		ID:       "pi_api_3",
		Amount:   25000,
		Currency: "usd",
		Status:   models.IntentStatusProcessing,
		Metadata: map[string]string{},
	}, nil)

	h := newTestHandler(processor, regRepo, new(MockScheduleRepository), publisher)

	rec := postJSON(t, h.Reconcile, "/api/v1/checkout/reconcile", map[string]string{
		"intent_id": "pi_api_3",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.ErrorCodePaymentNotCompleted), body["code"])

	// Client claims never reach the ledger without processor confirmation
	regRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestReconcile_MissingIntentIDReturns400(t *testing.T) {
	h := newTestHandler(new(MockPaymentProcessor), new(MockRegistrationRepository), new(MockScheduleRepository), new(MockSettlementPublisher))

	rec := postJSON(t, h.Reconcile, "/api/v1/checkout/reconcile", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcile_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(new(MockPaymentProcessor), new(MockRegistrationRepository), new(MockScheduleRepository), new(MockSettlementPublisher))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/reconcile", nil)
	rec := httptest.NewRecorder()
	h.Reconcile(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

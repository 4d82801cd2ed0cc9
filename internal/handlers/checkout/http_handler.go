package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	checkoutsvc "github.com/coursedesk/checkout-service/internal/services/checkout"
)

// HTTPHandler exposes the checkout API over plain JSON HTTP
type HTTPHandler struct {
	issuer     *checkoutsvc.Issuer
	reconciler *checkoutsvc.Reconciler
	logger     *zap.Logger
}

// NewHTTPHandler creates a new checkout HTTP handler
func NewHTTPHandler(issuer *checkoutsvc.Issuer, reconciler *checkoutsvc.Reconciler, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		issuer:     issuer,
		reconciler: reconciler,
		logger:     logger,
	}
}

// createIntentRequest is the JSON body for POST /api/v1/checkout/intents
type createIntentRequest struct {
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	CourseID      string `json:"course_id"`
	ScheduleID    string `json:"schedule_id"`
	Participants  int32  `json:"participants"`
	PaymentMethod string `json:"payment_method"`
}

type createIntentResponse struct {
	RegistrationID string `json:"registration_id"`
	IntentID       string `json:"intent_id"`
	ClientSecret   string `json:"client_secret"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// reconcileRequest is the JSON body for POST /api/v1/checkout/reconcile.
// Only the intent id is accepted; the processor is the authority on status.
type reconcileRequest struct {
	IntentID string `json:"intent_id"`
}

type reconcileResponse struct {
	RegistrationID string `json:"registration_id"`
	IntentID       string `json:"intent_id"`
	PaymentStatus  string `json:"payment_status"`
	OrderStatus    string `json:"order_status"`
}

type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CreateIntent handles POST /api/v1/checkout/intents
func (h *HTTPHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = models.PaymentMethodCard
	}

	resp, err := h.issuer.Issue(r.Context(), checkoutsvc.IssueRequest{
		Email:         req.Email,
		FullName:      req.FullName,
		Phone:         req.Phone,
		CourseID:      req.CourseID,
		ScheduleID:    req.ScheduleID,
		Participants:  req.Participants,
		PaymentMethod: method,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, createIntentResponse{
		RegistrationID: resp.RegistrationID.String(),
		IntentID:       resp.IntentID,
		ClientSecret:   resp.ClientSecret,
		Amount:         resp.Amount,
		Currency:       resp.Currency,
	})
}

// Reconcile handles POST /api/v1/checkout/reconcile, the client redirect
// confirmation path
func (h *HTTPHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return
	}
	if req.IntentID == "" {
		h.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "intent_id is required"))
		return
	}

	result, err := h.reconciler.Reconcile(r.Context(), req.IntentID, checkoutsvc.SourceRedirect)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reg := result.Registration
	h.writeJSON(w, http.StatusOK, reconcileResponse{
		RegistrationID: reg.ID.String(),
		IntentID:       reg.IntentID,
		PaymentStatus:  string(reg.PaymentStatus),
		OrderStatus:    string(reg.OrderStatus),
	})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encode failed", zap.Error(err))
	}
}

// writeError maps domain error codes onto HTTP statuses
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{
		Code:    string(domain.ErrorCodeInternalError),
		Message: "internal server error",
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details

		switch {
		case domain.IsValidationError(err):
			status = http.StatusBadRequest
		case domain.IsDomainError(err, domain.ErrorCodePaymentNotCompleted):
			status = http.StatusBadRequest
		case domain.IsNotFoundError(err):
			status = http.StatusNotFound
		case domain.IsDomainError(err, domain.ErrorCodeLedgerWriteConflict):
			status = http.StatusConflict
		case domain.IsProcessorError(err):
			status = http.StatusBadGateway
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	} else {
		h.logger.Warn("request rejected",
			zap.String("code", resp.Code),
			zap.Int("status", status))
	}

	h.writeJSON(w, status, resp)
}

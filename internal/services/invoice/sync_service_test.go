package invoice_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
	"github.com/coursedesk/checkout-service/internal/services/invoice"
	"github.com/coursedesk/checkout-service/pkg/queue"
)

// MockInvoiceRepository mocks the invoice repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) MarkPaid(ctx context.Context, registrationID uuid.UUID, paidAt time.Time) error {
	args := m.Called(ctx, registrationID, paidAt)
	return args.Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Debug(string, ...ports.Field) {}

func settlementJob(t *testing.T, regID uuid.UUID, settledAt time.Time) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.SettlementSyncPayload{
		RegistrationID: regID,
		IntentID:       "pi_sync_1",
		Amount:         25000,
		Currency:       "usd",
		SettledAt:      settledAt,
	})
	require.NoError(t, err)
	return &queue.Job{
		ID:      uuid.New().String(),
		Type:    queue.JobTypeSettlementSync,
		Payload: payload,
	}
}

func TestHandleJob_MarksInvoicePaid(t *testing.T) {
	repo := new(MockInvoiceRepository)
	regID := uuid.New()
	settledAt := time.Now().UTC().Truncate(time.Second)

	repo.On("GetByRegistrationID", mock.Anything, regID).Return(&models.Invoice{
		ID:             uuid.New(),
		RegistrationID: regID,
		InvoiceNumber:  "INV-001",
		Amount:         25000,
		Currency:       "usd",
		Status:         models.InvoiceStatusPending,
	}, nil)
	repo.On("MarkPaid", mock.Anything, regID, settledAt).Return(nil)

	svc := invoice.NewSyncService(repo, nopLogger{})

	err := svc.HandleJob(context.Background(), settlementJob(t, regID, settledAt))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleJob_MissingInvoiceIsNotAnError(t *testing.T) {
	repo := new(MockInvoiceRepository)
	regID := uuid.New()

	repo.On("GetByRegistrationID", mock.Anything, regID).
		Return(nil, domain.NewDomainError(domain.ErrorCodeInvoiceNotFound, "invoice not found"))

	svc := invoice.NewSyncService(repo, nopLogger{})

	err := svc.HandleJob(context.Background(), settlementJob(t, regID, time.Now()))
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleJob_RepositoryFailurePropagates(t *testing.T) {
	repo := new(MockInvoiceRepository)
	regID := uuid.New()

	repo.On("GetByRegistrationID", mock.Anything, regID).
		Return(nil, domain.NewDomainError(domain.ErrorCodeDatabaseError, "database error"))

	svc := invoice.NewSyncService(repo, nopLogger{})

	err := svc.HandleJob(context.Background(), settlementJob(t, regID, time.Now()))
	assert.Error(t, err)
}

func TestHandleJob_UnknownJobTypeSkipped(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := invoice.NewSyncService(repo, nopLogger{})

	err := svc.HandleJob(context.Background(), &queue.Job{
		ID:      uuid.New().String(),
		Type:    "something_else",
		Payload: []byte(`{}`),
	})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "GetByRegistrationID", mock.Anything, mock.Anything)
}

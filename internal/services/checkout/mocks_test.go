package checkout_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

// MockDBPort executes transaction callbacks directly with a nil tx
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockRegistrationRepository mocks the registration repository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, tx ports.DBTX, reg *models.Registration) error {
	args := m.Called(ctx, tx, reg)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Registration, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) MarkPaid(ctx context.Context, intentID string) (*models.Registration, bool, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Registration), args.Bool(1), args.Error(2)
}

func (m *MockRegistrationRepository) CreateSettled(ctx context.Context, reg *models.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

// MockScheduleRepository mocks the schedule repository
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schedule), args.Error(1)
}

// MockPaymentProcessor mocks the payment processor
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateIntent(ctx context.Context, req *ports.CreateIntentRequest) (*models.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockPaymentProcessor) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

// MockSettlementPublisher mocks the settlement event publisher
type MockSettlementPublisher struct {
	mock.Mock
}

func (m *MockSettlementPublisher) PublishSettlement(ctx context.Context, event ports.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// nopLogger satisfies ports.Logger without output
type nopLogger struct{}

func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Debug(string, ...ports.Field) {}

// fakeLedger is an in-memory registration store whose MarkPaid and
// CreateSettled are atomic under a mutex, mirroring the conditional SQL
// statements. Used for concurrency tests.
type fakeLedger struct {
	mu   sync.Mutex
	rows map[string]*models.Registration // keyed by intent id
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[string]*models.Registration)}
}

func (f *fakeLedger) put(reg *models.Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[reg.IntentID] = reg
}

func (f *fakeLedger) Create(_ context.Context, _ ports.DBTX, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rows[reg.IntentID]; exists {
		return domain.NewDomainError(domain.ErrorCodeLedgerWriteConflict, "duplicate intent id")
	}
	clone := *reg
	f.rows[reg.IntentID] = &clone
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.rows {
		if reg.ID == id {
			clone := *reg
			return &clone, nil
		}
	}
	return nil, domain.NewDomainError(domain.ErrorCodeRegistrationNotFound, "registration not found")
}

func (f *fakeLedger) GetByIntentID(_ context.Context, intentID string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.rows[intentID]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeRegistrationNotFound, "registration not found")
	}
	clone := *reg
	return &clone, nil
}

func (f *fakeLedger) MarkPaid(_ context.Context, intentID string) (*models.Registration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.rows[intentID]
	if !ok || reg.PaymentStatus != models.PaymentStatusUnpaid || reg.OrderStatus != models.OrderStatusIncomplete {
		return nil, false, nil
	}
	reg.PaymentStatus = models.PaymentStatusPaid
	reg.OrderStatus = models.OrderStatusCompleted
	clone := *reg
	return &clone, true, nil
}

func (f *fakeLedger) CreateSettled(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rows[reg.IntentID]; exists {
		return domain.NewDomainError(domain.ErrorCodeLedgerWriteConflict, "duplicate intent id")
	}
	clone := *reg
	f.rows[reg.IntentID] = &clone
	return nil
}

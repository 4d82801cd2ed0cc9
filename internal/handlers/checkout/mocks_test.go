package checkout_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"

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

package checkout

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coursedesk/checkout-service/internal/config"
	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
	"github.com/coursedesk/checkout-service/pkg/observability"
)

// IssueRequest is a request to open a checkout for a course booking
type IssueRequest struct {
	Email         string
	FullName      string
	Phone         string
	CourseID      string
	ScheduleID    string
	Participants  int32
	PaymentMethod models.PaymentMethod
}

// IssueResponse carries what the client needs to complete payment
type IssueResponse struct {
	RegistrationID uuid.UUID
	IntentID       string
	ClientSecret   string
	Amount         int64
	Currency       string
}

// Issuer opens checkouts: it resolves the fee, creates the processor payment
// intent, and records the provisional Unpaid/Incomplete registration. The
// intent id written on the row is the idempotency key later settlement
// writes key on.
type Issuer struct {
	db        ports.DBPort
	regRepo   ports.RegistrationRepository
	schedRepo ports.ScheduleRepository
	processor ports.PaymentProcessor
	cfg       config.CheckoutConfig
	logger    ports.Logger
}

// NewIssuer creates a new checkout issuer
func NewIssuer(
	db ports.DBPort,
	regRepo ports.RegistrationRepository,
	schedRepo ports.ScheduleRepository,
	processor ports.PaymentProcessor,
	cfg config.CheckoutConfig,
	logger ports.Logger,
) *Issuer {
	return &Issuer{
		db:        db,
		regRepo:   regRepo,
		schedRepo: schedRepo,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Issue validates the request, resolves the amount, creates the payment
// intent and the provisional registration row. The row insert and intent
// creation run inside one transaction so a processor failure leaves no
// orphaned registration behind.
func (s *Issuer) Issue(ctx context.Context, req IssueRequest) (*IssueResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	amount, currency, err := s.resolveAmount(ctx, req)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		ID:            uuid.New(),
		Email:         req.Email,
		FullName:      req.FullName,
		Phone:         req.Phone,
		CourseID:      req.CourseID,
		ScheduleID:    req.ScheduleID,
		Participants:  req.Participants,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusUnpaid,
		OrderStatus:   models.OrderStatusIncomplete,
	}

	var intent *models.PaymentIntent
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		intent, txErr = s.processor.CreateIntent(ctx, &ports.CreateIntentRequest{
			Amount:   amount,
			Currency: currency,
			Metadata: intentMetadata(reg),
		})
		if txErr != nil {
			return txErr
		}

		reg.IntentID = intent.ID
		return s.regRepo.Create(ctx, tx, reg)
	})
	if err != nil {
		observability.RecordIntentIssued(currency, "processor_failed", amount)
		s.logger.Error("checkout issuance failed",
			ports.String("course_id", req.CourseID),
			ports.Int64("amount", amount),
			ports.Err(err))
		return nil, err
	}

	observability.RecordIntentIssued(currency, "created", amount)
	s.logger.Info("checkout issued",
		ports.String("registration_id", reg.ID.String()),
		ports.String("intent_id", intent.ID),
		ports.Int64("amount", amount),
		ports.String("currency", currency))

	return &IssueResponse{
		RegistrationID: reg.ID,
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		Amount:         amount,
		Currency:       currency,
	}, nil
}

func (s *Issuer) validate(req IssueRequest) error {
	if req.Email == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "email is required")
	}
	if req.FullName == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "full name is required")
	}
	if req.CourseID == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "course id is required")
	}
	if req.Participants < 1 {
		return domain.NewDomainError(domain.ErrorCodeValidationFailed, "participants must be at least 1")
	}
	if s.cfg.MaxParticipants > 0 && req.Participants > s.cfg.MaxParticipants {
		return domain.NewDomainError(domain.ErrorCodeValidationFailed, "participants exceeds maximum").
			WithDetail("max_participants", s.cfg.MaxParticipants)
	}
	if req.PaymentMethod == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "payment method is required")
	}
	return nil
}

// resolveAmount prices the booking: the schedule's per-participant fee when
// the schedule exists, the configured default otherwise.
func (s *Issuer) resolveAmount(ctx context.Context, req IssueRequest) (int64, string, error) {
	feeMinor := s.cfg.DefaultFeeMinor
	currency := s.cfg.Currency

	if req.ScheduleID != "" {
		sched, err := s.schedRepo.GetByID(ctx, req.ScheduleID)
		if err != nil {
			return 0, "", err
		}
		if sched != nil {
			feeMinor = sched.FeeMinorUnits()
			if sched.Currency != "" {
				currency = sched.Currency
			}
		}
	}

	amount := feeMinor * int64(req.Participants)
	if amount <= 0 {
		return 0, "", domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid, "resolved amount must be positive").
			WithDetail("amount", amount)
	}
	return amount, currency, nil
}

// intentMetadata embeds everything reconciliation needs to rebuild the
// registration from the intent alone
func intentMetadata(reg *models.Registration) map[string]string {
	return map[string]string{
		models.MetaEmail:         reg.Email,
		models.MetaName:          reg.FullName,
		models.MetaPhone:         reg.Phone,
		models.MetaCourseID:      reg.CourseID,
		models.MetaScheduleID:    reg.ScheduleID,
		models.MetaParticipants:  strconv.Itoa(int(reg.Participants)),
		models.MetaPaymentMethod: string(reg.PaymentMethod),
	}
}

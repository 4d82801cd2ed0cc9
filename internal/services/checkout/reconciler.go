package checkout

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
	"github.com/coursedesk/checkout-service/pkg/observability"
)

// Settlement sources, used for logging and metrics only. Both paths run the
// same reconciliation.
const (
	SourceRedirect = "redirect"
	SourceWebhook  = "webhook"
)

// ReconcileResult reports what a reconciliation attempt did
type ReconcileResult struct {
	Registration *models.Registration
	// Settled is true when THIS call performed the ledger write. At most
	// one concurrent caller per intent sees true.
	Settled bool
}

// Reconciler settles payment intents against the registration ledger.
// Reconcile may be called concurrently from the client redirect and the
// processor webhook for the same intent; exactly one caller wins the
// conditional ledger write and every other caller observes the already
// settled row.
type Reconciler struct {
	processor ports.PaymentProcessor
	regRepo   ports.RegistrationRepository
	publisher ports.SettlementPublisher
	logger    ports.Logger
}

// NewReconciler creates a new settlement reconciler
func NewReconciler(
	processor ports.PaymentProcessor,
	regRepo ports.RegistrationRepository,
	publisher ports.SettlementPublisher,
	logger ports.Logger,
) *Reconciler {
	return &Reconciler{
		processor: processor,
		regRepo:   regRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Reconcile fetches the authoritative intent state from the processor and,
// if the intent succeeded, settles the ledger row for it. Callers pass only
// the intent id; any status a client claims is ignored.
func (s *Reconciler) Reconcile(ctx context.Context, intentID, source string) (*ReconcileResult, error) {
	start := time.Now()

	intent, err := s.processor.GetIntent(ctx, intentID)
	if err != nil {
		observability.RecordSettlement(source, "failed", "", 0, time.Since(start).Seconds())
		return nil, err
	}

	if !intent.Succeeded() {
		observability.RecordSettlement(source, "not_completed", intent.Currency, 0, time.Since(start).Seconds())
		s.logger.Info("reconcile skipped, intent not succeeded",
			ports.String("intent_id", intentID),
			ports.String("intent_status", string(intent.Status)),
			ports.String("source", source))
		return nil, domain.NewDomainError(domain.ErrorCodePaymentNotCompleted, "payment intent has not succeeded").
			WithDetail("intent_status", string(intent.Status))
	}

	result, err := s.settle(ctx, intent)
	if err != nil {
		observability.RecordSettlement(source, "failed", intent.Currency, 0, time.Since(start).Seconds())
		return nil, err
	}

	outcome := "already_settled"
	if result.Settled {
		outcome = "settled"
		s.emitSettlement(ctx, result.Registration)
	}
	observability.RecordSettlement(source, outcome, intent.Currency, intent.Amount, time.Since(start).Seconds())

	s.logger.Info("reconcile complete",
		ports.String("intent_id", intentID),
		ports.String("registration_id", result.Registration.ID.String()),
		ports.String("source", source),
		ports.Bool("settled_by_this_call", result.Settled))

	return result, nil
}

// settle performs the at-most-once ledger write. The provisional row is the
// common case; a missing row means the webhook outran issuance persistence
// or the row predates intent tracking, and a settled row is created from
// intent metadata instead. Both writes are single conditional statements
// keyed on the intent id, so concurrent callers cannot both win.
func (s *Reconciler) settle(ctx context.Context, intent *models.PaymentIntent) (*ReconcileResult, error) {
	reg, won, err := s.regRepo.MarkPaid(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if won {
		return &ReconcileResult{Registration: reg, Settled: true}, nil
	}

	// No Unpaid row matched. Either the row settled already or it never
	// existed.
	existing, err := s.regRepo.GetByIntentID(ctx, intent.ID)
	if err == nil {
		if !existing.Settled() {
			// Row exists but is not Unpaid/Incomplete and not settled
			// (e.g. Cancelled). Do not resurrect it.
			return nil, domain.NewDomainError(domain.ErrorCodeLedgerWriteConflict, "registration is not settleable").
				WithDetail("order_status", string(existing.OrderStatus))
		}
		return &ReconcileResult{Registration: existing, Settled: false}, nil
	}
	if !domain.IsDomainError(err, domain.ErrorCodeRegistrationNotFound) {
		return nil, err
	}

	created := registrationFromIntent(intent)
	if err := s.regRepo.CreateSettled(ctx, created); err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeLedgerWriteConflict) {
			// Lost the insert race; the winner's row is authoritative
			existing, getErr := s.regRepo.GetByIntentID(ctx, intent.ID)
			if getErr != nil {
				return nil, getErr
			}
			return &ReconcileResult{Registration: existing, Settled: false}, nil
		}
		return nil, err
	}

	s.logger.Warn("settled registration created from intent metadata, no provisional row found",
		ports.String("intent_id", intent.ID),
		ports.String("registration_id", created.ID.String()))

	return &ReconcileResult{Registration: created, Settled: true}, nil
}

// emitSettlement publishes the settlement event for downstream invoice sync.
// Emission is best-effort: the ledger write already committed and is never
// rolled back over a queue failure.
func (s *Reconciler) emitSettlement(ctx context.Context, reg *models.Registration) {
	settledAt := time.Now()
	if reg.SettledAt != nil {
		settledAt = *reg.SettledAt
	}

	err := s.publisher.PublishSettlement(ctx, ports.SettlementEvent{
		RegistrationID: reg.ID,
		IntentID:       reg.IntentID,
		Amount:         reg.Amount,
		Currency:       reg.Currency,
		SettledAt:      settledAt,
	})
	if err != nil {
		s.logger.Error("settlement event publish failed",
			ports.String("registration_id", reg.ID.String()),
			ports.String("intent_id", reg.IntentID),
			ports.Err(err))
	}
}

// registrationFromIntent rebuilds a registration from the metadata embedded
// at issuance time
func registrationFromIntent(intent *models.PaymentIntent) *models.Registration {
	participants := int32(1)
	if v, err := strconv.Atoi(intent.Metadata[models.MetaParticipants]); err == nil && v > 0 {
		participants = int32(v)
	}

	method := models.PaymentMethod(intent.Metadata[models.MetaPaymentMethod])
	if method == "" {
		method = models.PaymentMethodCard
	}

	return &models.Registration{
		ID:            uuid.New(),
		IntentID:      intent.ID,
		Email:         intent.Metadata[models.MetaEmail],
		FullName:      intent.Metadata[models.MetaName],
		Phone:         intent.Metadata[models.MetaPhone],
		CourseID:      intent.Metadata[models.MetaCourseID],
		ScheduleID:    intent.Metadata[models.MetaScheduleID],
		Participants:  participants,
		Amount:        intent.Amount,
		Currency:      intent.Currency,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPaid,
		OrderStatus:   models.OrderStatusCompleted,
	}
}

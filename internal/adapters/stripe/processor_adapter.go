package stripe

import (
	"context"
	"errors"

	stripesdk "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/models"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

// ProcessorAdapter implements ports.PaymentProcessor using the Stripe SDK.
// The client is constructed once at startup and passed in; components never
// reach for SDK-global state.
type ProcessorAdapter struct {
	client *stripesdk.Client
	logger *zap.Logger
}

// NewProcessorAdapter creates a Stripe-backed payment processor adapter
func NewProcessorAdapter(apiKey string, logger *zap.Logger) *ProcessorAdapter {
	return &ProcessorAdapter{
		client: stripesdk.NewClient(apiKey),
		logger: logger,
	}
}

// CreateIntent creates a pending payment intent carrying the given metadata
func (a *ProcessorAdapter) CreateIntent(ctx context.Context, req *ports.CreateIntentRequest) (*models.PaymentIntent, error) {
	params := &stripesdk.PaymentIntentCreateParams{
		Amount:   stripesdk.Int64(req.Amount),
		Currency: stripesdk.String(req.Currency),
		Metadata: req.Metadata,
		AutomaticPaymentMethods: &stripesdk.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripesdk.Bool(true),
		},
	}

	pi, err := a.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		a.logger.Error("stripe payment intent create failed",
			zap.Int64("amount", req.Amount),
			zap.String("currency", req.Currency),
			zap.Error(err),
		)
		return nil, wrapStripeError("create payment intent", err)
	}

	a.logger.Info("stripe payment intent created",
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", pi.Amount),
		zap.String("status", string(pi.Status)),
	)

	return toDomainIntent(pi), nil
}

// GetIntent fetches the authoritative intent state by id
func (a *ProcessorAdapter) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	pi, err := a.client.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		a.logger.Error("stripe payment intent retrieve failed",
			zap.String("intent_id", id),
			zap.Error(err),
		)
		return nil, wrapStripeError("retrieve payment intent", err)
	}
	return toDomainIntent(pi), nil
}

// toDomainIntent converts a Stripe payment intent to the domain model
func toDomainIntent(pi *stripesdk.PaymentIntent) *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       models.IntentStatus(pi.Status),
		Metadata:     pi.Metadata,
	}
}

// wrapStripeError maps Stripe API failures onto the domain error taxonomy.
// Card declines are user-facing; everything else is a processor fault that
// callers may surface as transient.
func wrapStripeError(op string, err error) error {
	var stripeErr *stripesdk.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripesdk.ErrorTypeCard:
			return domain.WrapError(domain.ErrorCodeProcessorDeclined, op+" declined", err).
				WithDetail("decline_code", string(stripeErr.DeclineCode))
		case stripesdk.ErrorTypeAPI:
			return domain.WrapError(domain.ErrorCodeProcessorTimeout, op+" failed upstream", err)
		}
		return domain.WrapError(domain.ErrorCodeProcessorError, op+" failed", err).
			WithDetail("stripe_code", string(stripeErr.Code))
	}
	return domain.WrapError(domain.ErrorCodeProcessorError, op+" failed", err)
}

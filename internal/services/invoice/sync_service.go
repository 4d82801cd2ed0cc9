package invoice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coursedesk/checkout-service/internal/domain"
	"github.com/coursedesk/checkout-service/internal/domain/ports"
	"github.com/coursedesk/checkout-service/pkg/observability"
	"github.com/coursedesk/checkout-service/pkg/queue"
)

// SyncService marks invoices paid after their linked registration settles.
// It runs in the worker process, consuming settlement jobs from the queue.
type SyncService struct {
	invoiceRepo ports.InvoiceRepository
	logger      ports.Logger
}

// NewSyncService creates a new invoice sync service
func NewSyncService(invoiceRepo ports.InvoiceRepository, logger ports.Logger) *SyncService {
	return &SyncService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// HandleJob processes one settlement sync job. A missing invoice is not an
// error: not every registration has one, and the job must not churn the DLQ
// over a permanent condition. MarkPaid on an already-PAID invoice is a no-op,
// so redelivered jobs are harmless.
func (s *SyncService) HandleJob(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeSettlementSync {
		s.logger.Warn("unexpected job type", ports.String("job_type", string(job.Type)))
		return nil
	}

	var payload queue.SettlementSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal settlement payload: %w", err)
	}

	inv, err := s.invoiceRepo.GetByRegistrationID(ctx, payload.RegistrationID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeInvoiceNotFound) {
			observability.RecordInvoiceSync("not_found")
			s.logger.Info("no invoice linked to settled registration",
				ports.String("registration_id", payload.RegistrationID.String()))
			return nil
		}
		observability.RecordInvoiceSync("failed")
		return err
	}

	if err := s.invoiceRepo.MarkPaid(ctx, payload.RegistrationID, payload.SettledAt); err != nil {
		observability.RecordInvoiceSync("failed")
		return err
	}

	observability.RecordInvoiceSync("synced")
	s.logger.Info("invoice marked paid",
		ports.String("invoice_number", inv.InvoiceNumber),
		ports.String("registration_id", payload.RegistrationID.String()),
		ports.String("intent_id", payload.IntentID))
	return nil
}

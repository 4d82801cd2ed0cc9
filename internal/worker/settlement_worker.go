package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/services/invoice"
	"github.com/coursedesk/checkout-service/pkg/queue"
)

// SettlementWorker drains the settlement queue and applies invoice sync.
// Jobs that fail go back through the queue's retry path and land in the DLQ
// after exhausting retries.
type SettlementWorker struct {
	queue   *queue.Queue
	syncSvc *invoice.SyncService
	logger  *zap.Logger
}

// NewSettlementWorker creates a settlement queue worker
func NewSettlementWorker(q *queue.Queue, syncSvc *invoice.SyncService, logger *zap.Logger) *SettlementWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementWorker{queue: q, syncSvc: syncSvc, logger: logger}
}

// Run consumes jobs until ctx is cancelled
func (w *SettlementWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("settlement worker stopping")
			return
		default:
		}

		job, _, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := w.syncSvc.HandleJob(ctx, job); err != nil {
			w.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := w.queue.Retry(ctx, job); reErr != nil {
				w.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

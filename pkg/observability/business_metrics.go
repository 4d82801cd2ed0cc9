package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Intent issuance metrics
	intentsIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_intents_issued_total",
		Help: "Total number of payment intents issued",
	}, []string{
		"currency",
		"status", // created, processor_failed
	})

	intentAmountMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_intent_amount_minor_units_total",
		Help: "Total issued intent amount in minor units (for revenue tracking)",
	}, []string{
		"currency",
		"status",
	})

	// Settlement metrics
	settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_settlements_total",
		Help: "Total settlement attempts by outcome",
	}, []string{
		"source",  // redirect, webhook
		"outcome", // settled, already_settled, not_completed, failed
	})

	settlementRevenueMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_settlement_revenue_minor_units_total",
		Help: "Total settled revenue in minor units",
	}, []string{
		"currency",
	})

	settlementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "checkout_settlement_duration_seconds",
		Help: "Time to reconcile a payment intent end-to-end",
		// Buckets: 50ms to 10s (one processor round trip plus ledger writes)
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{
		"source",
		"outcome",
	})

	// Webhook intake metrics
	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_webhook_events_total",
		Help: "Total inbound processor webhook events",
	}, []string{
		"event_type",
		"status", // accepted, signature_invalid, ignored
	})

	// Invoice sync metrics
	invoiceSyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_invoice_syncs_total",
		Help: "Total invoice sync jobs processed",
	}, []string{
		"status", // synced, not_found, failed
	})
)

// RecordIntentIssued records an intent issuance attempt
func RecordIntentIssued(currency, status string, amountMinorUnits int64) {
	intentsIssuedTotal.WithLabelValues(currency, status).Inc()
	intentAmountMinorUnits.WithLabelValues(currency, status).Add(float64(amountMinorUnits))
}

// RecordSettlement records a settlement attempt and, for the winning write,
// the settled revenue
func RecordSettlement(source, outcome, currency string, amountMinorUnits int64, duration float64) {
	settlementsTotal.WithLabelValues(source, outcome).Inc()
	settlementDuration.WithLabelValues(source, outcome).Observe(duration)

	if outcome == "settled" {
		settlementRevenueMinorUnits.WithLabelValues(currency).Add(float64(amountMinorUnits))
	}
}

// RecordWebhookEvent records an inbound webhook event
func RecordWebhookEvent(eventType, status string) {
	webhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordInvoiceSync records an invoice sync job outcome
func RecordInvoiceSync(status string) {
	invoiceSyncsTotal.WithLabelValues(status).Inc()
}

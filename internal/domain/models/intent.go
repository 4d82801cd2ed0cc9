package models

// IntentStatus represents the processor-side state of a payment intent.
// The processor owns the state machine; this service only ever reads it.
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"

	IntentStatusRequiresAction IntentStatus = "requires_action"
	IntentStatusProcessing     IntentStatus = "processing"
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusFailed         IntentStatus = "failed"
	IntentStatusCanceled       IntentStatus = "canceled"
)

// Metadata keys embedded in the intent at issuance time. Reconciliation
// reconstructs a registration from these without re-querying the original
// checkout request.
const (
	MetaEmail         = "buyer_email"
	MetaName          = "buyer_name"
	MetaPhone         = "buyer_phone"
	MetaCourseID      = "course_id"
	MetaScheduleID    = "schedule_id"
	MetaParticipants  = "participants"
	MetaPaymentMethod = "payment_method"
)

// PaymentIntent is the service's read-only view of a processor payment intent.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64 // minor units
	Currency     string
	Status       IntentStatus
	Metadata     map[string]string
}

// Succeeded reports whether the intent has settled on the processor side.
func (p *PaymentIntent) Succeeded() bool {
	return p.Status == IntentStatusSucceeded
}

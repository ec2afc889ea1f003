// Package events names the domain events the ledger emits and defines the
// notification sink port. Delivery is best-effort: a failed notification
// never fails the transition that produced it.
package events

const (
	EventRequestCreated    = "billing.request.created"
	EventRequestCalculated = "billing.request.calculated"
	EventRequestApproved   = "billing.request.approved"
	EventRequestInvoiced   = "billing.request.invoiced"
	EventRequestPaid       = "billing.request.paid"
	EventRequestCompleted  = "billing.request.completed"
	EventRequestFailed     = "billing.request.failed"
)

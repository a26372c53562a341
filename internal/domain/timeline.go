package domain

import "time"

// TimelineEvent is one entry of a rental's append-only audit trail. Events
// are appended by the transition that caused them and never mutated.
type TimelineEvent struct {
	ID        int32     `json:"id"`
	RentalID  int32     `json:"rental_id"`
	Event     string    `json:"event"`
	ActorID   *int32    `json:"actor_id,omitempty"` // nil for system/provider events
	Details   string    `json:"details,omitempty"`
	CreatedOn time.Time `json:"created_on"`
}

// Timeline event names, in the order they typically occur.
const (
	EventRentalRequested   = "rental_requested"
	EventRentalApproved    = "rental_approved"
	EventRentalRejected    = "rental_rejected"
	EventRentalCancelled   = "rental_cancelled"
	EventPaymentSucceeded  = "payment_succeeded"
	EventPaymentFailed     = "payment_failed"
	EventHandoverConfirmed = "handover_confirmed"
	EventRentalActivated   = "rental_activated"
	EventItemReceived      = "item_received"
	EventItemReturned      = "item_returned"
	EventRentalCompleted   = "rental_completed"
	EventDisputeRaised     = "dispute_raised"
	EventDisputeResolved   = "dispute_resolved"
)

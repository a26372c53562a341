package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusOpen          DisputeStatus = "OPEN"
	DisputeStatusInvestigating DisputeStatus = "INVESTIGATING"
	DisputeStatusResolved      DisputeStatus = "RESOLVED"
	DisputeStatusClosed        DisputeStatus = "CLOSED"
)

type DisputeDecision string

const (
	DisputeDecisionCompleteRental DisputeDecision = "COMPLETE_RENTAL"
	DisputeDecisionCancelRental   DisputeDecision = "CANCEL_RENTAL"
)

type Dispute struct {
	ID              int32         `json:"id"`
	RentalID        int32         `json:"rental_id"`
	ReportedBy      int32         `json:"reported_by"`
	ReportedAgainst int32         `json:"reported_against"`
	Reason          string        `json:"reason"`
	Evidence        string        `json:"evidence,omitempty"`
	Status          DisputeStatus `json:"status"`

	// Resolution. The refund/compensation split must not exceed the
	// rental's escrowed total; the bound is enforced before posting.
	Decision               DisputeDecision `json:"decision,omitempty"`
	RefundAmountCents      int64           `json:"refund_amount_cents"`
	OwnerCompensationCents int64           `json:"owner_compensation_cents"`
	ResolvedBy             *int32          `json:"resolved_by,omitempty"`
	ResolvedAt             *time.Time      `json:"resolved_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending          RentalStatus = "PENDING"
	RentalStatusApproved         RentalStatus = "APPROVED"
	RentalStatusPaymentPending   RentalStatus = "PAYMENT_PENDING"
	RentalStatusAwaitingHandover RentalStatus = "AWAITING_HANDOVER"
	RentalStatusActive           RentalStatus = "ACTIVE"
	RentalStatusCompleted        RentalStatus = "COMPLETED"
	RentalStatusRejected         RentalStatus = "REJECTED"
	RentalStatusCancelled        RentalStatus = "CANCELLED"
	RentalStatusDisputed         RentalStatus = "DISPUTED"
)

// IsTerminal reports whether no further transition can leave the status.
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusCompleted, RentalStatusRejected, RentalStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = ""
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Rental is one rental negotiation/contract. The pricing snapshot is captured
// at request time and is immutable afterwards; re-pricing requires a new
// request. Status and money fields are mutated only by named state-machine
// transitions; neither party holds direct write access.
type Rental struct {
	ID       int32 `json:"id"`
	ItemID   int32 `json:"item_id"`
	OwnerID  int32 `json:"owner_id"`
	RenterID int32 `json:"renter_id"`

	// Dates, yyyy-mm-dd. Confirmed dates are locked on approval.
	RequestedStart string  `json:"requested_start"`
	RequestedEnd   string  `json:"requested_end"`
	ConfirmedStart *string `json:"confirmed_start,omitempty"`
	ConfirmedEnd   *string `json:"confirmed_end,omitempty"`

	// Price snapshot fields. Total is always recomputed from the parts,
	// never trusted from client input.
	DailyRateCents       int64  `json:"daily_rate_cents"`
	TotalDays            int32  `json:"total_days"`
	SubtotalCents        int64  `json:"subtotal_cents"`
	PlatformFeeCents     int64  `json:"platform_fee_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	DeliveryFeeCents     int64  `json:"delivery_fee_cents"`
	TotalCents           int64  `json:"total_cents"`
	Currency             string `json:"currency"`

	// Commission snapshot, computed once at payment time. The stored
	// owner payout is the single source of truth for what the owner is
	// owed; completion and dispute handling never recompute it.
	CommissionRateBps int32 `json:"commission_rate_bps"`
	CommissionCents   int64 `json:"commission_cents"`
	OwnerPayoutCents  int64 `json:"owner_payout_cents"`

	Status RentalStatus `json:"status"`

	// Handover confirmation flags. Each party can only set its own flag.
	RenterConfirmed   bool       `json:"renter_confirmed"`
	OwnerConfirmed    bool       `json:"owner_confirmed"`
	RenterConfirmedAt *time.Time `json:"renter_confirmed_at,omitempty"`
	OwnerConfirmedAt  *time.Time `json:"owner_confirmed_at,omitempty"`

	// Completion flags.
	ItemReceived         bool   `json:"item_received"`
	ItemReturned         bool   `json:"item_returned"`
	DamageReport         string `json:"damage_report,omitempty"`
	DamageDeductionCents int64  `json:"damage_deduction_cents"`
	DepositRefundCents   int64  `json:"deposit_refund_cents"`

	// Payment provider references.
	ProviderOrderID    string        `json:"provider_order_id,omitempty"`
	ProviderPaymentKey string        `json:"provider_payment_key,omitempty"`
	PaymentStatus      PaymentStatus `json:"payment_status,omitempty"`

	RejectionReason string `json:"rejection_reason,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// PricingConsistent checks the snapshot identity that must hold at every
// observed state. A violation indicates a money-accounting bug and is
// surfaced as ErrInternal, never silently repaired.
func (r *Rental) PricingConsistent() bool {
	return r.TotalCents == r.SubtotalCents+r.PlatformFeeCents+r.DeliveryFeeCents+r.SecurityDepositCents
}

// PartyOf reports the role userID plays on the rental, or "" for strangers.
func (r *Rental) PartyOf(userID int32) string {
	switch userID {
	case r.OwnerID:
		return "owner"
	case r.RenterID:
		return "renter"
	}
	return ""
}

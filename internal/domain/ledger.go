package domain

import "time"

type TransactionType string

const (
	TransactionTypeRentalPayment       TransactionType = "RENTAL_PAYMENT"
	TransactionTypeRentalIncome        TransactionType = "RENTAL_INCOME"
	TransactionTypePlatformFee         TransactionType = "PLATFORM_FEE"
	TransactionTypeDepositRefund       TransactionType = "DEPOSIT_REFUND"
	TransactionTypeDamageCompensation  TransactionType = "DAMAGE_COMPENSATION"
	TransactionTypeDisputeRefund       TransactionType = "DISPUTE_REFUND"
	TransactionTypeDisputeCompensation TransactionType = "DISPUTE_COMPENSATION"
	TransactionTypeWithdrawalRequest   TransactionType = "WITHDRAWAL_REQUEST"
)

// AvailabilityStatus is the escrow state of a wallet transaction: PENDING
// funds are escrowed and not withdrawable, AVAILABLE funds are.
type AvailabilityStatus string

const (
	AvailabilityPending   AvailabilityStatus = "PENDING"
	AvailabilityAvailable AvailabilityStatus = "AVAILABLE"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// WalletTransaction is one ledger entry. Entries are created once per
// economic event and never duplicated; a PENDING income entry is later
// promoted to AVAILABLE, not re-created.
type WalletTransaction struct {
	ID              int32              `json:"id"`
	UserID          int32              `json:"user_id"`
	Type            TransactionType    `json:"type"`
	AmountCents     int64              `json:"amount_cents"` // positive for credit, negative for debit
	Currency        string             `json:"currency"`
	RelatedRentalID *int32             `json:"related_rental_id,omitempty"`
	GroupID         string             `json:"group_id"` // posting group; all entries of one economic event share it
	Availability    AvailabilityStatus `json:"availability_status"`
	Status          TransactionStatus  `json:"status"`
	Description     string             `json:"description"`
	CreatedOn       time.Time          `json:"created_on"`
}

// TransactionIntent describes one entry of an atomic posting before it is
// committed.
type TransactionIntent struct {
	UserID          int32
	Type            TransactionType
	AmountCents     int64
	Currency        string
	RelatedRentalID *int32
	Availability    AvailabilityStatus
	Status          TransactionStatus
	Description     string
}

// WalletBalance is derived by folding a user's transactions; it is never the
// sole source of truth.
type WalletBalance struct {
	UserID         int32  `json:"user_id"`
	AvailableCents int64  `json:"available_cents"`
	PendingCents   int64  `json:"pending_cents"`
	LockedCents    int64  `json:"locked_cents"`
	Currency       string `json:"currency"`
}

func (b WalletBalance) TotalCents() int64 {
	return b.AvailableCents + b.PendingCents
}

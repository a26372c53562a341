package repository

import (
	"context"
	"time"

	"gearloop-backend/internal/domain"
)

// HandoverOutcome reports what a handover confirmation attempt did. The
// flag write and the activation check happen in one atomic statement, so the
// awaiting_handover → active transition fires exactly once even under
// concurrent confirmations.
type HandoverOutcome struct {
	Swapped   bool // the caller's flag was set by this call
	Activated bool // this call was the one that moved the rental to ACTIVE
}

type RentalRepository interface {
	// Create inserts the rental and its rental_requested timeline event in
	// one transaction.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Rental, error)

	// UpdateApproval moves a PENDING rental to PAYMENT_PENDING, locking the
	// confirmed dates and storing the provider order/payment key. Returns
	// false when the rental was no longer PENDING (compare-and-swap miss).
	UpdateApproval(ctx context.Context, rental *domain.Rental, actorID int32) (bool, error)

	// UpdateStatus is the generic guarded transition for moves without
	// ledger effects (reject, cancel, payment failure, dispute freeze).
	// It appends the given timeline event in the same transaction and
	// returns false on a compare-and-swap miss.
	UpdateStatus(ctx context.Context, rentalID int32, from, to domain.RentalStatus, event string, actorID *int32, details string) (bool, error)

	// ConfirmHandover sets the party's confirmation flag and flips the
	// rental to ACTIVE iff the counterparty's flag is already set, all in
	// one statement. party is "renter" or "owner".
	ConfirmHandover(ctx context.Context, rentalID int32, party string, at time.Time) (HandoverOutcome, error)

	// MarkItemReceived / MarkItemReturned record the completion flags on an
	// ACTIVE rental. They never change the status; the completion posting
	// does, under its own compare-and-swap.
	MarkItemReceived(ctx context.Context, rentalID int32, actorID int32) (bool, error)
	MarkItemReturned(ctx context.Context, rentalID int32, actorID int32, damageReport string, damageDeductionCents int64) (bool, error)

	ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)

	// Job queries.
	ListPaymentPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error)
	ListAwaitingHandoverBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error)
}

type LedgerRepository interface {
	// PostWithdrawal posts the pending negative withdrawal entry iff the
	// user's available balance still covers it. The balance read and the
	// insert run in one transaction under a per-user lock, so concurrent
	// requests cannot jointly lock more than the available balance. Returns
	// false without posting when the balance no longer covers the amount.
	PostWithdrawal(ctx context.Context, userID int32, groupID string, entry domain.TransactionIntent) (bool, error)

	// PostPaymentSuccess atomically moves the rental from PAYMENT_PENDING
	// to AWAITING_HANDOVER (carrying the commission snapshot and resetting
	// the handover flags) and posts the payment entries. Returns false
	// without posting anything when the rental already left
	// PAYMENT_PENDING, the webhook-idempotency backstop.
	PostPaymentSuccess(ctx context.Context, rental *domain.Rental, groupID string, entries []domain.TransactionIntent) (bool, error)

	// PostCompletion atomically moves the rental from ACTIVE to COMPLETED,
	// promotes the PENDING rental_income entry to AVAILABLE, posts the
	// deposit-refund (and damage-compensation) entries, and increments the
	// owner's completed-rental count. Returns false on a CAS miss.
	PostCompletion(ctx context.Context, rental *domain.Rental, groupID string, entries []domain.TransactionIntent, actorID int32) (bool, error)

	// PostResolution atomically moves the rental from DISPUTED to the
	// decided terminal status, voids the escrowed PENDING income entry,
	// posts the resolution split, and records the resolution on the
	// dispute. Returns false on a CAS miss.
	PostResolution(ctx context.Context, rental *domain.Rental, dispute *domain.Dispute, to domain.RentalStatus, groupID string, entries []domain.TransactionIntent) (bool, error)

	// PromotePendingIncome flips a rental's PENDING income entry to
	// AVAILABLE. Promoting an already-AVAILABLE entry is a no-op, not an
	// error; returns whether a row actually changed.
	PromotePendingIncome(ctx context.Context, rentalID int32) (bool, error)

	GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error)
	ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error)

	// Payout processing.
	ListPendingWithdrawals(ctx context.Context) ([]domain.WalletTransaction, error)
	CompleteWithdrawal(ctx context.Context, transactionID int32) error
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *domain.Dispute) error
	GetByID(ctx context.Context, id int32) (*domain.Dispute, error)
	GetOpenByRentalID(ctx context.Context, rentalID int32) (*domain.Dispute, error)
	ListOpen(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error)
}

type TimelineRepository interface {
	Append(ctx context.Context, event *domain.TimelineEvent) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.TimelineEvent, error)
}

type ItemRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	SetStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

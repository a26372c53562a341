package service

import (
	"context"

	"gearloop-backend/internal/domain"
)

type RentalService interface {
	RequestRental(ctx context.Context, renterID, itemID int32, startDate, endDate string) (*domain.Rental, error)
	RespondToRental(ctx context.Context, ownerID, rentalID int32, approve bool, reason string) (*domain.Rental, error)
	CancelRental(ctx context.Context, renterID, rentalID int32, reason string) (*domain.Rental, error)
	ConfirmHandover(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error)
	ConfirmReceived(ctx context.Context, renterID, rentalID int32) (*domain.Rental, error)
	ConfirmReturned(ctx context.Context, ownerID, rentalID int32, damageReport string, damageDeductionCents int64) (*domain.Rental, error)
	GetRental(ctx context.Context, userID, rentalID int32) (*domain.Rental, []domain.TimelineEvent, error)
	ListRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListLendings(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type WalletService interface {
	GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error)
	ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
	RequestPayout(ctx context.Context, userID int32, amountCents int64) (*domain.WalletTransaction, error)
}

type DisputeService interface {
	RaiseDispute(ctx context.Context, actorID, rentalID int32, reason, evidence string) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, moderatorID, disputeID int32, decision domain.DisputeDecision, refundCents, ownerCompensationCents int64) (*domain.Dispute, error)
	ListOpenDisputes(ctx context.Context, moderatorID int32, page, pageSize int32) ([]domain.Dispute, int32, error)
}

// WebhookService ingests asynchronous payment-provider notifications. A nil
// return means the event was acknowledged, whether or not it changed
// anything; at-least-once delivery is the assumed transport semantic.
type WebhookService interface {
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error
}

// NotificationService is the fire-and-forget dispatcher: in-app row plus FCM
// push when the user has a device token. Dispatch failures are logged and
// never affect the transition that triggered them.
type NotificationService interface {
	Notify(ctx context.Context, userID int32, notifType, title, message string, attributes map[string]string)
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, itemName string) error
	SendRentalApprovalNotification(ctx context.Context, renterEmail, itemName, ownerName string) error
	SendPaymentConfirmation(ctx context.Context, email, name, itemName string, amountCents int64) error
	SendRentalCompletionNotification(ctx context.Context, email, role, itemName string, amountCents int64) error
	SendDisputeResolutionNotification(ctx context.Context, email, name, itemName, decision string) error
}

// VerificationService exposes the external KYC pass/fail signal. The engine
// consumes the bit; verification itself happens elsewhere.
type VerificationService interface {
	IsVerified(ctx context.Context, userID int32) (bool, error)
}

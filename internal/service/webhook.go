package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/payment"
	"gearloop-backend/internal/repository"
	"gearloop-backend/internal/utils"
)

type webhookService struct {
	rentalRepo    repository.RentalRepository
	ledgerRepo    repository.LedgerRepository
	itemRepo      repository.ItemRepository
	userRepo      repository.UserRepository
	notifier      NotificationService
	emailSvc      EmailService
	billing       BillingPolicy
	webhookSecret string
}

func NewWebhookService(
	rentalRepo repository.RentalRepository,
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	emailSvc EmailService,
	billing BillingPolicy,
	webhookSecret string,
) WebhookService {
	return &webhookService{
		rentalRepo:    rentalRepo,
		ledgerRepo:    ledgerRepo,
		itemRepo:      itemRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		emailSvc:      emailSvc,
		billing:       billing,
		webhookSecret: webhookSecret,
	}
}

// HandlePaymentEvent processes one provider notification. The provider
// redelivers until acknowledged, so every path below is safe to replay: the
// ledger posting is gated by the rental's status compare-and-swap, and a
// redelivered event that misses the swap acknowledges without posting.
func (s *webhookService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret != "" {
		if !payment.VerifySignature(payload, signature, s.webhookSecret) {
			return domain.NewError(domain.ErrUnauthenticated, "webhook signature verification failed")
		}
	}

	event, err := payment.ParseEvent(payload)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidArgument, "unparseable webhook payload", err)
	}

	switch event.Kind {
	case payment.EventSuccess:
		return s.handleSuccess(ctx, event)
	case payment.EventFailure:
		return s.handleFailure(ctx, event)
	default:
		// Pending and unrecognized event kinds are acknowledged so the
		// provider stops redelivering them.
		logger.InfoContext(ctx, "Ignoring payment event", "kind", event.Kind, "order_id", event.OrderID)
		return nil
	}
}

func (s *webhookService) handleSuccess(ctx context.Context, event payment.Event) error {
	rental, err := s.rentalRepo.GetByProviderOrderID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// An order we never issued (or a stale retry for a purged
			// rental). Acknowledge; retrying will never make it resolvable.
			logger.WarnContext(ctx, "Payment event for unknown order", "order_id", event.OrderID)
			return nil
		}
		return err
	}

	if event.AmountCents != 0 && event.AmountCents != rental.TotalCents {
		logger.MoneyInvariantViolated("webhook amount does not match rental total",
			"rental_id", rental.ID, "webhook_amount", event.AmountCents, "rental_total", rental.TotalCents)
		return domain.NewError(domain.ErrInvalidArgument, "payment amount mismatch")
	}

	owner, err := s.userRepo.GetByID(ctx, rental.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load owner for commission tier: %w", err)
	}

	entries, err := buildPaymentEntries(rental, owner.CompletedRentals, s.billing)
	if err != nil {
		return err
	}

	swapped, err := s.ledgerRepo.PostPaymentSuccess(ctx, rental, uuid.NewString(), entries)
	if err != nil {
		return fmt.Errorf("failed to post payment: %w", err)
	}
	if !swapped {
		logger.InfoContext(ctx, "Duplicate payment event, no transition",
			"rental_id", rental.ID, "order_id", event.OrderID)
		return nil
	}

	if err := s.itemRepo.SetStatus(ctx, rental.ItemID, domain.ItemStatusRented); err != nil {
		logger.Warn("Failed to mark item rented", "item_id", rental.ItemID, "error", err)
	}

	attrs := map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)}
	s.notifier.Notify(ctx, rental.OwnerID, "PAYMENT_RECEIVED", "Payment received",
		"The renter has paid. Arrange the handover", attrs)
	s.notifier.Notify(ctx, rental.RenterID, "PAYMENT_RECEIVED", "Payment confirmed",
		"Your payment was confirmed. Arrange the handover with the owner", attrs)

	if item, err := s.itemRepo.GetByID(ctx, rental.ItemID); err == nil {
		if renter, err := s.userRepo.GetByID(ctx, rental.RenterID); err == nil {
			_ = s.emailSvc.SendPaymentConfirmation(ctx, renter.Email, renter.Name, item.Name, rental.TotalCents)
		}
	}

	return nil
}

func (s *webhookService) handleFailure(ctx context.Context, event payment.Event) error {
	rental, err := s.rentalRepo.GetByProviderOrderID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.WarnContext(ctx, "Payment failure event for unknown order", "order_id", event.OrderID)
			return nil
		}
		return err
	}

	swapped, err := s.rentalRepo.UpdateStatus(ctx, rental.ID,
		domain.RentalStatusPaymentPending, domain.RentalStatusRejected,
		domain.EventPaymentFailed, nil, "payment failed at provider")
	if err != nil {
		return err
	}
	if !swapped {
		logger.InfoContext(ctx, "Payment failure event ignored, rental already transitioned",
			"rental_id", rental.ID, "status", rental.Status)
		return nil
	}

	s.notifier.Notify(ctx, rental.RenterID, "PAYMENT_FAILED", "Payment failed",
		"Your payment did not go through. The rental was not reserved",
		map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)})
	return nil
}

// buildPaymentEntries constructs the atomic posting for a confirmed payment:
// the renter's debit for the full total, the owner's escrowed income at the
// tier-resolved payout, and the platform's retained fees. The group nets to
// minus the security deposit, which stays escrowed on the rental until
// completion or resolution.
func buildPaymentEntries(rental *domain.Rental, ownerCompletedRentals int32, billing BillingPolicy) ([]domain.TransactionIntent, error) {
	commission, err := utils.CalculateCommission(rental.SubtotalCents, ownerCompletedRentals, billing.CommissionTiers)
	if err != nil {
		return nil, err
	}

	rental.CommissionRateBps = commission.RateBps
	rental.CommissionCents = commission.CommissionCents
	rental.OwnerPayoutCents = commission.OwnerPayoutCents

	rentalID := rental.ID
	platformRetained := rental.PlatformFeeCents + commission.CommissionCents + rental.DeliveryFeeCents

	entries := []domain.TransactionIntent{
		{
			UserID:          rental.RenterID,
			Type:            domain.TransactionTypeRentalPayment,
			AmountCents:     -rental.TotalCents,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Payment for rental %d", rental.ID),
		},
		{
			UserID:          rental.OwnerID,
			Type:            domain.TransactionTypeRentalIncome,
			AmountCents:     commission.OwnerPayoutCents,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID,
			Availability:    domain.AvailabilityPending,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Rental income for rental %d (%s tier)", rental.ID, commission.TierName),
		},
		{
			UserID:          billing.PlatformAccountID,
			Type:            domain.TransactionTypePlatformFee,
			AmountCents:     platformRetained,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Platform fees for rental %d", rental.ID),
		},
	}

	var sum int64
	for _, e := range entries {
		sum += e.AmountCents
	}
	if sum != -rental.SecurityDepositCents {
		logger.MoneyInvariantViolated("payment posting does not net to escrowed deposit",
			"rental_id", rental.ID, "sum", sum, "deposit", rental.SecurityDepositCents)
		return nil, domain.NewError(domain.ErrInternal, "ledger inconsistency detected")
	}

	return entries, nil
}

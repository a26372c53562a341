package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/payment"
	"gearloop-backend/internal/repository"
	"gearloop-backend/internal/utils"
)

// BillingPolicy carries the money-flow settings services need: the renter
// service-fee rate, the commission tier table, and the platform account the
// retained fee is posted to.
type BillingPolicy struct {
	Currency          string
	PlatformAccountID int32
	RenterFeeBps      int32
	CommissionTiers   []domain.CommissionTier
}

type rentalService struct {
	rentalRepo   repository.RentalRepository
	itemRepo     repository.ItemRepository
	ledgerRepo   repository.LedgerRepository
	userRepo     repository.UserRepository
	timelineRepo repository.TimelineRepository
	provider     payment.Provider
	verifySvc    VerificationService
	notifier     NotificationService
	emailSvc     EmailService
	billing      BillingPolicy
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.LedgerRepository,
	userRepo repository.UserRepository,
	timelineRepo repository.TimelineRepository,
	provider payment.Provider,
	verifySvc VerificationService,
	notifier NotificationService,
	emailSvc EmailService,
	billing BillingPolicy,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		itemRepo:     itemRepo,
		ledgerRepo:   ledgerRepo,
		userRepo:     userRepo,
		timelineRepo: timelineRepo,
		provider:     provider,
		verifySvc:    verifySvc,
		notifier:     notifier,
		emailSvc:     emailSvc,
		billing:      billing,
	}
}

func (s *rentalService) RequestRental(ctx context.Context, renterID, itemID int32, startDate, endDate string) (*domain.Rental, error) {
	verified, err := s.verifySvc.IsVerified(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, domain.NewError(domain.ErrPermissionDenied, "identity verification required before renting")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.ErrNotFound, "item %d not found", itemID)
		}
		return nil, err
	}
	if item.OwnerID == renterID {
		return nil, domain.NewError(domain.ErrInvalidArgument, "cannot rent your own item")
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, domain.NewErrorf(domain.ErrInvalidState, "item is %s, not available for rent", item.Status)
	}

	quote, err := utils.ComputeQuote(item, startDate, endDate, s.billing.RenterFeeBps)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidArgument, "invalid rental dates", err)
	}

	rental := &domain.Rental{
		ItemID:               itemID,
		OwnerID:              item.OwnerID,
		RenterID:             renterID,
		RequestedStart:       startDate,
		RequestedEnd:         endDate,
		DailyRateCents:       quote.DailyRateCents,
		TotalDays:            quote.TotalDays,
		SubtotalCents:        quote.SubtotalCents,
		PlatformFeeCents:     quote.PlatformFeeCents,
		SecurityDepositCents: quote.SecurityDepositCents,
		DeliveryFeeCents:     quote.DeliveryFeeCents,
		TotalCents:           quote.TotalCents,
		Currency:             s.currencyFor(item),
		Status:               domain.RentalStatusPending,
	}
	if !rental.PricingConsistent() {
		logger.MoneyInvariantViolated("pricing snapshot does not sum to total", "item_id", itemID)
		return nil, domain.NewError(domain.ErrInternal, "pricing snapshot inconsistent")
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, fmt.Errorf("failed to create rental request: %w", err)
	}

	if renter, err := s.userRepo.GetByID(ctx, renterID); err == nil {
		s.notifier.Notify(ctx, item.OwnerID, "RENTAL_REQUEST", "New rental request",
			fmt.Sprintf("%s requested to rent %s", renter.Name, item.Name),
			map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)})
		if owner, err := s.userRepo.GetByID(ctx, item.OwnerID); err == nil {
			_ = s.emailSvc.SendRentalRequestNotification(ctx, owner.Email, renter.Name, item.Name)
		}
	}

	return rental, nil
}

func (s *rentalService) RespondToRental(ctx context.Context, ownerID, rentalID int32, approve bool, reason string) (*domain.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.OwnerID != ownerID {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only the owner can respond to a rental request")
	}

	if !approve {
		swapped, err := s.rentalRepo.UpdateStatus(ctx, rentalID,
			domain.RentalStatusPending, domain.RentalStatusRejected,
			domain.EventRentalRejected, &ownerID, reason)
		if err != nil {
			return nil, err
		}
		if !swapped {
			return nil, s.classifyMiss(ctx, rentalID, domain.RentalStatusRejected)
		}
		s.notifyRenter(ctx, rental, "RENTAL_REJECTED", "Rental request declined",
			"The owner declined your rental request")
		return s.getRental(ctx, rentalID)
	}

	if rental.Status != domain.RentalStatusPending {
		return nil, s.classifyMiss(ctx, rentalID, domain.RentalStatusPaymentPending)
	}

	// Provider calls happen before and outside any database transaction; a
	// slow or failed call never holds a lock, and its failure leaves the
	// rental PENDING.
	merchantRef := uuid.NewString()
	orderID, err := s.provider.CreateOrder(ctx, rental.TotalCents, rental.Currency, merchantRef)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalFailure, "payment provider rejected order creation", err)
	}

	renter, err := s.userRepo.GetByID(ctx, rental.RenterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load renter: %w", err)
	}
	paymentKey, err := s.provider.CreatePaymentKey(ctx, rental.TotalCents, rental.Currency, orderID, payment.BillingData{
		FirstName: renter.Name,
		Email:     renter.Email,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalFailure, "payment provider rejected payment key creation", err)
	}

	rental.ConfirmedStart = &rental.RequestedStart
	rental.ConfirmedEnd = &rental.RequestedEnd
	rental.ProviderOrderID = orderID
	rental.ProviderPaymentKey = paymentKey

	swapped, err := s.rentalRepo.UpdateApproval(ctx, rental, ownerID)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, s.classifyMiss(ctx, rentalID, domain.RentalStatusPaymentPending)
	}

	s.notifyRenter(ctx, rental, "RENTAL_APPROVED", "Rental approved",
		"Your rental request was approved. Complete the payment to reserve your dates")
	if item, err := s.itemRepo.GetByID(ctx, rental.ItemID); err == nil {
		if owner, err := s.userRepo.GetByID(ctx, ownerID); err == nil {
			_ = s.emailSvc.SendRentalApprovalNotification(ctx, renter.Email, item.Name, owner.Name)
		}
	}

	return s.getRental(ctx, rentalID)
}

func (s *rentalService) CancelRental(ctx context.Context, renterID, rentalID int32, reason string) (*domain.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.RenterID != renterID {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only the renter can cancel a rental request")
	}

	// Cancellation is only possible before money moves.
	switch rental.Status {
	case domain.RentalStatusPending, domain.RentalStatusPaymentPending:
	default:
		return nil, s.classifyMiss(ctx, rentalID, domain.RentalStatusCancelled)
	}

	swapped, err := s.rentalRepo.UpdateStatus(ctx, rentalID,
		rental.Status, domain.RentalStatusCancelled,
		domain.EventRentalCancelled, &renterID, reason)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, s.classifyMiss(ctx, rentalID, domain.RentalStatusCancelled)
	}

	s.notifyOwner(ctx, rental, "RENTAL_CANCELLED", "Rental cancelled",
		"The renter cancelled the rental request")
	return s.getRental(ctx, rentalID)
}

func (s *rentalService) ConfirmHandover(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	party := rental.PartyOf(actorID)
	if party == "" {
		return nil, domain.NewError(domain.ErrPermissionDenied, "not a party to this rental")
	}

	outcome, err := s.rentalRepo.ConfirmHandover(ctx, rentalID, party, time.Now())
	if err != nil {
		return nil, err
	}
	if !outcome.Swapped {
		// Distinguish a repeated confirmation from a wrongly timed one so
		// the caller can tell "already happened" apart from a refusal.
		current, err := s.getRental(ctx, rentalID)
		if err != nil {
			return nil, err
		}
		confirmed := current.RenterConfirmed
		if party == "owner" {
			confirmed = current.OwnerConfirmed
		}
		if confirmed {
			return nil, domain.NewError(domain.ErrAlreadyDone, "handover already confirmed")
		}
		return nil, domain.NewErrorf(domain.ErrInvalidState, "rental is %s, not awaiting handover", current.Status)
	}

	if outcome.Activated {
		s.notifier.Notify(ctx, rental.RenterID, "RENTAL_ACTIVE", "Rental active",
			"Both parties confirmed the handover. The rental is now active", s.rentalAttrs(rental))
		s.notifier.Notify(ctx, rental.OwnerID, "RENTAL_ACTIVE", "Rental active",
			"Both parties confirmed the handover. The rental is now active", s.rentalAttrs(rental))
	} else {
		other := rental.OwnerID
		if party == "owner" {
			other = rental.RenterID
		}
		s.notifier.Notify(ctx, other, "HANDOVER_CONFIRMED", "Handover confirmed",
			"The other party confirmed the handover. Confirm on your side to start the rental", s.rentalAttrs(rental))
	}

	return s.getRental(ctx, rentalID)
}

func (s *rentalService) ConfirmReceived(ctx context.Context, renterID, rentalID int32) (*domain.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.RenterID != renterID {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only the renter can confirm receipt")
	}
	if rental.ItemReceived {
		return nil, domain.NewError(domain.ErrAlreadyDone, "receipt already confirmed")
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, domain.NewErrorf(domain.ErrInvalidState, "rental is %s, not active", rental.Status)
	}

	swapped, err := s.rentalRepo.MarkItemReceived(ctx, rentalID, renterID)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, domain.NewError(domain.ErrAlreadyDone, "receipt already confirmed")
	}

	return s.maybeComplete(ctx, rentalID, renterID)
}

func (s *rentalService) ConfirmReturned(ctx context.Context, ownerID, rentalID int32, damageReport string, damageDeductionCents int64) (*domain.Rental, error) {
	if damageDeductionCents < 0 {
		return nil, domain.NewError(domain.ErrInvalidArgument, "damage deduction must not be negative")
	}
	if damageDeductionCents > 0 && damageReport == "" {
		return nil, domain.NewError(domain.ErrInvalidArgument, "damage deduction requires a damage report")
	}

	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.OwnerID != ownerID {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only the owner can confirm the return")
	}
	if rental.ItemReturned {
		return nil, domain.NewError(domain.ErrAlreadyDone, "return already confirmed")
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, domain.NewErrorf(domain.ErrInvalidState, "rental is %s, not active", rental.Status)
	}

	swapped, err := s.rentalRepo.MarkItemReturned(ctx, rentalID, ownerID, damageReport, damageDeductionCents)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, domain.NewError(domain.ErrAlreadyDone, "return already confirmed")
	}

	return s.maybeComplete(ctx, rentalID, ownerID)
}

// maybeComplete runs the active → completed transition once both completion
// flags hold. The ledger postings and the status flip commit in one
// transaction under a compare-and-swap, so a concurrent completion attempt
// posts nothing.
func (s *rentalService) maybeComplete(ctx context.Context, rentalID, actorID int32) (*domain.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.ItemReceived || !rental.ItemReturned || rental.Status != domain.RentalStatusActive {
		return rental, nil
	}

	if rental.OwnerPayoutCents+rental.CommissionCents != rental.SubtotalCents {
		logger.MoneyInvariantViolated("commission snapshot does not sum to subtotal",
			"rental_id", rental.ID, "owner_payout", rental.OwnerPayoutCents,
			"commission", rental.CommissionCents, "subtotal", rental.SubtotalCents)
		return nil, domain.NewError(domain.ErrInternal, "ledger inconsistency detected")
	}

	depositRefund := rental.SecurityDepositCents - rental.DamageDeductionCents
	if depositRefund < 0 {
		depositRefund = 0
	}
	damageCompensation := rental.SecurityDepositCents - depositRefund
	rentalID32 := rental.ID

	entries := []domain.TransactionIntent{
		{
			UserID:          rental.RenterID,
			Type:            domain.TransactionTypeDepositRefund,
			AmountCents:     depositRefund,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID32,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Security deposit refund for rental %d", rental.ID),
		},
	}
	if damageCompensation > 0 {
		entries = append(entries, domain.TransactionIntent{
			UserID:          rental.OwnerID,
			Type:            domain.TransactionTypeDamageCompensation,
			AmountCents:     damageCompensation,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID32,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Damage compensation for rental %d", rental.ID),
		})
	}

	rental.DepositRefundCents = depositRefund
	swapped, err := s.ledgerRepo.PostCompletion(ctx, rental, uuid.NewString(), entries, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to post completion: %w", err)
	}
	if !swapped {
		// A concurrent call completed the rental; that call did the
		// posting.
		return s.getRental(ctx, rentalID)
	}

	if err := s.itemRepo.SetStatus(ctx, rental.ItemID, domain.ItemStatusAvailable); err != nil {
		logger.Warn("Failed to release item after completion", "item_id", rental.ItemID, "error", err)
	}

	s.notifier.Notify(ctx, rental.OwnerID, "RENTAL_COMPLETED", "Rental completed",
		"The rental is complete and your earnings are now available", s.rentalAttrs(rental))
	s.notifier.Notify(ctx, rental.RenterID, "RENTAL_COMPLETED", "Rental completed",
		"The rental is complete and your deposit refund has been credited", s.rentalAttrs(rental))

	if item, err := s.itemRepo.GetByID(ctx, rental.ItemID); err == nil {
		if owner, err := s.userRepo.GetByID(ctx, rental.OwnerID); err == nil {
			_ = s.emailSvc.SendRentalCompletionNotification(ctx, owner.Email, "owner payout", item.Name, rental.OwnerPayoutCents)
		}
		if renter, err := s.userRepo.GetByID(ctx, rental.RenterID); err == nil {
			_ = s.emailSvc.SendRentalCompletionNotification(ctx, renter.Email, "deposit refund", item.Name, depositRefund)
		}
	}

	return s.getRental(ctx, rentalID)
}

func (s *rentalService) GetRental(ctx context.Context, userID, rentalID int32) (*domain.Rental, []domain.TimelineEvent, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if rental.PartyOf(userID) == "" {
		return nil, nil, domain.NewError(domain.ErrPermissionDenied, "not a party to this rental")
	}
	timeline, err := s.timelineRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	return rental, timeline, nil
}

func (s *rentalService) ListRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.rentalRepo.ListByRenter(ctx, userID, status, page, pageSize)
}

func (s *rentalService) ListLendings(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.rentalRepo.ListByOwner(ctx, userID, status, page, pageSize)
}

func (s *rentalService) getRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.ErrNotFound, "rental %d not found", rentalID)
		}
		return nil, err
	}
	return rental, nil
}

// classifyMiss turns a compare-and-swap miss into the caller-facing error:
// AlreadyDone when the rental already carries the target status, InvalidState
// otherwise.
func (s *rentalService) classifyMiss(ctx context.Context, rentalID int32, target domain.RentalStatus) error {
	current, err := s.getRental(ctx, rentalID)
	if err != nil {
		return err
	}
	if current.Status == target {
		return domain.NewErrorf(domain.ErrAlreadyDone, "rental is already %s", target)
	}
	return domain.NewErrorf(domain.ErrInvalidState, "action not valid while rental is %s", current.Status)
}

func (s *rentalService) currencyFor(item *domain.Item) string {
	if item.Currency != "" {
		return item.Currency
	}
	return s.billing.Currency
}

func (s *rentalService) rentalAttrs(rental *domain.Rental) map[string]string {
	return map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)}
}

func (s *rentalService) notifyRenter(ctx context.Context, rental *domain.Rental, notifType, title, message string) {
	s.notifier.Notify(ctx, rental.RenterID, notifType, title, message, s.rentalAttrs(rental))
}

func (s *rentalService) notifyOwner(ctx context.Context, rental *domain.Rental, notifType, title, message string) {
	s.notifier.Notify(ctx, rental.OwnerID, notifType, title, message, s.rentalAttrs(rental))
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

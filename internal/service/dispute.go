package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/repository"
)

type disputeService struct {
	disputeRepo repository.DisputeRepository
	rentalRepo  repository.RentalRepository
	ledgerRepo  repository.LedgerRepository
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	emailSvc    EmailService
}

func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	rentalRepo repository.RentalRepository,
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	emailSvc EmailService,
) DisputeService {
	return &disputeService{
		disputeRepo: disputeRepo,
		rentalRepo:  rentalRepo,
		ledgerRepo:  ledgerRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		emailSvc:    emailSvc,
	}
}

// RaiseDispute freezes the rental. While DISPUTED, no handover, completion,
// or ledger movement is possible until a moderator resolves it.
func (s *disputeService) RaiseDispute(ctx context.Context, actorID, rentalID int32, reason, evidence string) (*domain.Dispute, error) {
	if reason == "" {
		return nil, domain.NewError(domain.ErrInvalidArgument, "a dispute requires a reason")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.ErrNotFound, "rental %d not found", rentalID)
		}
		return nil, err
	}

	party := rental.PartyOf(actorID)
	if party == "" {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only a rental party can raise a dispute")
	}

	switch rental.Status {
	case domain.RentalStatusAwaitingHandover, domain.RentalStatusActive:
	case domain.RentalStatusDisputed:
		return nil, s.alreadyDisputed(ctx, rentalID)
	default:
		return nil, domain.NewErrorf(domain.ErrInvalidState, "cannot dispute a rental that is %s", rental.Status)
	}

	swapped, err := s.rentalRepo.UpdateStatus(ctx, rentalID,
		rental.Status, domain.RentalStatusDisputed,
		domain.EventDisputeRaised, &actorID, reason)
	if err != nil {
		return nil, err
	}
	if !swapped {
		current, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.RentalStatusDisputed {
			return nil, s.alreadyDisputed(ctx, rentalID)
		}
		return nil, domain.NewErrorf(domain.ErrInvalidState, "cannot dispute a rental that is %s", current.Status)
	}

	against := rental.OwnerID
	if party == "owner" {
		against = rental.RenterID
	}

	dispute := &domain.Dispute{
		RentalID:        rentalID,
		ReportedBy:      actorID,
		ReportedAgainst: against,
		Reason:          reason,
		Evidence:        evidence,
		Status:          domain.DisputeStatusOpen,
	}
	if err := s.disputeRepo.Create(ctx, dispute); err != nil {
		// The freeze already committed; the dispute record failing to land
		// is an operational incident, not a state-machine rollback.
		logger.ErrorContext(ctx, "Rental frozen but dispute record failed",
			"rental_id", rentalID, "error", err)
		return nil, fmt.Errorf("failed to record dispute: %w", err)
	}

	s.notifier.Notify(ctx, against, "DISPUTE_RAISED", "Dispute raised",
		"A dispute was raised on your rental. A moderator will review it",
		map[string]string{"rental_id": fmt.Sprintf("%d", rentalID), "dispute_id": fmt.Sprintf("%d", dispute.ID)})

	return dispute, nil
}

// alreadyDisputed points the caller at the open dispute that already freezes
// the rental, so a duplicate raise names what it duplicates.
func (s *disputeService) alreadyDisputed(ctx context.Context, rentalID int32) error {
	existing, err := s.disputeRepo.GetOpenByRentalID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewError(domain.ErrAlreadyDone, "rental is already disputed")
		}
		return err
	}
	return domain.NewErrorf(domain.ErrAlreadyDone, "rental is already disputed (dispute %d)", existing.ID)
}

// ResolveDispute applies a moderator's decision: the escrowed pending income
// is voided and replaced by exactly two resolution entries, a renter refund
// and an owner compensation, bounded by what was actually collected.
func (s *disputeService) ResolveDispute(ctx context.Context, moderatorID, disputeID int32, decision domain.DisputeDecision, refundCents, ownerCompensationCents int64) (*domain.Dispute, error) {
	moderator, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !moderator.IsModerator {
		return nil, domain.NewError(domain.ErrPermissionDenied, "only moderators can resolve disputes")
	}

	switch decision {
	case domain.DisputeDecisionCompleteRental, domain.DisputeDecisionCancelRental:
	default:
		return nil, domain.NewErrorf(domain.ErrInvalidArgument, "unknown decision %q", decision)
	}
	if refundCents < 0 || ownerCompensationCents < 0 {
		return nil, domain.NewError(domain.ErrInvalidArgument, "resolution amounts must not be negative")
	}

	dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.ErrNotFound, "dispute %d not found", disputeID)
		}
		return nil, err
	}
	if dispute.Status == domain.DisputeStatusResolved || dispute.Status == domain.DisputeStatusClosed {
		return nil, domain.NewError(domain.ErrAlreadyDone, "dispute is already resolved")
	}

	rental, err := s.rentalRepo.GetByID(ctx, dispute.RentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusDisputed {
		return nil, domain.NewErrorf(domain.ErrInvalidState, "rental is %s, not disputed", rental.Status)
	}
	if refundCents+ownerCompensationCents > rental.TotalCents {
		return nil, domain.NewErrorf(domain.ErrInvalidArgument,
			"resolution split %d exceeds the rental total %d",
			refundCents+ownerCompensationCents, rental.TotalCents)
	}

	to := domain.RentalStatusCompleted
	if decision == domain.DisputeDecisionCancelRental {
		to = domain.RentalStatusCancelled
	}

	resolvedBy := moderatorID
	dispute.Decision = decision
	dispute.RefundAmountCents = refundCents
	dispute.OwnerCompensationCents = ownerCompensationCents
	dispute.ResolvedBy = &resolvedBy
	dispute.Status = domain.DisputeStatusResolved

	rentalID := rental.ID
	entries := []domain.TransactionIntent{
		{
			UserID:          rental.RenterID,
			Type:            domain.TransactionTypeDisputeRefund,
			AmountCents:     refundCents,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Dispute refund for rental %d", rental.ID),
		},
		{
			UserID:          rental.OwnerID,
			Type:            domain.TransactionTypeDisputeCompensation,
			AmountCents:     ownerCompensationCents,
			Currency:        rental.Currency,
			RelatedRentalID: &rentalID,
			Availability:    domain.AvailabilityAvailable,
			Status:          domain.TransactionStatusCompleted,
			Description:     fmt.Sprintf("Dispute compensation for rental %d", rental.ID),
		},
	}

	swapped, err := s.ledgerRepo.PostResolution(ctx, rental, dispute, to, uuid.NewString(), entries)
	if err != nil {
		return nil, fmt.Errorf("failed to post resolution: %w", err)
	}
	if !swapped {
		return nil, domain.NewError(domain.ErrAlreadyDone, "dispute is already resolved")
	}

	if err := s.itemRepo.SetStatus(ctx, rental.ItemID, domain.ItemStatusAvailable); err != nil {
		logger.Warn("Failed to release item after resolution", "item_id", rental.ItemID, "error", err)
	}

	attrs := map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID), "dispute_id": fmt.Sprintf("%d", dispute.ID)}
	s.notifier.Notify(ctx, rental.RenterID, "DISPUTE_RESOLVED", "Dispute resolved",
		fmt.Sprintf("The dispute was resolved: %s", decision), attrs)
	s.notifier.Notify(ctx, rental.OwnerID, "DISPUTE_RESOLVED", "Dispute resolved",
		fmt.Sprintf("The dispute was resolved: %s", decision), attrs)

	if item, err := s.itemRepo.GetByID(ctx, rental.ItemID); err == nil {
		if renter, err := s.userRepo.GetByID(ctx, rental.RenterID); err == nil {
			_ = s.emailSvc.SendDisputeResolutionNotification(ctx, renter.Email, renter.Name, item.Name, string(decision))
		}
		if owner, err := s.userRepo.GetByID(ctx, rental.OwnerID); err == nil {
			_ = s.emailSvc.SendDisputeResolutionNotification(ctx, owner.Email, owner.Name, item.Name, string(decision))
		}
	}

	return s.disputeRepo.GetByID(ctx, disputeID)
}

func (s *disputeService) ListOpenDisputes(ctx context.Context, moderatorID int32, page, pageSize int32) ([]domain.Dispute, int32, error) {
	moderator, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		return nil, 0, err
	}
	if !moderator.IsModerator {
		return nil, 0, domain.NewError(domain.ErrPermissionDenied, "only moderators can list disputes")
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.disputeRepo.ListOpen(ctx, page, pageSize)
}

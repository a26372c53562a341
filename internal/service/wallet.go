package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/repository"
)

type walletService struct {
	ledgerRepo repository.LedgerRepository
	verifySvc  VerificationService
	currency   string
}

func NewWalletService(ledgerRepo repository.LedgerRepository, verifySvc VerificationService, currency string) WalletService {
	return &walletService{ledgerRepo: ledgerRepo, verifySvc: verifySvc, currency: currency}
}

func (s *walletService) GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error) {
	balance, err := s.ledgerRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	if balance.Currency == "" {
		balance.Currency = s.currency
	}
	return balance, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.ledgerRepo.ListTransactions(ctx, userID, page, pageSize)
}

// RequestPayout posts a pending negative entry so the requested amount stops
// counting as withdrawable immediately. The payout processor settles the
// entry after the actual transfer.
func (s *walletService) RequestPayout(ctx context.Context, userID int32, amountCents int64) (*domain.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, domain.NewError(domain.ErrInvalidArgument, "payout amount must be positive")
	}

	verified, err := s.verifySvc.IsVerified(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, domain.NewError(domain.ErrPermissionDenied, "identity verification required before withdrawing")
	}

	groupID := uuid.NewString()
	entry := domain.TransactionIntent{
		UserID:       userID,
		Type:         domain.TransactionTypeWithdrawalRequest,
		AmountCents:  -amountCents,
		Currency:     s.currency,
		Availability: domain.AvailabilityAvailable,
		Status:       domain.TransactionStatusPending,
		Description:  "Withdrawal request",
	}
	// The balance check lives inside the posting transaction; checking here
	// first would race a concurrent request past the same balance.
	posted, err := s.ledgerRepo.PostWithdrawal(ctx, userID, groupID, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record payout request: %w", err)
	}
	if !posted {
		return nil, domain.NewErrorf(domain.ErrInvalidArgument,
			"payout amount %d exceeds the available balance", amountCents)
	}

	logger.InfoContext(ctx, "Payout requested", "user_id", userID, "amount_cents", amountCents)

	return &domain.WalletTransaction{
		UserID:       userID,
		Type:         entry.Type,
		AmountCents:  entry.AmountCents,
		Currency:     entry.Currency,
		GroupID:      groupID,
		Availability: entry.Availability,
		Status:       entry.Status,
		Description:  entry.Description,
	}, nil
}

package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

func TestWalletService_RequestPayout(t *testing.T) {
	ctx := context.Background()
	userID := int32(10)

	t.Run("Success locks the requested amount", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepo)
		verify := new(MockVerification)
		svc := service.NewWalletService(ledgerRepo, verify, "USD")

		verify.On("IsVerified", ctx, userID).Return(true, nil)
		ledgerRepo.On("PostWithdrawal", ctx, userID, mock.AnythingOfType("string"),
			mock.MatchedBy(func(entry domain.TransactionIntent) bool {
				return entry.Type == domain.TransactionTypeWithdrawalRequest &&
					entry.AmountCents == -3000 &&
					entry.Status == domain.TransactionStatusPending
			})).Return(true, nil)

		txn, err := svc.RequestPayout(ctx, userID, 3000)
		assert.NoError(t, err)
		assert.NotNil(t, txn)
		assert.Equal(t, int64(-3000), txn.AmountCents)
		assert.NotEmpty(t, txn.GroupID)
	})

	t.Run("Exceeding available balance is refused", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepo)
		verify := new(MockVerification)
		svc := service.NewWalletService(ledgerRepo, verify, "USD")

		verify.On("IsVerified", ctx, userID).Return(true, nil)
		ledgerRepo.On("PostWithdrawal", ctx, userID, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)

		txn, err := svc.RequestPayout(ctx, userID, 3000)
		assert.Error(t, err)
		assert.Nil(t, txn)
		assert.Equal(t, domain.ErrInvalidArgument, domain.CodeOf(err))
	})

	t.Run("Unverified user is refused", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepo)
		verify := new(MockVerification)
		svc := service.NewWalletService(ledgerRepo, verify, "USD")

		verify.On("IsVerified", ctx, userID).Return(false, nil)

		txn, err := svc.RequestPayout(ctx, userID, 1000)
		assert.Error(t, err)
		assert.Nil(t, txn)
		assert.Equal(t, domain.ErrPermissionDenied, domain.CodeOf(err))
	})

	t.Run("Non-positive amount is refused", func(t *testing.T) {
		svc := service.NewWalletService(new(MockLedgerRepo), new(MockVerification), "USD")

		txn, err := svc.RequestPayout(ctx, userID, 0)
		assert.Error(t, err)
		assert.Nil(t, txn)
		assert.Equal(t, domain.ErrInvalidArgument, domain.CodeOf(err))
	})
}

func TestWalletService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults currency when the fold has no entries", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepo)
		svc := service.NewWalletService(ledgerRepo, new(MockVerification), "USD")

		ledgerRepo.On("GetBalance", ctx, int32(10)).Return(&domain.WalletBalance{UserID: 10}, nil)

		balance, err := svc.GetBalance(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, "USD", balance.Currency)
		assert.Equal(t, int64(0), balance.TotalCents())
	})
}

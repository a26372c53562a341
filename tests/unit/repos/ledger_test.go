package repos

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository/postgres"
)

func paymentEntries(rentalID int32) []domain.TransactionIntent {
	return []domain.TransactionIntent{
		{UserID: 1, Type: domain.TransactionTypeRentalPayment, AmountCents: -8500, Currency: "USD", RelatedRentalID: &rentalID, Availability: domain.AvailabilityAvailable, Status: domain.TransactionStatusCompleted},
		{UserID: 10, Type: domain.TransactionTypeRentalIncome, AmountCents: 2700, Currency: "USD", RelatedRentalID: &rentalID, Availability: domain.AvailabilityPending, Status: domain.TransactionStatusCompleted},
		{UserID: 999, Type: domain.TransactionTypePlatformFee, AmountCents: 800, Currency: "USD", RelatedRentalID: &rentalID, Availability: domain.AvailabilityAvailable, Status: domain.TransactionStatusCompleted},
	}
}

func TestLedgerRepository_PostPaymentSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	rental := &domain.Rental{
		ID: 7, OwnerID: 10, RenterID: 1,
		CommissionRateBps: 1000, CommissionCents: 300, OwnerPayoutCents: 2700,
	}

	t.Run("Swap posts the whole group", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 1))
		for range paymentEntries(7) {
			mock.ExpectExec("INSERT INTO wallet_transactions").
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectExec("INSERT INTO rental_events").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		swapped, err := repo.PostPaymentSuccess(ctx, rental, "group-1", paymentEntries(7))
		assert.NoError(t, err)
		assert.True(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Swap miss posts nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		swapped, err := repo.PostPaymentSuccess(ctx, rental, "group-2", paymentEntries(7))
		assert.NoError(t, err)
		assert.False(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed entry insert aborts the transition", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO wallet_transactions").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		swapped, err := repo.PostPaymentSuccess(ctx, rental, "group-3", paymentEntries(7))
		assert.Error(t, err)
		assert.False(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_PostCompletion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	rental := &domain.Rental{ID: 7, OwnerID: 10, RenterID: 1, DepositRefundCents: 3500}
	rentalID := rental.ID
	entries := []domain.TransactionIntent{
		{UserID: 1, Type: domain.TransactionTypeDepositRefund, AmountCents: 3500, RelatedRentalID: &rentalID},
		{UserID: 10, Type: domain.TransactionTypeDamageCompensation, AmountCents: 1500, RelatedRentalID: &rentalID},
	}

	t.Run("Completion promotes income and bumps owner stats", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE wallet_transactions SET availability_status").
			WithArgs(domain.AvailabilityAvailable, int32(7), domain.TransactionTypeRentalIncome, domain.AvailabilityPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for range entries {
			mock.ExpectExec("INSERT INTO wallet_transactions").
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectExec("UPDATE users SET completed_rentals").
			WithArgs(int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO rental_events").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		swapped, err := repo.PostCompletion(ctx, rental, "group-4", entries, 10)
		assert.NoError(t, err)
		assert.True(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Concurrent completion misses the swap", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		swapped, err := repo.PostCompletion(ctx, rental, "group-5", entries, 10)
		assert.NoError(t, err)
		assert.False(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_PromotePendingIncome(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	t.Run("Promotes once", func(t *testing.T) {
		mock.ExpectExec("UPDATE wallet_transactions SET availability_status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := repo.PromotePendingIncome(ctx, 7)
		assert.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("Second promotion is a no-op", func(t *testing.T) {
		mock.ExpectExec("UPDATE wallet_transactions SET availability_status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		changed, err := repo.PromotePendingIncome(ctx, 7)
		assert.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestLedgerRepository_GetBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	t.Run("Folds available, pending and locked", func(t *testing.T) {
		mock.ExpectQuery("SELECT").
			WithArgs(int32(10)).
			WillReturnRows(sqlmock.NewRows([]string{"available", "pending", "locked"}).AddRow(4200, 2700, 1000))

		balance, err := repo.GetBalance(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(4200), balance.AvailableCents)
		assert.Equal(t, int64(2700), balance.PendingCents)
		assert.Equal(t, int64(1000), balance.LockedCents)
		assert.Equal(t, int64(6900), balance.TotalCents())
	})
}

func TestLedgerRepository_PostWithdrawal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	entry := domain.TransactionIntent{
		UserID: 10, Type: domain.TransactionTypeWithdrawalRequest,
		AmountCents: -3000, Currency: "USD",
		Availability: domain.AvailabilityAvailable,
		Status:       domain.TransactionStatusPending,
	}

	t.Run("Covered amount posts the entry", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(int32(10)).
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(5000))
		mock.ExpectExec("INSERT INTO wallet_transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		posted, err := repo.PostWithdrawal(ctx, 10, "group-w1", entry)
		assert.NoError(t, err)
		assert.True(t, posted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Uncovered amount posts nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(int32(10)).
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(2000))
		mock.ExpectRollback()

		posted, err := repo.PostWithdrawal(ctx, 10, "group-w2", entry)
		assert.NoError(t, err)
		assert.False(t, posted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_PostResolution(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	ctx := context.Background()

	moderatorID := int32(99)
	rental := &domain.Rental{ID: 7, OwnerID: 10, RenterID: 1, Status: domain.RentalStatusDisputed}
	dispute := &domain.Dispute{
		ID: 5, RentalID: 7,
		Decision:          domain.DisputeDecisionCancelRental,
		RefundAmountCents: 6000, OwnerCompensationCents: 2000,
		ResolvedBy: &moderatorID,
	}
	rentalID := rental.ID
	entries := []domain.TransactionIntent{
		{UserID: 1, Type: domain.TransactionTypeDisputeRefund, AmountCents: 6000, RelatedRentalID: &rentalID},
		{UserID: 10, Type: domain.TransactionTypeDisputeCompensation, AmountCents: 2000, RelatedRentalID: &rentalID},
	}

	t.Run("Resolution voids escrowed income and records the decision", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE wallet_transactions SET status").
			WithArgs(domain.TransactionStatusFailed, int32(7), domain.TransactionTypeRentalIncome,
				domain.AvailabilityPending, domain.TransactionStatusCompleted).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for range entries {
			mock.ExpectExec("INSERT INTO wallet_transactions").
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectExec("UPDATE disputes").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO rental_events").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		swapped, err := repo.PostResolution(ctx, rental, dispute, domain.RentalStatusCancelled, "group-6", entries)
		assert.NoError(t, err)
		assert.True(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Repeated resolution misses the swap", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		swapped, err := repo.PostResolution(ctx, rental, dispute, domain.RentalStatusCancelled, "group-7", entries)
		assert.NoError(t, err)
		assert.False(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

type disputeFixture struct {
	disputeRepo *MockDisputeRepo
	rentalRepo  *MockRentalRepo
	ledgerRepo  *MockLedgerRepo
	itemRepo    *MockItemRepo
	userRepo    *MockUserRepo
	notifier    *MockNotifier
	emailSvc    *MockEmailService
	svc         service.DisputeService
}

func newDisputeFixture() *disputeFixture {
	f := &disputeFixture{
		disputeRepo: new(MockDisputeRepo),
		rentalRepo:  new(MockRentalRepo),
		ledgerRepo:  new(MockLedgerRepo),
		itemRepo:    new(MockItemRepo),
		userRepo:    new(MockUserRepo),
		notifier:    new(MockNotifier),
		emailSvc:    new(MockEmailService),
	}
	f.svc = service.NewDisputeService(
		f.disputeRepo, f.rentalRepo, f.ledgerRepo, f.itemRepo, f.userRepo,
		f.notifier, f.emailSvc,
	)
	return f
}

func TestDisputeService_RaiseDispute(t *testing.T) {
	ctx := context.Background()
	ownerID := int32(10)
	renterID := int32(1)
	rentalID := int32(7)

	activeRental := func() *domain.Rental {
		return &domain.Rental{
			ID: rentalID, ItemID: 2, OwnerID: ownerID, RenterID: renterID,
			Status: domain.RentalStatusActive,
		}
	}

	t.Run("Renter freezes an active rental", func(t *testing.T) {
		f := newDisputeFixture()
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(activeRental(), nil)
		f.rentalRepo.On("UpdateStatus", ctx, rentalID,
			domain.RentalStatusActive, domain.RentalStatusDisputed,
			domain.EventDisputeRaised, &renterID, "item not as described").Return(true, nil)
		f.disputeRepo.On("Create", ctx, mock.MatchedBy(func(d *domain.Dispute) bool {
			return d.RentalID == rentalID && d.ReportedBy == renterID &&
				d.ReportedAgainst == ownerID && d.Status == domain.DisputeStatusOpen
		})).Return(nil)
		f.notifier.On("Notify", ctx, ownerID, "DISPUTE_RAISED", mock.Anything, mock.Anything, mock.Anything).Return()

		dispute, err := f.svc.RaiseDispute(ctx, renterID, rentalID, "item not as described", "photos attached")
		assert.NoError(t, err)
		assert.NotNil(t, dispute)
		assert.Equal(t, ownerID, dispute.ReportedAgainst)
	})

	t.Run("Already disputed names the open dispute", func(t *testing.T) {
		f := newDisputeFixture()
		rental := activeRental()
		rental.Status = domain.RentalStatusDisputed
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(rental, nil)
		f.disputeRepo.On("GetOpenByRentalID", ctx, rentalID).
			Return(&domain.Dispute{ID: 5, RentalID: rentalID, Status: domain.DisputeStatusOpen}, nil)

		dispute, err := f.svc.RaiseDispute(ctx, renterID, rentalID, "reason", "")
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.True(t, domain.IsAlreadyDone(err))
		assert.Contains(t, err.Error(), "dispute 5")
	})

	t.Run("Completed rental cannot be disputed", func(t *testing.T) {
		f := newDisputeFixture()
		rental := activeRental()
		rental.Status = domain.RentalStatusCompleted
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(rental, nil)

		dispute, err := f.svc.RaiseDispute(ctx, renterID, rentalID, "reason", "")
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrInvalidState, domain.CodeOf(err))
	})

	t.Run("Stranger cannot dispute", func(t *testing.T) {
		f := newDisputeFixture()
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(activeRental(), nil)

		dispute, err := f.svc.RaiseDispute(ctx, int32(42), rentalID, "reason", "")
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrPermissionDenied, domain.CodeOf(err))
	})

	t.Run("Missing reason", func(t *testing.T) {
		f := newDisputeFixture()

		dispute, err := f.svc.RaiseDispute(ctx, renterID, rentalID, "", "")
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrInvalidArgument, domain.CodeOf(err))
	})
}

func TestDisputeService_ResolveDispute(t *testing.T) {
	ctx := context.Background()
	moderatorID := int32(99)
	disputeID := int32(5)
	rentalID := int32(7)

	openDispute := func() *domain.Dispute {
		return &domain.Dispute{
			ID: disputeID, RentalID: rentalID,
			ReportedBy: 1, ReportedAgainst: 10,
			Status: domain.DisputeStatusOpen,
		}
	}
	disputedRental := func() *domain.Rental {
		return &domain.Rental{
			ID: rentalID, ItemID: 2, OwnerID: 10, RenterID: 1,
			TotalCents: 8500, Currency: "USD",
			Status: domain.RentalStatusDisputed,
		}
	}

	t.Run("Resolution posts exactly two entries", func(t *testing.T) {
		f := newDisputeFixture()
		f.userRepo.On("GetByID", ctx, moderatorID).Return(&domain.User{ID: moderatorID, IsModerator: true}, nil)
		f.disputeRepo.On("GetByID", ctx, disputeID).Return(openDispute(), nil).Once()
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(disputedRental(), nil)
		f.ledgerRepo.On("PostResolution", ctx, mock.AnythingOfType("*domain.Rental"), mock.AnythingOfType("*domain.Dispute"),
			domain.RentalStatusCancelled, mock.AnythingOfType("string"),
			mock.MatchedBy(func(entries []domain.TransactionIntent) bool {
				return len(entries) == 2 &&
					entries[0].Type == domain.TransactionTypeDisputeRefund && entries[0].UserID == int32(1) && entries[0].AmountCents == 6000 &&
					entries[1].Type == domain.TransactionTypeDisputeCompensation && entries[1].UserID == int32(10) && entries[1].AmountCents == 2000
			})).Return(true, nil)
		f.itemRepo.On("SetStatus", ctx, int32(2), domain.ItemStatusAvailable).Return(nil)
		f.notifier.On("Notify", ctx, mock.Anything, "DISPUTE_RESOLVED", mock.Anything, mock.Anything, mock.Anything).Return()
		f.itemRepo.On("GetByID", ctx, int32(2)).Return(&domain.Item{ID: 2, Name: "Camera"}, nil)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "renter@test.com", Name: "Renter"}, nil)
		f.userRepo.On("GetByID", ctx, int32(10)).Return(&domain.User{ID: 10, Email: "owner@test.com", Name: "Owner"}, nil)
		f.emailSvc.On("SendDisputeResolutionNotification", ctx, mock.Anything, mock.Anything, "Camera", string(domain.DisputeDecisionCancelRental)).Return(nil)

		resolved := openDispute()
		resolved.Status = domain.DisputeStatusResolved
		f.disputeRepo.On("GetByID", ctx, disputeID).Return(resolved, nil)

		dispute, err := f.svc.ResolveDispute(ctx, moderatorID, disputeID, domain.DisputeDecisionCancelRental, 6000, 2000)
		assert.NoError(t, err)
		assert.NotNil(t, dispute)
		assert.Equal(t, domain.DisputeStatusResolved, dispute.Status)
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("Split above the collected total is refused", func(t *testing.T) {
		f := newDisputeFixture()
		f.userRepo.On("GetByID", ctx, moderatorID).Return(&domain.User{ID: moderatorID, IsModerator: true}, nil)
		f.disputeRepo.On("GetByID", ctx, disputeID).Return(openDispute(), nil)
		f.rentalRepo.On("GetByID", ctx, rentalID).Return(disputedRental(), nil)

		dispute, err := f.svc.ResolveDispute(ctx, moderatorID, disputeID, domain.DisputeDecisionCancelRental, 8000, 1000)
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrInvalidArgument, domain.CodeOf(err))
		f.ledgerRepo.AssertNotCalled(t, "PostResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-moderator is refused", func(t *testing.T) {
		f := newDisputeFixture()
		f.userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, IsModerator: false}, nil)

		dispute, err := f.svc.ResolveDispute(ctx, int32(1), disputeID, domain.DisputeDecisionCancelRental, 0, 0)
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrPermissionDenied, domain.CodeOf(err))
	})

	t.Run("Repeated resolution is already done", func(t *testing.T) {
		f := newDisputeFixture()
		resolved := openDispute()
		resolved.Status = domain.DisputeStatusResolved
		f.userRepo.On("GetByID", ctx, moderatorID).Return(&domain.User{ID: moderatorID, IsModerator: true}, nil)
		f.disputeRepo.On("GetByID", ctx, disputeID).Return(resolved, nil)

		dispute, err := f.svc.ResolveDispute(ctx, moderatorID, disputeID, domain.DisputeDecisionCompleteRental, 0, 0)
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.True(t, domain.IsAlreadyDone(err))
	})

	t.Run("Unknown decision is refused", func(t *testing.T) {
		f := newDisputeFixture()
		f.userRepo.On("GetByID", ctx, moderatorID).Return(&domain.User{ID: moderatorID, IsModerator: true}, nil)

		dispute, err := f.svc.ResolveDispute(ctx, moderatorID, disputeID, domain.DisputeDecision("SPLIT_EVENLY"), 0, 0)
		assert.Error(t, err)
		assert.Nil(t, dispute)
		assert.Equal(t, domain.ErrInvalidArgument, domain.CodeOf(err))
	})
}

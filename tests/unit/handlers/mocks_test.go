package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gearloop-backend/internal/domain"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) RequestRental(ctx context.Context, renterID, itemID int32, startDate, endDate string) (*domain.Rental, error) {
	args := m.Called(ctx, renterID, itemID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) RespondToRental(ctx context.Context, ownerID, rentalID int32, approve bool, reason string) (*domain.Rental, error) {
	args := m.Called(ctx, ownerID, rentalID, approve, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) CancelRental(ctx context.Context, renterID, rentalID int32, reason string) (*domain.Rental, error) {
	args := m.Called(ctx, renterID, rentalID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ConfirmHandover(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error) {
	args := m.Called(ctx, actorID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ConfirmReceived(ctx context.Context, renterID, rentalID int32) (*domain.Rental, error) {
	args := m.Called(ctx, renterID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ConfirmReturned(ctx context.Context, ownerID, rentalID int32, damageReport string, damageDeductionCents int64) (*domain.Rental, error) {
	args := m.Called(ctx, ownerID, rentalID, damageReport, damageDeductionCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) GetRental(ctx context.Context, userID, rentalID int32) (*domain.Rental, []domain.TimelineEvent, error) {
	args := m.Called(ctx, userID, rentalID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Rental), args.Get(1).([]domain.TimelineEvent), args.Error(2)
}

func (m *MockRentalService) ListRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

func (m *MockRentalService) ListLendings(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletBalance), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int32), args.Error(2)
}

func (m *MockWalletService) RequestPayout(ctx context.Context, userID int32, amountCents int64) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

type MockDisputeService struct {
	mock.Mock
}

func (m *MockDisputeService) RaiseDispute(ctx context.Context, actorID, rentalID int32, reason, evidence string) (*domain.Dispute, error) {
	args := m.Called(ctx, actorID, rentalID, reason, evidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}

func (m *MockDisputeService) ResolveDispute(ctx context.Context, moderatorID, disputeID int32, decision domain.DisputeDecision, refundCents, ownerCompensationCents int64) (*domain.Dispute, error) {
	args := m.Called(ctx, moderatorID, disputeID, decision, refundCents, ownerCompensationCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}

func (m *MockDisputeService) ListOpenDisputes(ctx context.Context, moderatorID int32, page, pageSize int32) ([]domain.Dispute, int32, error) {
	args := m.Called(ctx, moderatorID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Dispute), args.Get(1).(int32), args.Error(2)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID int32, notifType, title, message string, attributes map[string]string) {
	m.Called(ctx, userID, notifType, title, message, attributes)
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

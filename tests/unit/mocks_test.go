package unit

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/payment"
	"gearloop-backend/internal/repository"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Rental, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateApproval(ctx context.Context, rental *domain.Rental, actorID int32) (bool, error) {
	args := m.Called(ctx, rental, actorID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, rentalID int32, from, to domain.RentalStatus, event string, actorID *int32, details string) (bool, error) {
	args := m.Called(ctx, rentalID, from, to, event, actorID, details)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ConfirmHandover(ctx context.Context, rentalID int32, party string, at time.Time) (repository.HandoverOutcome, error) {
	args := m.Called(ctx, rentalID, party, at)
	return args.Get(0).(repository.HandoverOutcome), args.Error(1)
}
func (m *MockRentalRepo) MarkItemReceived(ctx context.Context, rentalID int32, actorID int32) (bool, error) {
	args := m.Called(ctx, rentalID, actorID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) MarkItemReturned(ctx context.Context, rentalID int32, actorID int32, damageReport string, damageDeductionCents int64) (bool, error) {
	args := m.Called(ctx, rentalID, actorID, damageReport, damageDeductionCents)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListPaymentPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListAwaitingHandoverBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) PostWithdrawal(ctx context.Context, userID int32, groupID string, entry domain.TransactionIntent) (bool, error) {
	args := m.Called(ctx, userID, groupID, entry)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) PostPaymentSuccess(ctx context.Context, rental *domain.Rental, groupID string, entries []domain.TransactionIntent) (bool, error) {
	args := m.Called(ctx, rental, groupID, entries)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) PostCompletion(ctx context.Context, rental *domain.Rental, groupID string, entries []domain.TransactionIntent, actorID int32) (bool, error) {
	args := m.Called(ctx, rental, groupID, entries, actorID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) PostResolution(ctx context.Context, rental *domain.Rental, dispute *domain.Dispute, to domain.RentalStatus, groupID string, entries []domain.TransactionIntent) (bool, error) {
	args := m.Called(ctx, rental, dispute, to, groupID, entries)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) PromotePendingIncome(ctx context.Context, rentalID int32) (bool, error) {
	args := m.Called(ctx, rentalID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletBalance), args.Error(1)
}
func (m *MockLedgerRepo) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerRepo) ListPendingWithdrawals(ctx context.Context) ([]domain.WalletTransaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.WalletTransaction), args.Error(1)
}
func (m *MockLedgerRepo) CompleteWithdrawal(ctx context.Context, transactionID int32) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// MockDisputeRepo
type MockDisputeRepo struct {
	mock.Mock
}

func (m *MockDisputeRepo) Create(ctx context.Context, dispute *domain.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}
func (m *MockDisputeRepo) GetByID(ctx context.Context, id int32) (*domain.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}
func (m *MockDisputeRepo) GetOpenByRentalID(ctx context.Context, rentalID int32) (*domain.Dispute, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}
func (m *MockDisputeRepo) ListOpen(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Dispute), args.Get(1).(int32), args.Error(2)
}
// MockTimelineRepo
type MockTimelineRepo struct {
	mock.Mock
}

func (m *MockTimelineRepo) Append(ctx context.Context, event *domain.TimelineEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockTimelineRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.TimelineEvent, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.TimelineEvent), args.Error(1)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) SetStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error {
	args := m.Called(ctx, itemID, status)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotifier implements service.NotificationService.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int32, notifType, title, message string, attributes map[string]string) {
	m.Called(ctx, userID, notifType, title, message, attributes)
}
func (m *MockNotifier) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotifier) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, itemName string) error {
	args := m.Called(ctx, ownerEmail, renterName, itemName)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalApprovalNotification(ctx context.Context, renterEmail, itemName, ownerName string) error {
	args := m.Called(ctx, renterEmail, itemName, ownerName)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentConfirmation(ctx context.Context, email, name, itemName string, amountCents int64) error {
	args := m.Called(ctx, email, name, itemName, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalCompletionNotification(ctx context.Context, email, role, itemName string, amountCents int64) error {
	args := m.Called(ctx, email, role, itemName, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendDisputeResolutionNotification(ctx context.Context, email, name, itemName, decision string) error {
	args := m.Called(ctx, email, name, itemName, decision)
	return args.Error(0)
}

// MockProvider implements payment.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateOrder(ctx context.Context, amountCents int64, currency, merchantRef string) (string, error) {
	args := m.Called(ctx, amountCents, currency, merchantRef)
	return args.String(0), args.Error(1)
}
func (m *MockProvider) CreatePaymentKey(ctx context.Context, amountCents int64, currency, orderID string, billing payment.BillingData) (string, error) {
	args := m.Called(ctx, amountCents, currency, orderID, billing)
	return args.String(0), args.Error(1)
}

// MockVerification
type MockVerification struct {
	mock.Mock
}

func (m *MockVerification) IsVerified(ctx context.Context, userID int32) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

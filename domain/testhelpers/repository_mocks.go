package testhelpers

import (
	"context"

	"rafflestars/domain/entities"
	"rafflestars/domain/events"
	"rafflestars/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.Raffle, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetActive(ctx context.Context) (*entities.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id int64) (*entities.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) AdmitIncrement(ctx context.Context, raffleID int64, amount int64) (*entities.Raffle, error) {
	args := m.Called(ctx, raffleID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) Complete(ctx context.Context, raffleID int64, winnerID, winnerPrize, operatorFee int64, seed string) (*entities.Raffle, error) {
	args := m.Called(ctx, raffleID, winnerID, winnerPrize, operatorFee, seed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) Cancel(ctx context.Context, raffleID int64) (*entities.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) ListCompleted(ctx context.Context, limit int) ([]*entities.Raffle, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Raffle), args.Error(1)
}

// MockEntryRepository is a mock implementation of EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *entities.Entry) (*entities.Entry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) ExistsForParticipant(ctx context.Context, raffleID, participantID int64) (bool, error) {
	args := m.Called(ctx, raffleID, participantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) ListConfirmedByRaffle(ctx context.Context, raffleID int64) ([]*entities.Entry, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) MarkAllRefunded(ctx context.Context, raffleID int64) (int, error) {
	args := m.Called(ctx, raffleID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) ListByParticipant(ctx context.Context, participantID int64, limit int) ([]*entities.Entry, error) {
	args := m.Called(ctx, participantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetActive(ctx context.Context) (*entities.RaffleSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RaffleSettings), args.Error(1)
}

func (m *MockSettingsRepository) Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.RaffleSettings, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RaffleSettings), args.Error(1)
}

func (m *MockSettingsRepository) History(ctx context.Context, limit int) ([]*entities.RaffleSettings, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RaffleSettings), args.Error(1)
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*entities.Participant, error) {
	args := m.Called(ctx, telegramID, username, firstName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, telegramID int64) (*entities.Participant, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) IncrementBids(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockParticipantRepository) IncrementWinnings(ctx context.Context, telegramID int64, amount int64) error {
	args := m.Called(ctx, telegramID, amount)
	return args.Error(0)
}

// MockPaymentRecordRepository is a mock implementation of PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) Create(ctx context.Context, record *entities.PaymentRecord) (*entities.PaymentRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) ListByRaffle(ctx context.Context, raffleID int64) ([]*entities.PaymentRecord, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) UpdateDelivery(ctx context.Context, id int64, status entities.PaymentStatus, externalRef string) error {
	args := m.Called(ctx, id, status, externalRef)
	return args.Error(0)
}

func (m *MockPaymentRecordRepository) ListUndelivered(ctx context.Context, limit int) ([]*entities.PaymentRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentRecord), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockAdmissionGate is a mock implementation of AdmissionGate
type MockAdmissionGate struct {
	mock.Mock
}

func (m *MockAdmissionGate) Allow(ctx context.Context, participantID int64) error {
	args := m.Called(ctx, participantID)
	return args.Error(0)
}

// MockPaymentBridge is a mock implementation of PaymentBridge
type MockPaymentBridge struct {
	mock.Mock
}

func (m *MockPaymentBridge) VerifyAndCapture(ctx context.Context, participantID int64, amount int64, proof string) error {
	args := m.Called(ctx, participantID, amount, proof)
	return args.Error(0)
}

func (m *MockPaymentBridge) Payout(ctx context.Context, participantID int64, amount int64) (string, error) {
	args := m.Called(ctx, participantID, amount)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentBridge) Refund(ctx context.Context, participantID int64, amount int64, chargeRef string) (string, error) {
	args := m.Called(ctx, participantID, amount, chargeRef)
	return args.String(0), args.Error(1)
}

// MockNotificationSink is a mock implementation of NotificationSink
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Broadcast(ctx context.Context, event string, payload any) {
	m.Called(ctx, event, payload)
}

func (m *MockNotificationSink) Notify(ctx context.Context, participantID int64, event string, payload any) {
	m.Called(ctx, participantID, event, payload)
}

// MockUnitOfWork is a mock implementation of UnitOfWork backed by the
// repository mocks above
type MockUnitOfWork struct {
	mock.Mock

	RaffleRepo        *MockRaffleRepository
	EntryRepo         *MockEntryRepository
	SettingsRepo      *MockSettingsRepository
	ParticipantRepo   *MockParticipantRepository
	PaymentRecordRepo *MockPaymentRecordRepository
	Publisher         *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work mock with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		RaffleRepo:        new(MockRaffleRepository),
		EntryRepo:         new(MockEntryRepository),
		SettingsRepo:      new(MockSettingsRepository),
		ParticipantRepo:   new(MockParticipantRepository),
		PaymentRecordRepo: new(MockPaymentRecordRepository),
		Publisher:         new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RaffleRepository() interfaces.RaffleRepository {
	return m.RaffleRepo
}

func (m *MockUnitOfWork) EntryRepository() interfaces.EntryRepository {
	return m.EntryRepo
}

func (m *MockUnitOfWork) SettingsRepository() interfaces.SettingsRepository {
	return m.SettingsRepo
}

func (m *MockUnitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	return m.ParticipantRepo
}

func (m *MockUnitOfWork) PaymentRecordRepository() interfaces.PaymentRecordRepository {
	return m.PaymentRecordRepo
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory that
// hands out a fixed sequence of unit of work mocks
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	args := m.Called()
	return args.Get(0).(interfaces.UnitOfWork)
}

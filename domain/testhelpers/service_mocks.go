package testhelpers

import (
	"context"

	"rafflestars/domain/entities"
	"rafflestars/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockRaffleService is a mock implementation of interfaces.RaffleService
type MockRaffleService struct {
	mock.Mock
}

func (m *MockRaffleService) EnsureActiveRaffle(ctx context.Context) (*entities.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleService) PlaceBid(ctx context.Context, participantID int64, amount int64, proof string) (*interfaces.BidResult, error) {
	args := m.Called(ctx, participantID, amount, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.BidResult), args.Error(1)
}

func (m *MockRaffleService) CancelRaffle(ctx context.Context, raffleID int64, reason string) (*interfaces.CancelResult, error) {
	args := m.Called(ctx, raffleID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.CancelResult), args.Error(1)
}

func (m *MockRaffleService) GetRaffle(ctx context.Context, raffleID int64) (*interfaces.RaffleDetail, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.RaffleDetail), args.Error(1)
}

func (m *MockRaffleService) ListCompletedRaffles(ctx context.Context, limit int) ([]*entities.Raffle, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Raffle), args.Error(1)
}

func (m *MockRaffleService) VerifyRaffle(ctx context.Context, raffleID int64) (*interfaces.VerificationResult, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.VerificationResult), args.Error(1)
}

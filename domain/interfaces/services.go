package interfaces

import (
	"context"

	"rafflestars/domain/entities"
)

// BidResult is returned from a successful admission
type BidResult struct {
	Raffle    *entities.Raffle
	Entry     *entities.Entry
	Completed bool
	// Outcome is set when this admission filled the quota and the draw ran
	Outcome *DrawOutcome
}

// DrawOutcome describes a completed winner selection
type DrawOutcome struct {
	WinnerID         int64
	WinnerIndex      int
	WinnerPrize      int64
	OperatorFee      int64
	Seed             string
	VerificationHash string
}

// CancelResult is returned from a raffle cancellation
type CancelResult struct {
	Raffle          *entities.Raffle
	RefundedEntries []*entities.Entry
}

// VerificationResult reports an after-the-fact recomputation of a draw
type VerificationResult struct {
	IsValid          bool
	StoredWinner     int64
	RecomputedWinner int64
	Seed             string
	VerificationHash string
}

// RaffleDetail bundles a raffle with its admission-ordered entries
type RaffleDetail struct {
	Raffle  *entities.Raffle
	Entries []*entities.Entry
}

// RaffleService drives the raffle lifecycle: round creation, admission,
// completion, cancellation and verification
type RaffleService interface {
	// EnsureActiveRaffle returns the active raffle, creating one from the
	// active settings if none exists. Race-safe: concurrent creators are
	// serialized by the store's single-active constraint.
	EnsureActiveRaffle(ctx context.Context) (*entities.Raffle, error)

	// PlaceBid admits a participant into the active raffle. When the
	// admission fills the quota the draw runs before PlaceBid returns;
	// callers never observe a full but undrawn raffle.
	PlaceBid(ctx context.Context, participantID int64, amount int64, proof string) (*BidResult, error)

	// CancelRaffle cancels an active raffle, refunding every entry
	CancelRaffle(ctx context.Context, raffleID int64, reason string) (*CancelResult, error)

	// GetRaffle returns a raffle with its entries
	GetRaffle(ctx context.Context, raffleID int64) (*RaffleDetail, error)

	// ListCompletedRaffles returns recently completed rounds, newest first
	ListCompletedRaffles(ctx context.Context, limit int) ([]*entities.Raffle, error)

	// VerifyRaffle recomputes the winner of a completed raffle from its
	// persisted seed and admission-ordered entries
	VerifyRaffle(ctx context.Context, raffleID int64) (*VerificationResult, error)
}

// AdmissionGate throttles per-participant bid attempts ahead of the
// transactional core. It protects throughput, never correctness.
type AdmissionGate interface {
	// Allow returns ErrRateLimited when the participant has exhausted
	// their attempt budget for the current window
	Allow(ctx context.Context, participantID int64) error
}

// PaymentBridge is the payment-provider boundary. Capture runs before the
// admission transaction; payout and refund run strictly after commit.
type PaymentBridge interface {
	// VerifyAndCapture validates the provider-side payment proof for the
	// given amount
	VerifyAndCapture(ctx context.Context, participantID int64, amount int64, proof string) error

	// Payout delivers a prize and returns the provider receipt
	Payout(ctx context.Context, participantID int64, amount int64) (receipt string, err error)

	// Refund reverses a captured entry fee identified by its original
	// charge reference and returns the provider receipt
	Refund(ctx context.Context, participantID int64, amount int64, chargeRef string) (receipt string, err error)
}

// NotificationSink fans out user-visible notifications. Fire-and-forget:
// implementations log failures and never propagate them to the caller.
type NotificationSink interface {
	// Broadcast notifies all connected clients
	Broadcast(ctx context.Context, event string, payload any)

	// Notify targets a single participant
	Notify(ctx context.Context, participantID int64, event string, payload any)
}

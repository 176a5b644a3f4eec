package entities

import "time"

// RaffleStatus represents the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusCompleted RaffleStatus = "completed"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// Raffle represents a single lottery round. The quota, fee and prize split
// are captured from the active settings at creation and never change for
// the lifetime of the round.
type Raffle struct {
	ID                   int64        `db:"id"`
	RequiredParticipants int          `db:"required_participants"`
	BidAmount            int64        `db:"bid_amount"`
	WinnerShare          float64      `db:"winner_share"`
	OperatorShare        float64      `db:"operator_share"`
	CurrentParticipants  int          `db:"current_participants"`
	TotalPrizePool       int64        `db:"total_prize_pool"`
	Status               RaffleStatus `db:"status"`
	WinnerID             *int64       `db:"winner_id"`      // NULL until completed
	WinnerPrize          *int64       `db:"winner_prize"`   // NULL until completed
	OperatorFee          *int64       `db:"operator_fee"`   // NULL until completed
	SelectionSeed        *string      `db:"selection_seed"` // NULL until completed
	CreatedAt            time.Time    `db:"created_at"`
	CompletedAt          *time.Time   `db:"completed_at"` // Set on completion or cancellation
}

// IsActive returns true if the raffle is still accepting entries
func (r *Raffle) IsActive() bool {
	return r.Status == RaffleStatusActive
}

// IsFull returns true if the participant quota has been met
func (r *Raffle) IsFull() bool {
	return r.CurrentParticipants >= r.RequiredParticipants
}

// SplitPrize divides the prize pool between winner and operator using the
// share captured at creation. The two parts always sum exactly to the pool.
func (r *Raffle) SplitPrize() (winnerPrize, operatorFee int64) {
	winnerPrize = int64(float64(r.TotalPrizePool) * r.WinnerShare)
	operatorFee = r.TotalPrizePool - winnerPrize
	return winnerPrize, operatorFee
}

// PublicView is the raffle projection exposed to clients. Terminal rounds
// additionally carry the outcome fields.
type PublicView struct {
	ID                   int64        `json:"id"`
	RequiredParticipants int          `json:"required_participants"`
	BidAmount            int64        `json:"bid_amount"`
	CurrentParticipants  int          `json:"current_participants"`
	TotalPrizePool       int64        `json:"total_prize_pool"`
	Status               RaffleStatus `json:"status"`
	WinnerID             *int64       `json:"winner_id,omitempty"`
	WinnerPrize          *int64       `json:"winner_prize,omitempty"`
	OperatorFee          *int64       `json:"operator_fee,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	CompletedAt          *time.Time   `json:"completed_at,omitempty"`
}

// PublicInfo returns the client-facing projection of the raffle
func (r *Raffle) PublicInfo() PublicView {
	view := PublicView{
		ID:                   r.ID,
		RequiredParticipants: r.RequiredParticipants,
		BidAmount:            r.BidAmount,
		CurrentParticipants:  r.CurrentParticipants,
		TotalPrizePool:       r.TotalPrizePool,
		Status:               r.Status,
		CreatedAt:            r.CreatedAt,
		CompletedAt:          r.CompletedAt,
	}
	if r.Status == RaffleStatusCompleted {
		view.WinnerID = r.WinnerID
		view.WinnerPrize = r.WinnerPrize
		view.OperatorFee = r.OperatorFee
	}
	return view
}

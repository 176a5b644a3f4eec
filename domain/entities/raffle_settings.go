package entities

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// MaxRequiredParticipants bounds the quota to keep rounds drawable in practice
	MaxRequiredParticipants = 1000
	// MaxBidAmount bounds the entry fee in Stars
	MaxBidAmount = 1000
)

// RaffleSettings is the parameter set new raffles are created from. Settings
// rows are superseded, never mutated: activating a new set deactivates the
// previous one, and every raffle keeps the snapshot taken at its creation.
type RaffleSettings struct {
	ID                   int64     `db:"id"`
	RequiredParticipants int       `db:"required_participants"`
	BidAmount            int64     `db:"bid_amount"`
	WinnerShare          float64   `db:"winner_share"`
	OperatorShare        float64   `db:"operator_share"`
	IsActive             bool      `db:"is_active"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// Validate checks the settings invariants and returns all violations at once
func (s *RaffleSettings) Validate() error {
	var problems []string

	if s.RequiredParticipants < 2 {
		problems = append(problems, "required_participants must be at least 2")
	}
	if s.RequiredParticipants > MaxRequiredParticipants {
		problems = append(problems, fmt.Sprintf("required_participants must not exceed %d", MaxRequiredParticipants))
	}
	if s.BidAmount < 1 {
		problems = append(problems, "bid_amount must be at least 1")
	}
	if s.BidAmount > MaxBidAmount {
		problems = append(problems, fmt.Sprintf("bid_amount must not exceed %d", MaxBidAmount))
	}
	if s.WinnerShare <= 0 || s.WinnerShare >= 1 {
		problems = append(problems, "winner_share must be between 0 and 1 (exclusive)")
	}
	if s.OperatorShare <= 0 || s.OperatorShare >= 1 {
		problems = append(problems, "operator_share must be between 0 and 1 (exclusive)")
	}
	if math.Abs(s.WinnerShare+s.OperatorShare-1.0) > 1e-3 {
		problems = append(problems, "winner_share and operator_share must sum to 1.0")
	}

	if len(problems) > 0 {
		return errors.New("invalid raffle settings: " + strings.Join(problems, ", "))
	}
	return nil
}

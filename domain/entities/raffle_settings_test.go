package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSettings() *RaffleSettings {
	return &RaffleSettings{
		RequiredParticipants: 10,
		BidAmount:            1,
		WinnerShare:          0.7,
		OperatorShare:        0.3,
	}
}

func TestRaffleSettings_Validate(t *testing.T) {
	assert.NoError(t, validSettings().Validate())

	t.Run("quota below minimum", func(t *testing.T) {
		s := validSettings()
		s.RequiredParticipants = 1
		assert.Error(t, s.Validate())
	})

	t.Run("quota above maximum", func(t *testing.T) {
		s := validSettings()
		s.RequiredParticipants = MaxRequiredParticipants + 1
		assert.Error(t, s.Validate())
	})

	t.Run("zero bid amount", func(t *testing.T) {
		s := validSettings()
		s.BidAmount = 0
		assert.Error(t, s.Validate())
	})

	t.Run("bid amount above maximum", func(t *testing.T) {
		s := validSettings()
		s.BidAmount = MaxBidAmount + 1
		assert.Error(t, s.Validate())
	})

	t.Run("shares must be exclusive fractions", func(t *testing.T) {
		s := validSettings()
		s.WinnerShare = 1.0
		s.OperatorShare = 0.0
		assert.Error(t, s.Validate())
	})

	t.Run("shares must sum to one", func(t *testing.T) {
		s := validSettings()
		s.WinnerShare = 0.7
		s.OperatorShare = 0.4
		assert.Error(t, s.Validate())
	})

	t.Run("all violations reported at once", func(t *testing.T) {
		s := &RaffleSettings{
			RequiredParticipants: 0,
			BidAmount:            0,
			WinnerShare:          0,
			OperatorShare:        0,
		}
		err := s.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "required_participants")
		assert.Contains(t, err.Error(), "bid_amount")
		assert.Contains(t, err.Error(), "winner_share")
	})
}

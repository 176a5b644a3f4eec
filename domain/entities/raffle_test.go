package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaffle_SplitPrize(t *testing.T) {
	tests := []struct {
		name        string
		pool        int64
		winnerShare float64
		wantWinner  int64
		wantFee     int64
	}{
		{"three stars at 0.7", 3, 0.7, 2, 1},
		{"ten stars at 0.7", 10, 0.7, 7, 3},
		{"hundred stars at 0.7", 100, 0.7, 70, 30},
		{"odd pool at 0.5", 7, 0.5, 3, 4},
		{"one star at 0.7", 1, 0.7, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raffle := &Raffle{
				TotalPrizePool: tt.pool,
				WinnerShare:    tt.winnerShare,
				OperatorShare:  1 - tt.winnerShare,
			}

			winnerPrize, operatorFee := raffle.SplitPrize()
			assert.Equal(t, tt.wantWinner, winnerPrize)
			assert.Equal(t, tt.wantFee, operatorFee)
			// The split never mints or burns stars
			assert.Equal(t, tt.pool, winnerPrize+operatorFee)
		})
	}
}

func TestRaffle_IsFull(t *testing.T) {
	raffle := &Raffle{RequiredParticipants: 3, CurrentParticipants: 2}
	assert.False(t, raffle.IsFull())

	raffle.CurrentParticipants = 3
	assert.True(t, raffle.IsFull())
}

func TestRaffle_PublicInfo_HidesOutcomeUntilCompleted(t *testing.T) {
	winnerID := int64(100)
	prize := int64(2)

	raffle := &Raffle{
		ID:          1,
		Status:      RaffleStatusActive,
		WinnerID:    &winnerID,
		WinnerPrize: &prize,
	}

	view := raffle.PublicInfo()
	assert.Nil(t, view.WinnerID)
	assert.Nil(t, view.WinnerPrize)

	raffle.Status = RaffleStatusCompleted
	view = raffle.PublicInfo()
	assert.Equal(t, &winnerID, view.WinnerID)
	assert.Equal(t, &prize, view.WinnerPrize)

	// Cancelled rounds have no outcome to show
	raffle.Status = RaffleStatusCancelled
	view = raffle.PublicInfo()
	assert.Nil(t, view.WinnerID)
}

package repository

import (
	"context"
	"testing"

	"rafflestars/domain/entities"
	"rafflestars/domain/services"
	"rafflestars/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleRepository_CreateAndGetActive(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no active raffle initially", func(t *testing.T) {
		raffle, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Nil(t, raffle)
	})

	t.Run("create snapshots settings", func(t *testing.T) {
		settings := testutil.CreateTestSettings()
		raffle, err := repo.Create(ctx, settings)
		require.NoError(t, err)
		require.NotNil(t, raffle)

		assert.Equal(t, settings.RequiredParticipants, raffle.RequiredParticipants)
		assert.Equal(t, settings.BidAmount, raffle.BidAmount)
		assert.Equal(t, settings.WinnerShare, raffle.WinnerShare)
		assert.Equal(t, settings.OperatorShare, raffle.OperatorShare)
		assert.Equal(t, entities.RaffleStatusActive, raffle.Status)
		assert.Equal(t, 0, raffle.CurrentParticipants)
		assert.Equal(t, int64(0), raffle.TotalPrizePool)
		assert.Nil(t, raffle.WinnerID)

		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, raffle.ID, active.ID)
	})

	t.Run("second active raffle rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, testutil.CreateTestSettings())
		assert.ErrorIs(t, err, services.ErrActiveRaffleExists)
	})
}

func TestRaffleRepository_AdmitIncrement(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := repo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	t.Run("increments count and pool", func(t *testing.T) {
		updated, err := repo.AdmitIncrement(ctx, raffle.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.CurrentParticipants)
		assert.Equal(t, int64(1), updated.TotalPrizePool)
	})

	t.Run("refuses to overfill", func(t *testing.T) {
		// Quota is 3; two more fills it
		_, err := repo.AdmitIncrement(ctx, raffle.ID, 1)
		require.NoError(t, err)
		updated, err := repo.AdmitIncrement(ctx, raffle.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.CurrentParticipants)

		_, err = repo.AdmitIncrement(ctx, raffle.ID, 1)
		assert.ErrorIs(t, err, services.ErrRaffleFull)
	})

	t.Run("unknown raffle", func(t *testing.T) {
		_, err := repo.AdmitIncrement(ctx, 99999, 1)
		assert.ErrorIs(t, err, services.ErrRaffleFull)
	})
}

func TestRaffleRepository_Complete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := repo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	completed, err := repo.Complete(ctx, raffle.ID, 100, 2, 1, "seed-value")
	require.NoError(t, err)

	assert.Equal(t, entities.RaffleStatusCompleted, completed.Status)
	require.NotNil(t, completed.WinnerID)
	assert.Equal(t, int64(100), *completed.WinnerID)
	require.NotNil(t, completed.WinnerPrize)
	assert.Equal(t, int64(2), *completed.WinnerPrize)
	require.NotNil(t, completed.OperatorFee)
	assert.Equal(t, int64(1), *completed.OperatorFee)
	require.NotNil(t, completed.SelectionSeed)
	assert.Equal(t, "seed-value", *completed.SelectionSeed)
	assert.NotNil(t, completed.CompletedAt)

	t.Run("completion is terminal", func(t *testing.T) {
		_, err := repo.Complete(ctx, raffle.ID, 200, 2, 1, "other-seed")
		assert.ErrorIs(t, err, services.ErrRaffleNotActive)

		_, err = repo.Cancel(ctx, raffle.ID)
		assert.ErrorIs(t, err, services.ErrRaffleNotActive)
	})

	t.Run("new round can open after completion", func(t *testing.T) {
		next, err := repo.Create(ctx, testutil.CreateTestSettings())
		require.NoError(t, err)
		assert.NotEqual(t, raffle.ID, next.ID)
	})
}

func TestRaffleRepository_Cancel(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := repo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	cancelled, err := repo.Cancel(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RaffleStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)
	assert.Nil(t, cancelled.WinnerID)
}

func TestRaffleRepository_ListCompleted(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	var completedIDs []int64
	for i := 0; i < 3; i++ {
		raffle, err := repo.Create(ctx, testutil.CreateTestSettings())
		require.NoError(t, err)
		_, err = repo.Complete(ctx, raffle.ID, int64(100+i), 2, 1, "seed")
		require.NoError(t, err)
		completedIDs = append(completedIDs, raffle.ID)
	}

	// One cancelled round that must not appear
	raffle, err := repo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)
	_, err = repo.Cancel(ctx, raffle.ID)
	require.NoError(t, err)

	raffles, err := repo.ListCompleted(ctx, 10)
	require.NoError(t, err)
	require.Len(t, raffles, 3)

	// Newest first
	assert.Equal(t, completedIDs[2], raffles[0].ID)
	assert.Equal(t, completedIDs[0], raffles[2].ID)

	limited, err := repo.ListCompleted(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

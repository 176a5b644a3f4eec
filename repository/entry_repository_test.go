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

func TestEntryRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	created, err := repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 100, 1))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, raffle.ID, created.RaffleID)
	assert.Equal(t, int64(100), created.ParticipantID)
	assert.Equal(t, 1, created.Position)
	assert.Equal(t, entities.EntryStatusConfirmed, created.Status)
	assert.False(t, created.PlacedAt.IsZero())

	t.Run("duplicate participant rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 100, 2))
		assert.ErrorIs(t, err, services.ErrAlreadyParticipated)
	})

	t.Run("duplicate position rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 200, 1))
		assert.ErrorIs(t, err, services.ErrAlreadyParticipated)
	})
}

func TestEntryRepository_ExistsForParticipant(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	exists, err := repo.ExistsForParticipant(ctx, raffle.ID, 100)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 100, 1))
	require.NoError(t, err)

	exists, err = repo.ExistsForParticipant(ctx, raffle.ID, 100)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForParticipant(ctx, raffle.ID, 200)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEntryRepository_ListConfirmedByRaffle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	// Insert out of order; listing must follow position
	for _, e := range []struct {
		participantID int64
		position      int
	}{
		{300, 3},
		{100, 1},
		{200, 2},
	} {
		_, err := repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, e.participantID, e.position))
		require.NoError(t, err)
	}

	entries, err := repo.ListConfirmedByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(100), entries[0].ParticipantID)
	assert.Equal(t, int64(200), entries[1].ParticipantID)
	assert.Equal(t, int64(300), entries[2].ParticipantID)

	t.Run("unknown raffle lists nothing", func(t *testing.T) {
		entries, err := repo.ListConfirmedByRaffle(ctx, 99999)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestEntryRepository_MarkAllRefunded(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	_, err = repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 100, 1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testutil.CreateTestEntry(raffle.ID, 200, 2))
	require.NoError(t, err)

	count, err := repo.MarkAllRefunded(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Refunded entries no longer count as confirmed
	entries, err := repo.ListConfirmedByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	t.Run("idempotent on second call", func(t *testing.T) {
		count, err := repo.MarkAllRefunded(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestEntryRepository_ListByParticipant(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	first, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)
	_, err = repo.Create(ctx, testutil.CreateTestEntry(first.ID, 100, 1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testutil.CreateTestEntry(first.ID, 200, 2))
	require.NoError(t, err)

	_, err = raffleRepo.Complete(ctx, first.ID, 100, 2, 1, "seed")
	require.NoError(t, err)

	second, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)
	_, err = repo.Create(ctx, testutil.CreateTestEntry(second.ID, 100, 1))
	require.NoError(t, err)

	entries, err := repo.ListByParticipant(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].RaffleID)
	assert.Equal(t, first.ID, entries[1].RaffleID)

	limited, err := repo.ListByParticipant(ctx, 100, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

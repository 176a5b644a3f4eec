package repository

import (
	"context"
	"testing"

	"rafflestars/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no active settings initially", func(t *testing.T) {
		settings, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings)
	})

	first, err := repo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, 3, first.RequiredParticipants)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	t.Run("new settings supersede the previous set", func(t *testing.T) {
		second, err := repo.Create(ctx, testutil.CreateTestSettingsWithQuota(10))
		require.NoError(t, err)

		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, second.ID, active.ID)
		assert.Equal(t, 10, active.RequiredParticipants)
	})

	t.Run("invalid settings rejected before any write", func(t *testing.T) {
		invalid := testutil.CreateTestSettings()
		invalid.BidAmount = 0
		_, err := repo.Create(ctx, invalid)
		assert.Error(t, err)

		// The previous active set survives the failed create
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, 10, active.RequiredParticipants)
	})
}

func TestSettingsRepository_History(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	for _, quota := range []int{3, 5, 10} {
		_, err := repo.Create(ctx, testutil.CreateTestSettingsWithQuota(quota))
		require.NoError(t, err)
	}

	history, err := repo.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Newest first; only the newest is still active
	assert.Equal(t, 10, history[0].RequiredParticipants)
	assert.True(t, history[0].IsActive)
	assert.False(t, history[1].IsActive)
	assert.False(t, history[2].IsActive)

	limited, err := repo.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

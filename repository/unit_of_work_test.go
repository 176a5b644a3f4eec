package repository

import (
	"context"
	"sync"
	"testing"

	"rafflestars/domain/events"
	"rafflestars/domain/services"
	"rafflestars/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher records every event flushed to it
type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) captured() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	downstream := &capturingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, downstream)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	raffle, err := uow.RaffleRepository().Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	require.NoError(t, uow.EventBus().Publish(events.RaffleCreatedEvent{
		RaffleID:             raffle.ID,
		RequiredParticipants: raffle.RequiredParticipants,
		BidAmount:            raffle.BidAmount,
	}))

	// Nothing reaches the downstream before commit
	assert.Empty(t, downstream.captured())

	require.NoError(t, uow.Commit())

	captured := downstream.captured()
	require.Len(t, captured, 1)
	assert.Equal(t, events.EventTypeRaffleCreated, captured[0].Type())

	// The write is visible outside the transaction
	active, err := NewRaffleRepository(testDB.DB).GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, raffle.ID, active.ID)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	downstream := &capturingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, downstream)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	raffle, err := uow.RaffleRepository().Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	require.NoError(t, uow.EventBus().Publish(events.RaffleCreatedEvent{RaffleID: raffle.ID}))
	require.NoError(t, uow.Rollback())

	assert.Empty(t, downstream.captured())

	active, err := NewRaffleRepository(testDB.DB).GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	t.Run("rollback without begin is a no-op", func(t *testing.T) {
		assert.NoError(t, factory.Create().Rollback())
	})
}

func TestUnitOfWork_RepositoriesShareTransaction(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, nil)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	// The uncommitted raffle is visible to the sibling repository but not
	// outside the transaction
	_, err = uow.EntryRepository().Create(ctx, testutil.CreateTestEntry(raffle.ID, 100, 1))
	require.NoError(t, err)

	outside, err := NewRaffleRepository(testDB.DB).GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, outside)
}

// Concurrent admissions against one raffle must fill it exactly to quota
// with gapless positions and no duplicate participants.
func TestUnitOfWork_ConcurrentAdmissions(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, nil)
	ctx := context.Background()

	const quota = 5
	const contenders = 12

	raffle, err := NewRaffleRepository(testDB.DB).Create(ctx, testutil.CreateTestSettingsWithQuota(quota))
	require.NoError(t, err)

	admit := func(participantID int64) error {
		uow := factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback()

		locked, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffle.ID)
		if err != nil {
			return err
		}
		if locked.IsFull() {
			return services.ErrRaffleFull
		}

		updated, err := uow.RaffleRepository().AdmitIncrement(ctx, raffle.ID, locked.BidAmount)
		if err != nil {
			return err
		}

		entry := testutil.CreateTestEntry(raffle.ID, participantID, updated.CurrentParticipants)
		if _, err := uow.EntryRepository().Create(ctx, entry); err != nil {
			return err
		}

		return uow.Commit()
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = admit(int64(1000 + i))
		}(i)
	}
	wg.Wait()

	var admitted, rejected int
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		require.ErrorIs(t, err, services.ErrRaffleFull)
		rejected++
	}
	assert.Equal(t, quota, admitted)
	assert.Equal(t, contenders-quota, rejected)

	final, err := NewRaffleRepository(testDB.DB).GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, quota, final.CurrentParticipants)
	assert.Equal(t, int64(quota), final.TotalPrizePool)

	entries, err := NewEntryRepository(testDB.DB).ListConfirmedByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, entries, quota)

	seenParticipants := make(map[int64]bool)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
		assert.False(t, seenParticipants[entry.ParticipantID])
		seenParticipants[entry.ParticipantID] = true
	}
}

package repository

import (
	"context"
	"testing"

	"rafflestars/domain/entities"
	"rafflestars/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRecordRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewPaymentRecordRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	record := testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindPrize, 2)
	created, err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, entities.PaymentKindPrize, created.Kind)
	assert.Equal(t, entities.PaymentStatusPending, created.Status)
	require.NotNil(t, created.RaffleID)
	assert.Equal(t, raffle.ID, *created.RaffleID)
	assert.Empty(t, created.ExternalRef)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestPaymentRecordRepository_ListByRaffle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewPaymentRecordRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	bid := testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindBid, 1)
	bid.Status = entities.PaymentStatusCompleted
	bid.ExternalRef = "capture-100"
	_, err = repo.Create(ctx, bid)
	require.NoError(t, err)

	_, err = repo.Create(ctx, testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindPrize, 2))
	require.NoError(t, err)

	records, err := repo.ListByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first
	assert.Equal(t, entities.PaymentKindBid, records[0].Kind)
	assert.Equal(t, entities.PaymentKindPrize, records[1].Kind)
}

func TestPaymentRecordRepository_UpdateDelivery(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewPaymentRecordRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	created, err := repo.Create(ctx, testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindPrize, 2))
	require.NoError(t, err)

	err = repo.UpdateDelivery(ctx, created.ID, entities.PaymentStatusCompleted, "prize-receipt-1")
	require.NoError(t, err)

	records, err := repo.ListByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entities.PaymentStatusCompleted, records[0].Status)
	assert.Equal(t, "prize-receipt-1", records[0].ExternalRef)

	t.Run("unknown record", func(t *testing.T) {
		err := repo.UpdateDelivery(ctx, 99999, entities.PaymentStatusCompleted, "x")
		assert.Error(t, err)
	})
}

func TestPaymentRecordRepository_ListUndelivered(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	raffleRepo := NewRaffleRepository(testDB.DB)
	repo := NewPaymentRecordRepository(testDB.DB)
	ctx := context.Background()

	raffle, err := raffleRepo.Create(ctx, testutil.CreateTestSettings())
	require.NoError(t, err)

	// Completed bid captures never show up as undelivered
	bid := testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindBid, 1)
	bid.Status = entities.PaymentStatusCompleted
	_, err = repo.Create(ctx, bid)
	require.NoError(t, err)

	prize, err := repo.Create(ctx, testutil.CreateTestPaymentRecord(100, raffle.ID, entities.PaymentKindPrize, 2))
	require.NoError(t, err)
	refund, err := repo.Create(ctx, testutil.CreateTestPaymentRecord(200, raffle.ID, entities.PaymentKindRefund, 1))
	require.NoError(t, err)

	undelivered, err := repo.ListUndelivered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, undelivered, 2)
	assert.Equal(t, prize.ID, undelivered[0].ID)
	assert.Equal(t, refund.ID, undelivered[1].ID)

	t.Run("delivered records drop out", func(t *testing.T) {
		err := repo.UpdateDelivery(ctx, prize.ID, entities.PaymentStatusCompleted, "prize-receipt-1")
		require.NoError(t, err)

		undelivered, err := repo.ListUndelivered(ctx, 10)
		require.NoError(t, err)
		require.Len(t, undelivered, 1)
		assert.Equal(t, refund.ID, undelivered[0].ID)
	})
}

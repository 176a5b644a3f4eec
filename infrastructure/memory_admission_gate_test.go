package infrastructure

import (
	"context"
	"testing"
	"time"

	"rafflestars/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdmissionGate_ThrottlesAfterBurst(t *testing.T) {
	gate := NewMemoryAdmissionGate(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Allow(ctx, 100))
	}

	assert.ErrorIs(t, gate.Allow(ctx, 100), services.ErrRateLimited)
	assert.ErrorIs(t, gate.Allow(ctx, 100), services.ErrRateLimited)
}

func TestMemoryAdmissionGate_ParticipantsIndependent(t *testing.T) {
	gate := NewMemoryAdmissionGate(1, time.Minute)
	ctx := context.Background()

	require.NoError(t, gate.Allow(ctx, 100))
	assert.ErrorIs(t, gate.Allow(ctx, 100), services.ErrRateLimited)

	// A different participant has their own bucket
	assert.NoError(t, gate.Allow(ctx, 200))
}

func TestMemoryAdmissionGate_RefillsOverTime(t *testing.T) {
	// 100 attempts per second leaks fast enough to observe a refill
	gate := NewMemoryAdmissionGate(100, time.Second)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, gate.Allow(ctx, 100))
	}
	require.ErrorIs(t, gate.Allow(ctx, 100), services.ErrRateLimited)

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, gate.Allow(ctx, 100))
}

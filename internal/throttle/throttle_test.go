// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_ZeroNeverBlocks(t *testing.T) {
	g := NewInterval(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestInterval_SpacesCalls(t *testing.T) {
	const d = 50 * time.Millisecond
	g := NewInterval(d)

	start := time.Now()
	require.NoError(t, g.Wait(context.Background()))
	assert.Less(t, time.Since(start), d, "first wait should not block")

	require.NoError(t, g.Wait(context.Background()))
	require.NoError(t, g.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 2*d-5*time.Millisecond)
}

func TestInterval_Cancelled(t *testing.T) {
	g := NewInterval(time.Hour)
	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

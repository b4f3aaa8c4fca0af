package jitter

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := Duration(time.Second, 0.5)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}

	assert.Equal(t, time.Second, Duration(time.Second, 0))
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 8 * time.Second}

	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
	assert.Equal(t, 8*time.Second, b.Delay(50))
}

func TestBackoff_DeterministicWithRand(t *testing.T) {
	a := NewBackoff(time.Second, time.Minute).WithRand(rand.New(rand.NewSource(42)))
	b := NewBackoff(time.Second, time.Minute).WithRand(rand.New(rand.NewSource(42)))

	for attempt := 0; attempt < 5; attempt++ {
		assert.Equal(t, a.Delay(attempt), b.Delay(attempt))
	}
}

func TestBackoff_WaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBackoff(time.Hour, time.Hour).Wait(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_WaitElapses(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Max: time.Millisecond}
	require.NoError(t, b.Wait(context.Background(), 3))
}

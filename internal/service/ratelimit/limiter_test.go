package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k", 3, 1), "token %d", i)
	}
	assert.False(t, l.Allow("k", 3, 1), "bucket drained")
}

func TestAllowIndependentKeys(t *testing.T) {
	l := New()
	assert.True(t, l.Allow("a", 1, 1))
	assert.False(t, l.Allow("a", 1, 1))
	assert.True(t, l.Allow("b", 1, 1))
}

func TestAllowRefills(t *testing.T) {
	l := New()
	require.True(t, l.Allow("k", 1, 100))
	require.False(t, l.Allow("k", 1, 100))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("k", 1, 100), "refilled at 100/s")
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	require.True(t, l.Allow("k", 1, 0.001))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "k", 1, 0.001)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

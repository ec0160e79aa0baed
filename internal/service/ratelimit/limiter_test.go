package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstThenRefill(t *testing.T) {
	clock := time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)
	l := New(1, 2)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	// separate bucket per key
	assert.True(t, l.Allow("b"))

	clock = clock.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestLimiterDropsIdleKeys(t *testing.T) {
	clock := time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return clock }

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	clock = clock.Add(time.Hour)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

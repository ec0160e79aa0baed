package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRngReplays(t *testing.T) {
	a := NewSeededRng("test-seed-1")
	b := NewSeededRng("test-seed-1")
	for i := 0; i < 1000; i++ {
		va, vb := a.Float64(), b.Float64()
		assert.Equal(t, va, vb)
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}
}

func TestSeededRngDiffersBySeed(t *testing.T) {
	a := NewSeededRng("alpha")
	b := NewSeededRng("beta")
	same := 0
	for i := 0; i < 100; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestRngFor(t *testing.T) {
	_, seeded := RngFor("x").(*SeededRng)
	assert.True(t, seeded)

	_, seeded = RngFor("").(*SeededRng)
	assert.False(t, seeded)

	r := RngFor("")
	for i := 0; i < 100; i++ {
		v := r.Float64()
		assert.True(t, v >= 0 && v < 1)
	}
}

package generator

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EuroLens/internal/domain/models"
)

func items(scores ...float64) []models.StatItem {
	out := make([]models.StatItem, len(scores))
	for i, s := range scores {
		out[i] = models.StatItem{Value: i + 1, Score: s}
	}
	return out
}

// constRng always returns the same value.
type constRng float64

func (c constRng) Float64() float64 { return float64(c) }

func TestPickDistinctAscending(t *testing.T) {
	p := &picker{}
	rng := NewSeededRng("pick")
	pool := items(make([]float64, 50)...)

	for i := 0; i < 200; i++ {
		got := p.pick(pool, 5, 1.5, rng)
		require.Len(t, got, 5)
		assert.True(t, sort.IntsAreSorted(got))
		seen := map[int]bool{}
		for _, v := range got {
			assert.False(t, seen[v], "duplicate %d in %v", v, got)
			seen[v] = true
			assert.True(t, v >= 1 && v <= 50)
		}
	}
}

func TestPickFavoursHighScores(t *testing.T) {
	p := &picker{}
	rng := NewSeededRng("bias")
	pool := items(0.9, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	hits := 0
	for i := 0; i < 500; i++ {
		got := p.pick(pool, 1, 2.0, rng)
		if got[0] == 1 {
			hits++
		}
	}
	assert.Greater(t, hits, 490)
}

func TestPickDriftFallsBackToUniform(t *testing.T) {
	p := &picker{}
	// a target equal to the total never drops below zero during the scan
	got := p.pick(items(0.1, 0.1, 0.1), 3, 1.0, constRng(1.0))
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestPickShortPool(t *testing.T) {
	p := &picker{}
	got := p.pick(items(0.5, 0.5), 5, 1.0, NewSeededRng("short"))
	assert.Equal(t, []int{1, 2}, got)
}

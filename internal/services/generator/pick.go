package generator

import (
	"math"
	"sort"

	"EuroLens/internal/domain/models"
)

const scoreEpsilon = 1e-6

// picker draws weighted samples without replacement. Its buffers are reused
// across attempts so the hot loop does not allocate per candidate.
type picker struct {
	values  []int
	weights []float64
}

// pick selects k distinct values from items with probability proportional
// to (score+1e-6)^alpha and returns them ascending.
func (p *picker) pick(items []models.StatItem, k int, alpha float64, rng Rng) []int {
	p.values = p.values[:0]
	p.weights = p.weights[:0]
	total := 0.0
	for _, it := range items {
		w := math.Pow(it.Score+scoreEpsilon, alpha)
		p.values = append(p.values, it.Value)
		p.weights = append(p.weights, w)
		total += w
	}

	live := len(p.values)
	out := make([]int, 0, k)
	for len(out) < k && live > 0 {
		idx := -1
		if total > 0 && !math.IsInf(total, 0) && !math.IsNaN(total) {
			target := rng.Float64() * total
			for i := 0; i < live; i++ {
				target -= p.weights[i]
				if target < 0 {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			// accumulated drift left target above zero
			idx = int(rng.Float64() * float64(live))
			if idx >= live {
				idx = live - 1
			}
		}

		out = append(out, p.values[idx])
		total -= p.weights[idx]
		live--
		p.values[idx], p.values[live] = p.values[live], p.values[idx]
		p.weights[idx], p.weights[live] = p.weights[live], p.weights[idx]
	}

	sort.Ints(out)
	return out
}

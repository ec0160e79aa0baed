package stats

import (
	"math"

	"EuroLens/internal/domain/models"
)

// NormalizeConfig fills defaults, clamps the recent window to [10,200] and
// rescales the weights so they sum to 1.
func NormalizeConfig(p models.StatsParams) models.StatsConfig {
	window := models.DefaultRecentWindow
	if p.RecentWindowSize != nil {
		window = clampInt(*p.RecentWindowSize, models.MinRecentWindow, models.MaxRecentWindow)
	}

	wp, wr := models.DefaultWeightPeriod, models.DefaultWeightRecent
	if p.WeightPeriod != nil {
		wp = nonNegative(*p.WeightPeriod)
	}
	if p.WeightRecent != nil {
		wr = nonNegative(*p.WeightRecent)
	}
	sum := wp + wr
	if sum <= 0 || math.IsInf(sum, 0) {
		wp, wr = models.DefaultWeightPeriod, models.DefaultWeightRecent
	} else {
		wp, wr = wp/sum, wr/sum
	}

	return models.StatsConfig{
		Period:           models.NormalizePeriod(p.Period),
		RecentWindowSize: window,
		WeightPeriod:     wp,
		WeightRecent:     wr,
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

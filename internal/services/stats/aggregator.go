package stats

import (
	"sort"
	"time"

	"EuroLens/internal/domain/models"
	"EuroLens/pkg/util"
)

// Aggregator computes frequency statistics over a draw history.
// It is stateless and safe for concurrent use.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

func (a *Aggregator) Build(draws []models.Draw, params models.StatsParams, now time.Time) models.StatsResult {
	return BuildStats(draws, params, now)
}

// BuildStats filters draws to the configured period and scores every number
// and star. draws must be ordered by descending date.
func BuildStats(draws []models.Draw, params models.StatsParams, now time.Time) models.StatsResult {
	cfg := NormalizeConfig(params)

	filtered := filterPeriod(draws, cfg.Period.Cutoff(now))
	widened := false
	if len(filtered) == 0 && len(draws) > 0 {
		// every draw is older than the cutoff (a clock running ahead or a
		// stale history); future-dated draws are kept by filterPeriod
		// and never cause this
		filtered = draws
		widened = true
	}

	res := models.StatsResult{
		Config:        cfg,
		DrawCount:     len(filtered),
		TotalDraws:    len(draws),
		PeriodWidened: widened,
	}

	if len(filtered) > 0 {
		last := filtered[0].Date
		res.LastDrawDate = &last
		res.TimeGapDays = util.DaysBetween(last, now)
	}
	res.Warning = warningFor(len(filtered), res.TimeGapDays)

	for _, d := range filtered {
		if !d.IsCanonical() {
			res.MalformedDraws++
		}
	}

	recent := cfg.RecentWindowSize
	if recent > len(filtered) {
		recent = len(filtered)
	}

	res.AllNumberStats = scoreDomain(filtered, recent, models.MaxNumber, cfg, numbersOf)
	res.AllStarStats = scoreDomain(filtered, recent, models.MaxStar, cfg, starsOf)
	res.RankedNumbers = valuesOf(res.AllNumberStats)
	res.RankedStars = valuesOf(res.AllStarStats)
	res.TopNumbers = top(res.AllNumberStats, models.TopListSize)
	res.TopStars = top(res.AllStarStats, models.TopListSize)
	return res
}

func filterPeriod(draws []models.Draw, cutoff time.Time) []models.Draw {
	if cutoff.IsZero() {
		return draws
	}
	out := make([]models.Draw, 0, len(draws))
	for _, d := range draws {
		if !d.Date.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

func warningFor(count, gapDays int) models.Warning {
	switch {
	case count < models.LowSampleThreshold:
		return models.WarningLowSampleSize
	case gapDays > models.StaleAfterDays:
		return models.WarningDataStale
	default:
		return models.WarningNone
	}
}

func numbersOf(d models.Draw) []int { return d.Numbers }
func starsOf(d models.Draw) []int   { return d.Stars }

// scoreDomain builds one ranked StatItem per value in [1,maxValue].
func scoreDomain(draws []models.Draw, recent, maxValue int, cfg models.StatsConfig, pick func(models.Draw) []int) []models.StatItem {
	n := len(draws)
	countPeriod := make([]int, maxValue+1)
	countRecent := make([]int, maxValue+1)
	lastSeen := make([]int, maxValue+1)
	for v := range lastSeen {
		lastSeen[v] = n
	}

	seen := make([]bool, maxValue+1)
	for i, d := range draws {
		clear(seen)
		for _, v := range pick(d) {
			if v < 1 || v > maxValue || seen[v] {
				continue
			}
			seen[v] = true
			countPeriod[v]++
			if i < recent {
				countRecent[v]++
			}
			if lastSeen[v] == n {
				lastSeen[v] = i
			}
		}
	}

	items := make([]models.StatItem, 0, maxValue)
	for v := 1; v <= maxValue; v++ {
		item := models.StatItem{Value: v, LastSeenDrawsAgo: lastSeen[v]}
		if n > 0 {
			item.FreqPeriod = float64(countPeriod[v]) / float64(n)
		}
		if recent > 0 {
			item.FreqRecent = float64(countRecent[v]) / float64(recent)
		}
		item.Score = item.FreqPeriod*cfg.WeightPeriod + item.FreqRecent*cfg.WeightRecent
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool { return ranksBefore(items[i], items[j]) })
	return items
}

// ranksBefore orders by score desc, then recent frequency desc, then value asc.
func ranksBefore(a, b models.StatItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.FreqRecent != b.FreqRecent {
		return a.FreqRecent > b.FreqRecent
	}
	return a.Value < b.Value
}

func valuesOf(items []models.StatItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func top(items []models.StatItem, k int) []models.StatItem {
	if k > len(items) {
		k = len(items)
	}
	out := make([]models.StatItem, k)
	copy(out, items[:k])
	return out
}

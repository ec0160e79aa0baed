package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EuroLens/internal/domain/models"
)

var now = time.Date(2024, 10, 20, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// history builds n canonical draws, one every 3 days backwards from start.
func history(n int, start time.Time) []models.Draw {
	out := make([]models.Draw, n)
	for i := range out {
		base := i % 45
		out[i] = models.Draw{
			Date:    start.AddDate(0, 0, -3*i),
			Numbers: []int{base + 1, base + 2, base + 3, base + 4, base + 6},
			Stars:   []int{i%11 + 1, i%11 + 2},
		}
	}
	return out
}

func TestBuildStatsThreeDrawExample(t *testing.T) {
	draws := []models.Draw{
		{Date: day(2024, 10, 18), Numbers: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}},
		{Date: day(2024, 10, 15), Numbers: []int{1, 6, 7, 8, 9}, Stars: []int{1, 3}},
		{Date: day(2024, 10, 11), Numbers: []int{10, 11, 12, 13, 14}, Stars: []int{4, 5}},
	}

	res := BuildStats(draws, models.StatsParams{Period: "all", RecentWindowSize: intPtr(10)}, now)

	require.Len(t, res.AllNumberStats, 50)
	require.Len(t, res.AllStarStats, 12)
	assert.Equal(t, models.WarningLowSampleSize, res.Warning)
	assert.Equal(t, 3, res.DrawCount)
	assert.Equal(t, 10, res.Config.RecentWindowSize)

	first := res.AllNumberStats[0]
	assert.Equal(t, 1, first.Value)
	assert.InDelta(t, 2.0/3.0, first.FreqPeriod, 1e-9)
	assert.InDelta(t, 2.0/3.0, first.FreqRecent, 1e-9)
	assert.InDelta(t, 2.0/3.0, first.Score, 1e-9)
	assert.Equal(t, 0, first.LastSeenDrawsAgo)

	assert.Equal(t, 1, res.RankedStars[0])
	assert.Len(t, res.TopNumbers, 10)
	assert.Len(t, res.TopStars, 10)
}

func TestBuildStatsCoverageWithNoDraws(t *testing.T) {
	res := BuildStats(nil, models.StatsParams{}, now)

	require.Len(t, res.AllNumberStats, 50)
	require.Len(t, res.AllStarStats, 12)
	assert.Equal(t, models.WarningLowSampleSize, res.Warning)
	assert.Equal(t, 0, res.TimeGapDays)
	assert.Nil(t, res.LastDrawDate)
	for _, it := range res.AllNumberStats {
		assert.Zero(t, it.Score)
		assert.Equal(t, 0, it.LastSeenDrawsAgo)
	}
	// all ties resolve by ascending value
	assert.Equal(t, 1, res.RankedNumbers[0])
	assert.Equal(t, 50, res.RankedNumbers[49])
}

func TestBuildStatsScoreBoundsAndRanking(t *testing.T) {
	res := BuildStats(history(120, day(2024, 10, 18)), models.StatsParams{Period: "all"}, now)

	for _, table := range [][]models.StatItem{res.AllNumberStats, res.AllStarStats} {
		for i, it := range table {
			assert.GreaterOrEqual(t, it.Score, 0.0)
			assert.LessOrEqual(t, it.Score, 1.0)
			if i == 0 {
				continue
			}
			prev := table[i-1]
			assert.False(t, ranksBefore(it, prev), "item %d ranks before item %d", it.Value, prev.Value)
		}
	}
	assert.Equal(t, models.WarningNone, res.Warning)
}

func TestBuildStatsLastSeen(t *testing.T) {
	draws := []models.Draw{
		{Date: day(2024, 10, 18), Numbers: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}},
		{Date: day(2024, 10, 15), Numbers: []int{6, 7, 8, 9, 10}, Stars: []int{3, 4}},
	}
	res := BuildStats(draws, models.StatsParams{Period: "all"}, now)

	byValue := map[int]models.StatItem{}
	for _, it := range res.AllNumberStats {
		byValue[it.Value] = it
	}
	assert.Equal(t, 0, byValue[3].LastSeenDrawsAgo)
	assert.Equal(t, 1, byValue[7].LastSeenDrawsAgo)
	assert.Equal(t, 2, byValue[42].LastSeenDrawsAgo)
}

func TestBuildStatsPeriodFilter(t *testing.T) {
	draws := history(200, day(2024, 10, 18)) // roughly 600 days of history

	sixMonths := BuildStats(draws, models.StatsParams{Period: "6m"}, now)
	oneYear := BuildStats(draws, models.StatsParams{Period: "1y"}, now)
	all := BuildStats(draws, models.StatsParams{Period: "all"}, now)

	assert.Less(t, sixMonths.DrawCount, oneYear.DrawCount)
	assert.Less(t, oneYear.DrawCount, all.DrawCount)
	assert.Equal(t, 200, all.DrawCount)
	assert.Equal(t, 200, sixMonths.TotalDraws)
	assert.False(t, sixMonths.PeriodWidened)
}

func TestBuildStatsClockSkewFallsBackToFullSet(t *testing.T) {
	draws := history(30, day(2019, 1, 1))

	res := BuildStats(draws, models.StatsParams{Period: "6m"}, now)

	assert.True(t, res.PeriodWidened)
	assert.Equal(t, 30, res.DrawCount)
	assert.Equal(t, models.WarningDataStale, res.Warning)
}

func TestBuildStatsKeepsFutureDatedDraws(t *testing.T) {
	draws := history(30, now.AddDate(0, 0, 10))

	res := BuildStats(draws, models.StatsParams{Period: "6m"}, now)

	assert.False(t, res.PeriodWidened)
	assert.Equal(t, 30, res.DrawCount)
}

func TestBuildStatsStaleData(t *testing.T) {
	draws := history(40, now.AddDate(0, 0, -45))

	res := BuildStats(draws, models.StatsParams{Period: "all"}, now)

	assert.Equal(t, models.WarningDataStale, res.Warning)
	assert.Equal(t, 45, res.TimeGapDays)
}

func TestBuildStatsLowSampleTakesPrecedence(t *testing.T) {
	draws := history(5, now.AddDate(0, 0, -90))

	res := BuildStats(draws, models.StatsParams{Period: "all"}, now)

	assert.Equal(t, models.WarningLowSampleSize, res.Warning)
}

func TestBuildStatsToleratesMalformedDraws(t *testing.T) {
	draws := []models.Draw{
		{Date: day(2024, 10, 18), Numbers: []int{1, 1, 2, 99}, Stars: []int{13}},
		{Date: day(2024, 10, 15), Numbers: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}},
	}

	res := BuildStats(draws, models.StatsParams{Period: "all"}, now)

	assert.Equal(t, 1, res.MalformedDraws)
	require.Len(t, res.AllNumberStats, 50)
	// duplicate 1 counted once per draw
	assert.InDelta(t, 1.0, res.AllNumberStats[0].FreqPeriod, 1e-9)
}

func TestNormalizeConfig(t *testing.T) {
	tests := []struct {
		name   string
		params models.StatsParams
		want   models.StatsConfig
	}{
		{
			name:   "defaults",
			params: models.StatsParams{},
			want:   models.StatsConfig{Period: models.PeriodOneYear, RecentWindowSize: 50, WeightPeriod: 0.7, WeightRecent: 0.3},
		},
		{
			name:   "window clamped low",
			params: models.StatsParams{Period: "all", RecentWindowSize: intPtr(3)},
			want:   models.StatsConfig{Period: models.PeriodAllTime, RecentWindowSize: 10, WeightPeriod: 0.7, WeightRecent: 0.3},
		},
		{
			name:   "window clamped high and unknown period",
			params: models.StatsParams{Period: "5y", RecentWindowSize: intPtr(5000)},
			want:   models.StatsConfig{Period: models.PeriodOneYear, RecentWindowSize: 200, WeightPeriod: 0.7, WeightRecent: 0.3},
		},
		{
			name:   "weights rescaled",
			params: models.StatsParams{WeightPeriod: floatPtr(3), WeightRecent: floatPtr(1)},
			want:   models.StatsConfig{Period: models.PeriodOneYear, RecentWindowSize: 50, WeightPeriod: 0.75, WeightRecent: 0.25},
		},
		{
			name:   "both zero",
			params: models.StatsParams{WeightPeriod: floatPtr(0), WeightRecent: floatPtr(0)},
			want:   models.StatsConfig{Period: models.PeriodOneYear, RecentWindowSize: 50, WeightPeriod: 0.7, WeightRecent: 0.3},
		},
		{
			name:   "negative treated as zero",
			params: models.StatsParams{WeightPeriod: floatPtr(-2), WeightRecent: floatPtr(0.5)},
			want:   models.StatsConfig{Period: models.PeriodOneYear, RecentWindowSize: 50, WeightPeriod: 0, WeightRecent: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeConfig(tt.params)
			assert.Equal(t, tt.want.Period, got.Period)
			assert.Equal(t, tt.want.RecentWindowSize, got.RecentWindowSize)
			assert.InDelta(t, tt.want.WeightPeriod, got.WeightPeriod, 1e-9)
			assert.InDelta(t, tt.want.WeightRecent, got.WeightRecent, 1e-9)
		})
	}
}

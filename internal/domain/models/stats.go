package models

import "time"

// Warning is the single data-quality flag attached to a stats result.
type Warning string

const (
	WarningNone          Warning = ""
	WarningLowSampleSize Warning = "LOW_SAMPLE_SIZE"
	WarningDataStale     Warning = "DATA_STALE"
)

const (
	DefaultRecentWindow = 50
	MinRecentWindow     = 10
	MaxRecentWindow     = 200
	DefaultWeightPeriod = 0.7
	DefaultWeightRecent = 0.3
	LowSampleThreshold  = 20
	StaleAfterDays      = 30
	TopListSize         = 10
)

// StatsParams is the caller supplied, partial configuration. Nil fields
// take their defaults.
type StatsParams struct {
	Period           string
	RecentWindowSize *int
	WeightPeriod     *float64
	WeightRecent     *float64
}

// StatsConfig is the normalized configuration: window in [10,200] and
// weights that sum to 1.
type StatsConfig struct {
	Period           Period  `json:"period"`
	RecentWindowSize int     `json:"recent_window_size"`
	WeightPeriod     float64 `json:"weight_period"`
	WeightRecent     float64 `json:"weight_recent"`
}

// StatItem is the per-value frequency record for one number or star.
type StatItem struct {
	Value            int     `json:"value"`
	FreqPeriod       float64 `json:"freq_period"`
	FreqRecent       float64 `json:"freq_recent"`
	LastSeenDrawsAgo int     `json:"last_seen_draws_ago"`
	Score            float64 `json:"score"`
}

type StatsResult struct {
	Config         StatsConfig `json:"config"`
	DrawCount      int         `json:"draw_count"`
	TotalDraws     int         `json:"total_draws"`
	PeriodWidened  bool        `json:"period_widened"`
	LastDrawDate   *time.Time  `json:"last_draw_date,omitempty"`
	TimeGapDays    int         `json:"time_gap_days"`
	Warning        Warning     `json:"warning,omitempty"`
	MalformedDraws int         `json:"malformed_draws"`

	RankedNumbers  []int      `json:"ranked_numbers"`
	RankedStars    []int      `json:"ranked_stars"`
	TopNumbers     []StatItem `json:"top_numbers"`
	TopStars       []StatItem `json:"top_stars"`
	AllNumberStats []StatItem `json:"all_number_stats"`
	AllStarStats   []StatItem `json:"all_star_stats"`
}

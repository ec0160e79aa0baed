package models

const (
	MinTicketCount    = 1
	MaxTicketCount    = 10
	MinRiskFactor     = 0.1
	MaxRiskFactor     = 5.0
	DefaultRiskFactor = 1.5
)

// Ticket flags and generation warnings.
const (
	FlagOptimalSum     = "optimal sum"
	FlagBalancedParity = "balanced parity"
	FlagSpreadRange    = "spread range"
	FlagFallback       = "fallback"

	WarningOptimizationTimeout = "optimization timeout"
)

// GenerateConfig is the normalized generator input.
type GenerateConfig struct {
	TicketCount int
	RiskFactor  float64
}

// GenerateParams combines what a caller asks for: the ticket batch and the
// stats configuration the scores are built from.
type GenerateParams struct {
	TicketCount int
	RiskFactor  float64
	Seed        string
	Stats       StatsParams
}

type Ticket struct {
	Numbers          []int    `json:"numbers"`
	Stars            []int    `json:"stars"`
	ChancePercentage int      `json:"chance_percentage"`
	Flags            []string `json:"flags"`
}

// IsFallback reports whether the ticket was produced without validation.
func (t Ticket) IsFallback() bool {
	for _, f := range t.Flags {
		if f == FlagFallback {
			return true
		}
	}
	return false
}

type GenerateResult struct {
	Tickets  []Ticket `json:"tickets"`
	Warnings []string `json:"warnings"`
	Seed     string   `json:"seed,omitempty"`
}

package generator

import (
	"errors"
	"math"

	"github.com/hashicorp/go-set/v2"

	"EuroLens/internal/domain/models"
	"EuroLens/pkg/util"
)

const (
	maxAttempts    = 500
	chanceDivisor  = 6.5
	maxChance      = 99
	fallbackChance = 50
	fallbackAlpha  = 1.0
)

// ErrInsufficientCandidates is returned when the stats tables are too small
// to fill a ticket.
var ErrInsufficientCandidates = errors.New("stats tables cannot fill a ticket")

// Generator produces tickets from score tables. It holds no state between
// calls; de-duplication is scoped to a single Generate call.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

func (g *Generator) Generate(stats models.StatsResult, cfg models.GenerateConfig, seed string) (models.GenerateResult, error) {
	return GenerateTickets(stats, cfg, RngFor(seed), seed)
}

// NormalizeGenerateConfig clamps the ticket count to [1,10] and the risk
// factor to [0.1,5.0]. A zero or NaN risk factor takes the default.
func NormalizeGenerateConfig(cfg models.GenerateConfig) models.GenerateConfig {
	count := cfg.TicketCount
	if count < models.MinTicketCount {
		count = models.MinTicketCount
	}
	if count > models.MaxTicketCount {
		count = models.MaxTicketCount
	}

	risk := cfg.RiskFactor
	if risk == 0 || math.IsNaN(risk) {
		risk = models.DefaultRiskFactor
	}
	risk = math.Max(models.MinRiskFactor, math.Min(models.MaxRiskFactor, risk))

	return models.GenerateConfig{TicketCount: count, RiskFactor: risk}
}

// GenerateTickets runs the rejection loop with the given random source.
// seed is only echoed back in the result.
func GenerateTickets(stats models.StatsResult, cfg models.GenerateConfig, rng Rng, seed string) (models.GenerateResult, error) {
	if len(stats.AllNumberStats) < pickedNumbers || len(stats.AllStarStats) < pickedStars {
		return models.GenerateResult{}, ErrInsufficientCandidates
	}
	cfg = NormalizeGenerateConfig(cfg)

	numberScores := scoreIndex(stats.AllNumberStats)
	starScores := scoreIndex(stats.AllStarStats)

	res := models.GenerateResult{
		Tickets:  make([]models.Ticket, 0, cfg.TicketCount),
		Warnings: []string{},
		Seed:     seed,
	}
	seen := set.New[string](cfg.TicketCount)
	p := &picker{}

	for len(res.Tickets) < cfg.TicketCount {
		ticket, ok := attempt(p, stats, cfg.RiskFactor, rng, seen, numberScores, starScores)
		if !ok {
			ticket = fallbackTicket(p, stats, rng)
			if !containsString(res.Warnings, models.WarningOptimizationTimeout) {
				res.Warnings = append(res.Warnings, models.WarningOptimizationTimeout)
			}
		}
		seen.Insert(ticketKey(ticket))
		res.Tickets = append(res.Tickets, ticket)
	}

	return res, nil
}

func attempt(p *picker, stats models.StatsResult, alpha float64, rng Rng, seen *set.Set[string], numberScores, starScores map[int]float64) (models.Ticket, bool) {
	for i := 0; i < maxAttempts; i++ {
		nums := p.pick(stats.AllNumberStats, pickedNumbers, alpha, rng)
		stars := p.pick(stats.AllStarStats, pickedStars, alpha, rng)

		valid, flags := ValidateNumbers(nums)
		if !valid {
			continue
		}
		t := models.Ticket{Numbers: nums, Stars: stars, Flags: flags}
		if seen.Contains(ticketKey(t)) {
			continue
		}
		t.ChancePercentage = chance(nums, stars, numberScores, starScores)
		return t, true
	}
	return models.Ticket{}, false
}

func fallbackTicket(p *picker, stats models.StatsResult, rng Rng) models.Ticket {
	return models.Ticket{
		Numbers:          p.pick(stats.AllNumberStats, pickedNumbers, fallbackAlpha, rng),
		Stars:            p.pick(stats.AllStarStats, pickedStars, fallbackAlpha, rng),
		ChancePercentage: fallbackChance,
		Flags:            []string{models.FlagFallback},
	}
}

// chance is a display heuristic, not a probability.
func chance(nums, stars []int, numberScores, starScores map[int]float64) int {
	total := 0.0
	for _, n := range nums {
		total += numberScores[n]
	}
	for _, s := range stars {
		total += starScores[s]
	}
	c := int(math.Round(total / chanceDivisor * 100))
	if c < 0 {
		return 0
	}
	if c > maxChance {
		return maxChance
	}
	return c
}

func scoreIndex(items []models.StatItem) map[int]float64 {
	m := make(map[int]float64, len(items))
	for _, it := range items {
		m[it.Value] = it.Score
	}
	return m
}

func ticketKey(t models.Ticket) string {
	return util.JoinInts(t.Numbers) + "|" + util.JoinInts(t.Stars)
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

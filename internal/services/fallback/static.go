package fallback

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"EuroLens/internal/domain/models"
	"EuroLens/pkg/util"
)

// SourceName identifies draws produced by the static generator.
const SourceName = "static"

// StaticSource synthesizes a plausible draw history so a cold start without
// network access still has something to analyze. The same anchor always
// yields the same history.
type StaticSource struct {
	anchor time.Time
	years  int

	once  sync.Once
	draws []models.Draw
}

func NewStaticSource(anchor time.Time, years int) *StaticSource {
	if years <= 0 {
		years = 1
	}
	return &StaticSource{anchor: util.TruncateDay(anchor), years: years}
}

func (s *StaticSource) Name() string { return SourceName }

func (s *StaticSource) FetchDraws(ctx context.Context) ([]models.Draw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.once.Do(func() { s.draws = s.generate() })

	out := make([]models.Draw, len(s.draws))
	copy(out, s.draws)
	return out, nil
}

func (s *StaticSource) generate() []models.Draw {
	seed := xxhash.Sum64String(s.anchor.Format(util.DateLayout))
	rng := rand.New(rand.NewPCG(seed, uint64(s.years)))

	start := s.anchor.AddDate(-s.years, 0, 0)
	var draws []models.Draw
	for d := s.anchor; d.After(start); d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd != time.Tuesday && wd != time.Friday {
			continue
		}
		draws = append(draws, models.Draw{
			Date:    d,
			Numbers: sample(rng, models.MaxNumber, models.NumbersPerDraw),
			Stars:   sample(rng, models.MaxStar, models.StarsPerDraw),
		})
	}
	return draws
}

// sample returns k distinct values from [1,n], ascending.
func sample(rng *rand.Rand, n, k int) []int {
	perm := rng.Perm(n)[:k]
	out := make([]int, k)
	for i, v := range perm {
		out[i] = v + 1
	}
	sort.Ints(out)
	return out
}

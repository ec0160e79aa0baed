package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
	"EuroLens/internal/domain/service"
	"EuroLens/pkg/cache"
	applogger "EuroLens/pkg/logger"
)

const drawsCacheKey = "draws:all"

// DrawLoader resolves the draw history: cache first, then each source in
// order until one returns data. Concurrent misses share one fetch.
type DrawLoader struct {
	sources []drepo.DrawSource
	cache   cache.Service
	ttl     time.Duration
	metrics drepo.Metrics
	log     *applogger.Logger
	group   singleflight.Group
}

// NewDrawLoader builds a loader. Nil sources are skipped.
func NewDrawLoader(c cache.Service, ttl time.Duration, metrics drepo.Metrics, l *applogger.Logger, sources ...drepo.DrawSource) *DrawLoader {
	kept := make([]drepo.DrawSource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	if c == nil {
		c = cache.NewNoopCache()
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &DrawLoader{
		sources: kept,
		cache:   c,
		ttl:     ttl,
		metrics: metrics,
		log:     l.With(applogger.String("component", "draw_loader")),
	}
}

func (dl *DrawLoader) Load(ctx context.Context) ([]models.Draw, error) {
	var cached []models.Draw
	if err := dl.cache.Get(ctx, drawsCacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		dl.log.Warn("draw cache read failed", applogger.Error(err))
	}

	v, err, _ := dl.group.Do(drawsCacheKey, func() (interface{}, error) {
		return dl.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Draw), nil
}

// Invalidate drops the cached history so the next Load refetches.
func (dl *DrawLoader) Invalidate(ctx context.Context) error {
	return dl.cache.Delete(ctx, drawsCacheKey)
}

func (dl *DrawLoader) fetch(ctx context.Context) ([]models.Draw, error) {
	var errs []error
	for _, src := range dl.sources {
		start := time.Now()
		draws, err := src.FetchDraws(ctx)
		dl.metrics.RecordLatency("fetch_"+src.Name(), time.Since(start).Seconds())
		if err == nil && len(draws) == 0 {
			err = errors.New("no draws")
		}
		if err != nil {
			dl.metrics.RecordSourceFailure(src.Name())
			dl.log.Warn("draw source failed", applogger.String("source", src.Name()), applogger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		draws = sortedDesc(draws)
		if bad := countMalformed(draws); bad > 0 {
			dl.log.Warn("malformed draws in history",
				applogger.String("source", src.Name()),
				applogger.Int("malformed", bad),
				applogger.Int("total", len(draws)),
			)
		}
		if err := dl.cache.Set(ctx, drawsCacheKey, draws, dl.ttl); err != nil {
			dl.log.Warn("draw cache write failed", applogger.Error(err))
		}
		dl.metrics.RecordDrawsLoaded(src.Name(), len(draws))
		dl.log.Info("draws loaded", applogger.String("source", src.Name()), applogger.Int("count", len(draws)))
		return draws, nil
	}
	if len(errs) == 0 {
		return nil, errors.New("no draw sources configured")
	}
	return nil, fmt.Errorf("all draw sources failed: %w", errors.Join(errs...))
}

func sortedDesc(draws []models.Draw) []models.Draw {
	out := make([]models.Draw, len(draws))
	copy(out, draws)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func countMalformed(draws []models.Draw) int {
	n := 0
	for _, d := range draws {
		if !d.IsCanonical() {
			n++
		}
	}
	return n
}

var _ service.DrawLoader = (*DrawLoader)(nil)

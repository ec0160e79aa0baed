package usecase

import (
	"context"
	"fmt"
	"time"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
	"EuroLens/internal/domain/service"
	applogger "EuroLens/pkg/logger"
)

// StatsUseCase serves frequency statistics over the loaded history.
type StatsUseCase struct {
	loader  service.DrawLoader
	builder service.StatsBuilder
	metrics drepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

func NewStatsUseCase(loader service.DrawLoader, builder service.StatsBuilder, metrics drepo.Metrics, l *applogger.Logger) *StatsUseCase {
	return &StatsUseCase{
		loader:  loader,
		builder: builder,
		metrics: metrics,
		log:     l.With(applogger.String("component", "stats")),
		now:     time.Now,
	}
}

// Analyze builds stats for params against the current clock.
func (uc *StatsUseCase) Analyze(ctx context.Context, params models.StatsParams) (models.StatsResult, error) {
	draws, err := uc.loader.Load(ctx)
	if err != nil {
		uc.metrics.RecordError("stats_load")
		return models.StatsResult{}, fmt.Errorf("load draws: %w", err)
	}

	start := time.Now()
	res := uc.builder.Build(draws, params, uc.now())
	uc.metrics.RecordLatency("stats_build", time.Since(start).Seconds())
	uc.observe(res)
	return res, nil
}

// Draws returns up to limit most recent draws.
func (uc *StatsUseCase) Draws(ctx context.Context, limit int) ([]models.Draw, error) {
	draws, err := uc.loader.Load(ctx)
	if err != nil {
		uc.metrics.RecordError("draws_load")
		return nil, fmt.Errorf("load draws: %w", err)
	}
	if limit > 0 && limit < len(draws) {
		draws = draws[:limit]
	}
	return draws, nil
}

func (uc *StatsUseCase) observe(res models.StatsResult) {
	if res.Warning != models.WarningNone {
		uc.metrics.RecordWarning(string(res.Warning))
	}
	if res.PeriodWidened {
		uc.log.Warn("period filter matched nothing, using full history",
			applogger.String("period", string(res.Config.Period)),
			applogger.Int("total_draws", res.TotalDraws),
		)
	}
}

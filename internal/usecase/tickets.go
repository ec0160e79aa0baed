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

// TicketsUseCase generates tickets from freshly built stats.
type TicketsUseCase struct {
	stats     *StatsUseCase
	generator service.TicketGenerator
	metrics   drepo.Metrics
	log       *applogger.Logger
}

func NewTicketsUseCase(stats *StatsUseCase, generator service.TicketGenerator, metrics drepo.Metrics, l *applogger.Logger) *TicketsUseCase {
	return &TicketsUseCase{
		stats:     stats,
		generator: generator,
		metrics:   metrics,
		log:       l.With(applogger.String("component", "tickets")),
	}
}

func (uc *TicketsUseCase) Generate(ctx context.Context, params models.GenerateParams) (models.GenerateResult, error) {
	st, err := uc.stats.Analyze(ctx, params.Stats)
	if err != nil {
		return models.GenerateResult{}, err
	}

	start := time.Now()
	res, err := uc.generator.Generate(st, models.GenerateConfig{
		TicketCount: params.TicketCount,
		RiskFactor:  params.RiskFactor,
	}, params.Seed)
	uc.metrics.RecordLatency("generate", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordError("generate")
		return models.GenerateResult{}, fmt.Errorf("generate tickets: %w", err)
	}

	fallbacks := 0
	for _, t := range res.Tickets {
		kind := "validated"
		if t.IsFallback() {
			kind = "fallback"
			fallbacks++
		}
		uc.metrics.RecordTicket(kind)
	}
	for _, w := range res.Warnings {
		uc.metrics.RecordWarning(w)
	}
	if fallbacks > 0 {
		uc.log.Warn("fallback tickets issued",
			applogger.Int("fallbacks", fallbacks),
			applogger.Int("requested", len(res.Tickets)),
			applogger.Bool("seeded", params.Seed != ""),
			applogger.Strings("warnings", res.Warnings),
		)
	}
	return res, nil
}

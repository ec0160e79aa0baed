package service

import (
	"context"
	"time"

	"EuroLens/internal/domain/models"
)

// StatsBuilder turns a draw history into per-value frequency tables.
type StatsBuilder interface {
	Build(draws []models.Draw, params models.StatsParams, now time.Time) models.StatsResult
}

// TicketGenerator produces score-weighted tickets from a stats result.
type TicketGenerator interface {
	Generate(stats models.StatsResult, cfg models.GenerateConfig, seed string) (models.GenerateResult, error)
}

// DrawLoader resolves the draw history through cache and fallbacks.
type DrawLoader interface {
	Load(ctx context.Context) ([]models.Draw, error)
	Invalidate(ctx context.Context) error
}

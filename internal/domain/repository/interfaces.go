package repository

import (
	"context"

	"EuroLens/internal/domain/models"
)

// DrawSource returns historical draws ordered by descending date.
type DrawSource interface {
	Name() string
	FetchDraws(ctx context.Context) ([]models.Draw, error)
}

// DrawStore persists ingested draws.
type DrawStore interface {
	Init(ctx context.Context) error // ensure tables
	StoreBatch(ctx context.Context, draws []models.Draw, source string) error
	Latest(ctx context.Context, limit int) ([]models.Draw, error)
	Health(ctx context.Context) error
	Close() error
}

// DrawPublisher pushes freshly fetched draws onto the ingestion topic.
type DrawPublisher interface {
	Publish(ctx context.Context, d models.Draw) error
	PublishBatch(ctx context.Context, draws []models.Draw) error
	Close() error
}

type Metrics interface {
	RecordDrawsLoaded(source string, n int)
	RecordSourceFailure(source string)
	RecordTicket(kind string)
	RecordWarning(warning string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

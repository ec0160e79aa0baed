package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
	"EuroLens/internal/domain/service"
	"EuroLens/pkg/cache"
	applogger "EuroLens/pkg/logger"
)

// Ingestion backends.
const (
	BackendNone       = "none"
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

const (
	syncLockKey = "lock:draw_sync"
	syncLockTTL = 5 * time.Minute
	syncTimeout = 2 * time.Minute
)

// ErrSyncInProgress is returned when another replica holds the sync lock.
var ErrSyncInProgress = errors.New("draw sync already running")

// DrawSync periodically pulls the remote history and routes it to the
// ingestion backend, then drops the cached history.
type DrawSync struct {
	source  drepo.DrawSource
	pub     drepo.DrawPublisher
	store   drepo.DrawStore
	loader  service.DrawLoader
	locker  cache.Service
	backend string
	metrics drepo.Metrics
	log     *applogger.Logger
	cron    *cron.Cron
}

// NewDrawSync builds the job. pub and store may be nil when the backend does
// not need them.
func NewDrawSync(
	source drepo.DrawSource,
	pub drepo.DrawPublisher,
	store drepo.DrawStore,
	loader service.DrawLoader,
	locker cache.Service,
	backend string,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *DrawSync {
	if locker == nil {
		locker = cache.NewNoopCache()
	}
	return &DrawSync{
		source:  source,
		pub:     pub,
		store:   store,
		loader:  loader,
		locker:  locker,
		backend: backend,
		metrics: metrics,
		log:     l.With(applogger.String("component", "draw_sync")),
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the job. An empty schedule disables it.
func (s *DrawSync) Start(ctx context.Context, schedule string, runOnStart bool) error {
	if schedule == "" || s.source == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.runLogged(ctx) }); err != nil {
		return fmt.Errorf("schedule draw sync %q: %w", schedule, err)
	}
	s.cron.Start()
	s.log.Info("draw sync scheduled", applogger.String("schedule", schedule), applogger.String("backend", s.backend))
	if runOnStart {
		go s.runLogged(ctx)
	}
	return nil
}

// Stop halts the scheduler and waits for a running job.
func (s *DrawSync) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DrawSync) runLogged(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	n, err := s.Run(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		s.log.Info("draw sync skipped, lock held elsewhere")
	case err != nil:
		s.log.Error("draw sync failed", applogger.Error(err))
	default:
		s.log.Info("draw sync done", applogger.Int("draws", n))
	}
}

// Run performs one sync and returns the number of draws routed.
func (s *DrawSync) Run(ctx context.Context) (int, error) {
	ok, err := s.locker.TryLock(ctx, syncLockKey, syncLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return 0, ErrSyncInProgress
	}
	defer func() { _ = s.locker.Unlock(context.WithoutCancel(ctx), syncLockKey) }()

	start := time.Now()
	draws, err := s.source.FetchDraws(ctx)
	if err != nil {
		s.metrics.RecordSourceFailure(s.source.Name())
		return 0, fmt.Errorf("fetch draws: %w", err)
	}
	draws = canonicalOnly(draws)

	if err := s.route(ctx, draws); err != nil {
		s.metrics.RecordError("sync_" + s.backend)
		return 0, err
	}
	s.metrics.RecordLatency("draw_sync", time.Since(start).Seconds())

	if err := s.loader.Invalidate(ctx); err != nil {
		s.log.Warn("invalidate draw cache", applogger.Error(err))
	}
	return len(draws), nil
}

func (s *DrawSync) route(ctx context.Context, draws []models.Draw) error {
	switch s.backend {
	case BackendKafka:
		if s.pub == nil {
			return errors.New("kafka backend without publisher")
		}
		if err := s.pub.PublishBatch(ctx, draws); err != nil {
			return fmt.Errorf("publish draws: %w", err)
		}
	case BackendClickHouse:
		if s.store == nil {
			return errors.New("clickhouse backend without store")
		}
		if err := s.store.StoreBatch(ctx, draws, s.source.Name()); err != nil {
			return fmt.Errorf("store draws: %w", err)
		}
	case BackendNone, "":
	default:
		return fmt.Errorf("unknown backend: %s", s.backend)
	}
	return nil
}

func canonicalOnly(draws []models.Draw) []models.Draw {
	out := make([]models.Draw, 0, len(draws))
	for _, d := range draws {
		if d.IsCanonical() {
			out = append(out, d)
		}
	}
	return out
}

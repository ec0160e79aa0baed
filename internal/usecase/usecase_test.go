package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EuroLens/internal/domain/models"
	"EuroLens/internal/services/fallback"
	"EuroLens/internal/services/generator"
	"EuroLens/internal/services/stats"
	"EuroLens/pkg/cache"
	pkgkafka "EuroLens/pkg/kafka"
	applogger "EuroLens/pkg/logger"
)

func newStats(t *testing.T, m *recordingMetrics, sources ...*fakeSource) *StatsUseCase {
	t.Helper()
	loader := NewDrawLoader(cache.NewNoopCache(), time.Hour, m, applogger.Nop(), toSources(sources)...)
	uc := NewStatsUseCase(loader, stats.NewAggregator(), m, applogger.Nop())
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestStatsUseCaseAnalyzeFlagsLowSample(t *testing.T) {
	m := newRecordingMetrics()
	uc := newStats(t, m, &fakeSource{name: "remote", draws: sampleDraws()})

	res, err := uc.Analyze(context.Background(), models.StatsParams{Period: "1y"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.DrawCount)
	assert.Equal(t, 1, res.MalformedDraws)
	assert.Equal(t, models.WarningLowSampleSize, res.Warning)
	assert.Equal(t, 1, m.warnings[string(models.WarningLowSampleSize)])
}

func TestStatsUseCaseAnalyzeLoadError(t *testing.T) {
	m := newRecordingMetrics()
	uc := newStats(t, m, &fakeSource{name: "remote", err: errors.New("down")})

	_, err := uc.Analyze(context.Background(), models.StatsParams{})
	require.Error(t, err)
	assert.Equal(t, 1, m.errors["stats_load"])
}

func TestStatsUseCaseDrawsLimit(t *testing.T) {
	uc := newStats(t, newRecordingMetrics(), &fakeSource{name: "remote", draws: sampleDraws()})

	draws, err := uc.Draws(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, day("2024-10-18"), draws[0].Date)

	all, err := uc.Draws(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTicketsUseCaseGenerateSeeded(t *testing.T) {
	m := newRecordingMetrics()
	history, err := fallback.NewStaticSource(testNow, 2).FetchDraws(context.Background())
	require.NoError(t, err)
	st := newStats(t, m, &fakeSource{name: "static", draws: history})
	uc := NewTicketsUseCase(st, generator.NewGenerator(), m, applogger.Nop())

	params := models.GenerateParams{TicketCount: 4, RiskFactor: 1.5, Seed: "abc", Stats: models.StatsParams{Period: "all"}}
	a, err := uc.Generate(context.Background(), params)
	require.NoError(t, err)
	b, err := uc.Generate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a.Tickets, 4)
	assert.Equal(t, 8, m.tickets["validated"]+m.tickets["fallback"])
}

func TestTicketsUseCaseInsufficientCandidates(t *testing.T) {
	m := newRecordingMetrics()
	st := newStats(t, m, &fakeSource{name: "remote", draws: sampleDraws()})
	uc := NewTicketsUseCase(st, stubGenerator{err: generator.ErrInsufficientCandidates}, m, applogger.Nop())

	_, err := uc.Generate(context.Background(), models.GenerateParams{TicketCount: 1})
	require.ErrorIs(t, err, generator.ErrInsufficientCandidates)
	assert.Equal(t, 1, m.errors["generate"])
}

func TestTicketsUseCaseRecordsFallbacks(t *testing.T) {
	m := newRecordingMetrics()
	st := newStats(t, m, &fakeSource{name: "remote", draws: sampleDraws()})
	uc := NewTicketsUseCase(st, stubGenerator{res: models.GenerateResult{
		Tickets: []models.Ticket{
			{Numbers: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}, Flags: []string{models.FlagFallback}},
			{Numbers: []int{6, 17, 28, 39, 44}, Stars: []int{3, 4}, Flags: []string{models.FlagOptimalSum}},
		},
		Warnings: []string{models.WarningOptimizationTimeout},
	}}, m, applogger.Nop())

	_, err := uc.Generate(context.Background(), models.GenerateParams{TicketCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, m.tickets["fallback"])
	assert.Equal(t, 1, m.tickets["validated"])
	assert.Equal(t, 1, m.warnings[models.WarningOptimizationTimeout])
}

type stubGenerator struct {
	res models.GenerateResult
	err error
}

func (g stubGenerator) Generate(models.StatsResult, models.GenerateConfig, string) (models.GenerateResult, error) {
	return g.res, g.err
}

func TestDrawSyncRoutesToBackends(t *testing.T) {
	cases := []struct {
		backend   string
		published int
		stored    int
	}{
		{BackendKafka, 2, 0},
		{BackendClickHouse, 0, 2},
		{BackendNone, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			pub := &fakePublisher{}
			store := &fakeStore{}
			loader := &fakeLoader{}
			s := NewDrawSync(&fakeSource{name: "remote", draws: sampleDraws()}, pub, store, loader,
				cache.NewMemoryCache(), tc.backend, newRecordingMetrics(), applogger.Nop())

			n, err := s.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Len(t, pub.published, tc.published)
			assert.Len(t, store.stored, tc.stored)
			assert.Equal(t, 1, loader.invalidated)
			if tc.stored > 0 {
				assert.Equal(t, "remote", store.source)
			}
		})
	}
}

func TestDrawSyncHonoursLock(t *testing.T) {
	locker := cache.NewMemoryCache()
	ok, err := locker.TryLock(context.Background(), syncLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	loader := &fakeLoader{}
	s := NewDrawSync(&fakeSource{name: "remote", draws: sampleDraws()}, nil, nil, loader,
		locker, BackendNone, newRecordingMetrics(), applogger.Nop())

	_, err = s.Run(context.Background())
	require.ErrorIs(t, err, ErrSyncInProgress)
	assert.Zero(t, loader.invalidated)
}

func TestDrawSyncStoreFailureKeepsCache(t *testing.T) {
	loader := &fakeLoader{}
	m := newRecordingMetrics()
	s := NewDrawSync(&fakeSource{name: "remote", draws: sampleDraws()}, nil, &fakeStore{err: errors.New("ch down")}, loader,
		nil, BackendClickHouse, m, applogger.Nop())

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, loader.invalidated)
	assert.Equal(t, 1, m.errors["sync_clickhouse"])
}

func TestDrawSyncStartRejectsBadSchedule(t *testing.T) {
	s := NewDrawSync(&fakeSource{name: "remote"}, nil, nil, &fakeLoader{}, nil, BackendNone, newRecordingMetrics(), applogger.Nop())

	require.Error(t, s.Start(context.Background(), "not a schedule", false))
	require.NoError(t, s.Start(context.Background(), "", false))
}

func TestKafkaDrawsHandler(t *testing.T) {
	store := &fakeStore{}
	loader := &fakeLoader{}
	m := newRecordingMetrics()
	h := NewKafkaDrawsHandler("draws", store, loader, m, nil)
	assert.Equal(t, "draws", h.Topic())

	payload, err := json.Marshal(sampleDraws()[0])
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), payload))
	require.Len(t, store.stored, 1)
	assert.Equal(t, "kafka", store.source)
	assert.Equal(t, 1, loader.invalidated)

	var herr *pkgkafka.HookError
	err = h.Handle(context.Background(), []byte(`{"date":"2024-10-15","numbers":[1,1,2,3,4],"stars":[1,2]}`))
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "ERR_VALIDATION", herr.Code)

	err = h.Handle(context.Background(), []byte(`not json`))
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "ERR_DECODE", herr.Code)
	assert.Len(t, store.stored, 1)
}

func TestKafkaDrawsHandlerInvalidateFailureStillCommits(t *testing.T) {
	store := &fakeStore{}
	loader := &fakeLoader{err: errors.New("redis down")}
	var logs bytes.Buffer
	h := NewKafkaDrawsHandler("draws", store, loader, newRecordingMetrics(), applogger.NewWithWriter(&logs))

	payload, err := json.Marshal(sampleDraws()[0])
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), payload))
	assert.Len(t, store.stored, 1)
	assert.Equal(t, 1, loader.invalidated)
	assert.Contains(t, logs.String(), "invalidate draw cache")
	assert.Contains(t, logs.String(), "redis down")
}

func TestKafkaDrawsHandlerStoreFailureRetries(t *testing.T) {
	store := &fakeStore{err: errors.New("clickhouse timeout")}
	loader := &fakeLoader{}
	h := NewKafkaDrawsHandler("draws", store, loader, newRecordingMetrics(), nil)

	payload, err := json.Marshal(sampleDraws()[0])
	require.NoError(t, err)

	assert.Error(t, h.Handle(context.Background(), payload))
	assert.Zero(t, loader.invalidated)
}

package usecase

import (
	"context"
	"sync"
	"time"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
)

var testNow = time.Date(2024, 10, 20, 12, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

type fakeSource struct {
	name  string
	draws []models.Draw
	err   error

	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) FetchDraws(context.Context) ([]models.Draw, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.draws, s.err
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeStore struct {
	stored []models.Draw
	source string
	err    error
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) StoreBatch(_ context.Context, draws []models.Draw, source string) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, draws...)
	s.source = source
	return nil
}

func (s *fakeStore) Latest(context.Context, int) ([]models.Draw, error) { return s.stored, nil }
func (s *fakeStore) Health(context.Context) error                       { return nil }
func (s *fakeStore) Close() error                                       { return nil }

type fakePublisher struct {
	published []models.Draw
}

func (p *fakePublisher) Publish(ctx context.Context, d models.Draw) error {
	return p.PublishBatch(ctx, []models.Draw{d})
}

func (p *fakePublisher) PublishBatch(_ context.Context, draws []models.Draw) error {
	p.published = append(p.published, draws...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeLoader struct {
	invalidated int
	err         error
}

func (l *fakeLoader) Load(context.Context) ([]models.Draw, error) { return nil, nil }

func (l *fakeLoader) Invalidate(context.Context) error {
	l.invalidated++
	return l.err
}

type recordingMetrics struct {
	mu       sync.Mutex
	loaded   map[string]int
	failures map[string]int
	tickets  map[string]int
	warnings map[string]int
	errors   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		loaded:   map[string]int{},
		failures: map[string]int{},
		tickets:  map[string]int{},
		warnings: map[string]int{},
		errors:   map[string]int{},
	}
}

func (m *recordingMetrics) RecordDrawsLoaded(source string, n int) { m.inc(m.loaded, source, n) }
func (m *recordingMetrics) RecordSourceFailure(source string)      { m.inc(m.failures, source, 1) }
func (m *recordingMetrics) RecordTicket(kind string)               { m.inc(m.tickets, kind, 1) }
func (m *recordingMetrics) RecordWarning(warning string)           { m.inc(m.warnings, warning, 1) }
func (m *recordingMetrics) RecordError(kind string)                { m.inc(m.errors, kind, 1) }
func (m *recordingMetrics) RecordLatency(string, float64)          {}

func (m *recordingMetrics) inc(into map[string]int, key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	into[key] += n
}

func sampleDraws() []models.Draw {
	return []models.Draw{
		{Date: day("2024-10-11"), Numbers: []int{3, 14, 27, 33, 48}, Stars: []int{2, 9}},
		{Date: day("2024-10-18"), Numbers: []int{5, 12, 19, 40, 44}, Stars: []int{1, 7}},
		{Date: day("2024-10-15"), Numbers: []int{1, 1, 2, 3, 4}, Stars: []int{1, 2}},
	}
}

func toSources(in []*fakeSource) []drepo.DrawSource {
	out := make([]drepo.DrawSource, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EuroLens/pkg/cache"
	applogger "EuroLens/pkg/logger"
)

func TestDrawLoaderSortsAndCaches(t *testing.T) {
	remote := &fakeSource{name: "remote", draws: sampleDraws()}
	m := newRecordingMetrics()
	dl := NewDrawLoader(cache.NewMemoryCache(), time.Hour, m, applogger.Nop(), remote)

	draws, err := dl.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, draws, 3)
	assert.Equal(t, day("2024-10-18"), draws[0].Date)
	assert.Equal(t, day("2024-10-11"), draws[2].Date)

	again, err := dl.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, draws, again)
	assert.Equal(t, 1, remote.Calls())
	assert.Equal(t, 3, m.loaded["remote"])
}

func TestDrawLoaderFallsThroughSources(t *testing.T) {
	remote := &fakeSource{name: "remote", err: errors.New("timeout")}
	store := &fakeSource{name: "store"}
	static := &fakeSource{name: "static", draws: sampleDraws()[:1]}
	m := newRecordingMetrics()
	dl := NewDrawLoader(cache.NewNoopCache(), time.Hour, m, applogger.Nop(), remote, nil, store, static)

	draws, err := dl.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, draws, 1)
	assert.Equal(t, 1, m.failures["remote"])
	assert.Equal(t, 1, m.failures["store"])
	assert.Equal(t, 1, m.loaded["static"])
}

func TestDrawLoaderAllSourcesFail(t *testing.T) {
	dl := NewDrawLoader(nil, time.Hour, newRecordingMetrics(), nil,
		&fakeSource{name: "remote", err: errors.New("down")},
	)

	_, err := dl.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote")
}

func TestDrawLoaderSharesConcurrentFetch(t *testing.T) {
	remote := &fakeSource{name: "remote", draws: sampleDraws(), delay: 50 * time.Millisecond}
	dl := NewDrawLoader(cache.NewNoopCache(), time.Hour, newRecordingMetrics(), applogger.Nop(), remote)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dl.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, remote.Calls(), 8)
}

func TestDrawLoaderInvalidate(t *testing.T) {
	remote := &fakeSource{name: "remote", draws: sampleDraws()}
	dl := NewDrawLoader(cache.NewMemoryCache(), time.Hour, newRecordingMetrics(), applogger.Nop(), remote)

	_, err := dl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, dl.Invalidate(context.Background()))
	_, err = dl.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, remote.Calls())
}

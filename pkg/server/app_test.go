package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EuroLens/pkg/config"
	xhttp "EuroLens/pkg/http"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestAppRunStopsOnContextCancel(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	srv := xhttp.NewServer(nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithMetricsPath(""),
		xhttp.WithTimeouts(time.Second, time.Second, time.Second),
	)
	app := New(cfg, nil, srv)

	var order []string
	app.AddCloser("first", closerFunc(func() error { order = append(order, "first"); return nil }))
	app.AddCloser("second", closerFunc(func() error { order = append(order, "second"); return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"second", "first"}, order)
}

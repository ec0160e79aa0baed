package drawapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "EuroLens/pkg/logger"
	"EuroLens/pkg/metrics"
)

const (
	primary = "https://draws.example.com/v1"
	staging = "https://staging.draws.example.com/v1"
)

const body = `[
  {"date":"2024-10-15","numbers":[3,14,27,33,48],"stars":[2,9]},
  {"date":"2024-10-18","numbers":[1,2,3,4,5],"stars":[1,2]}
]`

func newClient(attempts uint) *Client {
	return New(Config{
		BaseURL:    primary,
		StagingURL: staging,
		Timeout:    time.Second,
		Attempts:   attempts,
		Delay:      time.Millisecond,
	}, applogger.Nop(), metrics.Noop{})
}

func TestFetchDrawsPrimary(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Reply(200).BodyString(body)

	draws, err := newClient(1).FetchDraws(context.Background())

	require.NoError(t, err)
	require.Len(t, draws, 2)
	// sorted most recent first
	assert.Equal(t, 18, draws[0].Date.Day())
	assert.Equal(t, []int{3, 14, 27, 33, 48}, draws[1].Numbers)
	assert.True(t, gock.IsDone())
}

func TestFetchDrawsRetriesTransientErrors(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Times(2).Reply(502)
	gock.New(primary).Get("/draws").Reply(200).BodyString(body)

	draws, err := newClient(3).FetchDraws(context.Background())

	require.NoError(t, err)
	assert.Len(t, draws, 2)
	assert.True(t, gock.IsDone())
}

func TestFetchDrawsFallsBackToStaging(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Reply(404)
	gock.New(staging).Get("/draws").Reply(200).
		BodyString(`{"draws":[{"date":"2024-10-18","numbers":[1,2,3,4,5],"stars":[1,2]}]}`)

	draws, err := newClient(3).FetchDraws(context.Background())

	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, gock.IsDone())
}

func TestFetchDrawsEmptyPrimaryFallsBack(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Reply(200).BodyString(`[]`)
	gock.New(staging).Get("/draws").Reply(200).BodyString(body)

	draws, err := newClient(1).FetchDraws(context.Background())

	require.NoError(t, err)
	assert.Len(t, draws, 2)
}

func TestFetchDrawsAllEndpointsFail(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Reply(500)
	gock.New(staging).Get("/draws").Reply(200).BodyString(`not json`)

	_, err := newClient(1).FetchDraws(context.Background())

	assert.True(t, errors.Is(err, ErrNoDraws))
}

func TestFetchDrawsNotConfigured(t *testing.T) {
	c := New(Config{}, applogger.Nop(), metrics.Noop{})
	assert.False(t, c.Configured())

	_, err := c.FetchDraws(context.Background())
	assert.ErrorIs(t, err, ErrNoDraws)
}

func TestDecodeDrawsSkipsUndecodableRows(t *testing.T) {
	draws, skipped, err := decodeDraws([]byte(`[
	  {"date":"yesterday","numbers":[1,2,3,4,5],"stars":[1,2]},
	  {"date":"2024-10-18","numbers":[1,2,3,4,5],"stars":[1,2]},
	  {"date":"2024-10-15","numbers":"oops","stars":[1,2]}
	]`))

	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, draws, 1)
	assert.Equal(t, 18, draws[0].Date.Day())
}

func TestDecodeDrawsWrappedData(t *testing.T) {
	draws, skipped, err := decodeDraws([]byte(`{"data":[{"date":"2024-10-18","numbers":[1,2,3,4,5],"stars":[1,2]}]}`))

	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, draws, 1)
}

func TestDecodeDrawsRejectsBrokenEnvelope(t *testing.T) {
	_, _, err := decodeDraws([]byte(`[{"date":`))
	assert.Error(t, err)
}

func TestFetchDrawsToleratesBadRow(t *testing.T) {
	defer gock.Off()
	gock.New(primary).Get("/draws").Reply(200).BodyString(`[
	  {"date":"2024-10-18","numbers":[1,2,3,4,5],"stars":[1,2]},
	  {"date":"not-a-date","numbers":[6,7,8,9,10],"stars":[3,4]}
	]`)

	draws, err := newClient(1).FetchDraws(context.Background())

	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, gock.IsDone())
}

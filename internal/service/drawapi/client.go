package drawapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"EuroLens/internal/domain/models"
	drepo "EuroLens/internal/domain/repository"
	xhttp "EuroLens/pkg/http"
	applogger "EuroLens/pkg/logger"
)

// SourceName identifies draws served by the remote API.
const SourceName = "remote"

// The full history is a few thousand draws; anything larger is not a draw feed.
const maxHistoryBytes = 4 << 20

// ErrNoDraws is returned when no endpoint produced a non-empty history.
var ErrNoDraws = errors.New("draw api: no draws available")

type Config struct {
	BaseURL    string
	StagingURL string
	Timeout    time.Duration
	Attempts   uint
	Delay      time.Duration
}

type endpoint struct {
	name string
	url  string
}

// Client fetches the draw history from the primary API and falls back to
// the staging deployment when the primary fails or returns nothing.
type Client struct {
	endpoints []endpoint
	http      *xhttp.Client
	attempts  uint
	delay     time.Duration
	logger    *applogger.Logger
	metrics   drepo.Metrics
}

// New creates a draw API client. Empty URLs are skipped.
func New(cfg Config, l *applogger.Logger, m drepo.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}

	var eps []endpoint
	if cfg.BaseURL != "" {
		eps = append(eps, endpoint{name: "primary", url: drawsURL(cfg.BaseURL)})
	}
	if cfg.StagingURL != "" && cfg.StagingURL != cfg.BaseURL {
		eps = append(eps, endpoint{name: "staging", url: drawsURL(cfg.StagingURL)})
	}

	return &Client{
		endpoints: eps,
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithUserAgent("eurolens-drawapi/1.0"),
			xhttp.WithMaxBody(maxHistoryBytes),
		),
		attempts:  cfg.Attempts,
		delay:     cfg.Delay,
		logger:    l,
		metrics:   m,
	}
}

func (c *Client) Name() string { return SourceName }

// Configured reports whether at least one endpoint is set.
func (c *Client) Configured() bool { return len(c.endpoints) > 0 }

// FetchDraws returns the history ordered by descending date.
func (c *Client) FetchDraws(ctx context.Context) ([]models.Draw, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: no endpoint configured", ErrNoDraws)
	}

	var errs []error
	for _, ep := range c.endpoints {
		start := time.Now()
		draws, err := c.fetch(ctx, ep)
		c.metrics.RecordLatency("drawapi_"+ep.name, time.Since(start).Seconds())
		if err == nil && len(draws) == 0 {
			err = ErrNoDraws
		}
		if err != nil {
			c.metrics.RecordSourceFailure(ep.name)
			c.logger.Warn("draw api: endpoint failed",
				applogger.String("endpoint", ep.name),
				applogger.String("url", ep.url),
				applogger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", ep.name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		sort.SliceStable(draws, func(i, j int) bool { return draws[i].Date.After(draws[j].Date) })
		c.logger.Debug("draw api: fetched",
			applogger.String("endpoint", ep.name),
			applogger.Int("count", len(draws)),
		)
		return draws, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoDraws, errors.Join(errs...))
}

func (c *Client) fetch(ctx context.Context, ep endpoint) ([]models.Draw, error) {
	var body []byte
	err := retry.Do(
		func() error {
			return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
				Method: xhttp.MethodGet,
				URL:    ep.url,
			}, &body)
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(isTemporary),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("draw api: retrying",
				applogger.String("endpoint", ep.name),
				applogger.Int("attempt", int(n)+1),
				applogger.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	draws, skipped, err := decodeDraws(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.metrics.RecordError("drawapi_undecodable_row")
		c.logger.Warn("draw api: skipped undecodable rows",
			applogger.String("endpoint", ep.name),
			applogger.Int("skipped", skipped),
			applogger.Int("kept", len(draws)),
		)
	}
	return draws, nil
}

// decodeDraws accepts either a bare array or an object wrapping the array
// under "draws" or "data". Rows that do not decode (bad date, wrong types)
// are dropped and counted in skipped; range checks are left to the
// aggregator.
func decodeDraws(body []byte) (draws []models.Draw, skipped int, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, 0, nil
	}

	var rows []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, 0, fmt.Errorf("decode draws: %w", err)
		}
	} else {
		var wrapped struct {
			Draws []json.RawMessage `json:"draws"`
			Data  []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, 0, fmt.Errorf("decode draws: %w", err)
		}
		rows = wrapped.Draws
		if len(rows) == 0 {
			rows = wrapped.Data
		}
	}

	draws = make([]models.Draw, 0, len(rows))
	for _, row := range rows {
		var d models.Draw
		if err := json.Unmarshal(row, &d); err != nil {
			skipped++
			continue
		}
		draws = append(draws, d)
	}
	return draws, skipped, nil
}

func isTemporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func drawsURL(base string) string {
	return strings.TrimRight(base, "/") + "/draws"
}

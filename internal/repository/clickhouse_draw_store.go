package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EuroLens/internal/domain/models"
	"EuroLens/internal/domain/repository"
	"EuroLens/pkg/clickhouse"
	"EuroLens/pkg/util"
)

const insertChunkSize = 500

// ClickHouseDrawStore keeps ingested draws in a ReplacingMergeTree keyed by
// draw date, so re-ingesting the same draw overwrites it.
type ClickHouseDrawStore struct {
	db       *sql.DB
	database string
	table    string
	now      func() time.Time
}

// NewClickHouseDrawStore creates the store. It is also a DrawSource.
func NewClickHouseDrawStore(db *sql.DB, database string) *ClickHouseDrawStore {
	if database == "" {
		database = "eurolens"
	}
	return &ClickHouseDrawStore{
		db:       db,
		database: database,
		table:    database + ".draws",
		now:      time.Now,
	}
}

// Schema returns the DDL applied by Init.
func (s *ClickHouseDrawStore) Schema() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	date Date,
	numbers Array(UInt8),
	stars Array(UInt8),
	source LowCardinality(String),
	ingested_at DateTime
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY date`, s.table),
	}
}

func (s *ClickHouseDrawStore) Init(ctx context.Context) error {
	return clickhouse.InitSchema(ctx, s.db, s.Schema())
}

// StoreBatch inserts canonical draws in chunks. Non-canonical draws are
// skipped; array literals are rendered inline from validated integers.
func (s *ClickHouseDrawStore) StoreBatch(ctx context.Context, draws []models.Draw, source string) error {
	ingestedAt := s.now().UTC().Truncate(time.Second)
	for start := 0; start < len(draws); start += insertChunkSize {
		end := min(start+insertChunkSize, len(draws))

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, d := range draws[start:end] {
			if !d.IsCanonical() {
				continue
			}
			values = append(values, fmt.Sprintf("(?, [%s], [%s], ?, ?)", util.JoinInts(d.Numbers), util.JoinInts(d.Stars)))
			args = append(args, d.Date.UTC().Format(util.DateLayout), source, ingestedAt)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (date, numbers, stars, source, ingested_at) VALUES %s", s.table, strings.Join(values, ", "))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert draws: %w", err)
		}
	}
	return nil
}

// Latest returns up to limit draws, most recent first. limit <= 0 returns all.
func (s *ClickHouseDrawStore) Latest(ctx context.Context, limit int) ([]models.Draw, error) {
	q := fmt.Sprintf(`SELECT toString(date), arrayStringConcat(numbers, ','), arrayStringConcat(stars, ',')
FROM %s FINAL
ORDER BY date DESC`, s.table)
	args := []interface{}{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query draws: %w", err)
	}
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		var date, numbers, stars string
		if err := rows.Scan(&date, &numbers, &stars); err != nil {
			return nil, err
		}
		d, err := decodeRow(date, numbers, stars)
		if err != nil {
			return nil, err
		}
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

func (s *ClickHouseDrawStore) Name() string { return "store" }

// FetchDraws returns the full stored history.
func (s *ClickHouseDrawStore) FetchDraws(ctx context.Context) ([]models.Draw, error) {
	return s.Latest(ctx, 0)
}

func (s *ClickHouseDrawStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *ClickHouseDrawStore) Close() error {
	return nil
}

func decodeRow(date, numbers, stars string) (models.Draw, error) {
	day, ok := util.ParseDate(date)
	if !ok {
		return models.Draw{}, fmt.Errorf("invalid stored date %q", date)
	}
	nums, err := util.SplitInts(numbers)
	if err != nil {
		return models.Draw{}, fmt.Errorf("invalid stored numbers %q: %w", numbers, err)
	}
	st, err := util.SplitInts(stars)
	if err != nil {
		return models.Draw{}, fmt.Errorf("invalid stored stars %q: %w", stars, err)
	}
	return models.Draw{Date: day, Numbers: nums, Stars: st}, nil
}

var (
	_ repository.DrawStore  = (*ClickHouseDrawStore)(nil)
	_ repository.DrawSource = (*ClickHouseDrawStore)(nil)
)

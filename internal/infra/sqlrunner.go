package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor defines the contract repositories require for executing SQL.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner executes the inline queries from internal/sqlinline. Every query
// must open with a "--sql <uuid>" audit marker; the marker is stripped before
// execution and attached to log lines so slow or failing statements can be
// traced back to their constant.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger

	markers sync.Map // query text -> parsedQuery
}

type parsedQuery struct {
	marker string
	body   string
	err    error
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	pq := r.parse(query)
	if pq.err != nil {
		return pgconn.CommandTag{}, pq.err
	}
	start := time.Now()
	tag, err := r.Pool.Exec(ctx, pq.body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("marker", pq.marker).Msg("sql exec failed")
		return tag, err
	}
	r.Logger.Debug().Str("marker", pq.marker).Dur("took", time.Since(start)).Msg("sql exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	pq := r.parse(query)
	if pq.err != nil {
		return errorRow{err: pq.err}
	}
	r.Logger.Debug().Str("marker", pq.marker).Msg("sql query_row")
	return loggingRow{row: r.Pool.QueryRow(ctx, pq.body, args...), logger: r.Logger, marker: pq.marker}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	pq := r.parse(query)
	if pq.err != nil {
		return nil, pq.err
	}
	rows, err := r.Pool.Query(ctx, pq.body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("marker", pq.marker).Msg("sql query failed")
		return nil, err
	}
	r.Logger.Debug().Str("marker", pq.marker).Msg("sql query")
	return rows, nil
}

func (r *SQLRunner) parse(query string) parsedQuery {
	if cached, ok := r.markers.Load(query); ok {
		return cached.(parsedQuery)
	}
	pq := splitMarker(query)
	r.markers.Store(query, pq)
	return pq
}

func splitMarker(query string) parsedQuery {
	trimmed := strings.TrimSpace(query)
	line, rest, ok := strings.Cut(trimmed, "\n")
	if !ok {
		return parsedQuery{err: errors.New("sql marker missing")}
	}
	line = strings.TrimSpace(line)
	if !markerRegexp.MatchString(line) {
		return parsedQuery{err: errors.New("sql marker missing or invalid")}
	}
	return parsedQuery{
		marker: strings.TrimPrefix(line, "--sql "),
		body:   rest,
	}
}

type loggingRow struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
}

func (l loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		l.logger.Error().Err(err).Str("marker", l.marker).Msg("sql scan failed")
	}
	return err
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

var _ SQLExecutor = (*SQLRunner)(nil)

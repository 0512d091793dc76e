package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeSQL is a programmable infra.SQLExecutor: each call records the query
// and args and replays the next configured response.
type fakeSQL struct {
	queries []string
	args    [][]any

	rowScan  func(dest ...any) error
	rows     pgx.Rows
	rowsErr  error
	execTag  pgconn.CommandTag
	execErr  error
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return f.execTag, f.execErr
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return fakeRow{scan: f.rowScan}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return f.rows, f.rowsErr
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// fakeRows iterates a list of scan functions, one per row.
type fakeRows struct {
	scans []func(dest ...any) error
	idx   int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.scans) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.scans) {
		return pgx.ErrNoRows
	}
	return r.scans[r.idx-1](dest...)
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *fakeRows) Conn() *pgx.Conn { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *fakeRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *fakeRows) RawValues() [][]byte { return nil }

func setString(dest any, v string) {
	if p, ok := dest.(*string); ok {
		*p = v
	}
}

func setInt(dest any, v int) {
	if p, ok := dest.(*int); ok {
		*p = v
	}
}

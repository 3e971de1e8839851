package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeRow assigns vals to the scan destinations by reflection.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if r.vals[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(r.vals[i])
		if !v.Type().AssignableTo(dv.Type()) {
			return fmt.Errorf("scan column %d: cannot assign %s to %s", i, v.Type(), dv.Type())
		}
		dv.Set(v)
	}
	return nil
}

// fakeDB answers QueryRow calls from a queue and records every call.
type fakeDB struct {
	rows    []fakeRow
	calls   []call
	execErr error
	tag     pgconn.CommandTag
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	db.calls = append(db.calls, call{sql, args})
	return db.tag, db.execErr
}

func (db *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	db.calls = append(db.calls, call{sql, args})
	if len(db.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	r := db.rows[0]
	db.rows = db.rows[1:]
	return r
}

func (db *fakeDB) push(vals ...any) {
	db.rows = append(db.rows, fakeRow{vals: vals})
}

func (db *fakeDB) fail(err error) {
	db.rows = append(db.rows, fakeRow{err: err})
}

func newTestStore(db DBTX, opts ...Option) *Store {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(db, opts...)
}

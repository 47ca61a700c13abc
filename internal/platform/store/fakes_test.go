package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

type fakeTag int64

func (f fakeTag) String() string      { return fmt.Sprintf("DELETE %d", int64(f)) }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

// memRows is a Rows over an in-memory table
type memRows struct {
	cols   []string
	data   [][]any
	idx    int
	err    error
	closed bool
}

func newMemRows(cols []string, data ...[]any) *memRows {
	return &memRows{cols: cols, data: data, idx: -1}
}

func (r *memRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *memRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan out of range")
	}
	row := r.data[r.idx]
	if len(row) != len(dest) {
		return fmt.Errorf("dest len %d, row len %d", len(dest), len(row))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *memRows) Err() error        { return r.err }
func (r *memRows) Close()            { r.closed = true }
func (r *memRows) Columns() []string { return r.cols }

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

// fakeQuerier records calls and returns canned results
type fakeQuerier struct {
	execSQL string
	execTag CommandTag
	execErr error

	rows     Rows
	queryErr error

	row Row
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execSQL = sql
	return f.execTag, f.execErr
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row { return f.row }

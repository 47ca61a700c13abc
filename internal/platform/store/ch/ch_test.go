package ch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeexplainer/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type fakeBatch struct {
	rows      [][]any
	appendErr error
	sendErr   error
	sent      bool
	aborted   bool
}

func (b *fakeBatch) Append(v ...any) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	b.rows = append(b.rows, v)
	return nil
}
func (b *fakeBatch) Send() error  { b.sent = true; return b.sendErr }
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }

type fakeConn struct {
	query   string
	execs   []string
	b       *fakeBatch
	prepErr error
	pingErr error
	closed  bool
}

func (f *fakeConn) prepareBatch(_ context.Context, q string) (batch, error) {
	f.query = q
	if f.prepErr != nil {
		return nil, f.prepErr
	}
	return f.b, nil
}
func (f *fakeConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, errors.New("no rows here")
}
func (f *fakeConn) Exec(_ context.Context, q string, _ ...any) error {
	f.execs = append(f.execs, q)
	return nil
}
func (f *fakeConn) Ping(context.Context) error { return f.pingErr }
func (f *fakeConn) Close() error               { f.closed = true; return nil }

func TestInsert_AppendsAndSends(t *testing.T) {
	fc := &fakeConn{b: &fakeBatch{}}
	c := &CH{c: fc}

	err := c.Insert(context.Background(), "analytics.explanation_events", [][]any{{"a", 1}, {"b", 2}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if fc.query != "INSERT INTO analytics.explanation_events" {
		t.Fatalf("query = %q", fc.query)
	}
	if len(fc.b.rows) != 2 || !fc.b.sent {
		t.Fatalf("batch = %+v", fc.b)
	}
}

func TestInsert_EmptyRowsIsNoop(t *testing.T) {
	fc := &fakeConn{b: &fakeBatch{}}
	if err := (&CH{c: fc}).Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if fc.query != "" {
		t.Fatalf("expected no batch, got %q", fc.query)
	}
}

func TestInsert_RejectsBadTableName(t *testing.T) {
	c := &CH{c: &fakeConn{b: &fakeBatch{}}}
	err := c.Insert(context.Background(), "t; DROP TABLE x", [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "invalid table name") {
		t.Fatalf("err = %v", err)
	}
}

func TestInsert_AppendErrorAborts(t *testing.T) {
	fb := &fakeBatch{appendErr: errors.New("bad column")}
	err := (&CH{c: &fakeConn{b: fb}}).Insert(context.Background(), "t", [][]any{{1}})
	if err == nil || !fb.aborted || fb.sent {
		t.Fatalf("err=%v batch=%+v", err, fb)
	}
}

func TestInsert_PrepareAndSendErrors(t *testing.T) {
	err := (&CH{c: &fakeConn{prepErr: errors.New("down")}}).Insert(context.Background(), "t", [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "prepare batch") {
		t.Fatalf("prepare err = %v", err)
	}
	err = (&CH{c: &fakeConn{b: &fakeBatch{sendErr: errors.New("lost")}}}).Insert(context.Background(), "t", [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "send batch") {
		t.Fatalf("send err = %v", err)
	}
}

func TestPingQueryClose_Delegate(t *testing.T) {
	fc := &fakeConn{pingErr: errors.New("nope")}
	c := &CH{c: fc}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	if _, err := c.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("expected query error")
	}
	if err := c.Exec(context.Background(), "CREATE TABLE t"); err != nil || len(fc.execs) != 1 {
		t.Fatalf("exec err=%v execs=%v", err, fc.execs)
	}
	if err := c.Close(); err != nil || !fc.closed {
		t.Fatalf("close err=%v closed=%v", err, fc.closed)
	}
}

func TestOpen_BadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen_StampsClientInfo(t *testing.T) {
	testkit.Serial(t)

	var got *clickhouse.Options
	testkit.Swap(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		got = o
		return nil, nil
	})

	if _, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/default", Role: "api", Tag: "test"}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got == nil || len(got.ClientInfo.Products) == 0 {
		t.Fatalf("client info not set: %+v", got)
	}
	if p := got.ClientInfo.Products[0]; p.Name != "codeexplainer" || p.Version != "test" {
		t.Fatalf("product = %+v", p)
	}
}

func TestOpen_ConnError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &openConn, func(*clickhouse.Options) (driver.Conn, error) {
		return nil, errors.New("refused")
	})
	if _, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000"}); err == nil {
		t.Fatalf("expected open error")
	}
}

// Package repo provides the ClickHouse usage events repository
package repo

import (
	"context"
	"fmt"
	"time"

	"codeexplainer/internal/platform/store"
	"codeexplainer/internal/services/usage/domain"
)

// Table is where events land
const Table = "explanation_events"

// Repo writes and aggregates usage events
type Repo interface {
	Insert(ctx context.Context, xs []domain.Event) error
	Counts(ctx context.Context, userID string, since time.Time) ([]Count, error)
}

// Count is one (language, outcome) bucket
type Count struct {
	Language string
	Outcome  string
	N        uint64
}

type chRepo struct{ ch store.Clickhouse }

// NewCH returns a repo over the ClickHouse seam
func NewCH(ch store.Clickhouse) Repo {
	if ch == nil {
		panic("usage: nil clickhouse")
	}
	return &chRepo{ch: ch}
}

// Insert appends events in column order of explanation_events
func (r *chRepo) Insert(ctx context.Context, xs []domain.Event) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, e := range xs {
		rows = append(rows, row(e))
	}
	if err := r.ch.Insert(ctx, Table, rows); err != nil {
		return fmt.Errorf("usage: insert %d events: %w", len(xs), err)
	}
	return nil
}

func row(e domain.Event) []any {
	var stream uint8
	if e.Stream {
		stream = 1
	}
	warnings := e.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return []any{
		e.At.UTC(),
		e.RequestID,
		e.UserID,
		e.Language,
		e.Mode,
		e.Provider,
		stream,
		string(e.Outcome),
		clampU32(e.CodeChars),
		clampU32(e.OutputChars),
		clampU32(int(e.Latency / time.Millisecond)),
		warnings,
	}
}

func clampU32(n int) uint32 {
	switch {
	case n < 0:
		return 0
	case uint64(n) > uint64(^uint32(0)):
		return ^uint32(0)
	default:
		return uint32(n)
	}
}

// Counts groups a user's events by language and outcome
func (r *chRepo) Counts(ctx context.Context, userID string, since time.Time) ([]Count, error) {
	rows, err := r.ch.Query(ctx, `
		SELECT language, outcome, toUInt64(count()) AS n
		FROM `+Table+`
		WHERE user_id = ? AND ts >= ?
		GROUP BY language, outcome
		ORDER BY language, outcome`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("usage: counts: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Language, &c.Outcome, &c.N); err != nil {
			return nil, fmt.Errorf("usage: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

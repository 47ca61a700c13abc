package repo

import (
	"context"
	"slices"
	"strings"
	"sync"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/services/history/domain"

	"golang.org/x/text/cases"
)

// Memory is an in-process repo for local runs and tests; contents die with the process
type Memory struct {
	mu    sync.RWMutex
	byOwn map[string][]domain.Record
}

// NewMemory returns an empty in-process repo
func NewMemory() *Memory { return &Memory{byOwn: map[string][]domain.Record{}} }

// Insert stores r
func (m *Memory) Insert(_ context.Context, r domain.Record) (domain.Record, error) {
	m.mu.Lock()
	m.byOwn[r.UserID] = append(m.byOwn[r.UserID], r)
	m.mu.Unlock()
	return r, nil
}

// List returns one page, newest first; ties on timestamp break on id
func (m *Memory) List(_ context.Context, f domain.Filter) ([]domain.Record, error) {
	all := m.matching(f)
	slices.SortFunc(all, func(a, b domain.Record) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	off := f.Offset()
	if off < 0 || off >= len(all) {
		return []domain.Record{}, nil
	}
	end := min(off+f.Limit, len(all))
	return all[off:end], nil
}

// Count returns how many records match f, ignoring paging
func (m *Memory) Count(_ context.Context, f domain.Filter) (int, error) {
	return len(m.matching(f)), nil
}

// Get returns the owner's record or perr.ErrNotFound
func (m *Memory) Get(_ context.Context, userID, id string) (domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.byOwn[userID] {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Record{}, perr.ErrNotFound
}

// Delete removes the owner's record or reports perr.ErrNotFound
func (m *Memory) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.byOwn[userID]
	i := slices.IndexFunc(recs, func(r domain.Record) bool { return r.ID == id })
	if i < 0 {
		return perr.ErrNotFound
	}
	m.byOwn[userID] = slices.Delete(recs, i, i+1)
	return nil
}

// DeleteAll removes every record the owner has and returns how many went
func (m *Memory) DeleteAll(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.byOwn[userID])
	delete(m.byOwn, userID)
	return int64(n), nil
}

func (m *Memory) matching(f domain.Filter) []domain.Record {
	fold := cases.Fold()
	needle := fold.String(f.Search)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Record{}
	for _, r := range m.byOwn[f.UserID] {
		if f.Language != "" && r.Language != f.Language {
			continue
		}
		if f.Mode != "" && r.Mode != f.Mode {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(r.Code), needle) &&
			!strings.Contains(fold.String(r.Explanation), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

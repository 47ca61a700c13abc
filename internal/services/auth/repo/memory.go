package repo

import (
	"context"
	"strings"
	"sync"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/services/auth/domain"
)

// Memory is an in-process user repo for local runs and tests
type Memory struct {
	mu       sync.RWMutex
	byID     map[string]domain.User
	byGoogle map[string]string
}

// NewMemory returns an empty in-process repo
func NewMemory() *Memory {
	return &Memory{byID: map[string]domain.User{}, byGoogle: map[string]string{}}
}

// Upsert keeps the first id and created_at for a google id
func (m *Memory) Upsert(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byGoogle[u.GoogleID]; ok {
		cur := m.byID[id]
		cur.Email, cur.Name, cur.Picture = u.Email, u.Name, u.Picture
		m.byID[id] = cur
		return cur, nil
	}
	m.byID[u.ID] = u
	m.byGoogle[u.GoogleID] = u.ID
	return u, nil
}

// ByID returns the user or perr.ErrNotFound
func (m *Memory) ByID(_ context.Context, id string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, perr.ErrNotFound
	}
	return u, nil
}

// ByEmail returns the oldest user with that email or perr.ErrNotFound
func (m *Memory) ByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		best  domain.User
		found bool
	)
	for _, u := range m.byID {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if !found || u.CreatedAt.Before(best.CreatedAt) {
			best, found = u, true
		}
	}
	if !found {
		return domain.User{}, perr.ErrNotFound
	}
	return best, nil
}

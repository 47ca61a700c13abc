package repo

import (
	"context"
	"testing"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/services/auth/domain"

	"github.com/stretchr/testify/require"
)

func TestMemory_UpsertKeepsIdentity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := m.Upsert(ctx, domain.User{ID: "1", GoogleID: "g", Email: "a@x.io", CreatedAt: t0})
	require.NoError(t, err)
	b, err := m.Upsert(ctx, domain.User{ID: "2", GoogleID: "g", Email: "b@x.io", CreatedAt: t0.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)
	require.Equal(t, t0, b.CreatedAt)
	require.Equal(t, "b@x.io", b.Email)

	_, err = m.ByID(ctx, "2")
	require.ErrorIs(t, err, perr.ErrNotFound)
}

func TestMemory_ByEmailPicksOldest(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _ = m.Upsert(ctx, domain.User{ID: "new", GoogleID: "g2", Email: "A@x.io", CreatedAt: t0.Add(time.Hour)})
	_, _ = m.Upsert(ctx, domain.User{ID: "old", GoogleID: "g1", Email: "a@x.io", CreatedAt: t0})

	u, err := m.ByEmail(ctx, "a@X.io")
	require.NoError(t, err)
	require.Equal(t, "old", u.ID)
}

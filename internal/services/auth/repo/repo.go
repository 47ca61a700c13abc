// Package repo provides the user repositories
package repo

import (
	"context"

	"codeexplainer/internal/modkit/repokit"
	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/store"
	"codeexplainer/internal/services/auth/domain"
)

// Repo is the user persistence surface used by the service layer
type Repo interface {
	// Upsert creates the user for u.GoogleID or refreshes its profile fields
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
	ByID(ctx context.Context, id string) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
}

type (
	// PG is a Postgres implementation of the user repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: repokit.RequireQueryer(q)} }

const cols = `id::text, google_id, email, name, picture, created_at`

func scanUser(row store.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Picture, &u.CreatedAt)
	return u, err
}

// Upsert keeps the first id and created_at for a google id
func (r *queries) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	const sql = `
		INSERT INTO users (id, google_id, email, name, picture, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		ON CONFLICT (google_id) DO UPDATE
		SET email   = EXCLUDED.email,
		    name    = EXCLUDED.name,
		    picture = EXCLUDED.picture
		RETURNING ` + cols
	out, err := store.One(ctx, r.q, scanUser, sql, u.ID, u.GoogleID, u.Email, u.Name, u.Picture, u.CreatedAt)
	if err != nil {
		return domain.User{}, perr.FromPostgres(err, "user upsert")
	}
	return out, nil
}

// ByID returns the user or perr.ErrNotFound
func (r *queries) ByID(ctx context.Context, id string) (domain.User, error) {
	u, err := store.One(ctx, r.q, scanUser, `SELECT `+cols+` FROM users WHERE id = $1::uuid`, id)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.User{}, perr.FromPostgres(err, "user by id")
	}
	return u, err
}

// ByEmail returns the oldest user with that email or perr.ErrNotFound
func (r *queries) ByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := store.One(ctx, r.q, scanUser,
		`SELECT `+cols+` FROM users WHERE lower(email) = lower($1) ORDER BY created_at LIMIT 1`, email)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.User{}, perr.FromPostgres(err, "user by email")
	}
	return u, err
}

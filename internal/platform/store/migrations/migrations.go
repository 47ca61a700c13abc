// Package migrations applies the bundled Postgres and ClickHouse schemas
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"codeexplainer/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed pg/*.sql
var pgFS embed.FS

//go:embed ch/*.sql
var chFS embed.FS

// Execer runs a statement that returns no rows
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// migrator is the part of *migrate.Migrate Up uses
type migrator interface {
	Up() error
	Version() (uint, bool, error)
	Close() (error, error)
}

var newMigrator = func(dsn string) (migrator, error) { // seam
	src, err := iofs.New(pgFS, "pg")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, dsn)
}

// UpPG applies pending Postgres migrations; an up to date database is not an error
func UpPG(dsn string) error {
	log := logger.Named("migrations")
	u, err := pgx5URL(dsn)
	if err != nil {
		return err
	}
	m, err := newMigrator(u)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("db", dbErr).Msg("close migrator")
		}
	}()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("postgres schema up to date")
	case err != nil:
		return fmt.Errorf("migrations: up: %w", err)
	}
	if v, dirty, err := m.Version(); err == nil {
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("postgres schema version")
	}
	return nil
}

// UpCH applies every bundled ClickHouse statement in file order; statements are idempotent
func UpCH(ctx context.Context, ch Execer) error {
	stmts, err := chStatements()
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := ch.Exec(ctx, s.sql); err != nil {
			return fmt.Errorf("migrations: clickhouse %s: %w", s.name, err)
		}
		logger.Named("migrations").Info().Str("file", s.name).Msg("clickhouse statement applied")
	}
	return nil
}

type stmt struct{ name, sql string }

func chStatements() ([]stmt, error) {
	names, err := fs.Glob(chFS, "ch/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]stmt, 0, len(names))
	for _, n := range names {
		b, err := chFS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt{name: n, sql: strings.TrimSpace(string(b))})
	}
	return out, nil
}

// pgx5URL rewrites a postgres url for the pgx v5 migrate driver
func pgx5URL(dsn string) (string, error) {
	for _, p := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, p) {
			return "pgx5://" + strings.TrimPrefix(dsn, p), nil
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn, nil
	}
	return "", fmt.Errorf("migrations: want a postgres:// url, got %q", redact(dsn))
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i] + "://…"
	}
	return "…"
}

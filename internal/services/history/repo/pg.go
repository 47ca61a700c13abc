package repo

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"codeexplainer/internal/modkit/repokit"
	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/store"
	"codeexplainer/internal/services/history/domain"
)

type (
	// PG is a Postgres implementation of the history repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: repokit.RequireQueryer(q)} }

const cols = `id::text, user_id::text, code, explanation, language, mode, "timestamp"`

func scanRecord(row store.Row) (domain.Record, error) {
	var r domain.Record
	var lang, mode string
	if err := row.Scan(&r.ID, &r.UserID, &r.Code, &r.Explanation, &lang, &mode, &r.Timestamp); err != nil {
		return domain.Record{}, err
	}
	r.Language = domain.Language(lang)
	r.Mode = domain.Mode(mode)
	return r, nil
}

// Insert stores r; text columns are scrubbed of NUL bytes and invalid UTF-8 first
func (r *queries) Insert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	rec.Code = scrub(rec.Code)
	rec.Explanation = scrub(rec.Explanation)
	const sql = `
		INSERT INTO histories (id, user_id, code, explanation, language, mode, "timestamp")
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, sql, rec.ID, rec.UserID, rec.Code, rec.Explanation,
		string(rec.Language), string(rec.Mode), rec.Timestamp)
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "history insert")
	}
	return rec, nil
}

// List returns one page, newest first; ties on timestamp break on id
func (r *queries) List(ctx context.Context, f domain.Filter) ([]domain.Record, error) {
	where, args := whereClause(f)
	args = append(args, f.Limit, f.Offset())
	sql := `SELECT ` + cols + ` FROM histories ` + where +
		` ORDER BY "timestamp" DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))
	out, err := store.Many(ctx, r.q, scanRecord, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "history list")
	}
	return out, nil
}

// Count returns how many records match f, ignoring paging
func (r *queries) Count(ctx context.Context, f domain.Filter) (int, error) {
	where, args := whereClause(f)
	n, err := store.Scalar[int64](ctx, r.q, `SELECT count(*) FROM histories `+where, args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "history count")
	}
	return int(n), nil
}

// Get returns the owner's record or perr.ErrNotFound
func (r *queries) Get(ctx context.Context, userID, id string) (domain.Record, error) {
	const sql = `SELECT ` + cols + ` FROM histories WHERE id = $1::uuid AND user_id = $2::uuid`
	rec, err := store.One(ctx, r.q, scanRecord, sql, id, userID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, err
		}
		return domain.Record{}, perr.FromPostgres(err, "history get")
	}
	return rec, nil
}

// Delete removes the owner's record or reports perr.ErrNotFound
func (r *queries) Delete(ctx context.Context, userID, id string) error {
	err := store.ExecOne(ctx, r.q, `DELETE FROM histories WHERE id = $1::uuid AND user_id = $2::uuid`, id, userID)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.FromPostgres(err, "history delete")
	}
	return err
}

// DeleteAll removes every record the owner has and returns how many went
func (r *queries) DeleteAll(ctx context.Context, userID string) (int64, error) {
	tag, err := store.Exec(ctx, r.q, `DELETE FROM histories WHERE user_id = $1::uuid`, userID)
	if err != nil {
		return 0, perr.FromPostgres(err, "history delete all")
	}
	return tag.RowsAffected(), nil
}

// whereClause builds the owner scoped filter; args are numbered from $1
func whereClause(f domain.Filter) (string, []any) {
	var b strings.Builder
	args := []any{f.UserID}
	b.WriteString(`WHERE user_id = $1::uuid`)
	if f.Language != "" {
		args = append(args, string(f.Language))
		b.WriteString(` AND language = $` + strconv.Itoa(len(args)))
	}
	if f.Mode != "" {
		args = append(args, string(f.Mode))
		b.WriteString(` AND mode = $` + strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := strconv.Itoa(len(args))
		b.WriteString(` AND (code ILIKE $` + n + ` ESCAPE '\' OR explanation ILIKE $` + n + ` ESCAPE '\')`)
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string { return likeEscaper.Replace(s) }

// scrub drops what a postgres text column refuses: NUL bytes and invalid UTF-8
func scrub(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

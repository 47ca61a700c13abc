// Package service contains history workflows
package service

import (
	"context"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/services/history/domain"
	"codeexplainer/internal/services/history/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service is the history service surface
type Service = domain.ServicePort

// Options tunes the service; zero values pick defaults
type Options struct {
	Now   func() time.Time
	NewID func() (uuid.UUID, error)
}

type svc struct {
	repo  repo.Repo
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// New constructs the history service over r
func New(r repo.Repo, opt Options) Service {
	if r == nil {
		panic("history: nil repo")
	}
	s := &svc{repo: r, now: opt.Now, newID: opt.NewID}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewV7
	}
	return s
}

func notFound() error { return perr.NotFoundf("History not found") }

// Create records one explanation for its owner
func (s *svc) Create(ctx context.Context, d domain.Draft) (domain.Record, error) {
	if d.UserID == "" {
		return domain.Record{}, perr.Unauthorizedf("No token provided")
	}
	if d.Code == "" || d.Explanation == "" || !d.Language.Valid() || !d.Mode.Valid() {
		logger.C(ctx).Error().
			Bool("code", d.Code != "").
			Bool("explanation", d.Explanation != "").
			Str("language", string(d.Language)).
			Str("mode", string(d.Mode)).
			Msg("history draft is incomplete")
		return domain.Record{}, perr.DBf("Failed to save explanation")
	}
	id, err := s.newID()
	if err != nil {
		return domain.Record{}, perr.Wrap(err, perr.ErrorCodeDB, "history id")
	}
	rec, err := s.repo.Insert(ctx, domain.Record{
		ID:          id.String(),
		UserID:      d.UserID,
		Code:        d.Code,
		Explanation: d.Explanation,
		Language:    d.Language,
		Mode:        d.Mode,
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		return domain.Record{}, err
	}
	logger.C(ctx).Debug().Str("history_id", rec.ID).Msg("history recorded")
	return rec, nil
}

// List returns a page of the owner's records with totals; rows and count load concurrently
func (s *svc) List(ctx context.Context, f domain.Filter) (domain.Page, error) {
	f = f.Normalize()
	var (
		rows  []domain.Record
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Page{}, err
	}
	if rows == nil {
		rows = []domain.Record{}
	}
	return domain.Page{Histories: rows, Pagination: domain.NewPagination(f.Page, f.Limit, total)}, nil
}

// Get returns one of the owner's records; other owners' ids and malformed ids are not found
func (s *svc) Get(ctx context.Context, userID, id string) (domain.Record, error) {
	if !validID(id) {
		return domain.Record{}, notFound()
	}
	rec, err := s.repo.Get(ctx, userID, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Record{}, notFound()
	}
	return rec, err
}

// Delete removes one of the owner's records
func (s *svc) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return notFound()
	}
	err := s.repo.Delete(ctx, userID, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return notFound()
	}
	return err
}

// DeleteAll removes every record the owner has
func (s *svc) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.C(ctx).Info().Int64("deleted", n).Msg("history cleared")
	return n, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

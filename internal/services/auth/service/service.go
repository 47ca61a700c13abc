// Package service contains user workflows
package service

import (
	"context"
	"strings"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/services/auth/domain"
	"codeexplainer/internal/services/auth/repo"

	"github.com/google/uuid"
)

// Service is the user service surface
type Service = domain.UserPort

type svc struct {
	repo repo.Repo
	now  func() time.Time
}

// New constructs the user service over r
func New(r repo.Repo, now func() time.Time) Service {
	if r == nil {
		panic("auth: nil repo")
	}
	if now == nil {
		now = time.Now
	}
	return &svc{repo: r, now: now}
}

// Upsert creates or refreshes the user for a provider profile
func (s *svc) Upsert(ctx context.Context, p domain.Profile) (domain.User, error) {
	p.GoogleID = strings.TrimSpace(p.GoogleID)
	p.Email = strings.TrimSpace(p.Email)
	if p.GoogleID == "" || p.Email == "" {
		return domain.User{}, perr.Validation(
			perr.FieldDetail{Field: "googleId", Message: "GoogleId and email are required"},
		)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.User{}, perr.Wrap(err, perr.ErrorCodeDB, "user id")
	}
	return s.repo.Upsert(ctx, domain.User{
		ID:        id.String(),
		GoogleID:  p.GoogleID,
		Email:     p.Email,
		Name:      p.Name,
		Picture:   p.Picture,
		CreatedAt: s.now().UTC(),
	})
}

// Me returns the caller's profile; a token for a removed user is not found
func (s *svc) Me(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, perr.NotFoundf("User not found")
	}
	u, err := s.repo.ByID(ctx, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.User{}, perr.NotFoundf("User not found")
	}
	return u, err
}

// ByEmail finds a user for the admin tooling
func (s *svc) ByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.repo.ByEmail(ctx, strings.TrimSpace(email))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.User{}, perr.NotFoundf("User not found")
	}
	return u, err
}

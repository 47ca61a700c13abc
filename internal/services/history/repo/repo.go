// Package repo provides the history repositories
package repo

import (
	"context"

	"codeexplainer/internal/services/history/domain"
)

// Repo is the history persistence surface used by the service layer
// every read and write is scoped by owner
type Repo interface {
	Insert(ctx context.Context, r domain.Record) (domain.Record, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Record, error)
	Count(ctx context.Context, f domain.Filter) (int, error)
	Get(ctx context.Context, userID, id string) (domain.Record, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

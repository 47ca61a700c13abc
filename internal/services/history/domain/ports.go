package domain

import "context"

// ServicePort is the history surface other modules and transports use
type ServicePort interface {
	Create(ctx context.Context, d Draft) (Record, error)
	List(ctx context.Context, f Filter) (Page, error)
	Get(ctx context.Context, userID, id string) (Record, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// RecorderPort is the narrow surface the explain pipeline persists through
type RecorderPort interface {
	Create(ctx context.Context, d Draft) (Record, error)
}

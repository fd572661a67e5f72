package storage

import (
	"context"

	"token-risk-agent/internal/domain"
)

// AllowListStore provides access to the established-token allow-list.
type AllowListStore interface {
	// Contains reports whether mint is allow-listed.
	Contains(ctx context.Context, mint string) (bool, error)

	// List returns all entries ordered by mint.
	List(ctx context.Context) ([]domain.EstablishedToken, error)

	// Add inserts an entry. Returns ErrDuplicateKey if mint exists.
	Add(ctx context.Context, t domain.EstablishedToken) error

	// Get retrieves one entry. Returns ErrNotFound if mint is not listed.
	Get(ctx context.Context, mint string) (domain.EstablishedToken, error)
}

// TaskStore holds recent service tasks. Implementations may evict old tasks.
type TaskStore interface {
	// Save inserts or replaces a task by ID.
	Save(ctx context.Context, t *domain.Task) error

	// Get retrieves a task by ID. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// Count returns the number of distinct tasks ever saved, evicted ones included.
	Count(ctx context.Context) (int, error)
}

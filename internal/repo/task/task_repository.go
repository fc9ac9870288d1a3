package task

import (
	"context"

	"github.com/mkrupp/taskmgr/internal/domain"
)

// Repository defines the interface for task store persistence.
// The store is always read and written whole; order is significant.
type Repository interface {
	// Load returns every task in storage order.
	// Returns a *domain.CorruptStoreError if a stored record cannot be parsed.
	Load(ctx context.Context) ([]domain.Task, error)

	// Save replaces the stored tasks with the given ones, preserving order.
	Save(ctx context.Context, tasks []domain.Task) error

	// Lock acquires an exclusive lock for a read-modify-write cycle.
	// Returns a function to release the lock.
	Lock(ctx context.Context) (func(), error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

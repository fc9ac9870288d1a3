package user

import (
	"context"

	"github.com/mkrupp/taskmgr/internal/domain"
)

// Repository defines the interface for credential store persistence.
// The store is always read and written whole.
type Repository interface {
	// Load returns every user in insertion order.
	// Returns a *domain.CorruptStoreError if a stored record cannot be parsed.
	Load(ctx context.Context) ([]domain.User, error)

	// Save replaces the stored users with the given ones, preserving order.
	Save(ctx context.Context, users []domain.User) error

	// Lock acquires an exclusive lock for a read-modify-write cycle.
	// Returns a function to release the lock.
	Lock(ctx context.Context) (func(), error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

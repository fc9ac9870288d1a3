package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/sqlitedb"
)

const userSchema = `
	CREATE TABLE IF NOT EXISTS users (
		position INTEGER PRIMARY KEY,
		username TEXT    UNIQUE NOT NULL,
		password TEXT    NOT NULL
	)
`

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db   *sql.DB
	log  logging.Logger
	lock *sqlitedb.WriteLock
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new SQLiteUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteUserRepositoryFactory(cfg sqlitedb.Config) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteUserRepository(cfg)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteUserRepository(cfg sqlitedb.Config) (*SQLiteUserRepository, error) {
	log := logging.GetLogger("repo.user.sqlite_user_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sqlitedb.Open(cfg, userSchema)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	return &SQLiteUserRepository{
		db:   db,
		log:  log,
		lock: sqlitedb.NewWriteLock(db),
	}, nil
}

// Load implements Repository.Load using SQLite.
func (r *SQLiteUserRepository) Load(ctx context.Context) (users []domain.User, err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "load users failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "users loaded", "count", len(users))
		}
	}()

	rows, err := r.lock.Querier().QueryContext(ctx, "SELECT username, password FROM users ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Username, &user.Password); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Save implements Repository.Save by replacing all rows atomically.
// Returns domain.ErrUsernameTaken if a username occurs twice.
func (r *SQLiteUserRepository) Save(ctx context.Context, users []domain.User) error {
	err := r.lock.Atomic(ctx, func(q sqlitedb.Querier) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM users"); err != nil {
			return fmt.Errorf("delete users: %w", err)
		}

		for i, user := range users {
			_, err := q.ExecContext(ctx,
				"INSERT INTO users (position, username, password) VALUES (?, ?, ?)",
				i, user.Username, user.Password,
			)
			if err != nil {
				if sqlitedb.IsConstraintViolation(err) {
					err = errors.Join(domain.ErrUsernameTaken, err)
				}

				return fmt.Errorf("insert user: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		r.log.ErrorContext(ctx, "save users failed", "error", err)

		return err
	}

	r.log.DebugContext(ctx, "users saved", "count", len(users))

	return nil
}

// Lock implements Repository.Lock with a database write transaction that
// also excludes other processes. Load and Save run inside it until release.
func (r *SQLiteUserRepository) Lock(ctx context.Context) (func(), error) {
	release, err := r.lock.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock db: %w", err)
	}

	return release, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

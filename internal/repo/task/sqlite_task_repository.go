package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/sqlitedb"
)

const taskSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		position      INTEGER PRIMARY KEY,
		id            TEXT    UNIQUE NOT NULL,
		username      TEXT    NOT NULL,
		title         TEXT    NOT NULL,
		description   TEXT    NOT NULL,
		due_date      TEXT    NOT NULL,
		assigned_date TEXT    NOT NULL,
		completed     TEXT    NOT NULL
	)
`

// SQLiteTaskRepository implements Repository using SQLite as the storage backend.
// Unlike the flat file, it persists task IDs.
type SQLiteTaskRepository struct {
	db   *sql.DB
	path string
	log  logging.Logger
	lock *sqlitedb.WriteLock
}

var _ Repository = (*SQLiteTaskRepository)(nil)

// SQLiteTaskRepositoryFactory creates a factory function that returns a new SQLiteTaskRepository.
func SQLiteTaskRepositoryFactory(cfg sqlitedb.Config) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteTaskRepository(cfg)
	}
}

// NewSQLiteTaskRepository creates a new SQLiteTaskRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
func NewSQLiteTaskRepository(cfg sqlitedb.Config) (*SQLiteTaskRepository, error) {
	db, err := sqlitedb.Open(cfg, taskSchema)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	return &SQLiteTaskRepository{
		db:   db,
		path: cfg.DatabasePath,
		log: logging.GetLogger("repo.task.sqlite_task_repository").With(
			logging.Group("db", "path", cfg.DatabasePath),
		),
		lock: sqlitedb.NewWriteLock(db),
	}, nil
}

// Load implements Repository.Load using SQLite.
func (r *SQLiteTaskRepository) Load(ctx context.Context) (tasks []domain.Task, err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "load tasks failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "tasks loaded", "count", len(tasks))
		}
	}()

	rows, err := r.lock.Querier().QueryContext(ctx, `
		SELECT position, id, username, title, description, due_date, assigned_date, completed
		FROM tasks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			position int
			id       string
			fields   = make([]string, taskFields)
		)

		if err := rows.Scan(&position, &id, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5]); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		task, err := decodeTask(fields)
		if err != nil {
			return nil, &domain.CorruptStoreError{Path: r.path, Line: position + 1, Reason: err.Error()}
		}

		task.ID = domain.TaskID(id)
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// Save implements Repository.Save by replacing all rows atomically.
func (r *SQLiteTaskRepository) Save(ctx context.Context, tasks []domain.Task) error {
	err := r.lock.Atomic(ctx, func(q sqlitedb.Querier) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}

		for i, task := range tasks {
			id := task.ID
			if id == "" {
				id = domain.NewTaskID()
			}

			fields := encodeTask(task)

			_, err := q.ExecContext(ctx, `
				INSERT INTO tasks (position, id, username, title, description, due_date, assigned_date, completed)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				i, id, fields[0], fields[1], fields[2], fields[3], fields[4], fields[5],
			)
			if err != nil {
				return fmt.Errorf("insert task: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		r.log.ErrorContext(ctx, "save tasks failed", "error", err)

		return err
	}

	r.log.DebugContext(ctx, "tasks saved", "count", len(tasks))

	return nil
}

// Lock implements Repository.Lock with a database write transaction that
// also excludes other processes. Load and Save run inside it until release.
func (r *SQLiteTaskRepository) Lock(ctx context.Context) (func(), error) {
	release, err := r.lock.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock db: %w", err)
	}

	return release, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteTaskRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Querier is the part of *sql.DB, *sql.Conn and *sql.Tx the repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// WriteLock serializes read-modify-write cycles on one database, across
// goroutines and across processes. Lock opens a BEGIN IMMEDIATE transaction
// on a dedicated connection, which holds the database write lock until the
// release function commits it. While it is held, Querier and Atomic route
// every statement through that connection.
type WriteLock struct {
	db *sql.DB

	held sync.Mutex // held from Lock until release

	mu   sync.Mutex
	conn *sql.Conn
}

// NewWriteLock creates a WriteLock on db.
func NewWriteLock(db *sql.DB) *WriteLock {
	return &WriteLock{db: db}
}

// Lock acquires the write lock. Other writers, in this or another process,
// block in Lock (up to the busy timeout) until the returned function runs.
func (l *WriteLock) Lock(ctx context.Context) (release func(), err error) {
	l.held.Lock()

	defer func() {
		if err != nil {
			l.held.Unlock()
		}
	}()

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get conn: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("begin immediate: %w", err)
	}

	l.setConn(conn)

	return func() {
		l.setConn(nil)

		//nolint:contextcheck
		if _, err := conn.ExecContext(context.Background(), "COMMIT"); err != nil {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}

		_ = conn.Close()
		l.held.Unlock()
	}, nil
}

// Querier returns the locked connection while the lock is held, the pool otherwise.
func (l *WriteLock) Querier() Querier {
	if conn := l.current(); conn != nil {
		return conn
	}

	return l.db
}

// Atomic runs fn so that either all or none of its statements take effect:
// inside a savepoint of the held lock transaction, or in its own transaction
// when the lock is not held.
func (l *WriteLock) Atomic(ctx context.Context, fn func(Querier) error) error {
	if conn := l.current(); conn != nil {
		return savepoint(ctx, conn, fn)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func savepoint(ctx context.Context, conn *sql.Conn, fn func(Querier) error) error {
	if _, err := conn.ExecContext(ctx, "SAVEPOINT atomic"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if err := fn(conn); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK TO atomic")
		_, _ = conn.ExecContext(ctx, "RELEASE atomic")

		return err
	}

	if _, err := conn.ExecContext(ctx, "RELEASE atomic"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}

	return nil
}

func (l *WriteLock) current() *sql.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.conn
}

func (l *WriteLock) setConn(conn *sql.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}

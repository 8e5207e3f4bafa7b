package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories read through it so the same method serves both plain reads
// and reads inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is the unit of work handed to transactional service code. Besides the
// SQL statements it carries a queue of actions deferred until the enclosing
// transaction commits; a rollback discards the queue untouched. Event
// broadcasting hangs off this hook so clients never observe state that was
// rolled back.
type Tx interface {
	Querier
	AfterCommit(fn func())
}

// Runner begins, commits and rolls back units of work.
type Runner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type sqlRunner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) Runner {
	return &sqlRunner{db: db}
}

type sqlTx struct {
	*sql.Tx
	hooks []func()
}

func (t *sqlTx) AfterCommit(fn func()) {
	t.hooks = append(t.hooks, fn)
}

func (r *sqlRunner) InTx(ctx context.Context, fn func(tx Tx) error) error {
	raw, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	t := &sqlTx{Tx: raw}
	if err := fn(t); err != nil {
		raw.Rollback()
		return err
	}
	if err := raw.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Hooks run in registration order, after the data is durable.
	for _, hook := range t.hooks {
		hook()
	}
	return nil
}

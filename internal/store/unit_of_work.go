package store

import (
	"context"
	"database/sql"
)

// Stores groups the stores bound to a single transaction.
type Stores struct {
	Tasks TaskStore
	Lists ListStore
}

// Transactor runs fn inside one unit of work. Every read and write made
// through the provided Stores commits or rolls back together.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// SQLTransactor implements Transactor on top of RunInTransaction.
type SQLTransactor struct {
	db    *sql.DB
	tasks TaskStore
	lists ListStore
}

// NewSQLTransactor creates a Transactor that rebinds the given stores to
// each transaction via WithTx.
func NewSQLTransactor(db *sql.DB, tasks TaskStore, lists ListStore) *SQLTransactor {
	return &SQLTransactor{db: db, tasks: tasks, lists: lists}
}

var _ Transactor = (*SQLTransactor)(nil)

// InTx implements Transactor.
func (t *SQLTransactor) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Stores{
			Tasks: t.tasks.WithTx(tx),
			Lists: t.lists.WithTx(tx),
		})
	})
}

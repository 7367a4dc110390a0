// Package tx carries an open *sql.Tx through a context so stores invoked inside
// a unit of work share the same transaction without changing their signatures.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Executor is the subset of *sql.DB and *sql.Tx that stores use.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// ExecutorFrom returns the transaction in ctx, or db when none is open.
func ExecutorFrom(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

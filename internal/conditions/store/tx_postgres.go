package store

import (
	"context"
	"database/sql"
	"time"

	"fellinglicence/internal/conditions/service"
	dErrors "fellinglicence/pkg/domain-errors"
	txcontext "fellinglicence/pkg/platform/tx"
)

// PostgresTx runs clear-then-save inside one database transaction. The open
// *sql.Tx travels in ctx, so the audit outbox store joins it too.
type PostgresTx struct {
	db      *sql.DB
	store   *PostgresStore
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	return &PostgresTx{db: db, store: NewPostgres(db), timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store service.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = service.DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.store); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "commit transaction")
	}
	return nil
}

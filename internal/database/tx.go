package database

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type TxOptions struct {
	// LockTimeout caps each wait for a row lock. PostgreSQL only.
	LockTimeout time.Duration
	// Timeout caps the whole transaction, lock waits included.
	Timeout time.Duration
}

// RunInTx runs fn in a single transaction. A non-nil return from fn rolls
// the transaction back; the error is returned unchanged for Classify.
func RunInTx(ctx context.Context, db *bun.DB, opts TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if opts.LockTimeout > 0 && tx.Dialect().Name() == dialect.PG {
			if _, err := tx.ExecContext(ctx, lockTimeoutStatement(opts.LockTimeout)); err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}
		return fn(ctx, tx)
	})
}

// lockTimeoutStatement renders d in whole milliseconds, at least 1.
// PostgreSQL reads '0ms' as no timeout at all. SET does not accept bind
// parameters.
func lockTimeoutStatement(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

// ForUpdate adds a row lock to q on stores that support one. SQLite has no
// row locks; its single writer already serializes the transaction.
func ForUpdate(idb bun.IDB, q *bun.SelectQuery, of ...string) *bun.SelectQuery {
	if idb.Dialect().Name() != dialect.PG {
		return q
	}
	if len(of) == 0 {
		return q.For("UPDATE")
	}
	clause := "UPDATE OF " + of[0]
	for _, table := range of[1:] {
		clause += ", " + table
	}
	return q.For(clause)
}

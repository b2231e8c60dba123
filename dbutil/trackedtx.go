package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"
)

// slowTx is how long a transaction may hold its row locks before Commit
// complains about it.
const slowTx = 2 * time.Second

// Tx wraps sql.Tx so that a deferred MaybeRollback is harmless after
// Commit, and so that slow or abandoned transactions show up in the log
// under the name of the operation that opened them.
type Tx struct {
	tx         *sql.Tx
	what       string
	started    time.Time
	statements int
}

func (tt *Tx) Tx() *sql.Tx {
	return tt.tx
}

func NewTx(ctx context.Context, db *sql.DB, what string, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, what: what, started: time.Now()}, nil
}

func (tt *Tx) MaybeRollback() {
	if tt.tx == nil {
		return
	}
	if err := tt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("%s: rollback: %v", tt.what, err)
	}
	log.Printf("%s: rolled back after %d statements", tt.what, tt.statements)
	tt.tx = nil
}

func (tt *Tx) Commit() error {
	err := tt.tx.Commit()
	tt.tx = nil
	if d := time.Since(tt.started); d > slowTx {
		log.Printf("%s: slow transaction, %d statements in %v", tt.what, tt.statements, d)
	}
	return err
}

func (tt *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	tt.statements++
	return tt.tx.QueryRowContext(ctx, query, args...)
}

func (tt *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tt.statements++
	return tt.tx.QueryContext(ctx, query, args...)
}

func (tt *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tt.statements++
	return tt.tx.ExecContext(ctx, query, args...)
}

package db

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// InTx reports whether the context already carries an open transaction.
func (d *DB) InTx(ctx context.Context) bool { return txFrom(ctx) != nil }

// RunInTx executes fn atomically. If the context already carries a
// transaction, fn joins it and the outermost caller keeps commit/rollback
// responsibility; otherwise a new transaction is begun, stored in the derived
// context, and committed or rolled back here.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Q returns the active transaction if the context carries one, otherwise the
// bare connection pool.
func (d *DB) Q(ctx context.Context) Queryer {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return d.DB
}

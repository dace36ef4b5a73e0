// Package store holds the persistence functions for all entities. Plain
// reads take *sql.DB directly; functions that participate in a larger
// atomic unit accept a DBTX so the lifecycle engine can run them inside
// one db.WithTx transaction.
package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

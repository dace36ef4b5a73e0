package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

// ErrConflict is returned when a transaction could not acquire the
// database within the busy timeout. The caller should retry the whole
// operation from scratch; nothing was applied.
var ErrConflict = errors.New("database busy, retry the operation")

// SQLite primary result codes for contention.
const (
	codeBusy   = 5
	codeLocked = 6
)

// WithTx runs fn inside a transaction. Every multi-entity mutation in the
// system goes through here so isolation and rollback-on-error behavior
// are uniform instead of per-call-site. If fn returns an error the
// transaction is rolled back and the error returned; lock contention is
// mapped to ErrConflict.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", mapBusy(err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return mapBusy(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", mapBusy(err))
	}
	return nil
}

// mapBusy converts driver-level contention errors into ErrConflict while
// preserving the original error text.
func mapBusy(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case codeBusy, codeLocked:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}

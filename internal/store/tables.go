package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyunwoo/tably/internal/model"
)

// EnsureTableState returns the state row for a table, creating an empty
// unblocked one if this is the first reference. INSERT OR IGNORE keeps
// concurrent first references race-free.
func EnsureTableState(ctx context.Context, q DBTX, tableID string) (*model.TableState, error) {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO table_state (table_id, occupied_since, blocked) VALUES (?, NULL, 0)`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating table state: %w", err)
	}
	return GetTableState(ctx, q, tableID)
}

// GetTableState returns a table's state, or ErrNoRows if it has never
// been referenced.
func GetTableState(ctx context.Context, q DBTX, tableID string) (*model.TableState, error) {
	ts := &model.TableState{}
	var occupiedSince sql.NullTime
	err := q.QueryRowContext(ctx,
		`SELECT table_id, occupied_since, blocked FROM table_state WHERE table_id = ?`,
		tableID,
	).Scan(&ts.TableID, &occupiedSince, &ts.Blocked)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("getting table state: %w", err)
	}
	if occupiedSince.Valid {
		t := occupiedSince.Time
		ts.OccupiedSince = &t
	}
	return ts, nil
}

// ListTableStates returns all recorded table states keyed by table ID.
func ListTableStates(ctx context.Context, q DBTX) (map[string]model.TableState, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT table_id, occupied_since, blocked FROM table_state`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing table states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]model.TableState)
	for rows.Next() {
		var ts model.TableState
		var occupiedSince sql.NullTime
		if err := rows.Scan(&ts.TableID, &occupiedSince, &ts.Blocked); err != nil {
			return nil, fmt.Errorf("scanning table state: %w", err)
		}
		if occupiedSince.Valid {
			t := occupiedSince.Time
			ts.OccupiedSince = &t
		}
		states[ts.TableID] = ts
	}
	return states, rows.Err()
}

// MarkTableOccupied stamps a table's occupied-since time if it isn't
// already occupied. Existing occupancy is never overwritten.
func MarkTableOccupied(ctx context.Context, q DBTX, tableID string, since time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE table_state SET occupied_since = ? WHERE table_id = ? AND occupied_since IS NULL`,
		since, tableID,
	)
	if err != nil {
		return fmt.Errorf("marking table occupied: %w", err)
	}
	return nil
}

// SetTableBlocked sets a table's blocked flag, creating the state row if
// needed.
func SetTableBlocked(ctx context.Context, q DBTX, tableID string, blocked bool) error {
	if _, err := EnsureTableState(ctx, q, tableID); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`UPDATE table_state SET blocked = ? WHERE table_id = ?`, blocked, tableID,
	)
	if err != nil {
		return fmt.Errorf("setting table blocked: %w", err)
	}
	return nil
}

// ClearTable resets a table's occupancy ("table emptied"). The blocked
// flag is untouched.
func ClearTable(ctx context.Context, q DBTX, tableID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE table_state SET occupied_since = NULL WHERE table_id = ?`, tableID,
	)
	if err != nil {
		return fmt.Errorf("clearing table: %w", err)
	}
	return nil
}

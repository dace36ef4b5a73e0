package pos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// SetStock overrides a menu item's stock with an absolute value. Any
// value is accepted, including negative, so staff can reconcile counts.
func SetStock(ctx context.Context, dbc *sql.DB, role string, menuItemID int64, value int) (*model.MenuItem, error) {
	var item *model.MenuItem
	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		before, err := store.GetMenuItem(ctx, tx, menuItemID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("menu item %d: %w", menuItemID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		if err := store.SetStock(ctx, tx, menuItemID, value); err != nil {
			return err
		}

		if err := store.AppendLog(ctx, tx, role, model.ActionUpdateStock,
			fmt.Sprintf("item=%s %d -> %d", before.Name, before.Stock, value)); err != nil {
			return err
		}

		item, err = store.GetMenuItem(ctx, tx, menuItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleSoldOut flips a menu item's sold-out flag. Stock is untouched.
func ToggleSoldOut(ctx context.Context, dbc *sql.DB, role string, menuItemID int64) (*model.MenuItem, error) {
	var item *model.MenuItem
	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		soldOut, err := store.ToggleSoldOut(ctx, tx, menuItemID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("menu item %d: %w", menuItemID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		item, err = store.GetMenuItem(ctx, tx, menuItemID)
		if err != nil {
			return err
		}

		return store.AppendLog(ctx, tx, role, model.ActionSoldOutToggle,
			fmt.Sprintf("item=%s sold_out=%t", item.Name, soldOut))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetTableBlocked blocks or unblocks a table for ordering.
func SetTableBlocked(ctx context.Context, dbc *sql.DB, role, tableID string, blocked bool) error {
	return db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		if err := store.SetTableBlocked(ctx, tx, tableID, blocked); err != nil {
			return err
		}
		return store.AppendLog(ctx, tx, role, model.ActionTableBlock,
			fmt.Sprintf("table=%s blocked=%t", tableID, blocked))
	})
}

// ClearTable marks a table as emptied, resetting its occupancy clock so
// the next first order starts a fresh one.
func ClearTable(ctx context.Context, dbc *sql.DB, role, tableID string) error {
	return db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		if err := store.ClearTable(ctx, tx, tableID); err != nil {
			return err
		}
		return store.AppendLog(ctx, tx, role, model.ActionTableClear,
			fmt.Sprintf("table=%s", tableID))
	})
}

// UpdateSettings persists new venue settings after basic sanity checks.
func UpdateSettings(ctx context.Context, dbc *sql.DB, role string, s *model.Settings) error {
	if s.TimeWarning1 < 1 || s.TimeWarning2 <= s.TimeWarning1 {
		return validationf("alert thresholds must satisfy 0 < first < second")
	}
	if s.TotalTables < 1 {
		return validationf("table count must be at least 1")
	}
	if s.ItemsPerTwoGuests < 0 {
		return validationf("items per two guests cannot be negative")
	}

	return db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		if err := store.UpdateSettings(ctx, tx, s); err != nil {
			return err
		}
		return store.AppendLog(ctx, tx, role, model.ActionUpdateSetting, "settings updated")
	})
}

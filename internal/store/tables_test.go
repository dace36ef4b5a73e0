package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hyunwoo/tably/internal/db"
)

func TestEnsureTableStateLazyCreate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := GetTableState(ctx, database, "5"); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows before first reference, got %v", err)
	}

	ts, err := EnsureTableState(ctx, database, "5")
	if err != nil {
		t.Fatalf("EnsureTableState: %v", err)
	}
	if ts.Blocked || ts.OccupiedSince != nil {
		t.Errorf("new table state should be empty and unblocked: %+v", ts)
	}

	// Idempotent.
	again, err := EnsureTableState(ctx, database, "5")
	if err != nil {
		t.Fatalf("EnsureTableState again: %v", err)
	}
	if again.TableID != "5" {
		t.Errorf("unexpected table id %q", again.TableID)
	}
}

func TestMarkTableOccupiedOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	EnsureTableState(ctx, database, "2")

	first := time.Date(2025, 5, 29, 18, 0, 0, 0, time.UTC)
	if err := MarkTableOccupied(ctx, database, "2", first); err != nil {
		t.Fatalf("MarkTableOccupied: %v", err)
	}

	// A later stamp must not overwrite the existing occupancy start.
	later := first.Add(time.Hour)
	if err := MarkTableOccupied(ctx, database, "2", later); err != nil {
		t.Fatalf("MarkTableOccupied again: %v", err)
	}

	ts, _ := GetTableState(ctx, database, "2")
	if ts.OccupiedSince == nil || !ts.OccupiedSince.Equal(first) {
		t.Errorf("expected occupied since %v, got %v", first, ts.OccupiedSince)
	}
}

func TestBlockAndClearTable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Block creates the row if needed.
	if err := SetTableBlocked(ctx, database, "7", true); err != nil {
		t.Fatalf("SetTableBlocked: %v", err)
	}
	ts, _ := GetTableState(ctx, database, "7")
	if !ts.Blocked {
		t.Error("expected table to be blocked")
	}

	MarkTableOccupied(ctx, database, "7", time.Now().UTC())

	if err := ClearTable(ctx, database, "7"); err != nil {
		t.Fatalf("ClearTable: %v", err)
	}
	ts, _ = GetTableState(ctx, database, "7")
	if ts.OccupiedSince != nil {
		t.Error("expected occupancy cleared")
	}
	if !ts.Blocked {
		t.Error("clearing must not unblock the table")
	}
}

func TestListTableStates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	EnsureTableState(ctx, database, "1")
	SetTableBlocked(ctx, database, "2", true)

	states, err := ListTableStates(ctx, database)
	if err != nil {
		t.Fatalf("ListTableStates: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if !states["2"].Blocked {
		t.Error("expected table 2 blocked")
	}
}

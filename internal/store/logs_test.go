package store

import (
	"context"
	"testing"
	"time"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
)

func TestAppendAndListLogs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	AppendLog(ctx, database, model.RoleAdmin, model.ActionConfirmOrder, "order=1")
	AppendLog(ctx, database, model.RoleKitchen, model.ActionCookedItem, "item=Soup qty=2")
	AppendLog(ctx, database, model.RoleSystem, model.ActionTimeWarning1, "order=1 code=120000 elapsed=51m")

	all, err := ListLogs(ctx, database, LogFilter{})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	// Newest first.
	if all[0].Action != model.ActionTimeWarning1 {
		t.Errorf("expected newest entry first, got %s", all[0].Action)
	}
}

func TestListLogsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	AppendLog(ctx, database, model.RoleAdmin, model.ActionConfirmOrder, "order=1")
	AppendLog(ctx, database, model.RoleKitchen, model.ActionCookedItem, "item=Soup qty=2")

	byRole, _ := ListLogs(ctx, database, LogFilter{Role: "kitchen"})
	if len(byRole) != 1 || byRole[0].Role != model.RoleKitchen {
		t.Errorf("role filter failed: %+v", byRole)
	}

	byAction, _ := ListLogs(ctx, database, LogFilter{Action: "CONFIRM"})
	if len(byAction) != 1 || byAction[0].Action != model.ActionConfirmOrder {
		t.Errorf("action filter failed: %+v", byAction)
	}

	byDetail, _ := ListLogs(ctx, database, LogFilter{Detail: "Soup"})
	if len(byDetail) != 1 {
		t.Errorf("detail filter failed: %+v", byDetail)
	}

	none, _ := ListLogs(ctx, database, LogFilter{From: time.Now().Add(time.Hour)})
	if len(none) != 0 {
		t.Errorf("expected empty window, got %d entries", len(none))
	}
}

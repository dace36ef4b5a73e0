package pos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// Occupancy levels for the admin table overview, derived from the same
// thresholds as the order alerts.
const (
	LevelEmpty  = "empty"
	LevelNormal = "normal"
	LevelWarn   = "warn"
	LevelAlert  = "alert"
)

// TableStatus is one row of the admin table overview.
type TableStatus struct {
	TableID         string `json:"table_id"`
	Blocked         bool   `json:"blocked"`
	Occupied        bool   `json:"occupied"`
	OccupiedMinutes int    `json:"occupied_minutes"`
	Level           string `json:"level"`
}

// TableOverview reports every addressable table (takeout first) with its
// occupancy duration and alert level.
func TableOverview(ctx context.Context, dbc *sql.DB, now time.Time) ([]TableStatus, error) {
	settings, err := store.GetSettings(ctx, dbc)
	if err != nil {
		return nil, err
	}
	states, err := store.ListTableStates(ctx, dbc)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, settings.TotalTables+1)
	ids = append(ids, model.Takeout)
	for i := 1; i <= settings.TotalTables; i++ {
		ids = append(ids, strconv.Itoa(i))
	}

	overview := make([]TableStatus, 0, len(ids))
	for _, id := range ids {
		status := TableStatus{TableID: id, Level: LevelEmpty}
		if ts, ok := states[id]; ok {
			status.Blocked = ts.Blocked
			if ts.OccupiedSince != nil {
				status.Occupied = true
				minutes := int(now.Sub(*ts.OccupiedSince).Minutes())
				status.OccupiedMinutes = minutes
				switch {
				case minutes >= settings.TimeWarning2:
					status.Level = LevelAlert
				case minutes >= settings.TimeWarning1:
					status.Level = LevelWarn
				default:
					status.Level = LevelNormal
				}
			}
		}
		overview = append(overview, status)
	}
	return overview, nil
}

// SalesTotal returns revenue from paid and completed orders, excluding
// zero-priced service orders.
func SalesTotal(ctx context.Context, dbc *sql.DB) (int, error) {
	return store.SalesTotal(ctx, dbc)
}

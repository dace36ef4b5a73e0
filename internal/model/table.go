package model

import "time"

// Takeout is the table identifier used for takeout orders. Takeout orders
// require a contact phone and never occupy a table.
const Takeout = "TAKEOUT"

// TableState tracks occupancy and ordering availability for one table.
// Rows are created lazily on first reference and never deleted; clearing
// a table just resets OccupiedSince.
type TableState struct {
	TableID       string     `json:"table_id"`
	OccupiedSince *time.Time `json:"occupied_since,omitempty"`
	Blocked       bool       `json:"blocked"`
}

package model

import "time"

// LogEntry is one append-only audit record. Written by the core on every
// staff/kitchen action and by the alert monitor; read-only afterwards.
type LogEntry struct {
	ID       int64     `json:"id"`
	LoggedAt time.Time `json:"logged_at"`
	Role     string    `json:"role"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
}

// Log action tags.
const (
	ActionConfirmOrder  = "CONFIRM_ORDER"
	ActionRejectOrder   = "REJECT_ORDER"
	ActionCompleteOrder = "COMPLETE_ORDER"
	ActionServiceOrder  = "ADMIN_SERVICE"
	ActionDeliverItem   = "ADMIN_DELIVER_ITEM"
	ActionCookedItem    = "KITCHEN_DONE_ITEM"
	ActionSoldOutToggle = "SOLDOUT_TOGGLE"
	ActionUpdateStock   = "UPDATE_STOCK"
	ActionUpdateSetting = "UPDATE_SETTINGS"
	ActionTableBlock    = "TABLE_BLOCK"
	ActionTableClear    = "TABLE_CLEAR"
	ActionTimeWarning1  = "TIME_WARNING1"
	ActionTimeWarning2  = "TIME_WARNING2"
)

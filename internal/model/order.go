package model

import "time"

// Order is the aggregate root for the lifecycle state machine. Orders are
// never deleted; completed and rejected orders stay around for the audit
// log and sales totals.
type Order struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	TableID     string     `json:"table_id"`
	Phone       string     `json:"phone,omitempty"`
	PartySize   int        `json:"party_size"`
	TotalPrice  int        `json:"total_price"`
	Status      string     `json:"status"`
	Service     bool       `json:"service"`
	Alert1      bool       `json:"alert1"`
	Alert2      bool       `json:"alert2"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	Lines []OrderLine `json:"lines,omitempty"`

	// StockWarning is set on pending-order snapshots when any referenced
	// menu item's stock is negative, so staff see oversold items before
	// confirming. Derived, not stored.
	StockWarning bool `json:"stock_warning,omitempty"`
}

// Order statuses. Transitions: pending → paid → completed, or
// pending → rejected. No transition ever reverses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// OrderLine is one menu-item entry within an order, with its own
// fulfillment progress. 0 <= Delivered <= Cooked <= Quantity always.
type OrderLine struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"order_id"`
	MenuItemID int64  `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Cooked     int    `json:"cooked"`
	Delivered  int    `json:"delivered"`

	// Joined fields (not always populated).
	MenuItemName string `json:"menu_item_name,omitempty"`
	Category     string `json:"category,omitempty"`
}

// IsFirst reports whether this order initiated its table's occupancy.
// Only first orders carry a party size.
func (o *Order) IsFirst() bool {
	return o.PartySize > 0
}

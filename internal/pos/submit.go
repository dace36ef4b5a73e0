package pos

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// LineRequest is one requested menu item with its quantity.
type LineRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// SubmitRequest is a customer order submission.
type SubmitRequest struct {
	TableID      string        `json:"table_id"`
	FirstOrder   bool          `json:"first_order"`
	PartySize    int           `json:"party_size"`
	Acknowledged bool          `json:"acknowledged"`
	Phone        string        `json:"phone"`
	Lines        []LineRequest `json:"lines"`
}

// SubmitResult is returned to the customer on success.
type SubmitResult struct {
	OrderID    int64  `json:"order_id"`
	Code       string `json:"code"`
	TotalPrice int    `json:"total_price"`
}

// categoryCredits maps each menu category to how many food-minimum slots
// and main-dish slots one unit of it fills. A special set bundles a main
// and a side, so it fills two food slots and one main slot. Options and
// drinks fill nothing.
var categoryCredits = map[string]struct{ Food, Main int }{
	model.CategorySpecial: {Food: 2, Main: 1},
	model.CategoryMain:    {Food: 1, Main: 1},
	model.CategorySide:    {Food: 1},
	model.CategoryDessert: {Food: 1},
}

type orderedItem struct {
	item     *model.MenuItem
	quantity int
}

// SubmitOrder validates and persists a customer order with status
// pending. The order and all of its lines persist atomically, or nothing
// does.
func SubmitOrder(ctx context.Context, dbc *sql.DB, req SubmitRequest) (*SubmitResult, error) {
	var result *SubmitResult

	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		settings, err := store.GetSettings(ctx, tx)
		if err != nil {
			return err
		}

		if !validTableID(req.TableID, settings.TotalTables) {
			return validationf("select a valid table")
		}
		if req.TableID == model.Takeout && req.Phone == "" {
			return validationf("takeout orders need a contact phone number")
		}

		ts, err := store.EnsureTableState(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		if ts.Blocked {
			return validationf("table %s is blocked for ordering", req.TableID)
		}

		items, err := resolveLines(ctx, tx, req.Lines)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return validationf("select at least one menu item")
		}

		if req.FirstOrder {
			if !req.Acknowledged {
				return validationf("the house notice must be acknowledged on a first order")
			}
			if req.PartySize < 1 {
				return validationf("party size must be at least 1 on a first order")
			}
			if err := checkComposition(items, req.PartySize, settings); err != nil {
				return err
			}
		}

		total := 0
		lines := make([]model.OrderLine, 0, len(items))
		for _, oi := range items {
			total += oi.item.Price * oi.quantity
			lines = append(lines, model.OrderLine{
				MenuItemID: oi.item.ID,
				Quantity:   oi.quantity,
			})
		}

		now := time.Now()
		order := &model.Order{
			Code:       orderCode(now),
			TableID:    req.TableID,
			PartySize:  req.PartySize,
			TotalPrice: total,
			Status:     model.StatusPending,
			CreatedAt:  now.UTC(),
			Lines:      lines,
		}
		if req.TableID == model.Takeout {
			order.Phone = req.Phone
		}
		if !req.FirstOrder {
			order.PartySize = 0
		}

		if err := store.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		result = &SubmitResult{OrderID: order.ID, Code: order.Code, TotalPrice: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveLines looks up every requested item and rejects sold-out ones.
// Zero quantities are skipped, matching an order form that posts every
// menu row.
func resolveLines(ctx context.Context, q store.DBTX, reqs []LineRequest) ([]orderedItem, error) {
	var items []orderedItem
	for _, lr := range reqs {
		if lr.Quantity == 0 {
			continue
		}
		if lr.Quantity < 0 {
			return nil, validationf("quantities must be positive")
		}
		item, err := store.GetMenuItem(ctx, q, lr.MenuItemID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("menu item %d: %w", lr.MenuItemID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if item.SoldOut {
			return nil, validationf("%s is sold out", item.Name)
		}
		items = append(items, orderedItem{item: item, quantity: lr.Quantity})
	}
	return items, nil
}

// checkComposition enforces the first-order minimums: enough
// food-category items for the party, and at least one main dish when
// required. Credits come from categoryCredits so a set can fill several
// slots at once.
func checkComposition(items []orderedItem, partySize int, s *model.Settings) error {
	needed := (partySize + 1) / 2 * s.ItemsPerTwoGuests
	if needed < 1 {
		needed = 1
	}

	food, main := 0, 0
	for _, oi := range items {
		credits := categoryCredits[oi.item.Category]
		food += credits.Food * oi.quantity
		main += credits.Main * oi.quantity
	}

	if food < needed {
		return validationf("a party of %d needs at least %d main/side/dessert items, got %d",
			partySize, needed, food)
	}
	if s.RequireMain && main < 1 {
		return validationf("at least one main dish is required on a first order")
	}
	return nil
}

// validTableID accepts the takeout marker or a table number within the
// configured range.
func validTableID(tableID string, totalTables int) bool {
	if tableID == model.Takeout {
		return true
	}
	n, err := strconv.Atoi(tableID)
	if err != nil {
		return false
	}
	return n >= 1 && n <= totalTables
}

// orderCode derives the human-facing short code from the creation time.
// Display only; collisions across days are acceptable.
func orderCode(t time.Time) string {
	return t.Format("150405")
}

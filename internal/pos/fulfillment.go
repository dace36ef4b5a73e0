package pos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// RecordCooked distributes a cooked quantity of one menu item across all
// paid orders' matching lines, oldest order first, filling each line's
// remaining to-cook amount before moving on. Returns how much was
// applied; a shortfall against the requested quantity means the kitchen
// cooked more than was outstanding and the surplus was not recorded.
func RecordCooked(ctx context.Context, dbc *sql.DB, role, menuItemName string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, validationf("cooked quantity must be at least 1")
	}

	applied := 0
	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		item, err := store.GetMenuItemByName(ctx, tx, menuItemName)
		if err == sql.ErrNoRows {
			return fmt.Errorf("menu item %q: %w", menuItemName, ErrNotFound)
		}
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT l.id, l.quantity - l.cooked
			 FROM order_lines l
			 JOIN orders o ON o.id = l.order_id
			 WHERE o.status = ? AND l.menu_item_id = ? AND l.cooked < l.quantity
			 ORDER BY o.id, l.id`,
			model.StatusPaid, item.ID,
		)
		if err != nil {
			return fmt.Errorf("finding outstanding lines: %w", err)
		}

		type fill struct {
			lineID int64
			amount int
		}
		var fills []fill
		remaining := quantity
		for rows.Next() && remaining > 0 {
			var lineID int64
			var toCook int
			if err := rows.Scan(&lineID, &toCook); err != nil {
				rows.Close()
				return fmt.Errorf("scanning outstanding line: %w", err)
			}
			amount := toCook
			if amount > remaining {
				amount = remaining
			}
			fills = append(fills, fill{lineID: lineID, amount: amount})
			remaining -= amount
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, f := range fills {
			if err := store.AddLineCooked(ctx, tx, f.lineID, f.amount); err != nil {
				return err
			}
		}

		applied = quantity - remaining
		return store.AppendLog(ctx, tx, role, model.ActionCookedItem,
			fmt.Sprintf("item=%s qty=%d applied=%d", item.Name, quantity, applied))
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// RecordDelivered increments one line's delivered counter, bounded by
// its cooked count. Requests beyond cooked-but-undelivered are rejected
// rather than clamped. When the final line of a paid order reaches full
// delivery the order advances to completed in the same transaction.
func RecordDelivered(ctx context.Context, dbc *sql.DB, role string, orderID int64, menuItemName string, quantity int) (*model.Order, error) {
	if quantity < 1 {
		return nil, validationf("delivered quantity must be at least 1")
	}

	var result *model.Order
	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		order, err := store.GetOrder(ctx, tx, orderID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if order.Status != model.StatusPaid && order.Status != model.StatusCompleted {
			return preconditionErr(orderID, order, model.StatusPaid)
		}

		var line *model.OrderLine
		for i := range order.Lines {
			if order.Lines[i].MenuItemName == menuItemName {
				line = &order.Lines[i]
				break
			}
		}
		if line == nil {
			return validationf("%s is not part of order %d", menuItemName, orderID)
		}

		undelivered := line.Cooked - line.Delivered
		if undelivered <= 0 || quantity > undelivered {
			return validationf("cannot deliver %d of %s, only %d cooked and undelivered",
				quantity, menuItemName, undelivered)
		}

		if err := store.AddLineDelivered(ctx, tx, line.ID, quantity); err != nil {
			return err
		}
		line.Delivered += quantity

		// Every line fully delivered closes the order out.
		if order.Status == model.StatusPaid && allDelivered(order.Lines) {
			ok, err := store.TransitionStatus(ctx, tx, orderID, model.StatusPaid, model.StatusCompleted, nil)
			if err != nil {
				return err
			}
			if ok {
				order.Status = model.StatusCompleted
			}
		}

		if err := store.AppendLog(ctx, tx, role, model.ActionDeliverItem,
			fmt.Sprintf("order=%d item=%s qty=%d", orderID, menuItemName, quantity)); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func allDelivered(lines []model.OrderLine) bool {
	for _, l := range lines {
		if l.Delivered < l.Quantity {
			return false
		}
	}
	return true
}

// KitchenBacklog returns the outstanding (ordered but not yet cooked)
// quantity per menu item name across all paid orders.
func KitchenBacklog(ctx context.Context, dbc *sql.DB) (map[string]int, error) {
	rows, err := dbc.QueryContext(ctx,
		`SELECT m.name, SUM(l.quantity - l.cooked)
		 FROM order_lines l
		 JOIN orders o ON o.id = l.order_id
		 JOIN menu_items m ON m.id = l.menu_item_id
		 WHERE o.status = ? AND l.cooked < l.quantity
		 GROUP BY m.name`,
		model.StatusPaid,
	)
	if err != nil {
		return nil, fmt.Errorf("loading kitchen backlog: %w", err)
	}
	defer rows.Close()

	backlog := make(map[string]int)
	for rows.Next() {
		var name string
		var outstanding int
		if err := rows.Scan(&name, &outstanding); err != nil {
			return nil, fmt.Errorf("scanning backlog row: %w", err)
		}
		backlog[name] = outstanding
	}
	return backlog, rows.Err()
}

package pos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// ConfirmOrder marks a pending order as paid. In the same transaction it
// stamps the confirmation time, decrements stock for every line, and,
// for a table's first order, starts the table's occupancy clock. The
// pending check and the transition are one guarded update, so a second
// concurrent confirm observes the precondition failure instead of
// decrementing stock twice.
func ConfirmOrder(ctx context.Context, dbc *sql.DB, role string, orderID int64) (*model.Order, error) {
	var confirmed *model.Order

	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		ok, err := store.TransitionStatus(ctx, tx, orderID, model.StatusPending, model.StatusPaid, &now)
		if err != nil {
			return err
		}
		if !ok {
			return transitionFailure(ctx, tx, orderID, model.StatusPending)
		}

		order, err := store.GetOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.IsFirst() {
			if _, err := store.EnsureTableState(ctx, tx, order.TableID); err != nil {
				return err
			}
			if err := store.MarkTableOccupied(ctx, tx, order.TableID, now); err != nil {
				return err
			}
		}

		for _, line := range order.Lines {
			if _, err := store.DecrementStock(ctx, tx, line.MenuItemID, line.Quantity); err != nil {
				if err == sql.ErrNoRows {
					return fmt.Errorf("menu item %d: %w", line.MenuItemID, ErrNotFound)
				}
				return err
			}
		}

		if err := store.AppendLog(ctx, tx, role, model.ActionConfirmOrder,
			fmt.Sprintf("order=%d", orderID)); err != nil {
			return err
		}

		confirmed = order
		confirmed.Status = model.StatusPaid
		confirmed.ConfirmedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// RejectOrder moves a pending order to the rejected terminal state.
func RejectOrder(ctx context.Context, dbc *sql.DB, role string, orderID int64) (*model.Order, error) {
	return transition(ctx, dbc, role, orderID, model.StatusPending, model.StatusRejected, model.ActionRejectOrder)
}

// CompleteOrder manually moves a paid order to completed, for staff who
// close an order out before every line is delivered.
func CompleteOrder(ctx context.Context, dbc *sql.DB, role string, orderID int64) (*model.Order, error) {
	return transition(ctx, dbc, role, orderID, model.StatusPaid, model.StatusCompleted, model.ActionCompleteOrder)
}

func transition(ctx context.Context, dbc *sql.DB, role string, orderID int64, from, to, action string) (*model.Order, error) {
	var result *model.Order

	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		ok, err := store.TransitionStatus(ctx, tx, orderID, from, to, nil)
		if err != nil {
			return err
		}
		if !ok {
			return transitionFailure(ctx, tx, orderID, from)
		}

		if err := store.AppendLog(ctx, tx, role, action,
			fmt.Sprintf("order=%d", orderID)); err != nil {
			return err
		}

		result, err = store.GetOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transitionFailure reports why a guarded transition matched nothing.
func transitionFailure(ctx context.Context, q store.DBTX, orderID int64, required string) error {
	order, err := store.GetOrder(ctx, q, orderID)
	if err == sql.ErrNoRows {
		return preconditionErr(orderID, nil, required)
	}
	if err != nil {
		return err
	}
	return preconditionErr(orderID, order, required)
}

// IssueServiceOrder creates a zero-priced staff order for complimentary
// items. It skips pending entirely: the order is created already paid
// and confirmed, with the stock decrement applied in the same
// transaction. Blocked tables and sold-out items are still rejected.
func IssueServiceOrder(ctx context.Context, dbc *sql.DB, role, tableID, menuItemName string, quantity int) (*model.Order, error) {
	var result *model.Order

	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		if quantity < 1 {
			return validationf("quantity must be at least 1")
		}
		settings, err := store.GetSettings(ctx, tx)
		if err != nil {
			return err
		}
		if !validTableID(tableID, settings.TotalTables) {
			return validationf("select a valid table")
		}

		ts, err := store.EnsureTableState(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if ts.Blocked {
			return validationf("table %s is blocked for ordering", tableID)
		}

		item, err := store.GetMenuItemByName(ctx, tx, menuItemName)
		if err == sql.ErrNoRows {
			return fmt.Errorf("menu item %q: %w", menuItemName, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if item.SoldOut {
			return validationf("%s is sold out", item.Name)
		}

		now := time.Now()
		confirmedAt := now.UTC()
		order := &model.Order{
			Code:        orderCode(now),
			TableID:     tableID,
			TotalPrice:  0,
			Status:      model.StatusPaid,
			Service:     true,
			CreatedAt:   now.UTC(),
			ConfirmedAt: &confirmedAt,
			Lines: []model.OrderLine{
				{MenuItemID: item.ID, Quantity: quantity},
			},
		}
		if err := store.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		if _, err := store.DecrementStock(ctx, tx, item.ID, quantity); err != nil {
			return err
		}

		if err := store.AppendLog(ctx, tx, role, model.ActionServiceOrder,
			fmt.Sprintf("order=%d item=%s qty=%d", order.ID, item.Name, quantity)); err != nil {
			return err
		}

		result, err = store.GetOrder(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListOrders returns a snapshot of orders in the given status, oldest
// first unless desc. The status query and the line attachment run in one
// read transaction, so a concurrent delivery or confirmation commit
// cannot tear the snapshot between them.
func ListOrders(ctx context.Context, dbc *sql.DB, status string, desc bool) ([]model.Order, error) {
	switch status {
	case model.StatusPending, model.StatusPaid, model.StatusCompleted, model.StatusRejected:
	default:
		return nil, validationf("unknown order status %q", status)
	}

	var orders []model.Order
	err := db.WithTx(ctx, dbc, func(tx *sql.Tx) error {
		var err error
		orders, err = store.ListOrdersByStatus(ctx, tx, status, desc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

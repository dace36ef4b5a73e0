package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyunwoo/tably/internal/model"
)

// CreateOrder inserts an order and all of its lines, filling in the
// generated IDs. Callers run this inside db.WithTx so the order and its
// lines persist together or not at all.
func CreateOrder(ctx context.Context, q DBTX, o *model.Order) error {
	var confirmedAt any
	if o.ConfirmedAt != nil {
		confirmedAt = *o.ConfirmedAt
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO orders (code, table_id, phone, party_size, total_price, status, service, created_at, confirmed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Code, o.TableID, nullString(o.Phone), o.PartySize, o.TotalPrice,
		o.Status, o.Service, o.CreatedAt, confirmedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	o.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting order id: %w", err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		result, err := q.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, menu_item_id, quantity, cooked, delivered)
			 VALUES (?, ?, ?, 0, 0)`,
			o.ID, line.MenuItemID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("creating order line: %w", err)
		}
		line.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting order line id: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, code, table_id, phone, party_size, total_price, status, service, alert1, alert2, created_at, confirmed_at`

// GetOrder returns an order with its lines, or ErrNoRows. Like
// ListOrdersByStatus it issues two statements, so callers racing
// concurrent writers must pass a transaction for q.
func GetOrder(ctx context.Context, q DBTX, id int64) (*model.Order, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id,
	)

	o := &model.Order{}
	var phone sql.NullString
	var confirmedAt sql.NullTime
	err := row.Scan(&o.ID, &o.Code, &o.TableID, &phone, &o.PartySize, &o.TotalPrice,
		&o.Status, &o.Service, &o.Alert1, &o.Alert2, &o.CreatedAt, &confirmedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	o.Phone = phone.String
	if confirmedAt.Valid {
		t := confirmedAt.Time
		o.ConfirmedAt = &t
	}

	if err := attachLines(ctx, q, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersByStatus returns a snapshot of all orders in the given
// status, ordered by creation sequence (ascending unless desc), with
// lines attached. Pending orders additionally carry StockWarning when
// any referenced item's stock is negative. The status query and the
// line attachment are separate statements, so callers sharing the
// database with concurrent writers must pass a transaction for q.
func ListOrdersByStatus(ctx context.Context, q DBTX, status string, desc bool) ([]model.Order, error) {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = ? ORDER BY id `+direction,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		var phone sql.NullString
		var confirmedAt sql.NullTime
		if err := rows.Scan(&o.ID, &o.Code, &o.TableID, &phone, &o.PartySize, &o.TotalPrice,
			&o.Status, &o.Service, &o.Alert1, &o.Alert2, &o.CreatedAt, &confirmedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		o.Phone = phone.String
		if confirmedAt.Valid {
			t := confirmedAt.Time
			o.ConfirmedAt = &t
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*model.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := attachLines(ctx, q, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the lines (with joined menu fields) for the given
// orders and sets StockWarning for pending orders touching oversold
// items.
func attachLines(ctx context.Context, q DBTX, orders []*model.Order) error {
	for _, o := range orders {
		rows, err := q.QueryContext(ctx,
			`SELECT l.id, l.order_id, l.menu_item_id, l.quantity, l.cooked, l.delivered,
			        m.name, m.category, m.stock
			 FROM order_lines l
			 JOIN menu_items m ON m.id = l.menu_item_id
			 WHERE l.order_id = ?
			 ORDER BY l.id`, o.ID,
		)
		if err != nil {
			return fmt.Errorf("loading order lines: %w", err)
		}

		var lines []model.OrderLine
		warning := false
		for rows.Next() {
			var line model.OrderLine
			var stock int
			if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Quantity,
				&line.Cooked, &line.Delivered, &line.MenuItemName, &line.Category, &stock); err != nil {
				rows.Close()
				return fmt.Errorf("scanning order line: %w", err)
			}
			if stock < 0 {
				warning = true
			}
			lines = append(lines, line)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		o.Lines = lines
		if o.Status == model.StatusPending {
			o.StockWarning = warning
		}
	}
	return nil
}

// TransitionStatus atomically moves an order from one status to another.
// The status check and the update are a single guarded statement, so two
// concurrent transitions on the same order cannot both succeed. Returns
// false if the order was not in the from status (or doesn't exist).
func TransitionStatus(ctx context.Context, q DBTX, id int64, from, to string, confirmedAt *time.Time) (bool, error) {
	var result sql.Result
	var err error
	if confirmedAt != nil {
		result, err = q.ExecContext(ctx,
			`UPDATE orders SET status = ?, confirmed_at = ? WHERE id = ? AND status = ?`,
			to, *confirmedAt, id, from,
		)
	} else {
		result, err = q.ExecContext(ctx,
			`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
			to, id, from,
		)
	}
	if err != nil {
		return false, fmt.Errorf("transitioning order status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking transition: %w", err)
	}
	return n > 0, nil
}

// AddLineCooked increments a line's cooked counter. The schema CHECK
// rejects anything past the line quantity.
func AddLineCooked(ctx context.Context, q DBTX, lineID int64, delta int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE order_lines SET cooked = cooked + ? WHERE id = ?`, delta, lineID,
	)
	if err != nil {
		return fmt.Errorf("updating cooked count: %w", err)
	}
	return nil
}

// AddLineDelivered increments a line's delivered counter. The schema
// CHECK rejects anything past the cooked count.
func AddLineDelivered(ctx context.Context, q DBTX, lineID int64, delta int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE order_lines SET delivered = delivered + ? WHERE id = ?`, delta, lineID,
	)
	if err != nil {
		return fmt.Errorf("updating delivered count: %w", err)
	}
	return nil
}

// SalesTotal returns the summed total of all non-service orders that
// have been paid or completed.
func SalesTotal(ctx context.Context, q DBTX) (int, error) {
	var total int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders
		 WHERE service = 0 AND status IN (?, ?)`,
		model.StatusPaid, model.StatusCompleted,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing sales: %w", err)
	}
	return total, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

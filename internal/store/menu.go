package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyunwoo/tably/internal/model"
)

// ErrNoRows is re-exported so callers can distinguish missing rows
// without importing database/sql.
var ErrNoRows = sql.ErrNoRows

const menuColumns = `id, name, price, category, stock, sold_out, image_mime, created_at`

// CreateMenuItem creates a new menu item with the given starting stock.
func CreateMenuItem(ctx context.Context, q DBTX, name string, price int, category string, stock int) (*model.MenuItem, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO menu_items (name, price, category, stock) VALUES (?, ?, ?, ?)`,
		name, price, category, stock,
	)
	if err != nil {
		return nil, fmt.Errorf("creating menu item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting menu item id: %w", err)
	}

	return GetMenuItem(ctx, q, id)
}

// GetMenuItem returns a menu item by ID, or ErrNoRows if it doesn't exist.
func GetMenuItem(ctx context.Context, q DBTX, id int64) (*model.MenuItem, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = ?`, id,
	)
	return scanMenuItem(row)
}

// GetMenuItemByName returns a menu item by its unique name.
func GetMenuItemByName(ctx context.Context, q DBTX, name string) (*model.MenuItem, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE name = ?`, name,
	)
	return scanMenuItem(row)
}

func scanMenuItem(row *sql.Row) (*model.MenuItem, error) {
	item := &model.MenuItem{}
	var imageMime sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Category,
		&item.Stock, &item.SoldOut, &imageMime, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning menu item: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// ListMenu returns all menu items ordered by category then name.
func ListMenu(ctx context.Context, q DBTX) ([]model.MenuItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing menu: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var item model.MenuItem
		var imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Category,
			&item.Stock, &item.SoldOut, &imageMime, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// DecrementStock subtracts quantity from an item's stock in a single
// read-modify-write statement and returns the new value. The result may
// be negative: overselling is surfaced to staff, not rejected.
func DecrementStock(ctx context.Context, q DBTX, id int64, quantity int) (int, error) {
	var stock int
	err := q.QueryRowContext(ctx,
		`UPDATE menu_items SET stock = stock - ? WHERE id = ? RETURNING stock`,
		quantity, id,
	).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("decrementing stock: %w", err)
	}
	return stock, nil
}

// SetStock overwrites an item's stock with an absolute value.
func SetStock(ctx context.Context, q DBTX, id int64, value int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE menu_items SET stock = ? WHERE id = ?`, value, id,
	)
	if err != nil {
		return fmt.Errorf("setting stock: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleSoldOut flips an item's sold-out flag and returns the new state.
// Stock is untouched.
func ToggleSoldOut(ctx context.Context, q DBTX, id int64) (bool, error) {
	var soldOut bool
	err := q.QueryRowContext(ctx,
		`UPDATE menu_items SET sold_out = NOT sold_out WHERE id = ? RETURNING sold_out`,
		id,
	).Scan(&soldOut)
	if err == sql.ErrNoRows {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("toggling sold out: %w", err)
	}
	return soldOut, nil
}

// SetMenuImage sets a menu item's photo.
func SetMenuImage(ctx context.Context, q DBTX, id int64, image []byte, mime string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE menu_items SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting menu image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetMenuImage returns a menu item's photo and MIME type.
func GetMenuImage(ctx context.Context, q DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM menu_items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", err
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting menu image: %w", err)
	}
	return image, mime.String, nil
}

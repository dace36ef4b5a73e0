package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Stock deliberately has no CHECK:
// confirming an order may drive it negative, which staff reconcile
// manually. The order_lines CHECKs back up the fulfillment invariant.
const schema = `
CREATE TABLE IF NOT EXISTS menu_items (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    price      INTEGER NOT NULL CHECK (price >= 0),
    category   TEXT NOT NULL CHECK (category IN ('special', 'main', 'side', 'dessert', 'options', 'drink')),
    stock      INTEGER NOT NULL DEFAULT 0,
    sold_out   INTEGER NOT NULL DEFAULT 0,
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS orders (
    id           INTEGER PRIMARY KEY,
    code         TEXT NOT NULL,
    table_id     TEXT NOT NULL,
    phone        TEXT,
    party_size   INTEGER NOT NULL DEFAULT 0,
    total_price  INTEGER NOT NULL,
    status       TEXT NOT NULL CHECK (status IN ('pending', 'paid', 'completed', 'rejected')),
    service      INTEGER NOT NULL DEFAULT 0,
    alert1       INTEGER NOT NULL DEFAULT 0,
    alert2       INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    confirmed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS order_lines (
    id           INTEGER PRIMARY KEY,
    order_id     INTEGER NOT NULL REFERENCES orders(id),
    menu_item_id INTEGER NOT NULL REFERENCES menu_items(id),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    cooked       INTEGER NOT NULL DEFAULT 0,
    delivered    INTEGER NOT NULL DEFAULT 0,
    CHECK (cooked >= 0 AND cooked <= quantity),
    CHECK (delivered >= 0 AND delivered <= cooked)
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);

CREATE TABLE IF NOT EXISTS table_state (
    table_id       TEXT PRIMARY KEY,
    occupied_since DATETIME,
    blocked        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS logs (
    id        INTEGER PRIMARY KEY,
    logged_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    role      TEXT NOT NULL,
    action    TEXT NOT NULL,
    detail    TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

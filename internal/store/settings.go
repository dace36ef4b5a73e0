package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/hyunwoo/tably/internal/model"
)

// Settings keys.
const (
	keyTimeWarning1      = "time_warning1"
	keyTimeWarning2      = "time_warning2"
	keyTotalTables       = "total_tables"
	keyItemsPerTwoGuests = "items_per_two_guests"
	keyRequireMain       = "require_main"
)

// GetSettings loads the venue settings, falling back to defaults for any
// missing key.
func GetSettings(ctx context.Context, q DBTX) (*model.Settings, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s := model.DefaultSettings
	s.TimeWarning1 = intValue(values, keyTimeWarning1, s.TimeWarning1)
	s.TimeWarning2 = intValue(values, keyTimeWarning2, s.TimeWarning2)
	s.TotalTables = intValue(values, keyTotalTables, s.TotalTables)
	s.ItemsPerTwoGuests = intValue(values, keyItemsPerTwoGuests, s.ItemsPerTwoGuests)
	s.RequireMain = intValue(values, keyRequireMain, boolToInt(s.RequireMain)) != 0
	return &s, nil
}

// UpdateSettings persists the venue settings.
func UpdateSettings(ctx context.Context, q DBTX, s *model.Settings) error {
	pairs := map[string]int{
		keyTimeWarning1:      s.TimeWarning1,
		keyTimeWarning2:      s.TimeWarning2,
		keyTotalTables:       s.TotalTables,
		keyItemsPerTwoGuests: s.ItemsPerTwoGuests,
		keyRequireMain:       boolToInt(s.RequireMain),
	}
	for key, value := range pairs {
		_, err := q.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			key, strconv.Itoa(value),
		)
		if err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}
	return nil
}

func intValue(values map[string]string, key string, fallback int) int {
	raw, ok := values[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetJWTSecret retrieves the token-signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

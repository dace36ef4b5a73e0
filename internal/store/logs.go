package store

import (
	"context"
	"fmt"
	"time"

	"github.com/hyunwoo/tably/internal/model"
)

// AppendLog writes one audit record. Append-only; nothing in the system
// updates or deletes log rows.
func AppendLog(ctx context.Context, q DBTX, role, action, detail string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO logs (logged_at, role, action, detail) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), role, action, detail,
	)
	if err != nil {
		return fmt.Errorf("appending log: %w", err)
	}
	return nil
}

// LogFilter narrows ListLogs. Zero values mean no filtering.
type LogFilter struct {
	Role   string
	Action string
	Detail string
	From   time.Time
	To     time.Time
}

// ListLogs returns audit records, newest first, optionally filtered by
// substring match on role/action/detail and by time window.
func ListLogs(ctx context.Context, q DBTX, filter LogFilter) ([]model.LogEntry, error) {
	query := `SELECT id, logged_at, role, action, detail FROM logs WHERE 1=1`
	var args []any

	if filter.Role != "" {
		query += ` AND role LIKE ?`
		args = append(args, "%"+filter.Role+"%")
	}
	if filter.Action != "" {
		query += ` AND action LIKE ?`
		args = append(args, "%"+filter.Action+"%")
	}
	if filter.Detail != "" {
		query += ` AND detail LIKE ?`
		args = append(args, "%"+filter.Detail+"%")
	}
	if !filter.From.IsZero() {
		query += ` AND logged_at >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND logged_at <= ?`
		args = append(args, filter.To)
	}

	query += ` ORDER BY id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.LoggedAt, &e.Role, &e.Action, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

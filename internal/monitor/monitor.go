// Package monitor runs the background time-alert loop: every interval it
// scans paid orders and raises the two one-shot elapsed-time alerts.
package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/store"
)

// DefaultInterval is the scan cadence. Not reconfigurable at runtime.
const DefaultInterval = time.Minute

// Monitor watches paid orders for elapsed-time thresholds. One Monitor
// runs per process; Start launches the loop and Stop tears it down.
type Monitor struct {
	DB       *sql.DB
	Interval time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time

	stop chan struct{}
	done chan struct{}
}

// New creates a monitor with the default cadence.
func New(dbc *sql.DB) *Monitor {
	return &Monitor{
		DB:       dbc,
		Interval: DefaultInterval,
		Now:      time.Now,
	}
}

// Start launches the background loop. A failed tick is logged and the
// loop continues; only Stop ends it.
func (m *Monitor) Start() {
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				if err := m.Tick(context.Background()); err != nil {
					slog.Error("time-alert tick failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
}

// Tick performs one scan. The settings read and the paid-order listing
// share one read transaction so the scan works from a consistent
// snapshot; each order's alerts are then updated in their own short
// transaction so a long scan never starves foreground requests, and one
// malformed order does not halt alerting for the rest.
func (m *Monitor) Tick(ctx context.Context) error {
	var (
		settings *model.Settings
		orders   []model.Order
	)
	err := db.WithTx(ctx, m.DB, func(tx *sql.Tx) error {
		var err error
		settings, err = store.GetSettings(ctx, tx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		orders, err = store.ListOrdersByStatus(ctx, tx, model.StatusPaid, false)
		if err != nil {
			return fmt.Errorf("listing paid orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	now := m.Now()
	var firstErr error
	for i := range orders {
		o := &orders[i]
		if o.ConfirmedAt == nil {
			continue
		}
		elapsed := int(now.Sub(*o.ConfirmedAt).Minutes())

		if err := m.raiseAlerts(ctx, o, elapsed, settings); err != nil {
			slog.Error("raising order alerts", "order", o.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// raiseAlerts sets whichever one-shot flags the elapsed time has
// crossed. The guarded updates make each flag transition at most once
// per order no matter how many ticks observe the threshold.
func (m *Monitor) raiseAlerts(ctx context.Context, o *model.Order, elapsed int, s *model.Settings) error {
	return db.WithTx(ctx, m.DB, func(tx *sql.Tx) error {
		if !o.Alert1 && elapsed >= s.TimeWarning1 {
			set, err := setAlert(ctx, tx, o.ID, "alert1")
			if err != nil {
				return err
			}
			if set {
				if err := store.AppendLog(ctx, tx, model.RoleSystem, model.ActionTimeWarning1,
					fmt.Sprintf("order=%d code=%s elapsed=%dm", o.ID, o.Code, elapsed)); err != nil {
					return err
				}
			}
		}
		if !o.Alert2 && elapsed >= s.TimeWarning2 {
			set, err := setAlert(ctx, tx, o.ID, "alert2")
			if err != nil {
				return err
			}
			if set {
				if err := store.AppendLog(ctx, tx, model.RoleSystem, model.ActionTimeWarning2,
					fmt.Sprintf("order=%d code=%s elapsed=%dm", o.ID, o.Code, elapsed)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func setAlert(ctx context.Context, q store.DBTX, orderID int64, column string) (bool, error) {
	var query string
	switch column {
	case "alert1":
		query = `UPDATE orders SET alert1 = 1 WHERE id = ? AND alert1 = 0`
	case "alert2":
		query = `UPDATE orders SET alert2 = 1 WHERE id = ? AND alert2 = 0`
	default:
		return false, fmt.Errorf("unknown alert column %q", column)
	}

	result, err := q.ExecContext(ctx, query, orderID)
	if err != nil {
		return false, fmt.Errorf("setting %s: %w", column, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

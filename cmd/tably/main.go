package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyunwoo/tably/internal/api"
	"github.com/hyunwoo/tably/internal/auth"
	"github.com/hyunwoo/tably/internal/db"
	"github.com/hyunwoo/tably/internal/model"
	"github.com/hyunwoo/tably/internal/monitor"
	"github.com/hyunwoo/tably/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("tably", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "tably.sqlite3", "")
	fs.StringVar(&dbPath, "d", "tably.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var baseURL string
	fs.StringVar(&baseURL, "base-url", "http://localhost:8080", "")
	fs.StringVar(&baseURL, "b", "http://localhost:8080", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: tably [flags]

Flags:
  -d, -db <path>            SQLite database path (default: tably.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -b, -base-url <url>       public base URL for table QR codes (default: http://localhost:8080)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -h, -help                 show this help and exit

Environment:
  TABLY_ADMIN_USER          admin username (default: admin)
  TABLY_ADMIN_PASSWORD      admin password (required)
  TABLY_KITCHEN_USER        kitchen username (default: kitchen)
  TABLY_KITCHEN_PASSWORD    kitchen password (required)
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	creds, err := auth.NewCredentials(
		envOr("TABLY_ADMIN_USER", "admin"),
		os.Getenv("TABLY_ADMIN_PASSWORD"),
		envOr("TABLY_KITCHEN_USER", "kitchen"),
		os.Getenv("TABLY_KITCHEN_PASSWORD"),
	)
	if err != nil {
		slog.Error("invalid staff credentials", "error", err)
		os.Exit(1)
	}

	firstRun := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		firstRun = true
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if firstRun {
		if err := seed(ctx, database); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		slog.Info("database created and seeded", "path", dbPath)
	}

	slog.Info("database ready", "path", dbPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	// Start the table-turnover alert loop.
	alerts := monitor.New(database)
	alerts.Start()
	defer alerts.Stop()

	handler := api.LoggingMiddleware(api.NewRouter(database, creds, jwtSecret, baseURL))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// seed populates the default settings and the opening menu on first run.
func seed(ctx context.Context, database *sql.DB) error {
	if err := store.UpdateSettings(ctx, database, &model.DefaultSettings); err != nil {
		return err
	}

	menu := []struct {
		name     string
		price    int
		category string
		stock    int
	}{
		{"[Set] Chef's Night In", 29000, model.CategorySpecial, 40},
		{"[Main] Pork Toowoomba Pasta", 18000, model.CategoryMain, 40},
		{"[Main] Rouge & Blanc Stew", 14000, model.CategoryMain, 40},
		{"[Side] Rice Cake Roulade", 11000, model.CategorySide, 30},
		{"[Side] Grand Poisson Bites", 8000, model.CategorySide, 30},
		{"[Dessert] Campfire S'mores", 6000, model.CategoryDessert, 30},
		{"[Opt] Bread, 2 pcs", 1500, model.CategoryOptions, 50},
		{"[Opt] Morning Relief, 2 pcs", 5000, model.CategoryOptions, 40},
		{"[Drink] Sparkling Cider", 2000, model.CategoryDrink, 60},
		{"[Drink] Grape Soda", 2000, model.CategoryDrink, 60},
		{"[Drink] Still Water", 1000, model.CategoryDrink, 60},
	}
	for _, m := range menu {
		if _, err := store.CreateMenuItem(ctx, database, m.name, m.price, m.category, m.stock); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"PaymentLedger/internal/config"
	"PaymentLedger/internal/observability"
	"PaymentLedger/internal/persistence"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate <up|down>")
	fmt.Fprintln(os.Stderr, "  up   - apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down - roll back the last migration")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintln(os.Stderr, "  PAYMENTS_POSTGRES_DSN - Postgres connection string (required)")
}

func main() {
	if len(os.Args) != 2 {
		usage()
		os.Exit(2)
	}

	logger := observability.NewLogger("migrate")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if !cfg.PostgresEnabled() {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	migrator := persistence.NewMigrator(db, persistence.Migrations(), logger)

	switch os.Args[1] {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			logger.Fatal().Err(err).Msg("migrate up")
		}
		logger.Info().Msg("all migrations applied")

	case "down":
		if err := migrator.Down(ctx); err != nil {
			logger.Fatal().Err(err).Msg("migrate down")
		}
		logger.Info().Msg("last migration rolled back")

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s (use 'up' or 'down')\n", os.Args[1])
		os.Exit(2)
	}
}

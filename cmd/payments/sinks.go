package main

import (
	"PaymentLedger/internal/config"
	"PaymentLedger/internal/core"
	"PaymentLedger/internal/ledger"
	"PaymentLedger/internal/observability"
	"PaymentLedger/internal/persistence"
	"PaymentLedger/internal/publish"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// runSinks exports the final snapshot to every configured sink. The CSV is
// already on stdout, so sink failures are logged and never change the exit code.
func runSinks(ctx context.Context, cfg config.Config, engine *core.Engine, accounts []ledger.AccountSnapshot, metrics *observability.Metrics, logger zerolog.Logger) {
	run := persistence.NewRun(engine.GetSequence(), engine.GetStateHash())
	logger = logger.With().Str("run_id", run.ID.String()).Logger()

	if cfg.PostgresEnabled() {
		if err := exportPostgres(ctx, cfg, run, accounts, metrics, logger); err != nil {
			logger.Error().Err(err).Str("sink", "postgres").Msg("snapshot export failed")
		} else {
			logger.Info().Str("sink", "postgres").Int("accounts", len(accounts)).Msg("snapshot exported")
		}
	}

	if cfg.NATSEnabled() {
		if err := publishNATS(ctx, cfg, run, engine.GetStateHash(), accounts, metrics, logger); err != nil {
			logger.Error().Err(err).Str("sink", "nats").Msg("snapshot publish failed")
		} else {
			logger.Info().Str("sink", "nats").Int("accounts", len(accounts)).Msg("snapshot published")
		}
	}

	// Pushed last so the sink metrics above are included
	if cfg.PushEnabled() {
		pushCtx, cancel := context.WithTimeout(ctx, cfg.SinkTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
			logger.Error().Err(err).Str("sink", "pushgateway").Msg("metrics push failed")
		}
	}
}

func exportPostgres(ctx context.Context, cfg config.Config, run persistence.Run, accounts []ledger.AccountSnapshot, metrics *observability.Metrics, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SinkTimeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres open: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}

	migrator := persistence.NewMigrator(db, persistence.Migrations(), logger)
	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := persistence.NewSnapshotStore(db, persistence.DefaultBatchSize, metrics)
	return store.SaveSnapshot(ctx, run, accounts)
}

func publishNATS(ctx context.Context, cfg config.Config, run persistence.Run, stateHash [32]byte, accounts []ledger.AccountSnapshot, metrics *observability.Metrics, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SinkTimeout)
	defer cancel()

	nc, js, err := publish.ConnectNATS(cfg.NATSURL, cfg.SinkTimeout, logger)
	if err != nil {
		return err
	}
	defer nc.Drain()

	pub := publish.NewSnapshotPublisher(js, cfg.NATSStream, cfg.NATSSubjectPrefix, metrics)
	if err := pub.EnsureStream(ctx); err != nil {
		return err
	}
	return pub.Publish(ctx, run.ID, run.Sequence, stateHash, accounts)
}

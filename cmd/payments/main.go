package main

import (
	"PaymentLedger/internal/config"
	"PaymentLedger/internal/core"
	"PaymentLedger/internal/ingestion"
	"PaymentLedger/internal/observability"
	"PaymentLedger/internal/report"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run replays one input file and writes the final snapshot to stdout.
// Diagnostics go to stderr; the returned value is the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: payments <transactions.csv>")
		fmt.Fprintln(stderr, "  Replays the transaction log and prints client balances as CSV.")
		return exitUsage
	}

	// A bad environment never blocks the replay; it only turns the sinks off
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Defaults()
	}

	logger := observability.NewLoggerWithLevel(stderr, "payments", observability.ParseLogLevel(cfg.LogLevel))
	if cfgErr != nil {
		logger.Warn().Err(cfgErr).Msg("invalid configuration, sinks disabled")
	}
	metrics := observability.NewMetrics()

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error().Err(err).Msg("open input")
		return exitFatal
	}
	defer f.Close()

	engine := core.NewEngine(metrics)
	stats, err := replay(engine, ingestion.NewReader(bufio.NewReader(f), metrics), logger)
	if err != nil {
		logger.Error().Err(err).Str("input", args[0]).Msg("replay aborted")
		return exitFatal
	}

	accounts := engine.Snapshot()
	for _, v := range engine.Audit() {
		logger.Warn().Uint16("client", uint16(v.Client)).Str("rule", v.Rule).Str("detail", v.Detail).
			Msg("invariant violated")
	}

	out := bufio.NewWriter(stdout)
	if err := report.WriteCSV(out, accounts); err != nil {
		logger.Error().Err(err).Msg("write snapshot")
		return exitFatal
	}
	if err := out.Flush(); err != nil {
		logger.Error().Err(err).Msg("flush snapshot")
		return exitFatal
	}

	logger.Info().
		Int("records", stats.Records).
		Int("applied", stats.Applied).
		Int("rejected", stats.Rejected).
		Int("skipped", stats.Skipped).
		Int("accounts", len(accounts)).
		Int64("sequence", engine.GetSequence()).
		Str("state_hash", engine.GetStateHashHex()).
		Msg("replay complete")

	runSinks(ctx, cfg, engine, accounts, metrics, logger)
	return exitOK
}

type replayStats struct {
	Records  int
	Applied  int
	Rejected int
	Skipped  int
}

// replay feeds every decoded record to the engine in input order. Rejected
// events and malformed rows are logged and skipped; only read failures abort.
func replay(engine *core.Engine, r *ingestion.Reader, logger zerolog.Logger) (replayStats, error) {
	var stats replayStats
	for {
		txn, err := r.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			var recErr *ingestion.RecordError
			if errors.As(err, &recErr) {
				stats.Skipped++
				logger.Warn().Int("line", recErr.Line).Str("field", recErr.Field).Err(recErr.Err).
					Msg("skipping malformed record")
				continue
			}
			return stats, fmt.Errorf("read input: %w", err)
		}

		stats.Records++
		if err := engine.Apply(txn); err != nil {
			stats.Rejected++
			ev := logger.Warn().
				Str("event_type", txn.Type.String()).
				Uint16("client", txn.Client).
				Uint32("tx", txn.Tx).
				Err(err)
			var engineErr *core.EngineError
			if errors.As(err, &engineErr) {
				ev = ev.Str("reason", engineErr.Reason())
			}
			ev.Msg("event rejected")
			continue
		}
		stats.Applied++
	}
}

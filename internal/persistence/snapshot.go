package persistence

import (
	"PaymentLedger/internal/ledger"
	"PaymentLedger/internal/observability"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run identifies one export of a final account snapshot
type Run struct {
	ID           uuid.UUID
	Sequence     int64
	StateHash    []byte
	AccountCount int
	CreatedAt    time.Time
}

// NewRun stamps a fresh run ID for an engine result
func NewRun(sequence int64, stateHash [32]byte) Run {
	return Run{
		ID:        uuid.New(),
		Sequence:  sequence,
		StateHash: stateHash[:],
		CreatedAt: time.Now().UTC(),
	}
}

// SnapshotStore exports final snapshots to Postgres. It only ever appends;
// nothing is read back into the engine.
type SnapshotStore struct {
	db      *sql.DB
	writer  *BalanceWriter
	metrics *observability.Metrics
}

// NewSnapshotStore wraps an open pool. metrics may be nil.
func NewSnapshotStore(db *sql.DB, batchSize int, metrics *observability.Metrics) *SnapshotStore {
	return &SnapshotStore{
		db:      db,
		writer:  NewBalanceWriter(batchSize),
		metrics: metrics,
	}
}

// SaveSnapshot writes the run row and every account row in one transaction
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, run Run, accounts []ledger.AccountSnapshot) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics == nil {
			return
		}
		s.metrics.SinkDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.SinkErrors.WithLabelValues("postgres").Inc()
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger.snapshot_runs
			(run_id, sequence, state_hash, account_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Sequence, run.StateHash, len(accounts), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot run %s: %w", run.ID, err)
	}

	if err = s.writer.WriteBalances(ctx, tx, run.ID, accounts); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recently exported run, or nil when none exists
func (s *SnapshotStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, sequence, state_hash, account_count, created_at
		FROM ledger.snapshot_runs
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Sequence, &run.StateHash, &run.AccountCount, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	return &run, nil
}

// LoadBalances returns the exported accounts of a run, ordered by client
func (s *SnapshotStore) LoadBalances(ctx context.Context, runID uuid.UUID) ([]ledger.AccountSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, available, held, total, locked
		FROM ledger.account_balances
		WHERE run_id = $1
		ORDER BY client_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("load balances for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ledger.AccountSnapshot
	for rows.Next() {
		var (
			client                 int32
			available, held, total decimal.Decimal
			locked                 bool
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, err
		}
		out = append(out, ledger.AccountSnapshot{
			Client:    ledger.ClientID(client),
			Available: available,
			Held:      held,
			Total:     total,
			Locked:    locked,
		})
	}
	return out, rows.Err()
}

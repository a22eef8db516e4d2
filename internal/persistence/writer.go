package persistence

import (
	"PaymentLedger/internal/ledger"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultBatchSize bounds the rows per INSERT statement. Six parameters per
// row keeps a full batch well under the Postgres limit of 65535.
const DefaultBatchSize = 500

const balanceColumns = 6

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BalanceWriter writes account rows to ledger.account_balances using
// multi-row INSERT, one statement per batch.
type BalanceWriter struct {
	batchSize int
}

func NewBalanceWriter(batchSize int) *BalanceWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BalanceWriter{batchSize: batchSize}
}

// WriteBalances inserts every account for runID, chunked by batch size
func (w *BalanceWriter) WriteBalances(ctx context.Context, ex execer, runID uuid.UUID, accounts []ledger.AccountSnapshot) error {
	for start := 0; start < len(accounts); start += w.batchSize {
		end := min(start+w.batchSize, len(accounts))

		query, args := buildBalanceInsert(runID, accounts[start:end])
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert balances %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// buildBalanceInsert renders one multi-row INSERT for the given accounts
func buildBalanceInsert(runID uuid.UUID, accounts []ledger.AccountSnapshot) (string, []any) {
	var b strings.Builder
	b.WriteString(`INSERT INTO ledger.account_balances
		(run_id, client_id, available, held, total, locked)
		VALUES `)

	args := make([]any, 0, len(accounts)*balanceColumns)
	for i, acct := range accounts {
		if i > 0 {
			b.WriteString(", ")
		}
		base := i * balanceColumns
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6)

		args = append(args,
			runID, int32(acct.Client), acct.Available, acct.Held, acct.Total, acct.Locked,
		)
	}

	return b.String(), args
}

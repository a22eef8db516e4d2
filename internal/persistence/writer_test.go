package persistence

import (
	"PaymentLedger/internal/ledger"
	"context"
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	queries []string
	args    [][]any
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return nil, nil
}

func accounts(n int) []ledger.AccountSnapshot {
	out := make([]ledger.AccountSnapshot, n)
	for i := range out {
		out[i] = ledger.AccountSnapshot{
			Client:    ledger.ClientID(i + 1),
			Available: decimal.NewFromInt(int64(i)),
			Held:      decimal.Zero,
			Total:     decimal.NewFromInt(int64(i)),
		}
	}
	return out
}

func TestBuildBalanceInsert_Placeholders(t *testing.T) {
	runID := uuid.New()
	query, args := buildBalanceInsert(runID, accounts(2))

	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)")
	require.Len(t, args, 12)
	assert.Equal(t, runID, args[0])
	assert.Equal(t, int32(1), args[1])
	assert.Equal(t, int32(2), args[7])
	assert.Equal(t, false, args[5])
}

func TestWriteBalances_ChunksByBatchSize(t *testing.T) {
	rec := &recordingExecer{}
	w := NewBalanceWriter(2)

	require.NoError(t, w.WriteBalances(context.Background(), rec, uuid.New(), accounts(5)))

	require.Len(t, rec.queries, 3)
	assert.Len(t, rec.args[0], 12)
	assert.Len(t, rec.args[1], 12)
	assert.Len(t, rec.args[2], 6)
}

func TestWriteBalances_EmptySnapshot_NoStatements(t *testing.T) {
	rec := &recordingExecer{}
	require.NoError(t, NewBalanceWriter(0).WriteBalances(context.Background(), rec, uuid.New(), nil))
	assert.Empty(t, rec.queries)
}

func TestListMigrationFiles_SortedBySuffix(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_indexes.up.sql":     {Data: []byte("SELECT 2")},
		"000001_snapshots.up.sql":   {Data: []byte("SELECT 1")},
		"000001_snapshots.down.sql": {Data: []byte("SELECT 0")},
		"README.md":                 {Data: []byte("docs")},
	}

	files, err := listMigrationFiles(fsys, ".up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_snapshots.up.sql", "000002_indexes.up.sql"}, files)
	assert.Equal(t, "000002", extractVersion(files[1]))
}

func TestEmbeddedMigrations_HaveMatchingDownFiles(t *testing.T) {
	fsys := Migrations()

	ups, err := listMigrationFiles(fsys, ".up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		_, err := fsys.Open(down)
		assert.NoError(t, err, "missing %s", down)
	}
}

package persistence_test

import (
	"PaymentLedger/internal/ledger"
	"PaymentLedger/internal/observability"
	"PaymentLedger/internal/persistence"
	"PaymentLedger/internal/testutil"
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	testutil.RequireIntegration(t)
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	logger := observability.NewLoggerWithLevel(io.Discard, "migrate", observability.ParseLogLevel("disabled"))
	require.NoError(t, persistence.NewMigrator(db, persistence.Migrations(), logger).Up(ctx))

	accounts := []ledger.AccountSnapshot{
		{Client: 1, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero, Total: decimal.RequireFromString("1.5")},
		{Client: 2, Available: decimal.Zero, Held: decimal.Zero, Total: decimal.Zero, Locked: true},
	}

	store := persistence.NewSnapshotStore(db, 1, nil)
	run := persistence.NewRun(7, [32]byte{1, 2, 3})
	require.NoError(t, store.SaveSnapshot(ctx, run, accounts))

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, int64(7), latest.Sequence)
	assert.Equal(t, 2, latest.AccountCount)
	assert.Equal(t, run.StateHash, latest.StateHash)

	loaded, err := store.LoadBalances(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].Available.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, loaded[1].Locked)
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	testutil.RequireIntegration(t)
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	logger := observability.NewLoggerWithLevel(io.Discard, "migrate", observability.ParseLogLevel("disabled"))
	m := persistence.NewMigrator(db, persistence.Migrations(), logger)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx))
}

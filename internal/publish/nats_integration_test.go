package publish_test

import (
	"PaymentLedger/internal/ledger"
	"PaymentLedger/internal/observability"
	"PaymentLedger/internal/publish"
	"PaymentLedger/internal/testutil"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPublisher_JetStreamRoundTrip(t *testing.T) {
	testutil.RequireIntegration(t)

	logger := observability.NewLoggerWithLevel(io.Discard, "nats", observability.ParseLogLevel("disabled"))
	nc, js, err := publish.ConnectNATS(testutil.TestNATSURL(), 2*time.Second, logger)
	if err != nil {
		t.Skipf("test nats not available: %v", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	stream := "PAYMENTS_TEST_" + suffix
	p := publish.NewSnapshotPublisher(js, stream, "payments.test."+suffix, nil)
	require.NoError(t, p.EnsureStream(ctx))
	t.Cleanup(func() {
		_ = js.DeleteStream(context.Background(), stream)
	})

	accounts := []ledger.AccountSnapshot{
		{Client: 1, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero, Total: decimal.RequireFromString("1.5")},
		{Client: 2, Available: decimal.Zero, Held: decimal.RequireFromString("2"), Total: decimal.RequireFromString("2")},
		{Client: 3, Available: decimal.Zero, Held: decimal.Zero, Total: decimal.Zero, Locked: true},
	}
	runID := uuid.New()
	require.NoError(t, p.Publish(ctx, runID, 9, [32]byte{7}, accounts))

	s, err := js.Stream(ctx, stream)
	require.NoError(t, err)
	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(accounts)), info.State.Msgs)

	// Same run ID again: the broker drops every message as a duplicate
	require.NoError(t, p.Publish(ctx, runID, 9, [32]byte{7}, accounts))
	info, err = s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(accounts)), info.State.Msgs)

	last, err := s.GetLastMsgForSubject(ctx, p.Subject(2))
	require.NoError(t, err)
	var msg publish.AccountMessage
	require.NoError(t, json.Unmarshal(last.Data, &msg))
	assert.Equal(t, runID.String(), msg.RunID)
	assert.Equal(t, "2.0000", msg.Held)
	assert.Equal(t, int64(9), msg.Sequence)
}

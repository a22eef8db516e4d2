package report_test

import (
	"PaymentLedger/internal/ledger"
	"PaymentLedger/internal/report"
	"PaymentLedger/internal/testutil"
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func snap(client ledger.ClientID, available, held string, locked bool) ledger.AccountSnapshot {
	a := decimal.RequireFromString(available)
	h := decimal.RequireFromString(held)
	return ledger.AccountSnapshot{
		Client:    client,
		Available: a,
		Held:      h,
		Total:     a.Add(h),
		Locked:    locked,
	}
}

func TestWriteCSV_Golden(t *testing.T) {
	accounts := []ledger.AccountSnapshot{
		snap(1, "1.5", "0", false),
		snap(2, "2.00005", "-0.5", true),
		snap(3, "1.23455", "0", false),
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, accounts); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	testutil.AssertGolden(t, "snapshot.golden", buf.Bytes())
}

func TestWriteCSV_EmptyLedger_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if got := buf.String(); got != "client,available,held,total,locked\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

// Each field is rounded on its own; total is not re-derived from rounded parts
func TestWriteCSV_RoundsHalfToEven(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0.00005", "0.0000"},
		{"0.00015", "0.0002"},
		{"0.00025", "0.0002"},
		{"10", "10.0000"},
		{"-1.23456", "-1.2346"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, []ledger.AccountSnapshot{snap(1, tt.amount, "0", false)}); err != nil {
			t.Fatalf("WriteCSV failed: %v", err)
		}
		want := "client,available,held,total,locked\n1," + tt.want + ",0.0000," + tt.want + ",false\n"
		if got := buf.String(); got != want {
			t.Errorf("amount %s: got %q, want %q", tt.amount, got, want)
		}
	}
}

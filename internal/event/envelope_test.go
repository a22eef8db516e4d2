package event

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseEventType(t *testing.T) {
	tests := map[string]EventType{
		"deposit":      EventTypeDeposit,
		" Withdrawal ": EventTypeWithdrawal,
		"DISPUTE":      EventTypeDispute,
		"resolve":      EventTypeResolve,
		"chargeback":   EventTypeChargeback,
	}
	for in, want := range tests {
		got, err := ParseEventType(in)
		if err != nil {
			t.Errorf("ParseEventType(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseEventType(%q): got %s, want %s", in, got, want)
		}
	}

	if _, err := ParseEventType("refund"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestRequiresAmount(t *testing.T) {
	if !EventTypeDeposit.RequiresAmount() || !EventTypeWithdrawal.RequiresAmount() {
		t.Error("deposit and withdrawal carry an amount")
	}
	if EventTypeDispute.RequiresAmount() || EventTypeResolve.RequiresAmount() || EventTypeChargeback.RequiresAmount() {
		t.Error("dispute lifecycle records carry no amount")
	}
}

func TestTransactionString(t *testing.T) {
	if got := Deposit(1, 2, decimal.RequireFromString("1.5")).String(); got != "deposit(client=1, tx=2, amount=1.5)" {
		t.Errorf("got %q", got)
	}
	if got := Chargeback(1, 2).String(); got != "chargeback(client=1, tx=2)" {
		t.Errorf("got %q", got)
	}
}

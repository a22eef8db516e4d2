package math

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 2.5000 ")
	if err != nil {
		t.Fatalf("ParseAmount failed: %v", err)
	}
	if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("got %v", got)
	}

	empty, err := ParseAmount("  ")
	if err != nil || empty.Valid {
		t.Errorf("blank amount must be absent, got %v err=%v", empty, err)
	}

	if _, err := ParseAmount("1.2.3"); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestExactArithmetic_NoDrift(t *testing.T) {
	sum := decimal.Zero
	tenth := decimal.RequireFromString("0.1")
	for i := 0; i < 1000; i++ {
		sum = sum.Add(tenth)
	}
	for i := 0; i < 1000; i++ {
		sum = sum.Sub(tenth)
	}
	if !sum.IsZero() {
		t.Errorf("drift after add/sub cycles: %s", sum)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.0000"},
		{"1.5", "1.5000"},
		{"2.00005", "2.0000"},
		{"2.00015", "2.0002"},
		{"-0.5", "-0.5000"},
		{"123456789.123456", "123456789.1235"},
	}
	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.in), OutputConfig); got != tt.want {
			t.Errorf("FormatAmount(%s): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRoundModes(t *testing.T) {
	d := decimal.RequireFromString("1.00005")
	if got := Round(d, 4, RoundDown).String(); got != "1" {
		t.Errorf("RoundDown: got %s", got)
	}
	if got := Round(d, 4, RoundUp).String(); got != "1.0001" {
		t.Errorf("RoundUp: got %s", got)
	}
	if got := Round(d, 4, RoundHalfEven).String(); got != "1" {
		t.Errorf("RoundHalfEven: got %s", got)
	}
}

func TestParseAmount_Bounds(t *testing.T) {
	accepted := []string{
		"79228162514264337593543950335",
		"-79228162514264337593543950335",
		"0.0000000000000000000000000001",
		"1e28",
		"1.5e-3",
	}
	for _, s := range accepted {
		if _, err := ParseAmount(s); err != nil {
			t.Errorf("ParseAmount(%s) rejected: %v", s, err)
		}
	}

	rejected := []string{
		"79228162514264337593543950336",
		"1e29",
		"1e50000000",
		"1e2000000000",
		"1e-29",
		"1e-50000000",
		"0.00000000000000000000000000001",
	}
	for _, s := range rejected {
		_, err := ParseAmount(s)
		if !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("ParseAmount(%s): expected ErrAmountOutOfRange, got %v", s, err)
		}
	}
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyAddSameCurrency(t *testing.T) {
	t.Parallel()

	a := MustParseMoney("100.50", "USD")
	b := MustParseMoney("25.25", "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if sum.StringFixed() != "125.75" {
		t.Errorf("sum = %v, want 125.75", sum.StringFixed())
	}
}

func TestMoneyAddCurrencyMismatch(t *testing.T) {
	t.Parallel()

	a := MustParseMoney("100", "USD")
	b := MustParseMoney("100", "JPY")

	if _, err := a.Add(b); err == nil {
		t.Fatal("expected currency mismatch error, got nil")
	}
}

func TestMoneyRoundsToCurrencyPrecision(t *testing.T) {
	t.Parallel()

	m := NewMoney(decimal.RequireFromString("1.23456"), "USD")
	if m.StringFixed() != "1.23" {
		t.Errorf("StringFixed = %v, want 1.23", m.StringFixed())
	}

	jpy := NewMoney(decimal.RequireFromString("1.9"), "JPY")
	if jpy.StringFixed() != "2" {
		t.Errorf("JPY StringFixed = %v, want 2", jpy.StringFixed())
	}
}

func TestPriceAddTicks(t *testing.T) {
	t.Parallel()

	tick := MustParsePrice("0.001", 3)
	p := MustParsePrice("96.711", 3)

	up := p.AddTicks(1, tick)
	if up.String() != "96.712" {
		t.Errorf("up = %v, want 96.712", up.String())
	}

	down := p.AddTicks(-1, tick)
	if down.String() != "96.710" {
		t.Errorf("down = %v, want 96.710", down.String())
	}
}

func TestPriceMinMax(t *testing.T) {
	t.Parallel()

	a := MustParsePrice("90.005", 3)
	b := MustParsePrice("90.002", 3)

	if got := a.Min(b); !got.Equal(b) {
		t.Errorf("Min = %v, want %v", got, b)
	}
	if got := a.Max(b); !got.Equal(a) {
		t.Errorf("Max = %v, want %v", got, a)
	}
}

func TestQuantitySubNegativePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative quantity result")
		}
	}()

	a := MustParseQuantity("5", 0)
	b := MustParseQuantity("10", 0)
	a.Sub(b)
}

func TestQuantityZeroSentinel(t *testing.T) {
	t.Parallel()

	z := ZeroQuantity(0)
	if !z.IsZero() {
		t.Error("ZeroQuantity should report IsZero() == true")
	}
}

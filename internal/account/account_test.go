package account

import (
	"testing"

	"simvenue/pkg/money"
)

func TestNewSeedsStartingBalances(t *testing.T) {
	t.Parallel()

	a := New([]money.Money{money.MustParseMoney("100000", "USD")}, false)
	b := a.Balance("USD")
	want := money.MustParseMoney("100000", "USD")
	if b.Total.Cmp(want) != 0 || b.Free.Cmp(want) != 0 {
		t.Errorf("balance = %+v, want total/free = %v", b, want)
	}
}

func TestApplyDeltaDebitsFreeAndTotal(t *testing.T) {
	t.Parallel()

	a := New([]money.Money{money.MustParseMoney("1000.00", "USD")}, false)
	if err := a.ApplyDelta(money.MustParseMoney("-9.50", "USD")); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	b := a.Balance("USD")
	want := money.MustParseMoney("990.50", "USD")
	if b.Total.Cmp(want) != 0 {
		t.Errorf("total = %v, want %v", b.Total, want)
	}
	if b.Free.Cmp(want) != 0 {
		t.Errorf("free = %v, want %v", b.Free, want)
	}
}

func TestFrozenAccountIgnoresDeltas(t *testing.T) {
	t.Parallel()

	a := New([]money.Money{money.MustParseMoney("500", "USD")}, true)
	if err := a.ApplyDelta(money.MustParseMoney("-100", "USD")); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	b := a.Balance("USD")
	want := money.MustParseMoney("500", "USD")
	if b.Total.Cmp(want) != 0 {
		t.Errorf("frozen account total changed: got %v, want %v", b.Total, want)
	}
}

func TestBalanceForUntouchedCurrencyIsZero(t *testing.T) {
	t.Parallel()

	a := New(nil, false)
	b := a.Balance("JPY")
	if !b.Total.IsZero() || !b.Free.IsZero() || !b.Locked.IsZero() {
		t.Errorf("expected zero balance for untouched currency, got %+v", b)
	}
}

// Package account maintains per-currency balances for the simulated venue.
// A frozen account ignores balance mutations: ApplyDelta and Adjust return
// without computing or applying the change, so its balances stay as they
// were at construction.
package account

import (
	"fmt"

	"simvenue/pkg/money"
)

// Balance is one currency's total/locked/free snapshot. Free = Total - Locked.
type Balance struct {
	Total  money.Money
	Locked money.Money
	Free   money.Money
}

// Account owns one balance per currency it has ever touched.
type Account struct {
	balances map[money.Currency]Balance
	frozen   bool
}

// New constructs an Account from its starting balances. frozen, once true,
// makes every subsequent mutation a no-op.
func New(starting []money.Money, frozen bool) *Account {
	a := &Account{balances: make(map[money.Currency]Balance), frozen: frozen}
	for _, m := range starting {
		a.balances[m.Currency()] = Balance{Total: m, Locked: money.ZeroMoney(m.Currency()), Free: m}
	}
	return a
}

// IsFrozen reports whether mutations are currently suppressed.
func (a *Account) IsFrozen() bool { return a.frozen }

// Balance returns the current balance for ccy, zero-valued if never touched.
func (a *Account) Balance(ccy money.Currency) Balance {
	b, ok := a.balances[ccy]
	if !ok {
		return Balance{Total: money.ZeroMoney(ccy), Locked: money.ZeroMoney(ccy), Free: money.ZeroMoney(ccy)}
	}
	return b
}

// Snapshot returns every currency's balance, for AccountState serialization.
func (a *Account) Snapshot() map[money.Currency]Balance {
	out := make(map[money.Currency]Balance, len(a.balances))
	for k, v := range a.balances {
		out[k] = v
	}
	return out
}

// ApplyDelta adjusts total and free by delta (delta may be negative, e.g. a
// commission debit or a realized loss). No-op if the account is frozen.
// Returns an error only on an internal currency mismatch — never a
// rejection-worthy condition, since margin is checked separately before the
// fill that calls this.
func (a *Account) ApplyDelta(delta money.Money) error {
	if a.frozen {
		return nil
	}
	b := a.Balance(delta.Currency())
	total, err := b.Total.Add(delta)
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	free, err := b.Free.Add(delta)
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	a.balances[delta.Currency()] = Balance{Total: total, Locked: b.Locked, Free: free}
	return nil
}

// Adjust applies an explicit external balance change (the adjust_account
// command). Identical mechanics to ApplyDelta; kept as a distinct method
// because the caller (internal/matching.Engine) stamps the resulting
// AccountState event with is_reported=true for this path only.
func (a *Account) Adjust(delta money.Money) error {
	return a.ApplyDelta(delta)
}

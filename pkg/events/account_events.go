package events

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountBalance is the per-currency balance snapshot carried by
// AccountState.
type AccountBalance struct {
	Currency string
	Total    decimal.Decimal
	Locked   decimal.Decimal
	Free     decimal.Decimal
}

// AccountState is emitted after every balance-mutating operation.
// IsReported distinguishes an explicit adjust_account call (true) from an
// internal mutation such as a fill's commission deduction (false), per
// SPEC_FULL.md §3.
type AccountState struct {
	EventMeta
	Balances   map[string]AccountBalance
	IsReported bool
}

func (e AccountState) EventType() string { return "AccountState" }

func (e AccountState) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	balances := make(map[string]any, len(e.Balances))
	for ccy, bal := range e.Balances {
		balances[ccy] = map[string]any{
			"total":  bal.Total.String(),
			"locked": bal.Locked.String(),
			"free":   bal.Free.String(),
		}
	}
	d["balances"] = balances
	d["is_reported"] = e.IsReported
	return d
}

func accountStateFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]AccountBalance)
	raw, _ := d["balances"].(map[string]any)
	for ccy, v := range raw {
		nested, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("events: balance entry for %s is not an object", ccy)
		}
		total, err := decimal.NewFromString(getString(nested, "total"))
		if err != nil {
			return nil, fmt.Errorf("events: bad total for %s: %w", ccy, err)
		}
		locked, err := decimal.NewFromString(getString(nested, "locked"))
		if err != nil {
			return nil, fmt.Errorf("events: bad locked for %s: %w", ccy, err)
		}
		free, err := decimal.NewFromString(getString(nested, "free"))
		if err != nil {
			return nil, fmt.Errorf("events: bad free for %s: %w", ccy, err)
		}
		balances[ccy] = AccountBalance{Currency: ccy, Total: total, Locked: locked, Free: free}
	}
	return AccountState{
		EventMeta:  meta,
		Balances:   balances,
		IsReported: getBool(d, "is_reported"),
	}, nil
}

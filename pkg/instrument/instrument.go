// Package instrument defines per-symbol trading constraints: tick size,
// price/size precision, fee rates, settlement currency, and the
// inverse-contract flag. Instruments are immutable once constructed — the
// matching engine only ever reads them.
package instrument

import (
	"fmt"

	"github.com/shopspring/decimal"

	"simvenue/pkg/money"
)

// ID uniquely identifies an instrument by symbol and venue, e.g.
// {Symbol: "USDJPY", Venue: "SIM"}.
type ID struct {
	Symbol string
	Venue  string
}

// String renders the ID as "VENUE.SYMBOL", e.g. "SIM.USDJPY".
func (id ID) String() string {
	return fmt.Sprintf("%s.%s", id.Venue, id.Symbol)
}

// Instrument holds the immutable per-symbol constraints the matching engine
// validates orders against.
type Instrument struct {
	ID                 ID
	PricePrecision     int32
	SizePrecision      int32
	TickSize           money.Price
	MinQty             money.Quantity
	MaxQty             money.Quantity
	MakerFeeRate       decimal.Decimal
	TakerFeeRate       decimal.Decimal
	QuoteCurrency      money.Currency
	BaseCurrency       money.Currency
	SettlementCurrency money.Currency
	IsInverse          bool
	Multiplier         decimal.Decimal
}

// NewPrice builds a Price scaled to this instrument's price precision.
func (i Instrument) NewPrice(d decimal.Decimal) money.Price {
	return money.NewPrice(d, i.PricePrecision)
}

// NewQuantity builds a Quantity scaled to this instrument's size precision.
func (i Instrument) NewQuantity(d decimal.Decimal) money.Quantity {
	return money.NewQuantity(d, i.SizePrecision)
}

// ZeroPrice returns the "no change" sentinel at this instrument's price precision.
func (i Instrument) ZeroPrice() money.Price { return money.ZeroPrice(i.PricePrecision) }

// ZeroQuantity returns the "no change" sentinel at this instrument's size precision.
func (i Instrument) ZeroQuantity() money.Quantity { return money.ZeroQuantity(i.SizePrecision) }

// IsTickAligned reports whether price is an exact multiple of the tick size.
func (i Instrument) IsTickAligned(price money.Price) bool {
	if i.TickSize.IsZero() {
		return true
	}
	rem := price.Decimal().Mod(i.TickSize.Decimal())
	return rem.IsZero()
}

// ValidateQuantity reports whether qty falls within [MinQty, MaxQty].
func (i Instrument) ValidateQuantity(qty money.Quantity) bool {
	return qty.GreaterThanOrEqual(i.MinQty) && qty.LessThanOrEqual(i.MaxQty)
}

// Notional computes qty * price * multiplier for linear instruments, or
// qty / price for inverse instruments (PnL/margin denominated in the base
// currency reciprocally).
func (i Instrument) Notional(qty money.Quantity, price money.Price) decimal.Decimal {
	if i.IsInverse {
		if price.Decimal().IsZero() {
			return decimal.Zero
		}
		return qty.Decimal().Div(price.Decimal())
	}
	return qty.Decimal().Mul(price.Decimal()).Mul(i.Multiplier)
}

// FeeRate returns the maker or taker fee rate for this instrument.
func (i Instrument) FeeRate(isMaker bool) decimal.Decimal {
	if isMaker {
		return i.MakerFeeRate
	}
	return i.TakerFeeRate
}

// Registry is a lookup table of instruments keyed by ID, populated once at
// engine construction from configuration and never mutated afterward.
type Registry struct {
	byID map[ID]Instrument
}

// NewRegistry builds a Registry from a list of instruments.
func NewRegistry(instruments []Instrument) *Registry {
	r := &Registry{byID: make(map[ID]Instrument, len(instruments))}
	for _, inst := range instruments {
		r.byID[inst.ID] = inst
	}
	return r
}

// Get looks up an instrument by ID.
func (r *Registry) Get(id ID) (Instrument, bool) {
	inst, ok := r.byID[id]
	return inst, ok
}

// All returns every registered instrument, in no particular order.
func (r *Registry) All() []Instrument {
	out := make([]Instrument, 0, len(r.byID))
	for _, inst := range r.byID {
		out = append(out, inst)
	}
	return out
}

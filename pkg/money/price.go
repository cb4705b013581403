package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a fixed-point decimal value scaled to an instrument's
// price_precision. Ordering is total (decimal.Decimal's Cmp). Tick
// alignment is checked by the caller (Instrument.IsTickAligned), not by
// Price itself, since alignment depends on the instrument's tick size.
type Price struct {
	d         decimal.Decimal
	precision int32
}

// NewPrice constructs a Price rounded to precision decimal places.
func NewPrice(d decimal.Decimal, precision int32) Price {
	return Price{d: d.Round(precision), precision: precision}
}

// MustParsePrice parses a decimal string into a Price at the given
// precision. Panics on a malformed string — intended for config/test
// fixtures.
func MustParsePrice(s string, precision int32) Price {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("money: invalid price %q: %v", s, err))
	}
	return NewPrice(d, precision)
}

// ZeroPrice returns the zero price at the given precision. Used as the
// "no change" sentinel in amendment fields.
func ZeroPrice(precision int32) Price { return Price{precision: precision} }

// Decimal returns the underlying decimal value.
func (p Price) Decimal() decimal.Decimal { return p.d }

// IsZero reports whether this is the zero-value sentinel.
func (p Price) IsZero() bool { return p.d.IsZero() }

// Precision returns the number of decimal places this price is scaled to.
func (p Price) Precision() int32 { return p.precision }

// LessThan reports whether p < other.
func (p Price) LessThan(other Price) bool { return p.d.LessThan(other.d) }

// LessThanOrEqual reports whether p <= other.
func (p Price) LessThanOrEqual(other Price) bool { return p.d.LessThanOrEqual(other.d) }

// GreaterThan reports whether p > other.
func (p Price) GreaterThan(other Price) bool { return p.d.GreaterThan(other.d) }

// GreaterThanOrEqual reports whether p >= other.
func (p Price) GreaterThanOrEqual(other Price) bool { return p.d.GreaterThanOrEqual(other.d) }

// Equal reports whether p == other.
func (p Price) Equal(other Price) bool { return p.d.Equal(other.d) }

// Min returns the smaller of p and other.
func (p Price) Min(other Price) Price {
	if other.d.LessThan(p.d) {
		return other
	}
	return p
}

// Max returns the larger of p and other.
func (p Price) Max(other Price) Price {
	if other.d.GreaterThan(p.d) {
		return other
	}
	return p
}

// AddTicks returns p shifted by n ticks of the given size (n may be negative).
func (p Price) AddTicks(n int, tick Price) Price {
	delta := tick.d.Mul(decimal.NewFromInt(int64(n)))
	return NewPrice(p.d.Add(delta), p.precision)
}

// String renders the price at its precision.
func (p Price) String() string { return p.d.StringFixed(p.precision) }

// Quantity is a non-negative fixed-point decimal scaled to an instrument's
// size_precision. Zero is the "do not change" sentinel in amend operations.
type Quantity struct {
	d         decimal.Decimal
	precision int32
}

// NewQuantity constructs a Quantity rounded to precision decimal places.
// Panics if d is negative — quantities are never negative in this model;
// side is carried separately on the Order.
func NewQuantity(d decimal.Decimal, precision int32) Quantity {
	if d.IsNegative() {
		panic(fmt.Sprintf("money: negative quantity %s", d.String()))
	}
	return Quantity{d: d.Round(precision), precision: precision}
}

// MustParseQuantity parses a decimal string into a Quantity. Panics on a
// malformed string or negative value — intended for config/test fixtures.
func MustParseQuantity(s string, precision int32) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("money: invalid quantity %q: %v", s, err))
	}
	return NewQuantity(d, precision)
}

// ZeroQuantity returns the zero quantity at the given precision.
func ZeroQuantity(precision int32) Quantity { return Quantity{precision: precision} }

// Decimal returns the underlying decimal value.
func (q Quantity) Decimal() decimal.Decimal { return q.d }

// IsZero reports whether the quantity is exactly zero.
func (q Quantity) IsZero() bool { return q.d.IsZero() }

// Precision returns the number of decimal places this quantity is scaled to.
func (q Quantity) Precision() int32 { return q.precision }

// Add returns q + other.
func (q Quantity) Add(other Quantity) Quantity {
	return NewQuantity(q.d.Add(other.d), q.precision)
}

// Sub returns q - other. Panics if the result would be negative — callers
// must check GreaterThanOrEqual first when subtracting a fill quantity.
func (q Quantity) Sub(other Quantity) Quantity {
	return NewQuantity(q.d.Sub(other.d), q.precision)
}

// LessThan reports whether q < other.
func (q Quantity) LessThan(other Quantity) bool { return q.d.LessThan(other.d) }

// LessThanOrEqual reports whether q <= other.
func (q Quantity) LessThanOrEqual(other Quantity) bool { return q.d.LessThanOrEqual(other.d) }

// GreaterThan reports whether q > other.
func (q Quantity) GreaterThan(other Quantity) bool { return q.d.GreaterThan(other.d) }

// GreaterThanOrEqual reports whether q >= other.
func (q Quantity) GreaterThanOrEqual(other Quantity) bool { return q.d.GreaterThanOrEqual(other.d) }

// Equal reports whether q == other.
func (q Quantity) Equal(other Quantity) bool { return q.d.Equal(other.d) }

// Min returns the smaller of q and other.
func (q Quantity) Min(other Quantity) Quantity {
	if other.d.LessThan(q.d) {
		return other
	}
	return q
}

// String renders the quantity at its precision.
func (q Quantity) String() string { return q.d.StringFixed(q.precision) }

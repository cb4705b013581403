// Package money provides fixed-precision decimal value types used
// throughout the matching engine: currency-tagged Money, instrument-scaled
// Price, and non-negative Quantity. All arithmetic is backed by
// shopspring/decimal so that commission and PnL calculations are bit-exact
// and reproducible — float64 is never used for anything that flows into an
// event or an account balance.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217-style currency code, or a crypto asset symbol for
// inverse contracts (e.g. "BTC").
type Currency string

// DefaultPrecision returns the number of decimal places conventionally used
// to display amounts in this currency. Callers needing instrument-specific
// precision (prices, quantities) should use the Instrument's own precision
// instead — this is only the currency's own display precision.
func (c Currency) DefaultPrecision() int32 {
	switch c {
	case "JPY", "KRW":
		return 0
	case "BTC", "ETH":
		return 8
	default:
		return 2
	}
}

// Money is an amount tagged with the currency it is denominated in.
// Arithmetic between two Money values of different currencies fails with
// ErrCurrencyMismatch — there is no implicit FX conversion anywhere in this
// package.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// ErrCurrencyMismatch is returned whenever an operation mixes two Money
// values carrying different currencies.
var ErrCurrencyMismatch = fmt.Errorf("money: currency mismatch")

// NewMoney constructs a Money value, rounding amount to the currency's
// default precision.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount.Round(currency.DefaultPrecision()), currency: currency}
}

// ZeroMoney returns a zero-valued Money in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// MustParseMoney parses a decimal string amount into Money. Panics on a
// malformed string — intended for config/test fixtures, not runtime input.
func MustParseMoney(amount string, currency Currency) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(fmt.Sprintf("money: invalid amount %q: %v", amount, err))
	}
	return NewMoney(d, currency)
}

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency tag.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Add returns m + other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return NewMoney(m.amount.Add(other.amount), m.currency), nil
}

// Sub returns m - other. Both must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return NewMoney(m.amount.Sub(other.amount), m.currency), nil
}

// Neg returns the additive inverse of m.
func (m Money) Neg() Money {
	return NewMoney(m.amount.Neg(), m.currency)
}

// Cmp compares two Money values of the same currency. Panics on currency
// mismatch — callers that can't guarantee matching currencies should check
// Currency() first.
func (m Money) Cmp(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("money: cannot compare %s to %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

// String renders the amount at the currency's default precision, e.g. "USD 100.00".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.currency, m.amount.StringFixed(m.currency.DefaultPrecision()))
}

// StringFixed renders just the numeric amount at the currency's precision,
// used by event serialization where the currency is carried in a separate field.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(m.currency.DefaultPrecision())
}

package config

import (
	"github.com/shopspring/decimal"

	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// Instrument converts an InstrumentConfig into the immutable
// instrument.Instrument the registry and engine consume.
func (inst InstrumentConfig) Instrument() instrument.Instrument {
	return instrument.Instrument{
		ID:                 instrument.ID{Symbol: inst.Symbol, Venue: inst.Venue},
		PricePrecision:     inst.PricePrecision,
		SizePrecision:      inst.SizePrecision,
		TickSize:           money.MustParsePrice(inst.TickSize, inst.PricePrecision),
		MinQty:             money.MustParseQuantity(inst.MinQty, inst.SizePrecision),
		MaxQty:             money.MustParseQuantity(inst.MaxQty, inst.SizePrecision),
		MakerFeeRate:       decimal.RequireFromString(inst.MakerFeeRate),
		TakerFeeRate:       decimal.RequireFromString(inst.TakerFeeRate),
		QuoteCurrency:      money.Currency(inst.QuoteCurrency),
		BaseCurrency:       money.Currency(inst.BaseCurrency),
		SettlementCurrency: money.Currency(inst.SettlementCurrency),
		IsInverse:          inst.IsInverse,
		Multiplier:         decimal.RequireFromString(inst.Multiplier),
	}
}

// Registry builds an instrument.Registry from every configured instrument.
// Validate must have been called first so the decimal strings are known good.
func (c *Config) Registry() *instrument.Registry {
	instruments := make([]instrument.Instrument, 0, len(c.Instruments))
	for _, inst := range c.Instruments {
		instruments = append(instruments, inst.Instrument())
	}
	return instrument.NewRegistry(instruments)
}

// Balances converts every starting balance entry into money.Money.
func (c *Config) Balances() []money.Money {
	out := make([]money.Money, 0, len(c.StartingBalances))
	for _, b := range c.StartingBalances {
		out = append(out, b.StartingBalance())
	}
	return out
}

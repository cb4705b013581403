// Package position maintains the ledger of open and closed positions: VWAP
// averaging on same-direction fills, realized PnL on reducing fills, and the
// flip (close-then-reopen) semantics a reducing fill that overshoots the
// open quantity triggers. The ledger never talks to an EventBus directly —
// it returns a causally-ordered slice of Outcome values that the caller
// (internal/matching.Engine) stamps with identifiers/timestamps and emits.
package position

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// Side values a position can hold. FLAT positions are removed from the
// ledger's live set rather than kept around with Quantity == 0.
const (
	Long  = "LONG"
	Short = "SHORT"
	Flat  = "FLAT"
)

// Position is an immutable-by-convention snapshot; callers receive copies,
// never a pointer into ledger-owned state.
type Position struct {
	ID                   events.PositionID
	InstrumentID         string
	Side                 string
	Quantity             money.Quantity
	AvgPxOpen            money.Price
	AvgPxClose           money.Price
	RealizedPnL          money.Money
	CommissionByCurrency map[money.Currency]money.Money
	PeakQty              money.Quantity
	TsOpened             time.Time
	TsLast               time.Time
	TsClosed             time.Time
}

// OutcomeKind tags what kind of position event a ledger operation produced.
type OutcomeKind int

const (
	Opened OutcomeKind = iota
	Changed
	Closed
)

// Outcome is one causal step of a fill's effect on the ledger: a plain
// reducing/increasing fill produces exactly one Outcome; a flip produces two
// (Closed for the old leg, Opened for the new one), in that order.
type Outcome struct {
	Kind             OutcomeKind
	Position         Position
	Commission       money.Money // portion of the fill's total commission attributed to this leg
	RealizedPnLDelta money.Money // pnl realized by this fill specifically, not the position's cumulative total
}

// Ledger owns every position keyed by its id. instrumentPosition is used by
// NETTING-mode callers to find the single live position id for an
// instrument; HEDGING-mode callers supply position ids directly and never
// consult it.
type Ledger struct {
	byID               map[events.PositionID]*Position
	instrumentPosition map[string]events.PositionID
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		byID:               make(map[events.PositionID]*Position),
		instrumentPosition: make(map[string]events.PositionID),
	}
}

// Get returns a copy of the position with the given id, if live.
func (l *Ledger) Get(id events.PositionID) (Position, bool) {
	p, ok := l.byID[id]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// NettedPositionID returns the single live position id for instrumentID
// under NETTING OMS, if one exists.
func (l *Ledger) NettedPositionID(instrumentID string) (events.PositionID, bool) {
	id, ok := l.instrumentPosition[instrumentID]
	return id, ok
}

// OpenPositions returns a copy of every live (non-FLAT) position, for
// check_residuals reporting.
func (l *Ledger) OpenPositions() []Position {
	out := make([]Position, 0, len(l.byID))
	for _, p := range l.byID {
		out = append(out, *p)
	}
	return out
}

func sideSign(side string) int64 {
	if side == Long {
		return 1
	}
	return -1
}

func fillSideToPositionSide(fillSide string) string {
	if fillSide == "BUY" {
		return Long
	}
	return Short
}

// realizedPnL computes the PnL of closing qty units of a position opened at
// avgPxOpen against a fill at fillPx, for the given position side.
func realizedPnL(inst instrument.Instrument, side string, qty money.Quantity, avgPxOpen, fillPx money.Price, settlement money.Currency) money.Money {
	sign := decimal.NewFromInt(sideSign(side))
	var raw decimal.Decimal
	if inst.IsInverse {
		if avgPxOpen.Decimal().IsZero() || fillPx.Decimal().IsZero() {
			raw = decimal.Zero
		} else {
			inv := decimal.NewFromInt(1).Div(avgPxOpen.Decimal()).Sub(decimal.NewFromInt(1).Div(fillPx.Decimal()))
			raw = qty.Decimal().Mul(inv).Mul(sign)
		}
	} else {
		raw = fillPx.Decimal().Sub(avgPxOpen.Decimal()).Mul(qty.Decimal()).Mul(inst.Multiplier).Mul(sign)
	}
	return money.NewMoney(raw, settlement)
}

// vwap blends two (qty, price) legs into a single average price.
func vwap(qty1 money.Quantity, px1 money.Price, qty2 money.Quantity, px2 money.Price, precision int32) money.Price {
	totalQty := qty1.Add(qty2)
	if totalQty.IsZero() {
		return money.ZeroPrice(precision)
	}
	weighted := px1.Decimal().Mul(qty1.Decimal()).Add(px2.Decimal().Mul(qty2.Decimal()))
	return money.NewPrice(weighted.Div(totalQty.Decimal()), precision)
}

// ApplyFill applies one fill to the position identified by id, creating it
// fresh if absent. inst supplies precision/multiplier/inverse-flag;
// commission is the fill's total commission (already computed by the
// caller) and is split proportionally across flip legs. ts stamps
// TsOpened/TsLast/TsClosed. newID mints the position id for the reopened
// leg of a flip.
func (l *Ledger) ApplyFill(
	id events.PositionID,
	inst instrument.Instrument,
	fillSide string,
	qty money.Quantity,
	fillPx money.Price,
	commission money.Money,
	ts time.Time,
	newID func() events.PositionID,
) ([]Outcome, error) {
	fillPosSide := fillSideToPositionSide(fillSide)

	existing, live := l.byID[id]
	if !live {
		p := &Position{
			ID:                   id,
			InstrumentID:         inst.ID.String(),
			Side:                 fillPosSide,
			Quantity:             qty,
			AvgPxOpen:            fillPx,
			AvgPxClose:           inst.ZeroPrice(),
			RealizedPnL:          money.ZeroMoney(inst.SettlementCurrency),
			CommissionByCurrency: map[money.Currency]money.Money{commission.Currency(): commission},
			PeakQty:              qty,
			TsOpened:             ts,
			TsLast:               ts,
		}
		l.byID[id] = p
		l.instrumentPosition[inst.ID.String()] = id
		return []Outcome{{Kind: Opened, Position: *p, Commission: commission, RealizedPnLDelta: money.ZeroMoney(inst.SettlementCurrency)}}, nil
	}

	if existing.Side == fillPosSide {
		// Same direction: grow the position, VWAP the entry price.
		existing.AvgPxOpen = vwap(existing.Quantity, existing.AvgPxOpen, qty, fillPx, inst.PricePrecision)
		existing.Quantity = existing.Quantity.Add(qty)
		if existing.Quantity.GreaterThan(existing.PeakQty) {
			existing.PeakQty = existing.Quantity
		}
		existing.TsLast = ts
		addCommission(existing, commission)
		return []Outcome{{Kind: Changed, Position: *existing, Commission: commission, RealizedPnLDelta: money.ZeroMoney(inst.SettlementCurrency)}}, nil
	}

	// Opposite direction: reduces, possibly exactly to flat, possibly flips.
	switch {
	case qty.LessThan(existing.Quantity):
		pnl := realizedPnL(inst, existing.Side, qty, existing.AvgPxOpen, fillPx, inst.SettlementCurrency)
		merged, err := existing.RealizedPnL.Add(pnl)
		if err != nil {
			return nil, fmt.Errorf("position: realized pnl currency mismatch: %w", err)
		}
		existing.RealizedPnL = merged
		existing.AvgPxClose = vwapClosePrice(existing, qty, fillPx, inst.PricePrecision)
		existing.Quantity = existing.Quantity.Sub(qty)
		existing.TsLast = ts
		addCommission(existing, commission)
		return []Outcome{{Kind: Changed, Position: *existing, Commission: commission, RealizedPnLDelta: pnl}}, nil

	case qty.Equal(existing.Quantity):
		pnl := realizedPnL(inst, existing.Side, qty, existing.AvgPxOpen, fillPx, inst.SettlementCurrency)
		merged, err := existing.RealizedPnL.Add(pnl)
		if err != nil {
			return nil, fmt.Errorf("position: realized pnl currency mismatch: %w", err)
		}
		existing.RealizedPnL = merged
		existing.AvgPxClose = fillPx
		existing.Quantity = inst.ZeroQuantity()
		existing.Side = Flat
		existing.TsLast = ts
		existing.TsClosed = ts
		addCommission(existing, commission)
		closed := *existing
		delete(l.byID, id)
		delete(l.instrumentPosition, inst.ID.String())
		return []Outcome{{Kind: Closed, Position: closed, Commission: commission, RealizedPnLDelta: pnl}}, nil

	default: // qty > existing.Quantity: flip
		closingQty := existing.Quantity
		remainder := qty.Sub(existing.Quantity)

		closeCommission := splitCommission(commission, closingQty, qty)
		openCommission := splitCommission(commission, remainder, qty)

		pnl := realizedPnL(inst, existing.Side, closingQty, existing.AvgPxOpen, fillPx, inst.SettlementCurrency)
		merged, err := existing.RealizedPnL.Add(pnl)
		if err != nil {
			return nil, fmt.Errorf("position: realized pnl currency mismatch: %w", err)
		}
		existing.RealizedPnL = merged
		existing.AvgPxClose = fillPx
		existing.Quantity = inst.ZeroQuantity()
		existing.Side = Flat
		existing.TsLast = ts
		existing.TsClosed = ts
		addCommission(existing, closeCommission)
		closedLeg := *existing
		delete(l.byID, id)

		newPositionID := newID()
		opened := &Position{
			ID:                   newPositionID,
			InstrumentID:         inst.ID.String(),
			Side:                 fillPosSide,
			Quantity:             remainder,
			AvgPxOpen:            fillPx,
			AvgPxClose:           inst.ZeroPrice(),
			RealizedPnL:          money.ZeroMoney(inst.SettlementCurrency),
			CommissionByCurrency: map[money.Currency]money.Money{},
			PeakQty:              remainder,
			TsOpened:             ts,
			TsLast:               ts,
		}
		addCommission(opened, openCommission)
		l.byID[newPositionID] = opened
		l.instrumentPosition[inst.ID.String()] = newPositionID

		return []Outcome{
			{Kind: Closed, Position: closedLeg, Commission: closeCommission, RealizedPnLDelta: pnl},
			{Kind: Opened, Position: *opened, Commission: openCommission, RealizedPnLDelta: money.ZeroMoney(inst.SettlementCurrency)},
		}, nil
	}
}

func vwapClosePrice(p *Position, qty money.Quantity, fillPx money.Price, precision int32) money.Price {
	if p.AvgPxClose.IsZero() {
		return fillPx
	}
	closedSoFar := p.PeakQty.Sub(p.Quantity)
	return vwap(closedSoFar, p.AvgPxClose, qty, fillPx, precision)
}

func addCommission(p *Position, c money.Money) {
	existing, ok := p.CommissionByCurrency[c.Currency()]
	if !ok {
		p.CommissionByCurrency[c.Currency()] = c
		return
	}
	sum, err := existing.Add(c)
	if err != nil {
		panic(fmt.Sprintf("position: commission currency mismatch: %v", err))
	}
	p.CommissionByCurrency[c.Currency()] = sum
}

// splitCommission allocates total proportionally to leg/whole.
func splitCommission(total money.Money, leg, whole money.Quantity) money.Money {
	if whole.IsZero() {
		return money.ZeroMoney(total.Currency())
	}
	share := total.Amount().Mul(leg.Decimal()).Div(whole.Decimal())
	return money.NewMoney(share, total.Currency())
}

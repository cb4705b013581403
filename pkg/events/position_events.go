package events

import (
	"github.com/shopspring/decimal"

	"simvenue/pkg/money"
)

// PositionOpened is emitted when a fresh position id receives its first fill.
type PositionOpened struct {
	EventMeta
	PositionID PositionID
	Side       string // LONG | SHORT
	Quantity   decimal.Decimal
	AvgPxOpen  decimal.Decimal
}

func (e PositionOpened) EventType() string { return "PositionOpened" }

func (e PositionOpened) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["position_id"] = string(e.PositionID)
	d["side"] = e.Side
	putDecimal(d, "quantity", e.Quantity)
	putDecimal(d, "avg_px_open", e.AvgPxOpen)
	return d
}

func positionOpenedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	qty, err := getDecimal(d, "quantity")
	if err != nil {
		return nil, err
	}
	avgPx, err := getDecimal(d, "avg_px_open")
	if err != nil {
		return nil, err
	}
	return PositionOpened{
		EventMeta:  meta,
		PositionID: PositionID(getString(d, "position_id")),
		Side:       getString(d, "side"),
		Quantity:   qty,
		AvgPxOpen:  avgPx,
	}, nil
}

// PositionChanged is emitted when a fill adjusts (but does not close) an
// existing position.
type PositionChanged struct {
	EventMeta
	PositionID  PositionID
	Side        string
	Quantity    decimal.Decimal
	AvgPxOpen   decimal.Decimal
	RealizedPnL money.Money
}

func (e PositionChanged) EventType() string { return "PositionChanged" }

func (e PositionChanged) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["position_id"] = string(e.PositionID)
	d["side"] = e.Side
	putDecimal(d, "quantity", e.Quantity)
	putDecimal(d, "avg_px_open", e.AvgPxOpen)
	putMoney(d, "realized_pnl", e.RealizedPnL)
	return d
}

func positionChangedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	qty, err := getDecimal(d, "quantity")
	if err != nil {
		return nil, err
	}
	avgPx, err := getDecimal(d, "avg_px_open")
	if err != nil {
		return nil, err
	}
	pnl, err := getMoney(d, "realized_pnl")
	if err != nil {
		return nil, err
	}
	return PositionChanged{
		EventMeta:   meta,
		PositionID:  PositionID(getString(d, "position_id")),
		Side:        getString(d, "side"),
		Quantity:    qty,
		AvgPxOpen:   avgPx,
		RealizedPnL: pnl,
	}, nil
}

// PositionClosed is emitted when a position's quantity reaches zero — the
// normal reduce-to-flat path, and the first half of a flip.
type PositionClosed struct {
	EventMeta
	PositionID  PositionID
	Side        string // the side the position held before closing
	AvgPxOpen   decimal.Decimal
	AvgPxClose  decimal.Decimal
	RealizedPnL money.Money
}

func (e PositionClosed) EventType() string { return "PositionClosed" }

func (e PositionClosed) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["position_id"] = string(e.PositionID)
	d["side"] = e.Side
	putDecimal(d, "avg_px_open", e.AvgPxOpen)
	putDecimal(d, "avg_px_close", e.AvgPxClose)
	putMoney(d, "realized_pnl", e.RealizedPnL)
	return d
}

func positionClosedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	avgPxOpen, err := getDecimal(d, "avg_px_open")
	if err != nil {
		return nil, err
	}
	avgPxClose, err := getDecimal(d, "avg_px_close")
	if err != nil {
		return nil, err
	}
	pnl, err := getMoney(d, "realized_pnl")
	if err != nil {
		return nil, err
	}
	return PositionClosed{
		EventMeta:   meta,
		PositionID:  PositionID(getString(d, "position_id")),
		Side:        getString(d, "side"),
		AvgPxOpen:   avgPxOpen,
		AvgPxClose:  avgPxClose,
		RealizedPnL: pnl,
	}, nil
}

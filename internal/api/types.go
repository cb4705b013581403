package api

import (
	"time"

	"simvenue/internal/account"
	"simvenue/internal/matching"
	"simvenue/internal/position"
	"simvenue/pkg/money"
)

// DashboardSnapshot is the complete dashboard state served at /api/snapshot.
type DashboardSnapshot struct {
	Timestamp     time.Time        `json:"timestamp"`
	WorkingOrders []OrderStatus    `json:"working_orders"`
	Positions     []PositionStatus `json:"positions"`
	Balances      []BalanceStatus  `json:"balances"`
}

// OrderStatus is the dashboard's view of one working order.
type OrderStatus struct {
	ClientOrderID string `json:"client_order_id"`
	VenueOrderID  string `json:"venue_order_id"`
	InstrumentID  string `json:"instrument_id"`
	Side          string `json:"side"`
	Kind          string `json:"kind"`
	Quantity      string `json:"quantity"`
	FilledQty     string `json:"filled_qty"`
	Price         string `json:"price,omitempty"`
	TriggerPrice  string `json:"trigger_price,omitempty"`
	State         string `json:"state"`
	LiquiditySide string `json:"liquidity_side,omitempty"`
}

// PositionStatus is the dashboard's view of one open position.
type PositionStatus struct {
	PositionID   string `json:"position_id"`
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
	AvgPxOpen    string `json:"avg_px_open"`
	RealizedPnL  string `json:"realized_pnl"`
}

// BalanceStatus is the dashboard's view of one currency balance.
type BalanceStatus struct {
	Currency money.Currency `json:"currency"`
	Total    string         `json:"total"`
	Locked   string         `json:"locked"`
	Free     string         `json:"free"`
}

func newOrderStatus(o matching.Order) OrderStatus {
	s := OrderStatus{
		ClientOrderID: string(o.ClientOrderID),
		VenueOrderID:  string(o.VenueOrderID),
		InstrumentID:  o.InstrumentID,
		Side:          o.Side,
		Kind:          o.Kind,
		Quantity:      o.Quantity.String(),
		FilledQty:     o.FilledQty.String(),
		State:         o.State,
		LiquiditySide: o.LiquiditySide,
	}
	if !o.Price.IsZero() {
		s.Price = o.Price.String()
	}
	if !o.TriggerPrice.IsZero() {
		s.TriggerPrice = o.TriggerPrice.String()
	}
	return s
}

func newPositionStatus(p position.Position) PositionStatus {
	return PositionStatus{
		PositionID:   string(p.ID),
		InstrumentID: p.InstrumentID,
		Side:         p.Side,
		Quantity:     p.Quantity.String(),
		AvgPxOpen:    p.AvgPxOpen.String(),
		RealizedPnL:  p.RealizedPnL.StringFixed(),
	}
}

func newBalanceStatus(ccy money.Currency, b account.Balance) BalanceStatus {
	return BalanceStatus{
		Currency: ccy,
		Total:    b.Total.StringFixed(),
		Locked:   b.Locked.StringFixed(),
		Free:     b.Free.StringFixed(),
	}
}

package events

import (
	"github.com/shopspring/decimal"

	"simvenue/pkg/money"
)

// OrderInitialized is the first lifecycle event for every order, carrying
// the full static order spec before any venue interaction. Added per
// SPEC_FULL.md §3 (recovered from original_source/test_model_events.py).
type OrderInitialized struct {
	EventMeta
	ClientOrderID ClientOrderID
	Side          string // BUY | SELL
	OrderKind     string // MARKET | LIMIT | STOP_MARKET | STOP_LIMIT
	Quantity      decimal.Decimal
	Price         decimal.Decimal // zero if not a Limit/StopLimit
	TriggerPrice  decimal.Decimal // zero if not a StopMarket/StopLimit
	PostOnly      bool
	TimeInForce   string
	ParentOrderID ClientOrderID // empty if not a bracket child
}

func (e OrderInitialized) EventType() string { return "OrderInitialized" }

func (e OrderInitialized) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["side"] = e.Side
	d["order_kind"] = e.OrderKind
	putDecimal(d, "quantity", e.Quantity)
	putDecimal(d, "price", e.Price)
	putDecimal(d, "trigger_price", e.TriggerPrice)
	d["post_only"] = e.PostOnly
	d["time_in_force"] = e.TimeInForce
	d["parent_order_id"] = string(e.ParentOrderID)
	return d
}

func orderInitializedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	qty, err := getDecimal(d, "quantity")
	if err != nil {
		return nil, err
	}
	price, err := getDecimal(d, "price")
	if err != nil {
		return nil, err
	}
	trigger, err := getDecimal(d, "trigger_price")
	if err != nil {
		return nil, err
	}
	return OrderInitialized{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		Side:          getString(d, "side"),
		OrderKind:     getString(d, "order_kind"),
		Quantity:      qty,
		Price:         price,
		TriggerPrice:  trigger,
		PostOnly:      getBool(d, "post_only"),
		TimeInForce:   getString(d, "time_in_force"),
		ParentOrderID: ClientOrderID(getString(d, "parent_order_id")),
	}, nil
}

// OrderSubmitted is emitted unconditionally on submit_order, before
// acceptance or rejection is decided.
type OrderSubmitted struct {
	EventMeta
	ClientOrderID ClientOrderID
}

func (e OrderSubmitted) EventType() string { return "OrderSubmitted" }

func (e OrderSubmitted) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	return d
}

func orderSubmittedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderSubmitted{EventMeta: meta, ClientOrderID: ClientOrderID(getString(d, "client_order_id"))}, nil
}

// OrderAccepted is emitted when an order passes validation and enters the
// working book. A dormant bracket child receives it only on activation,
// when its entry fills.
type OrderAccepted struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
}

func (e OrderAccepted) EventType() string { return "OrderAccepted" }

func (e OrderAccepted) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	return d
}

func orderAcceptedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderAccepted{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
	}, nil
}

// OrderRejected is emitted when validation fails for a venue-microstructure
// reason (bad price, unknown instrument, etc).
type OrderRejected struct {
	EventMeta
	ClientOrderID ClientOrderID
	Reason        RejectReason
}

func (e OrderRejected) EventType() string { return "OrderRejected" }

func (e OrderRejected) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["reason"] = string(e.Reason)
	return d
}

func orderRejectedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderRejected{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		Reason:        RejectReason(getString(d, "reason")),
	}, nil
}

// OrderDenied is emitted when an order is refused for an account-state
// reason (margin) rather than a venue microstructure reason. Added per
// SPEC_FULL.md §3/§4.1.
type OrderDenied struct {
	EventMeta
	ClientOrderID ClientOrderID
	Reason        RejectReason
}

func (e OrderDenied) EventType() string { return "OrderDenied" }

func (e OrderDenied) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["reason"] = string(e.Reason)
	return d
}

func orderDeniedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderDenied{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		Reason:        RejectReason(getString(d, "reason")),
	}, nil
}

// OrderCancelled is emitted when a working order is removed from the book,
// either by an explicit cancel command or as OCO/bracket fallout.
type OrderCancelled struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
}

func (e OrderCancelled) EventType() string { return "OrderCancelled" }

func (e OrderCancelled) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	return d
}

func orderCancelledFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderCancelled{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
	}, nil
}

// OrderCancelRejected is emitted when a cancel command targets an order
// that isn't in the working book.
type OrderCancelRejected struct {
	EventMeta
	ClientOrderID ClientOrderID
	Reason        RejectReason
}

func (e OrderCancelRejected) EventType() string { return "OrderCancelRejected" }

func (e OrderCancelRejected) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["reason"] = string(e.Reason)
	return d
}

func orderCancelRejectedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderCancelRejected{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		Reason:        RejectReason(getString(d, "reason")),
	}, nil
}

// OrderExpired is emitted when a GTD order's expire_time is reached before
// it fills or is cancelled.
type OrderExpired struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
}

func (e OrderExpired) EventType() string { return "OrderExpired" }

func (e OrderExpired) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	return d
}

func orderExpiredFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderExpired{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
	}, nil
}

// OrderTriggered is emitted when a StopMarket or StopLimit's trigger
// condition fires.
type OrderTriggered struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
}

func (e OrderTriggered) EventType() string { return "OrderTriggered" }

func (e OrderTriggered) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	return d
}

func orderTriggeredFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderTriggered{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
	}, nil
}

// OrderModifyRejected is emitted when an amend command fails re-validation.
type OrderModifyRejected struct {
	EventMeta
	ClientOrderID ClientOrderID
	Reason        RejectReason
}

func (e OrderModifyRejected) EventType() string { return "OrderModifyRejected" }

func (e OrderModifyRejected) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["reason"] = string(e.Reason)
	return d
}

func orderModifyRejectedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	return OrderModifyRejected{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		Reason:        RejectReason(getString(d, "reason")),
	}, nil
}

// OrderUpdated is emitted when an amendment is applied (including the
// all-zero no-op case, per SPEC_FULL.md §9 Open Question (a)).
type OrderUpdated struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	TriggerPrice  decimal.Decimal
}

func (e OrderUpdated) EventType() string { return "OrderUpdated" }

func (e OrderUpdated) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	putDecimal(d, "quantity", e.Quantity)
	putDecimal(d, "price", e.Price)
	putDecimal(d, "trigger_price", e.TriggerPrice)
	return d
}

func orderUpdatedFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	qty, err := getDecimal(d, "quantity")
	if err != nil {
		return nil, err
	}
	price, err := getDecimal(d, "price")
	if err != nil {
		return nil, err
	}
	trigger, err := getDecimal(d, "trigger_price")
	if err != nil {
		return nil, err
	}
	return OrderUpdated{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
		Quantity:      qty,
		Price:         price,
		TriggerPrice:  trigger,
	}, nil
}

// OrderFilled records a single execution against a working order.
type OrderFilled struct {
	EventMeta
	ClientOrderID ClientOrderID
	VenueOrderID  VenueOrderID
	PositionID    PositionID
	Side          string
	LastQty       decimal.Decimal
	LastPx        decimal.Decimal
	Commission    money.Money
	LiquiditySide string // MAKER | TAKER
	SlippageTicks int
}

func (e OrderFilled) EventType() string { return "OrderFilled" }

func (e OrderFilled) ToDict() map[string]any {
	d := map[string]any{"type": e.EventType()}
	e.EventMeta.putInto(d)
	d["client_order_id"] = string(e.ClientOrderID)
	d["venue_order_id"] = string(e.VenueOrderID)
	d["position_id"] = string(e.PositionID)
	d["side"] = e.Side
	putDecimal(d, "last_qty", e.LastQty)
	putDecimal(d, "last_px", e.LastPx)
	putMoney(d, "commission", e.Commission)
	d["liquidity_side"] = e.LiquiditySide
	d["slippage_ticks"] = e.SlippageTicks
	return d
}

func orderFilledFromDict(d map[string]any) (Event, error) {
	meta, err := metaFromDict(d)
	if err != nil {
		return nil, err
	}
	lastQty, err := getDecimal(d, "last_qty")
	if err != nil {
		return nil, err
	}
	lastPx, err := getDecimal(d, "last_px")
	if err != nil {
		return nil, err
	}
	commission, err := getMoney(d, "commission")
	if err != nil {
		return nil, err
	}
	ticks := 0
	if v, ok := d["slippage_ticks"]; ok {
		switch n := v.(type) {
		case int:
			ticks = n
		case float64:
			ticks = int(n)
		}
	}
	return OrderFilled{
		EventMeta:     meta,
		ClientOrderID: ClientOrderID(getString(d, "client_order_id")),
		VenueOrderID:  VenueOrderID(getString(d, "venue_order_id")),
		PositionID:    PositionID(getString(d, "position_id")),
		Side:          getString(d, "side"),
		LastQty:       lastQty,
		LastPx:        lastPx,
		Commission:    commission,
		LiquiditySide: getString(d, "liquidity_side"),
		SlippageTicks: ticks,
	}, nil
}

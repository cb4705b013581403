// Package matching implements the deterministic single-threaded matching
// core: order validation, the working-order book, top-of-book matching
// against quote/trade ticks, bracket/OCO order families, and the glue that
// turns a fill into position and account mutations. Nothing in this package
// spawns a goroutine, takes a lock, or reads the wall clock — every
// timestamp comes from an injected clock.Clock and every source of
// randomness from an injected rng.Source.
package matching

import (
	"time"

	"simvenue/pkg/events"
	"simvenue/pkg/money"
)

// Order kinds, forming the tagged variant spec.md §3 describes. Kind-specific
// fields (Price, TriggerPrice, PostOnly) are simply zero/false when not
// applicable to a given Kind, rather than split across separate Go types —
// this keeps the working book, validation, and matching loop operating over
// one concrete type with an exhaustive switch on Kind at the few sites that
// care, instead of a wide interface satisfied by four near-identical structs.
const (
	KindMarket     = "MARKET"
	KindLimit      = "LIMIT"
	KindStopMarket = "STOP_MARKET"
	KindStopLimit  = "STOP_LIMIT"
)

// Order sides.
const (
	Buy  = "BUY"
	Sell = "SELL"
)

// Time-in-force values.
const (
	TIFDay = "DAY"
	TIFGTC = "GTC"
	TIFGTD = "GTD"
	TIFIOC = "IOC"
	TIFFOK = "FOK"
)

// Order lifecycle states (spec.md §3's state machine).
const (
	StateInitialized     = "INITIALIZED"
	StateSubmitted       = "SUBMITTED"
	StateAccepted        = "ACCEPTED"
	StateRejected        = "REJECTED"
	StateDenied          = "DENIED"
	StateCancelled       = "CANCELLED"
	StateExpired         = "EXPIRED"
	StateTriggered       = "TRIGGERED"
	StatePartiallyFilled = "PARTIALLY_FILLED"
	StateFilled          = "FILLED"
)

// Liquidity sides, set on an order once it fills.
const (
	Maker = "MAKER"
	Taker = "TAKER"
)

// Order is one working or resolved order. A bracket child carries
// ParentOrderID; an entry carries ContingencyIDs (its SL/TP client order
// ids) — spec.md §9's "arena-indexed" cross-reference style rather than an
// owning pointer between Order values.
type Order struct {
	ClientOrderID  events.ClientOrderID
	VenueOrderID   events.VenueOrderID
	InstrumentID   string
	TraderID       string
	StrategyID     string
	Side           string
	Kind           string
	Quantity       money.Quantity
	FilledQty      money.Quantity
	AvgPx          money.Price
	State          string
	LiquiditySide  string
	TimeInForce    string
	ExpireTime     time.Time
	Tags           []string
	ParentOrderID  events.ClientOrderID
	ContingencyIDs []events.ClientOrderID
	PositionID     events.PositionID

	Price        money.Price // Limit, StopLimit
	TriggerPrice money.Price // StopMarket, StopLimit
	PostOnly     bool        // Limit, StopLimit
	IsTriggered  bool        // StopLimit only
}

// IsWorking reports whether the order currently occupies a slot in the
// working book (spec.md §3's invariant: a working order's state is one of
// these three).
func (o *Order) IsWorking() bool {
	switch o.State {
	case StateAccepted, StateTriggered, StatePartiallyFilled:
		return true
	default:
		return false
	}
}

// RemainingQty returns Quantity - FilledQty.
func (o *Order) RemainingQty() money.Quantity {
	return o.Quantity.Sub(o.FilledQty)
}

// IsBuy reports whether Side == Buy.
func (o *Order) IsBuy() bool { return o.Side == Buy }

// IsDormantBracketChild reports whether this order is a bracket SL/TP still
// waiting on its parent to fill (spec.md §3/§4.2: held in SUBMITTED, not in
// the working book, indexed only by parent id).
func (o *Order) IsDormantBracketChild() bool {
	return o.ParentOrderID != "" && o.State == StateSubmitted
}

package events

import (
	"time"

	"simvenue/pkg/money"
)

// CommandMeta carries the fields every command shares (spec.md §6):
// trader_id, strategy_id, command_id, ts.
type CommandMeta struct {
	TraderID   string
	StrategyID string
	CommandID  string
	Ts         time.Time
}

// OrderSpec is the order specification carried by SubmitOrder/SubmitBracket
// — one flat struct covering every order kind, matching spec.md §3's
// "tagged variant" discriminated by Kind.
type OrderSpec struct {
	ClientOrderID ClientOrderID
	InstrumentID  string
	Side          string // BUY | SELL
	Kind          string // MARKET | LIMIT | STOP_MARKET | STOP_LIMIT
	Quantity      money.Quantity
	Price         money.Price // Limit, StopLimit
	TriggerPrice  money.Price // StopMarket, StopLimit
	PostOnly      bool
	TimeInForce   string // DAY | GTC | GTD | IOC | FOK
	ExpireTime    time.Time
	Tags          []string
}

// SubmitOrder requests a new working order, optionally tagged with an
// existing position id (HEDGING OMS).
type SubmitOrder struct {
	CommandMeta
	Order      OrderSpec
	PositionID PositionID // empty = let the ledger assign one
}

// SubmitBracket requests an entry order plus its stop-loss/take-profit
// children, linked as a bracket family sharing entry's client order id as
// the list id.
type SubmitBracket struct {
	CommandMeta
	Entry      OrderSpec
	StopLoss   OrderSpec
	TakeProfit OrderSpec
}

// AmendOrder requests a change to quantity, price, and/or trigger of a
// working order. A zero value in a field means "do not change" per
// spec.md §4.1.3.
type AmendOrder struct {
	CommandMeta
	ClientOrderID ClientOrderID
	NewQuantity   money.Quantity
	NewPrice      money.Price
	NewTrigger    money.Price
}

// CancelOrder requests removal of a working order.
type CancelOrder struct {
	CommandMeta
	ClientOrderID ClientOrderID
}

// QuoteTick is a top-of-book market data update.
type QuoteTick struct {
	InstrumentID string
	Bid          money.Price
	Ask          money.Price
	BidSize      money.Quantity
	AskSize      money.Quantity
	Ts           time.Time
}

// TradeTick is a trade print from the venue.
type TradeTick struct {
	InstrumentID   string
	Price          money.Price
	Size           money.Quantity
	AggressorSide  string // BUY | SELL
	Ts             time.Time
}

package matching

import (
	"time"

	"simvenue/pkg/money"
)

// BookSideState is the top-of-book snapshot the engine keeps per instrument
// — spec.md's "no order-book depth" Non-goal means this is all the market
// state the engine ever tracks.
type BookSideState struct {
	HasMarket      bool
	BestBid        money.Price
	BestAsk        money.Price
	BestBidSize    money.Quantity
	BestAskSize    money.Quantity
	LastTradePrice money.Price
	Ts             time.Time
}

// BookState tracks one BookSideState per instrument, keyed by instrument id
// string.
type BookState struct {
	byInstrument map[string]*BookSideState
}

// NewBookState creates an empty BookState.
func NewBookState() *BookState {
	return &BookState{byInstrument: make(map[string]*BookSideState)}
}

// Get returns the current book state for instrumentID, and whether any tick
// has ever been seen for it.
func (b *BookState) Get(instrumentID string) (BookSideState, bool) {
	s, ok := b.byInstrument[instrumentID]
	if !ok {
		return BookSideState{}, false
	}
	return *s, true
}

// ApplyQuote updates the top-of-book from a QuoteTick.
func (b *BookState) ApplyQuote(instrumentID string, bid, ask money.Price, bidSize, askSize money.Quantity, ts time.Time) {
	s := b.ensure(instrumentID)
	s.HasMarket = true
	s.BestBid = bid
	s.BestAsk = ask
	s.BestBidSize = bidSize
	s.BestAskSize = askSize
	s.Ts = ts
}

// ApplyTrade records a trade print's price as LastTradePrice.
func (b *BookState) ApplyTrade(instrumentID string, price money.Price, ts time.Time) {
	s := b.ensure(instrumentID)
	s.HasMarket = true
	s.LastTradePrice = price
	s.Ts = ts
}

func (b *BookState) ensure(instrumentID string) *BookSideState {
	s, ok := b.byInstrument[instrumentID]
	if !ok {
		s = &BookSideState{}
		b.byInstrument[instrumentID] = s
	}
	return s
}

package matching

import (
	"time"

	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
)

// ProcessQuoteTick updates the top-of-book for tick.InstrumentID, expires
// any GTD orders whose expire_time has passed, then attempts to match every
// working order on that instrument against the new book, in insertion
// order (spec.md §4.1.2).
func (e *Engine) ProcessQuoteTick(tick events.QuoteTick) {
	e.book.ApplyQuote(tick.InstrumentID, tick.Bid, tick.Ask, tick.BidSize, tick.AskSize, tick.Ts)
	book, _ := e.book.Get(tick.InstrumentID)
	e.runTickStep(tick.InstrumentID, tick.Ts, book)
}

// ProcessTradeTick records tick's print as the instrument's last trade
// price, then attempts matches using an ephemeral view of the book where
// both sides of the touch are pinned to the trade price — this is what lets
// a trade print alone trigger a resting Stop or satisfy a Limit's
// bid_or_last fill condition without permanently moving the persisted
// bid/ask away from the venue's actual quotes.
func (e *Engine) ProcessTradeTick(tick events.TradeTick) {
	e.book.ApplyTrade(tick.InstrumentID, tick.Price, tick.Ts)
	book, _ := e.book.Get(tick.InstrumentID)
	matchView := book
	matchView.HasMarket = true
	matchView.BestBid = tick.Price
	matchView.BestAsk = tick.Price
	e.runTickStep(tick.InstrumentID, tick.Ts, matchView)
}

// runTickStep is shared by both tick kinds: expire GTD orders first, then
// attempt a match for every order still resting on the instrument, in
// insertion order.
func (e *Engine) runTickStep(instrumentID string, ts time.Time, book BookSideState) {
	inst, ok := e.registry.Get(instrument.ID{Symbol: instrumentID, Venue: e.venue})
	if !ok {
		return
	}

	for _, o := range e.working.OnInstrument(instrumentID) {
		if o.TimeInForce == TIFGTD && !o.ExpireTime.IsZero() && !ts.Before(o.ExpireTime) {
			e.expireOrder(o, ts)
		}
	}

	for _, o := range e.working.OnInstrument(instrumentID) {
		meta := events.EventMeta{
			TraderID:     o.TraderID,
			StrategyID:   o.StrategyID,
			InstrumentID: instrumentID,
			TsEvent:      ts,
			TsInit:       e.clock.Now(),
		}
		e.tryMatch(o, inst, book, meta, false)
	}
}

func (e *Engine) expireOrder(o *Order, ts time.Time) {
	o.State = StateExpired
	e.working.Remove(o.ClientOrderID)
	meta := events.EventMeta{
		TraderID:     o.TraderID,
		StrategyID:   o.StrategyID,
		InstrumentID: o.InstrumentID,
		TsEvent:      ts,
		TsInit:       e.clock.Now(),
	}
	e.bus.OnEvent(events.OrderExpired{EventMeta: meta, ClientOrderID: o.ClientOrderID, VenueOrderID: o.VenueOrderID})

	if len(o.ContingencyIDs) > 0 {
		e.cancelDormantChildren(o.ClientOrderID, meta)
	}
}

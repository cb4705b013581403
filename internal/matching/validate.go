package matching

import (
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// Candidate is the subset of an order's fields validation reasons about —
// shared by submit_order (a brand-new order) and amend_order (an existing
// order with the amendment's fields merged in), per spec.md §4.1.3's
// "re-run the submission-time validation on the virtual post-amendment
// order".
type Candidate struct {
	Side         string
	Kind         string
	Quantity     money.Quantity
	Price        money.Price
	TriggerPrice money.Price
	PostOnly     bool
}

// validateCandidate runs spec.md §4.1.1 steps 2-5 (instrument-known is
// checked by the caller, which is the only site holding the registry).
// Returns ("", true) when valid.
func validateCandidate(inst instrument.Instrument, book BookSideState, c Candidate) (events.RejectReason, bool) {
	if !inst.ValidateQuantity(c.Quantity) {
		return events.ReasonQuantityOutOfBounds, false
	}

	needsPrice := c.Kind == KindLimit || c.Kind == KindStopLimit
	needsTrigger := c.Kind == KindStopMarket || c.Kind == KindStopLimit

	if needsPrice && !inst.IsTickAligned(c.Price) {
		return events.ReasonPriceInvalid, false
	}
	if needsTrigger && !inst.IsTickAligned(c.TriggerPrice) {
		return events.ReasonPriceInvalid, false
	}

	if !book.HasMarket && (c.Kind == KindMarket || c.Kind == KindStopMarket || c.Kind == KindStopLimit) {
		return events.ReasonNoMarket, false
	}

	switch c.Kind {
	case KindLimit:
		if c.PostOnly && book.HasMarket && isMarketable(c.Side, c.Price, book) {
			return events.ReasonPostOnlyWouldCross, false
		}
	case KindStopMarket, KindStopLimit:
		if !stopBeyondOppositeTop(c.Side, c.TriggerPrice, book) {
			return events.ReasonStopInsideMarket, false
		}
	}

	return "", true
}

// isMarketable reports whether a limit at price would cross the book
// immediately: BUY crosses when price >= ask, SELL when price <= bid. A
// Limit order may be accepted before any market data is seen for its
// instrument (only Market/Stop* kinds require a known market to be
// accepted) — such an order is never marketable until a real tick arrives.
func isMarketable(side string, price money.Price, book BookSideState) bool {
	if !book.HasMarket {
		return false
	}
	if side == Buy {
		return price.GreaterThanOrEqual(book.BestAsk)
	}
	return price.LessThanOrEqual(book.BestBid)
}

// stopBeyondOppositeTop reports whether a stop trigger sits on the correct
// side of the market per spec.md §3: BUY requires trigger > ask, SELL
// requires trigger < bid.
func stopBeyondOppositeTop(side string, trigger money.Price, book BookSideState) bool {
	if side == Buy {
		return trigger.GreaterThan(book.BestAsk)
	}
	return trigger.LessThan(book.BestBid)
}

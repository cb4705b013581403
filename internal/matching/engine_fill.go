package matching

import (
	"simvenue/internal/position"
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// tryMatch attempts to fill o against the current book. freshThisCall
// distinguishes an order crossing the spread in the very call that
// submitted/amended/triggered it (TAKER) from an order resting from a prior
// step that the current tick now crosses (MAKER) — spec.md §4.1.2's
// liquidity-side rule. Returns true if o reached a terminal state (filled or
// rejected-on-trigger) during this attempt.
func (e *Engine) tryMatch(o *Order, inst instrument.Instrument, book BookSideState, meta events.EventMeta, freshThisCall bool) bool {
	switch o.Kind {
	case KindMarket:
		var price money.Price
		if o.IsBuy() {
			price = book.BestAsk
		} else {
			price = book.BestBid
		}
		e.executeFill(o, inst, price, Taker, meta)
		return true

	case KindLimit:
		if !isMarketable(o.Side, o.Price, book) {
			return false
		}
		if !freshThisCall && !e.fillModel.MakerFillFires() {
			return false
		}
		price, liquidity := limitFillPrice(o.Side, o.Price, book, freshThisCall)
		e.executeFill(o, inst, price, liquidity, meta)
		return true

	case KindStopMarket:
		if !stopTriggered(o.Side, o.TriggerPrice, book) {
			return false
		}
		e.bus.OnEvent(events.OrderTriggered{EventMeta: meta, ClientOrderID: o.ClientOrderID, VenueOrderID: o.VenueOrderID})
		price := stopFillPrice(o.Side, o.TriggerPrice, book)
		e.executeFill(o, inst, price, Taker, meta)
		return true

	case KindStopLimit:
		return e.tryMatchStopLimit(o, inst, book, meta, freshThisCall)
	}
	return false
}

func (e *Engine) tryMatchStopLimit(o *Order, inst instrument.Instrument, book BookSideState, meta events.EventMeta, freshThisCall bool) bool {
	if !o.IsTriggered {
		if !stopTriggered(o.Side, o.TriggerPrice, book) {
			return false
		}
		o.IsTriggered = true
		o.State = StateTriggered
		e.bus.OnEvent(events.OrderTriggered{EventMeta: meta, ClientOrderID: o.ClientOrderID, VenueOrderID: o.VenueOrderID})

		if !isMarketable(o.Side, o.Price, book) {
			return false
		}
		if o.PostOnly {
			o.State = StateRejected
			e.working.Remove(o.ClientOrderID)
			e.bus.OnEvent(events.OrderRejected{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: events.ReasonPostOnlyWouldCross})
			return true
		}
		// Crossing at the moment of triggering fills at max(limit, ask) for
		// BUY and min(limit, bid) for SELL.
		price := o.Price.Max(book.BestAsk)
		if !o.IsBuy() {
			price = o.Price.Min(book.BestBid)
		}
		e.executeFill(o, inst, price, Taker, meta)
		return true
	}

	if !isMarketable(o.Side, o.Price, book) {
		return false
	}
	if !freshThisCall && !e.fillModel.MakerFillFires() {
		return false
	}
	price, liquidity := limitFillPrice(o.Side, o.Price, book, freshThisCall)
	e.executeFill(o, inst, price, liquidity, meta)
	return true
}

// limitFillPrice implements spec.md §4.1.2's Limit pricing rule: a taker
// fill crosses to the touching price (capped at the order's own limit so the
// trader never pays worse than requested); a maker fill executes exactly at
// the resting limit price.
func limitFillPrice(side string, limitPrice money.Price, book BookSideState, isTaker bool) (money.Price, string) {
	if !isTaker {
		return limitPrice, Maker
	}
	if side == Buy {
		return limitPrice.Min(book.BestAsk), Taker
	}
	return limitPrice.Max(book.BestBid), Taker
}

// stopTriggered reports whether side's stop at trigger has fired against
// book: BUY fires when the ask has risen to or through trigger, SELL when
// the bid has fallen to or through it.
func stopTriggered(side string, trigger money.Price, book BookSideState) bool {
	if side == Buy {
		return book.BestAsk.GreaterThanOrEqual(trigger)
	}
	return book.BestBid.LessThanOrEqual(trigger)
}

// stopFillPrice is the Market-equivalent execution price of a triggered
// StopMarket: the worse of the trigger and the touching price, since the
// market may have already moved past the trigger by the time it fires.
func stopFillPrice(side string, trigger money.Price, book BookSideState) money.Price {
	if side == Buy {
		return trigger.Max(book.BestAsk)
	}
	return trigger.Min(book.BestBid)
}

// executeFill applies slippage, fills o in full, and fans the result out to
// the account and position ledgers. This engine models no partial fills —
// an order that crosses fills completely on the tick that crosses it.
func (e *Engine) executeFill(o *Order, inst instrument.Instrument, price money.Price, liquidity string, meta events.EventMeta) {
	ticks := e.fillModel.SlippageTicks(o.Side)
	price = price.AddTicks(ticks, inst.TickSize)

	qty := o.RemainingQty()
	isMaker := liquidity == Maker
	notional := inst.Notional(qty, price)
	commission := money.NewMoney(notional.Mul(inst.FeeRate(isMaker)).Abs(), inst.SettlementCurrency)

	o.FilledQty = o.Quantity
	o.AvgPx = price
	o.LiquiditySide = liquidity
	o.State = StateFilled
	e.working.Remove(o.ClientOrderID)

	e.bus.OnEvent(events.OrderFilled{
		EventMeta:     meta,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		PositionID:    o.PositionID,
		Side:          o.Side,
		LastQty:       qty.Decimal(),
		LastPx:        price.Decimal(),
		Commission:    commission,
		LiquiditySide: liquidity,
		SlippageTicks: ticks,
	})

	e.applyFillToLedgers(o, inst, qty, price, commission, meta)
	e.onOrderFilled(o, meta)
}

// applyFillToLedgers pushes the fill through the position ledger, then
// debits commission and credits/debits realized PnL against the account,
// emitting one AccountState per affected leg.
func (e *Engine) applyFillToLedgers(o *Order, inst instrument.Instrument, qty money.Quantity, price money.Price, commission money.Money, meta events.EventMeta) {
	outcomes, err := e.ledger.ApplyFill(o.PositionID, inst, o.Side, qty, price, commission, meta.TsEvent, e.ids.NextPositionID)
	if err != nil {
		e.log.Error("position ledger rejected fill", "error", err, "client_order_id", o.ClientOrderID)
		return
	}

	for _, outcome := range outcomes {
		switch outcome.Kind {
		case position.Opened:
			e.bus.OnEvent(events.PositionOpened{
				EventMeta:  meta,
				PositionID: outcome.Position.ID,
				Side:       outcome.Position.Side,
				Quantity:   outcome.Position.Quantity.Decimal(),
				AvgPxOpen:  outcome.Position.AvgPxOpen.Decimal(),
			})
		case position.Changed:
			e.bus.OnEvent(events.PositionChanged{
				EventMeta:   meta,
				PositionID:  outcome.Position.ID,
				Side:        outcome.Position.Side,
				Quantity:    outcome.Position.Quantity.Decimal(),
				AvgPxOpen:   outcome.Position.AvgPxOpen.Decimal(),
				RealizedPnL: outcome.Position.RealizedPnL,
			})
		case position.Closed:
			e.bus.OnEvent(events.PositionClosed{
				EventMeta:   meta,
				PositionID:  outcome.Position.ID,
				Side:        outcome.Position.Side,
				AvgPxOpen:   outcome.Position.AvgPxOpen.Decimal(),
				AvgPxClose:  outcome.Position.AvgPxClose.Decimal(),
				RealizedPnL: outcome.Position.RealizedPnL,
			})
		}

		netDelta := outcome.Commission.Neg()
		if !outcome.RealizedPnLDelta.IsZero() {
			if combined, err := netDelta.Add(outcome.RealizedPnLDelta); err == nil {
				netDelta = combined
			}
		}
		_ = e.acct.ApplyDelta(netDelta)
		e.emitAccountState(meta, false)
	}
}

// onOrderFilled runs bracket fallout once a fill reaches OrderFilled: a
// filled entry activates its dormant children, a filled bracket child
// cancels its OCO sibling.
func (e *Engine) onOrderFilled(o *Order, meta events.EventMeta) {
	if len(o.ContingencyIDs) > 0 {
		e.activateBracketChildren(o, meta)
	}
	if e.brackets.IsChild(o.ClientOrderID) {
		e.cancelSibling(o, meta)
	}
}

func (e *Engine) cancelSibling(filled *Order, meta events.EventMeta) {
	siblingID, ok := e.brackets.Sibling(filled.ClientOrderID)
	if !ok {
		return
	}
	if sib, ok := e.working.Get(siblingID); ok {
		sib.State = StateCancelled
		e.working.Remove(siblingID)
		e.bus.OnEvent(events.OrderCancelled{EventMeta: meta, ClientOrderID: siblingID, VenueOrderID: sib.VenueOrderID})
	}
}

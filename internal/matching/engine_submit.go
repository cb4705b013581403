package matching

import (
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
)

func buildOrder(cm events.CommandMeta, spec events.OrderSpec) *Order {
	return &Order{
		ClientOrderID: spec.ClientOrderID,
		InstrumentID:  spec.InstrumentID,
		TraderID:      cm.TraderID,
		StrategyID:    cm.StrategyID,
		Side:          spec.Side,
		Kind:          spec.Kind,
		Quantity:      spec.Quantity,
		State:         StateInitialized,
		TimeInForce:   spec.TimeInForce,
		ExpireTime:    spec.ExpireTime,
		Tags:          spec.Tags,
		Price:         spec.Price,
		TriggerPrice:  spec.TriggerPrice,
		PostOnly:      spec.PostOnly,
	}
}

// SubmitOrder runs the full validation and acceptance pipeline for a new
// order, matching it immediately if it crosses the book on arrival.
func (e *Engine) SubmitOrder(cmd events.SubmitOrder) {
	ts := e.clock.Now()
	meta := e.newMeta(cmd.CommandMeta, cmd.Order.InstrumentID, ts, ts)
	o := buildOrder(cmd.CommandMeta, cmd.Order)
	e.submitCore(o, cmd.PositionID, meta)
}

// submitCore runs steps shared by SubmitOrder and the entry leg of
// SubmitBracket. positionID, if non-empty, pins the order to an existing
// position id (HEDGING OMS).
func (e *Engine) submitCore(o *Order, positionID events.PositionID, meta events.EventMeta) {
	e.bus.OnEvent(events.OrderInitialized{
		EventMeta:     meta,
		ClientOrderID: o.ClientOrderID,
		Side:          o.Side,
		OrderKind:     o.Kind,
		Quantity:      o.Quantity.Decimal(),
		Price:         o.Price.Decimal(),
		TriggerPrice:  o.TriggerPrice.Decimal(),
		PostOnly:      o.PostOnly,
		TimeInForce:   o.TimeInForce,
		ParentOrderID: o.ParentOrderID,
	})
	o.State = StateSubmitted
	e.bus.OnEvent(events.OrderSubmitted{EventMeta: meta, ClientOrderID: o.ClientOrderID})

	inst, ok := e.registry.Get(instrument.ID{Symbol: o.InstrumentID, Venue: e.venue})
	if !ok {
		o.State = StateRejected
		e.bus.OnEvent(events.OrderRejected{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: events.ReasonInstrumentUnknown})
		return
	}
	book, _ := e.book.Get(o.InstrumentID)

	candidate := Candidate{Side: o.Side, Kind: o.Kind, Quantity: o.Quantity, Price: o.Price, TriggerPrice: o.TriggerPrice, PostOnly: o.PostOnly}
	if reason, valid := validateCandidate(inst, book, candidate); !valid {
		o.State = StateRejected
		e.bus.OnEvent(events.OrderRejected{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: reason})
		return
	}

	if e.marginCheckEnabled && !e.hasSufficientMargin(inst, o, book) {
		o.State = StateDenied
		e.bus.OnEvent(events.OrderDenied{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: events.ReasonInsufficientMargin})
		return
	}

	o.VenueOrderID = e.ids.NextVenueOrderID()
	o.State = StateAccepted
	o.PositionID = e.resolvePositionID(inst, positionID)
	e.bus.OnEvent(events.OrderAccepted{EventMeta: meta, ClientOrderID: o.ClientOrderID, VenueOrderID: o.VenueOrderID})

	e.working.Insert(o)
	e.tryMatch(o, inst, book, meta, true)
}

// resolvePositionID decides which position id a newly-accepted order's fills
// should land on. An explicit tag always wins (HEDGING callers supply one
// directly); NETTING callers resolve the instrument's single live position;
// HEDGING callers with no explicit tag get a fresh id per order.
func (e *Engine) resolvePositionID(inst instrument.Instrument, explicit events.PositionID) events.PositionID {
	if explicit != "" {
		return explicit
	}
	if e.omsType == OMSNetting {
		if id, ok := e.ledger.NettedPositionID(inst.ID.String()); ok {
			return id
		}
	}
	return e.ids.NextPositionID()
}

// hasSufficientMargin is a coarse notional check: a working order's worst
// case exposure (quantity at its limit/trigger price, or at the current
// touching price for a Market order) must not exceed the account's free
// balance in the instrument's settlement currency. There is no leverage
// model here — it is a guardrail against obviously unfunded orders, not a
// full margining engine.
func (e *Engine) hasSufficientMargin(inst instrument.Instrument, o *Order, book BookSideState) bool {
	px := o.Price
	switch o.Kind {
	case KindMarket:
		if o.IsBuy() {
			px = book.BestAsk
		} else {
			px = book.BestBid
		}
	case KindStopMarket:
		px = o.TriggerPrice
	}
	notional := inst.Notional(o.Quantity, px)
	free := e.acct.Balance(inst.SettlementCurrency).Free.Amount()
	return free.GreaterThanOrEqual(notional.Abs())
}

// SubmitBracket submits an entry order plus a dormant stop-loss/take-profit
// pair, activated together when the entry fills (spec.md §4.2).
func (e *Engine) SubmitBracket(cmd events.SubmitBracket) {
	ts := e.clock.Now()
	meta := e.newMeta(cmd.CommandMeta, cmd.Entry.InstrumentID, ts, ts)

	entry := buildOrder(cmd.CommandMeta, cmd.Entry)
	entry.ContingencyIDs = []events.ClientOrderID{cmd.StopLoss.ClientOrderID, cmd.TakeProfit.ClientOrderID}

	stopLoss := buildOrder(cmd.CommandMeta, cmd.StopLoss)
	stopLoss.ParentOrderID = entry.ClientOrderID
	stopLoss.State = StateSubmitted

	takeProfit := buildOrder(cmd.CommandMeta, cmd.TakeProfit)
	takeProfit.ParentOrderID = entry.ClientOrderID
	takeProfit.State = StateSubmitted

	e.brackets.Register(entry.ClientOrderID, stopLoss.ClientOrderID, takeProfit.ClientOrderID)
	e.dormant[stopLoss.ClientOrderID] = stopLoss
	e.dormant[takeProfit.ClientOrderID] = takeProfit

	e.bus.OnEvent(events.OrderSubmitted{EventMeta: meta, ClientOrderID: stopLoss.ClientOrderID})
	e.bus.OnEvent(events.OrderSubmitted{EventMeta: meta, ClientOrderID: takeProfit.ClientOrderID})

	e.submitCore(entry, "", meta)

	if entry.State == StateRejected || entry.State == StateDenied {
		e.cancelDormantChildren(entry.ClientOrderID, meta)
	}
}

// cancelDormantChildren cancels every still-dormant child of entryID,
// without ever having entered the working book (spec.md §4.2: "if entry is
// cancelled or rejected before fill, cancel both children").
func (e *Engine) cancelDormantChildren(entryID events.ClientOrderID, meta events.EventMeta) {
	for _, childID := range e.brackets.Children(entryID) {
		child, ok := e.dormant[childID]
		if !ok {
			continue
		}
		child.State = StateCancelled
		delete(e.dormant, childID)
		e.bus.OnEvent(events.OrderCancelled{EventMeta: meta, ClientOrderID: childID, VenueOrderID: child.VenueOrderID})
	}
}

// activateBracketChildren is invoked when an order carrying ContingencyIDs
// fills: each dormant child is validated against current market state and
// admitted into the working book. Per spec.md §4.2, a child that would be
// immediately marketable is still accepted — post_only is not honored for
// bracket children at activation, since a protective order is meant to
// execute the instant it can.
func (e *Engine) activateBracketChildren(entry *Order, meta events.EventMeta) {
	inst, ok := e.registry.Get(instrument.ID{Symbol: entry.InstrumentID, Venue: e.venue})
	if !ok {
		return
	}
	book, _ := e.book.Get(entry.InstrumentID)

	for _, childID := range e.brackets.Children(entry.ClientOrderID) {
		child, ok := e.dormant[childID]
		if !ok {
			continue
		}
		delete(e.dormant, childID)

		candidate := Candidate{Side: child.Side, Kind: child.Kind, Quantity: child.Quantity, Price: child.Price, TriggerPrice: child.TriggerPrice, PostOnly: false}
		childMeta := events.EventMeta{TraderID: child.TraderID, StrategyID: child.StrategyID, InstrumentID: child.InstrumentID, TsEvent: meta.TsEvent, TsInit: meta.TsInit}
		if reason, valid := validateCandidate(inst, book, candidate); !valid {
			child.State = StateRejected
			e.bus.OnEvent(events.OrderRejected{EventMeta: childMeta, ClientOrderID: child.ClientOrderID, Reason: reason})
			continue
		}

		child.VenueOrderID = e.ids.NextVenueOrderID()
		child.State = StateAccepted
		child.PositionID = entry.PositionID
		e.bus.OnEvent(events.OrderAccepted{EventMeta: childMeta, ClientOrderID: child.ClientOrderID, VenueOrderID: child.VenueOrderID})
		e.working.Insert(child)
		e.tryMatch(child, inst, book, childMeta, true)
	}
}

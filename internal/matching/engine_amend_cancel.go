package matching

import (
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
)

// AmendOrder re-validates the order as it would look post-amendment and,
// if valid, applies the change atomically and re-attempts matching on the
// same step (spec.md §4.1.3). A zero-valued field in cmd means "leave this
// field unchanged"; an amendment with every field zero is a no-op that
// still emits OrderUpdated, per SPEC_FULL.md §9 Open Question (a).
func (e *Engine) AmendOrder(cmd events.AmendOrder) {
	ts := e.clock.Now()
	o, ok := e.working.Get(cmd.ClientOrderID)
	if !ok {
		meta := e.newMeta(cmd.CommandMeta, "", ts, ts)
		e.bus.OnEvent(events.OrderModifyRejected{EventMeta: meta, ClientOrderID: cmd.ClientOrderID, Reason: events.ReasonOrderNotFound})
		return
	}
	meta := e.newMeta(cmd.CommandMeta, o.InstrumentID, ts, ts)

	newQty := o.Quantity
	if !cmd.NewQuantity.IsZero() {
		newQty = cmd.NewQuantity
	}
	newPrice := o.Price
	if !cmd.NewPrice.IsZero() {
		newPrice = cmd.NewPrice
	}
	newTrigger := o.TriggerPrice
	// A StopLimit's trigger is immutable once triggered — it is already
	// behaving as a plain Limit order, so any requested trigger change is
	// silently ignored rather than rejected.
	if !cmd.NewTrigger.IsZero() && !(o.Kind == KindStopLimit && o.IsTriggered) {
		newTrigger = cmd.NewTrigger
	}

	zeroAmendment := cmd.NewQuantity.IsZero() && cmd.NewPrice.IsZero() && cmd.NewTrigger.IsZero()
	if zeroAmendment {
		e.bus.OnEvent(events.OrderUpdated{
			EventMeta:     meta,
			ClientOrderID: o.ClientOrderID,
			VenueOrderID:  o.VenueOrderID,
			Quantity:      o.Quantity.Decimal(),
			Price:         o.Price.Decimal(),
			TriggerPrice:  o.TriggerPrice.Decimal(),
		})
		return
	}

	inst, ok := e.registry.Get(instrument.ID{Symbol: o.InstrumentID, Venue: e.venue})
	if !ok {
		e.bus.OnEvent(events.OrderModifyRejected{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: events.ReasonInstrumentUnknown})
		return
	}
	book, _ := e.book.Get(o.InstrumentID)

	kind := o.Kind
	if o.Kind == KindStopLimit && o.IsTriggered {
		kind = KindLimit
	}
	candidate := Candidate{Side: o.Side, Kind: kind, Quantity: newQty, Price: newPrice, TriggerPrice: newTrigger, PostOnly: o.PostOnly}
	if reason, valid := validateCandidate(inst, book, candidate); !valid {
		e.bus.OnEvent(events.OrderModifyRejected{EventMeta: meta, ClientOrderID: o.ClientOrderID, Reason: reason})
		return
	}

	o.Quantity = newQty
	o.Price = newPrice
	o.TriggerPrice = newTrigger
	e.bus.OnEvent(events.OrderUpdated{
		EventMeta:     meta,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		Quantity:      o.Quantity.Decimal(),
		Price:         o.Price.Decimal(),
		TriggerPrice:  o.TriggerPrice.Decimal(),
	})

	e.tryMatch(o, inst, book, meta, true)
}

// CancelOrder removes a working order from the book. Cancelling a bracket
// entry before it fills also cancels its dormant children.
func (e *Engine) CancelOrder(cmd events.CancelOrder) {
	ts := e.clock.Now()
	o, ok := e.working.Get(cmd.ClientOrderID)
	if !ok {
		meta := e.newMeta(cmd.CommandMeta, "", ts, ts)
		e.bus.OnEvent(events.OrderCancelRejected{EventMeta: meta, ClientOrderID: cmd.ClientOrderID, Reason: events.ReasonOrderNotFound})
		return
	}
	meta := e.newMeta(cmd.CommandMeta, o.InstrumentID, ts, ts)

	o.State = StateCancelled
	e.working.Remove(o.ClientOrderID)
	e.bus.OnEvent(events.OrderCancelled{EventMeta: meta, ClientOrderID: o.ClientOrderID, VenueOrderID: o.VenueOrderID})

	if len(o.ContingencyIDs) > 0 {
		e.cancelDormantChildren(o.ClientOrderID, meta)
	}
}

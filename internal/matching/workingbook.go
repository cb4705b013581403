package matching

import "simvenue/pkg/events"

// WorkingOrderBook indexes the orders currently resting in the book, by
// client order id and by instrument, preserving insertion order per
// instrument — spec.md §4.1.2 requires matching to proceed "in insertion
// order" on each tick.
type WorkingOrderBook struct {
	byClientID   map[events.ClientOrderID]*Order
	byInstrument map[string][]events.ClientOrderID
}

// NewWorkingOrderBook creates an empty book.
func NewWorkingOrderBook() *WorkingOrderBook {
	return &WorkingOrderBook{
		byClientID:   make(map[events.ClientOrderID]*Order),
		byInstrument: make(map[string][]events.ClientOrderID),
	}
}

// Insert adds o to the book. Panics if o's client order id is already present
// — a programmer error (spec.md §7's invariant-violation policy), since the
// engine never inserts the same id twice.
func (w *WorkingOrderBook) Insert(o *Order) {
	if _, exists := w.byClientID[o.ClientOrderID]; exists {
		panic("matching: duplicate client order id inserted into working book: " + string(o.ClientOrderID))
	}
	w.byClientID[o.ClientOrderID] = o
	w.byInstrument[o.InstrumentID] = append(w.byInstrument[o.InstrumentID], o.ClientOrderID)
}

// Remove takes o out of the book.
func (w *WorkingOrderBook) Remove(id events.ClientOrderID) {
	o, ok := w.byClientID[id]
	if !ok {
		return
	}
	delete(w.byClientID, id)
	ids := w.byInstrument[o.InstrumentID]
	for i, cid := range ids {
		if cid == id {
			w.byInstrument[o.InstrumentID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// Get looks up a working order by client order id.
func (w *WorkingOrderBook) Get(id events.ClientOrderID) (*Order, bool) {
	o, ok := w.byClientID[id]
	return o, ok
}

// OnInstrument returns the orders resting on instrumentID, in insertion
// order. The returned slice is a snapshot — callers may safely remove
// entries from the book while iterating over it.
func (w *WorkingOrderBook) OnInstrument(instrumentID string) []*Order {
	ids := w.byInstrument[instrumentID]
	out := make([]*Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := w.byClientID[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// All returns a snapshot of every working order, indexed by client order id
// — the shape get_working_orders() exposes.
func (w *WorkingOrderBook) All() map[events.ClientOrderID]Order {
	out := make(map[events.ClientOrderID]Order, len(w.byClientID))
	for id, o := range w.byClientID {
		out[id] = *o
	}
	return out
}

package events

// Bus is the sink the core emits events to. Implementations must not block
// for long — the core calls OnEvent synchronously from inside
// process_tick/submit_order/amend_order/cancel_order and only returns once
// every consequent event has been delivered (spec.md §5's ordering
// guarantee depends on this).
type Bus interface {
	OnEvent(Event)
}

// BusFunc adapts a plain function to a Bus, the way http.HandlerFunc adapts
// a function to http.Handler.
type BusFunc func(Event)

// OnEvent calls f(e).
func (f BusFunc) OnEvent(e Event) { f(e) }

// MultiBus fans every event out to all of its member buses, in order. A
// nil member is skipped rather than panicking, so optional sinks (the
// dashboard hub, the webhook notifier) can be wired in or left nil without
// conditionals at every call site.
type MultiBus struct {
	members []Bus
}

// NewMultiBus constructs a MultiBus over the given members.
func NewMultiBus(members ...Bus) *MultiBus {
	return &MultiBus{members: members}
}

// OnEvent delivers e to every non-nil member in order.
func (b *MultiBus) OnEvent(e Event) {
	for _, m := range b.members {
		if m == nil {
			continue
		}
		m.OnEvent(e)
	}
}

// RecordingBus collects every event it receives, in order. Used by tests
// that assert on the exact causal ordering spec.md §5 guarantees.
type RecordingBus struct {
	Events []Event
}

// OnEvent appends e to Events.
func (b *RecordingBus) OnEvent(e Event) {
	b.Events = append(b.Events, e)
}

// Types returns the EventType() of every recorded event, in order — the
// shape most tests actually want to assert on.
func (b *RecordingBus) Types() []string {
	out := make([]string, len(b.Events))
	for i, e := range b.Events {
		out[i] = e.EventType()
	}
	return out
}

package digest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"simvenue/pkg/events"
)

func sampleEvents() []events.Event {
	meta := events.EventMeta{
		TraderID:     "trader-1",
		InstrumentID: "XBTUSD",
		TsEvent:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TsInit:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	return []events.Event{
		events.OrderInitialized{
			EventMeta:     meta,
			ClientOrderID: "O-1",
			Side:          "BUY",
			OrderKind:     "MARKET",
			Quantity:      decimal.NewFromInt(1),
		},
		events.OrderSubmitted{EventMeta: meta, ClientOrderID: "O-1"},
		events.OrderAccepted{EventMeta: meta, ClientOrderID: "O-1", VenueOrderID: "V-1"},
	}
}

func TestStreamDigestDeterministic(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	for _, e := range sampleEvents() {
		if err := a.Add(e); err != nil {
			t.Fatalf("a.Add: %v", err)
		}
	}
	for _, e := range sampleEvents() {
		if err := b.Add(e); err != nil {
			t.Fatalf("b.Add: %v", err)
		}
	}

	if a.Hex() != b.Hex() {
		t.Fatalf("expected identical digests for identical event streams, got %s vs %s", a.Hex(), b.Hex())
	}
	if a.Hex() == "0x" {
		t.Fatalf("expected a seeded digest, got empty sentinel")
	}
}

func TestStreamDigestDivergesOnDifference(t *testing.T) {
	t.Parallel()

	base := sampleEvents()

	a := New()
	for _, e := range base {
		_ = a.Add(e)
	}

	b := New()
	for i, e := range base {
		if i == len(base)-1 {
			e = events.OrderAccepted{
				EventMeta:     e.(events.OrderAccepted).EventMeta,
				ClientOrderID: "O-1",
				VenueOrderID:  "V-2", // differs from base's V-1
			}
		}
		_ = b.Add(e)
	}

	if a.Hex() == b.Hex() {
		t.Fatalf("expected diverging digests for differing event streams, both got %s", a.Hex())
	}
}

func TestStreamDigestOrderSensitive(t *testing.T) {
	t.Parallel()

	base := sampleEvents()
	reversed := make([]events.Event, len(base))
	for i, e := range base {
		reversed[len(base)-1-i] = e
	}

	a := New()
	for _, e := range base {
		_ = a.Add(e)
	}
	b := New()
	for _, e := range reversed {
		_ = b.Add(e)
	}

	if a.Hex() == b.Hex() {
		t.Fatalf("expected order-sensitive digests, both got %s", a.Hex())
	}
}

type recordingBus struct {
	received []events.Event
}

func (r *recordingBus) OnEvent(e events.Event) { r.received = append(r.received, e) }

func TestBusForwardsAndDigests(t *testing.T) {
	t.Parallel()

	inner := &recordingBus{}
	bus := NewBus(inner)

	for _, e := range sampleEvents() {
		bus.OnEvent(e)
	}

	if len(inner.received) != len(sampleEvents()) {
		t.Fatalf("expected %d forwarded events, got %d", len(sampleEvents()), len(inner.received))
	}

	direct := New()
	for _, e := range sampleEvents() {
		_ = direct.Add(e)
	}
	if bus.Digest.Hex() != direct.Hex() {
		t.Fatalf("bus digest %s does not match direct digest %s", bus.Digest.Hex(), direct.Hex())
	}
}

func TestBusWithNilInnerStillDigests(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	for _, e := range sampleEvents() {
		bus.OnEvent(e)
	}
	if bus.Digest.Hex() == "0x" {
		t.Fatalf("expected a seeded digest even with no inner bus")
	}
}

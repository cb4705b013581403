// Package digest computes a running Keccak256 hash over the canonical
// encoding of an engine's emitted event stream, so that two independent
// replays of the same (ticks, commands, seed) triple can be compared for
// bit-exact equality without diffing every event by hand.
package digest

import (
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"

	"simvenue/pkg/events"
)

// StreamDigest chains Keccak256 over each event's canonical JSON encoding:
// digest_n = Keccak256(digest_(n-1) || canonical(event_n)). Two streams
// produce the same final digest only if every event, in the same order,
// encoded identically.
type StreamDigest struct {
	running []byte
	seeded  bool
}

// New creates an empty StreamDigest.
func New() *StreamDigest { return &StreamDigest{} }

// Add folds e into the running digest. Canonical encoding is e.ToDict()
// marshaled through encoding/json, which sorts map keys alphabetically —
// this is what makes the encoding order-independent of map iteration.
func (d *StreamDigest) Add(e events.Event) error {
	canonical, err := json.Marshal(e.ToDict())
	if err != nil {
		return err
	}
	if !d.seeded {
		d.running = crypto.Keccak256(canonical)
		d.seeded = true
		return nil
	}
	d.running = crypto.Keccak256(d.running, canonical)
	return nil
}

// Hex returns the current digest as a 0x-prefixed hex string. Returns "0x"
// if no event has been added yet.
func (d *StreamDigest) Hex() string {
	if !d.seeded {
		return "0x"
	}
	return "0x" + hex.EncodeToString(d.running)
}

// Bus folds every event it receives into a StreamDigest before optionally
// forwarding it to Inner — wire one in ahead of the real sinks in a
// MultiBus to get a reproducibility check on every run without the engine
// itself knowing about hashing.
type Bus struct {
	Digest *StreamDigest
	Inner  events.Bus
}

// NewBus creates a Bus with a fresh StreamDigest. inner may be nil.
func NewBus(inner events.Bus) *Bus {
	return &Bus{Digest: New(), Inner: inner}
}

// OnEvent folds e into Digest, then forwards it to Inner if set.
func (b *Bus) OnEvent(e events.Event) {
	_ = b.Digest.Add(e)
	if b.Inner != nil {
		b.Inner.OnEvent(e)
	}
}

package events

import "fmt"

// ClientOrderID is assigned by the submitting strategy and must be unique
// within that strategy. The engine never generates these.
type ClientOrderID string

// VenueOrderID is issued by the core on acceptance, formatted
// "{issuer}-{number}" (e.g. "SIM-000000").
type VenueOrderID string

// PositionID identifies a position the ledger owns, formatted the same way
// as VenueOrderID.
type PositionID string

// IDGenerator mints venue order ids and position ids as monotonically
// increasing, zero-padded sequence numbers prefixed with the venue name —
// the "{issuer}-{number}" identifier format spec.md §6 requires.
type IDGenerator struct {
	issuer      string
	orderSeq    uint64
	positionSeq uint64
}

// NewIDGenerator creates a generator that stamps ids with issuer (typically
// the venue name, e.g. "SIM").
func NewIDGenerator(issuer string) *IDGenerator {
	return &IDGenerator{issuer: issuer}
}

// NextVenueOrderID mints the next venue order id.
func (g *IDGenerator) NextVenueOrderID() VenueOrderID {
	id := VenueOrderID(fmt.Sprintf("%s-%06d", g.issuer, g.orderSeq))
	g.orderSeq++
	return id
}

// NextPositionID mints the next position id.
func (g *IDGenerator) NextPositionID() PositionID {
	id := PositionID(fmt.Sprintf("%s-%06d", g.issuer, g.positionSeq))
	g.positionSeq++
	return id
}

package api

import (
	"time"

	"simvenue/pkg/events"
)

// DashboardEvent is the envelope every message sent over the WebSocket feed
// shares: a "snapshot" event on connect, and one event per engine event
// afterward, carrying its ToDict() payload unchanged.
type DashboardEvent struct {
	Type      string `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// newDashboardEvent wraps an engine event for broadcast, keyed by its own
// event type so dashboard clients can dispatch on Type without inspecting Data.
func newDashboardEvent(e events.Event) DashboardEvent {
	return DashboardEvent{
		Type:      e.EventType(),
		Timestamp: time.Now(),
		Data:      e.ToDict(),
	}
}

func newSnapshotEvent(snapshot DashboardSnapshot) DashboardEvent {
	return DashboardEvent{
		Type:      "snapshot",
		Timestamp: snapshot.Timestamp,
		Data:      snapshot,
	}
}

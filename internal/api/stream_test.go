package api

import (
	"encoding/json"
	"testing"

	"simvenue/pkg/events"
)

func TestHubOnEventMarshalsType(t *testing.T) {
	t.Parallel()
	hub := NewHub(nil)

	var captured []byte
	done := make(chan struct{})
	go func() {
		captured = <-hub.broadcast
		close(done)
	}()

	hub.OnEvent(events.OrderAccepted{ClientOrderID: "O-1"})
	<-done

	var evt DashboardEvent
	if err := json.Unmarshal(captured, &evt); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if evt.Type != "OrderAccepted" {
		t.Errorf("Type = %q, want OrderAccepted", evt.Type)
	}
}

func TestHubOnEventDropsWhenChannelFull(t *testing.T) {
	t.Parallel()
	hub := NewHub(nil)

	for i := 0; i < cap(hub.broadcast); i++ {
		hub.OnEvent(events.OrderAccepted{})
	}
	// One more should be dropped silently rather than block.
	done := make(chan struct{})
	go func() {
		hub.OnEvent(events.OrderAccepted{})
		close(done)
	}()
	<-done
}

package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"simvenue/pkg/events"
)

func TestWebhookForwardsAllowedEventKinds(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	received := make([]map[string]any, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		mu.Lock()
		received = append(received, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL, nil)
	defer hook.Close()

	hook.OnEvent(events.AccountState{Balances: map[string]events.AccountBalance{}, IsReported: true})
	hook.OnEvent(events.OrderAccepted{}) // not a forwarded kind, must be dropped

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected exactly 1 forwarded event, got %d", len(received))
	}
	if received[0]["type"] != "AccountState" {
		t.Errorf("forwarded type = %v, want AccountState", received[0]["type"])
	}
}

func TestWebhookDisabledWithEmptyURL(t *testing.T) {
	t.Parallel()

	hook := NewWebhook("", nil)
	defer hook.Close()

	// Should not panic or block even though nothing is listening.
	hook.OnEvent(events.AccountState{IsReported: true})
	time.Sleep(20 * time.Millisecond)
}

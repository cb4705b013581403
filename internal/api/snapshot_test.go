package api

import (
	"testing"
	"time"

	"simvenue/internal/account"
	"simvenue/internal/matching"
	"simvenue/internal/position"
	"simvenue/pkg/events"
	"simvenue/pkg/money"
)

type fakeProvider struct {
	working   map[events.ClientOrderID]matching.Order
	positions []position.Position
	balances  map[money.Currency]account.Balance
}

func (f fakeProvider) WorkingOrders() map[events.ClientOrderID]matching.Order { return f.working }
func (f fakeProvider) OpenPositions() []position.Position                    { return f.positions }
func (f fakeProvider) Balances() map[money.Currency]account.Balance          { return f.balances }

func TestBuildSnapshotAggregatesAndSorts(t *testing.T) {
	t.Parallel()

	provider := fakeProvider{
		working: map[events.ClientOrderID]matching.Order{
			"O-2": {ClientOrderID: "O-2", InstrumentID: "BTC-USD", Side: "SELL", Kind: "LIMIT",
				Quantity:  money.MustParseQuantity("1", 4),
				FilledQty: money.MustParseQuantity("0", 4),
				Price:     money.MustParsePrice("50000", 2),
				State:     "WORKING"},
			"O-1": {ClientOrderID: "O-1", InstrumentID: "BTC-USD", Side: "BUY", Kind: "MARKET",
				Quantity:  money.MustParseQuantity("2", 4),
				FilledQty: money.MustParseQuantity("0", 4),
				State:     "WORKING"},
		},
		positions: []position.Position{
			{ID: "SIM-000002", InstrumentID: "BTC-USD", Side: "LONG",
				Quantity:  money.MustParseQuantity("1", 4),
				AvgPxOpen: money.MustParsePrice("49000", 2),
				RealizedPnL: money.MustParseMoney("0.00", "USD")},
			{ID: "SIM-000001", InstrumentID: "BTC-USD", Side: "SHORT",
				Quantity:  money.MustParseQuantity("1", 4),
				AvgPxOpen: money.MustParsePrice("49500", 2),
				RealizedPnL: money.MustParseMoney("10.00", "USD")},
		},
		balances: map[money.Currency]account.Balance{
			"USD": {Total: money.MustParseMoney("1000.00", "USD"), Free: money.MustParseMoney("1000.00", "USD")},
		},
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := BuildSnapshot(provider, now)

	if !snap.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", snap.Timestamp, now)
	}
	if len(snap.WorkingOrders) != 2 {
		t.Fatalf("expected 2 working orders, got %d", len(snap.WorkingOrders))
	}
	if snap.WorkingOrders[0].ClientOrderID != "O-1" {
		t.Errorf("WorkingOrders not sorted: first = %s", snap.WorkingOrders[0].ClientOrderID)
	}
	if snap.WorkingOrders[1].Price != "50000.00" {
		t.Errorf("Price = %q, want 50000.00", snap.WorkingOrders[1].Price)
	}

	if len(snap.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(snap.Positions))
	}
	if snap.Positions[0].PositionID != "SIM-000001" {
		t.Errorf("Positions not sorted: first = %s", snap.Positions[0].PositionID)
	}

	if len(snap.Balances) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(snap.Balances))
	}
	if snap.Balances[0].Total != "1000.00" {
		t.Errorf("Total = %q, want 1000.00", snap.Balances[0].Total)
	}
}

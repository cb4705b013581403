package api

import (
	"sort"
	"time"

	"simvenue/internal/account"
	"simvenue/internal/matching"
	"simvenue/internal/position"
	"simvenue/pkg/events"
	"simvenue/pkg/money"
)

// SnapshotProvider supplies the live state BuildSnapshot aggregates into a
// DashboardSnapshot. cmd/simrunner implements it with a thin adapter over
// the engine, ledger, and account it already owns.
type SnapshotProvider interface {
	WorkingOrders() map[events.ClientOrderID]matching.Order
	OpenPositions() []position.Position
	Balances() map[money.Currency]account.Balance
}

// BuildSnapshot aggregates state from the engine's working-order book,
// position ledger, and account into a dashboard snapshot, sorted for
// deterministic JSON output.
func BuildSnapshot(provider SnapshotProvider, now time.Time) DashboardSnapshot {
	working := provider.WorkingOrders()
	orders := make([]OrderStatus, 0, len(working))
	for _, o := range working {
		orders = append(orders, newOrderStatus(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ClientOrderID < orders[j].ClientOrderID })

	openPositions := provider.OpenPositions()
	positions := make([]PositionStatus, 0, len(openPositions))
	for _, p := range openPositions {
		positions = append(positions, newPositionStatus(p))
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].PositionID < positions[j].PositionID })

	balances := provider.Balances()
	balanceStatuses := make([]BalanceStatus, 0, len(balances))
	for ccy, b := range balances {
		balanceStatuses = append(balanceStatuses, newBalanceStatus(ccy, b))
	}
	sort.Slice(balanceStatuses, func(i, j int) bool {
		return balanceStatuses[i].Currency < balanceStatuses[j].Currency
	})

	return DashboardSnapshot{
		Timestamp:     now,
		WorkingOrders: orders,
		Positions:     positions,
		Balances:      balanceStatuses,
	}
}

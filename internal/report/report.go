// Package report appends every event the engine emits to a buffered
// NDJSON run log (flushed to disk on Close) and, on Close, writes a final summary of the run — closed
// positions, realized PnL, and commission totals by currency. It is purely
// an external observer of the event stream: the engine never reads this
// output back, the way the teacher's internal/store never feeds saved
// positions back into a running strategy except at process restart.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"simvenue/pkg/events"
	"simvenue/pkg/money"
)

// ClosedPositionSummary is one closed position's contribution to the run.
type ClosedPositionSummary struct {
	PositionID  events.PositionID `json:"position_id"`
	Side        string            `json:"side"`
	AvgPxOpen   string            `json:"avg_px_open"`
	AvgPxClose  string            `json:"avg_px_close"`
	RealizedPnL string            `json:"realized_pnl"`
	Currency    money.Currency    `json:"currency"`
}

// RunSummary is the final artifact written on Close.
type RunSummary struct {
	EventCount       int                     `json:"event_count"`
	ClosedPositions  []ClosedPositionSummary `json:"closed_positions"`
	CommissionByCcy  map[money.Currency]string `json:"commission_by_currency"`
	RealizedPnLByCcy map[money.Currency]string `json:"realized_pnl_by_currency"`
}

// JSONSink appends every event to an NDJSON log and accumulates the
// running totals RunSummary reports on Close. All operations are
// mutex-protected, the way the teacher's Store serializes file writes.
type JSONSink struct {
	mu sync.Mutex

	logFile *os.File
	writer  *bufio.Writer

	outDir string

	eventCount      int
	closedPositions []ClosedPositionSummary
	commission      map[money.Currency]money.Money
	realizedPnL     map[money.Currency]money.Money
}

// NewJSONSink creates the run log at <outDir>/events.ndjson, creating
// outDir if it does not already exist.
func NewJSONSink(outDir string) (*JSONSink, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create out dir: %w", err)
	}
	logPath := filepath.Join(outDir, "events.ndjson")
	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("report: create event log: %w", err)
	}
	return &JSONSink{
		logFile:     f,
		writer:      bufio.NewWriter(f),
		outDir:      outDir,
		commission:  make(map[money.Currency]money.Money),
		realizedPnL: make(map[money.Currency]money.Money),
	}, nil
}

// OnEvent appends e to the NDJSON log and folds it into the running summary.
func (s *JSONSink) OnEvent(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(e.ToDict())
	if err == nil {
		s.writer.Write(data)
		s.writer.WriteByte('\n')
	}
	s.eventCount++

	switch ev := e.(type) {
	case events.OrderFilled:
		s.commission[ev.Commission.Currency()] = addMoney(s.commission[ev.Commission.Currency()], ev.Commission)
	case events.PositionClosed:
		s.closedPositions = append(s.closedPositions, ClosedPositionSummary{
			PositionID:  ev.PositionID,
			Side:        ev.Side,
			AvgPxOpen:   ev.AvgPxOpen.String(),
			AvgPxClose:  ev.AvgPxClose.String(),
			RealizedPnL: ev.RealizedPnL.StringFixed(),
			Currency:    ev.RealizedPnL.Currency(),
		})
		s.realizedPnL[ev.RealizedPnL.Currency()] = addMoney(s.realizedPnL[ev.RealizedPnL.Currency()], ev.RealizedPnL)
	}
}

func addMoney(acc, delta money.Money) money.Money {
	if acc.Currency() == "" {
		return delta
	}
	sum, err := acc.Add(delta)
	if err != nil {
		return acc
	}
	return sum
}

// Close flushes and closes the event log, then writes summary.json
// atomically (write-tmp-then-rename), matching the teacher's Store crash
// safety pattern.
func (s *JSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("report: flush event log: %w", err)
	}
	if err := s.logFile.Close(); err != nil {
		return fmt.Errorf("report: close event log: %w", err)
	}

	summary := RunSummary{
		EventCount:       s.eventCount,
		ClosedPositions:  s.closedPositions,
		CommissionByCcy:  stringifyMoneyMap(s.commission),
		RealizedPnLByCcy: stringifyMoneyMap(s.realizedPnL),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal summary: %w", err)
	}

	path := filepath.Join(s.outDir, "summary.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("report: write summary: %w", err)
	}
	return os.Rename(tmp, path)
}

func stringifyMoneyMap(m map[money.Currency]money.Money) map[money.Currency]string {
	out := make(map[money.Currency]string, len(m))
	for ccy, v := range m {
		out[ccy] = v.StringFixed()
	}
	return out
}

// runTimestampFormat is kept for callers that want to derive a per-run
// output directory name from a fixed start time; the caller supplies the
// time. cmd/simrunner does not use it: it takes the output directory as
// given.
const runTimestampFormat = "20060102T150405Z"

// FormatRunTimestamp renders t in the run-directory naming convention.
func FormatRunTimestamp(t time.Time) string {
	return t.UTC().Format(runTimestampFormat)
}

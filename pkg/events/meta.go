package events

import (
	"fmt"
	"time"
)

// EventMeta carries the identifiers and timestamps common to every event:
// the originating trader/strategy, the instrument it concerns, and the two
// timestamps spec.md §6 requires — ts_event (when the fact became true,
// taken from the causing tick or Clock.Now() for command-origin events) and
// ts_init (when the engine constructed the event, always Clock.Now()).
type EventMeta struct {
	TraderID     string
	StrategyID   string
	CommandID    string // originating command id; empty for tick-driven events
	InstrumentID string
	TsEvent      time.Time
	TsInit       time.Time
}

const timeLayout = time.RFC3339Nano

func (m EventMeta) putInto(d map[string]any) {
	d["trader_id"] = m.TraderID
	d["strategy_id"] = m.StrategyID
	d["command_id"] = m.CommandID
	d["instrument_id"] = m.InstrumentID
	d["ts_event"] = m.TsEvent.UTC().Format(timeLayout)
	d["ts_init"] = m.TsInit.UTC().Format(timeLayout)
}

func metaFromDict(d map[string]any) (EventMeta, error) {
	tsEvent, err := getTime(d, "ts_event")
	if err != nil {
		return EventMeta{}, err
	}
	tsInit, err := getTime(d, "ts_init")
	if err != nil {
		return EventMeta{}, err
	}
	return EventMeta{
		TraderID:     getString(d, "trader_id"),
		StrategyID:   getString(d, "strategy_id"),
		CommandID:    getString(d, "command_id"),
		InstrumentID: getString(d, "instrument_id"),
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

func getTime(d map[string]any, key string) (time.Time, error) {
	s := getString(d, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("events: bad timestamp %q for %s: %w", s, key, err)
	}
	return t, nil
}

func getString(d map[string]any, key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func getBool(d map[string]any, key string) bool {
	v, ok := d[key]
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Package feed supplies ordered tick/command sources that drive
// cmd/simrunner: a NDJSON file replay source for deterministic backtests,
// and a WebSocket source for driving the engine from an external replay
// server. Both decode the same line envelope, so a recorded file and a
// live feed are interchangeable from the engine's point of view.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// Item is one decoded line: always one of events.QuoteTick, events.TradeTick,
// events.SubmitOrder, events.SubmitBracket, events.AmendOrder, or
// events.CancelOrder.
type Item any

// TickCommandSource yields Items in the order cmd/simrunner should apply
// them to the engine. Next returns io.EOF once the source is exhausted.
type TickCommandSource interface {
	Next() (Item, error)
	Close() error
}

type envelope struct {
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	Venue        string          `json:"venue"`
	Bid          string          `json:"bid"`
	Ask          string          `json:"ask"`
	BidSize      string          `json:"bid_size"`
	AskSize      string          `json:"ask_size"`
	Price        string          `json:"price"`
	Size         string          `json:"size"`
	AggressorSide string         `json:"aggressor_side"`
	Ts           time.Time       `json:"ts"`
	TraderID     string          `json:"trader_id"`
	StrategyID   string          `json:"strategy_id"`
	CommandID    string          `json:"command_id"`
	PositionID   string          `json:"position_id"`
	ClientOrderID string         `json:"client_order_id"`
	NewQuantity  string          `json:"new_quantity"`
	NewPrice     string          `json:"new_price"`
	NewTrigger   string          `json:"new_trigger"`
	Order        *orderSpecJSON  `json:"order"`
	Entry        *orderSpecJSON  `json:"entry"`
	StopLoss     *orderSpecJSON  `json:"stop_loss"`
	TakeProfit   *orderSpecJSON  `json:"take_profit"`
}

type orderSpecJSON struct {
	ClientOrderID string   `json:"client_order_id"`
	InstrumentID  string   `json:"instrument_id"`
	Side          string   `json:"side"`
	Kind          string   `json:"kind"`
	Quantity      string   `json:"quantity"`
	Price         string   `json:"price"`
	TriggerPrice  string   `json:"trigger_price"`
	PostOnly      bool     `json:"post_only"`
	TimeInForce   string   `json:"time_in_force"`
	ExpireTime    time.Time `json:"expire_time"`
	Tags          []string `json:"tags"`
}

// decodeLine parses one NDJSON line into an Item. registry resolves each
// instrument's price/size precision so decimal strings land on Price/
// Quantity values scaled the way the engine expects.
func decodeLine(data []byte, registry *instrument.Registry, venue string) (Item, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("feed: decode line: %w", err)
	}

	switch env.Type {
	case "QUOTE_TICK":
		inst, ok := lookupInstrument(registry, env.InstrumentID, venue)
		if !ok {
			return nil, fmt.Errorf("feed: unknown instrument %q in quote tick", env.InstrumentID)
		}
		bid, err := parsePrice(env.Bid, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		ask, err := parsePrice(env.Ask, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		bidSize, err := parseQuantity(env.BidSize, inst.SizePrecision)
		if err != nil {
			return nil, err
		}
		askSize, err := parseQuantity(env.AskSize, inst.SizePrecision)
		if err != nil {
			return nil, err
		}
		return events.QuoteTick{
			InstrumentID: env.InstrumentID,
			Bid:          bid,
			Ask:          ask,
			BidSize:      bidSize,
			AskSize:      askSize,
			Ts:           env.Ts,
		}, nil

	case "TRADE_TICK":
		inst, ok := lookupInstrument(registry, env.InstrumentID, venue)
		if !ok {
			return nil, fmt.Errorf("feed: unknown instrument %q in trade tick", env.InstrumentID)
		}
		price, err := parsePrice(env.Price, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		size, err := parseQuantity(env.Size, inst.SizePrecision)
		if err != nil {
			return nil, err
		}
		return events.TradeTick{
			InstrumentID:  env.InstrumentID,
			Price:         price,
			Size:          size,
			AggressorSide: env.AggressorSide,
			Ts:            env.Ts,
		}, nil

	case "SUBMIT_ORDER":
		if env.Order == nil {
			return nil, fmt.Errorf("feed: SUBMIT_ORDER missing order")
		}
		spec, err := env.Order.toSpec(registry, venue)
		if err != nil {
			return nil, err
		}
		return events.SubmitOrder{
			CommandMeta: commandMeta(env),
			Order:       spec,
			PositionID:  events.PositionID(env.PositionID),
		}, nil

	case "SUBMIT_BRACKET":
		if env.Entry == nil || env.StopLoss == nil || env.TakeProfit == nil {
			return nil, fmt.Errorf("feed: SUBMIT_BRACKET missing entry/stop_loss/take_profit")
		}
		entry, err := env.Entry.toSpec(registry, venue)
		if err != nil {
			return nil, err
		}
		sl, err := env.StopLoss.toSpec(registry, venue)
		if err != nil {
			return nil, err
		}
		tp, err := env.TakeProfit.toSpec(registry, venue)
		if err != nil {
			return nil, err
		}
		return events.SubmitBracket{
			CommandMeta: commandMeta(env),
			Entry:       entry,
			StopLoss:    sl,
			TakeProfit:  tp,
		}, nil

	case "AMEND_ORDER":
		inst, ok := lookupInstrument(registry, env.InstrumentID, venue)
		if !ok {
			return nil, fmt.Errorf("feed: unknown instrument %q in amend order", env.InstrumentID)
		}
		qty, err := parseQuantity(env.NewQuantity, inst.SizePrecision)
		if err != nil {
			return nil, err
		}
		price, err := parsePrice(env.NewPrice, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		trigger, err := parsePrice(env.NewTrigger, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		return events.AmendOrder{
			CommandMeta:   commandMeta(env),
			ClientOrderID: events.ClientOrderID(env.ClientOrderID),
			NewQuantity:   qty,
			NewPrice:      price,
			NewTrigger:    trigger,
		}, nil

	case "CANCEL_ORDER":
		return events.CancelOrder{
			CommandMeta:   commandMeta(env),
			ClientOrderID: events.ClientOrderID(env.ClientOrderID),
		}, nil

	default:
		return nil, fmt.Errorf("feed: unknown envelope type %q", env.Type)
	}
}

func commandMeta(env envelope) events.CommandMeta {
	return events.CommandMeta{
		TraderID:   env.TraderID,
		StrategyID: env.StrategyID,
		CommandID:  env.CommandID,
		Ts:         env.Ts,
	}
}

func (o orderSpecJSON) toSpec(registry *instrument.Registry, venue string) (events.OrderSpec, error) {
	inst, ok := lookupInstrument(registry, o.InstrumentID, venue)
	if !ok {
		return events.OrderSpec{}, fmt.Errorf("feed: unknown instrument %q in order spec", o.InstrumentID)
	}
	qty, err := parseQuantity(o.Quantity, inst.SizePrecision)
	if err != nil {
		return events.OrderSpec{}, err
	}
	price, err := parsePrice(o.Price, inst.PricePrecision)
	if err != nil {
		return events.OrderSpec{}, err
	}
	trigger, err := parsePrice(o.TriggerPrice, inst.PricePrecision)
	if err != nil {
		return events.OrderSpec{}, err
	}
	return events.OrderSpec{
		ClientOrderID: events.ClientOrderID(o.ClientOrderID),
		InstrumentID:  o.InstrumentID,
		Side:          o.Side,
		Kind:          o.Kind,
		Quantity:      qty,
		Price:         price,
		TriggerPrice:  trigger,
		PostOnly:      o.PostOnly,
		TimeInForce:   o.TimeInForce,
		ExpireTime:    o.ExpireTime,
		Tags:          o.Tags,
	}, nil
}

func lookupInstrument(registry *instrument.Registry, symbol, venue string) (instrument.Instrument, bool) {
	return registry.Get(instrument.ID{Symbol: symbol, Venue: venue})
}

func parsePrice(s string, precision int32) (money.Price, error) {
	if s == "" {
		return money.ZeroPrice(precision), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.Price{}, fmt.Errorf("feed: bad price %q: %w", s, err)
	}
	return money.NewPrice(d, precision), nil
}

func parseQuantity(s string, precision int32) (money.Quantity, error) {
	if s == "" {
		return money.ZeroQuantity(precision), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.Quantity{}, fmt.Errorf("feed: bad quantity %q: %w", s, err)
	}
	return money.NewQuantity(d, precision), nil
}

package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"simvenue/internal/account"
	"simvenue/internal/clock"
	"simvenue/internal/position"
	"simvenue/internal/rng"
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

func xbtusd() instrument.Instrument {
	return instrument.Instrument{
		ID:                 instrument.ID{Symbol: "XBTUSD", Venue: "SIM"},
		PricePrecision:     1,
		SizePrecision:      0,
		TickSize:           money.MustParsePrice("0.5", 1),
		MinQty:             money.MustParseQuantity("1", 0),
		MaxQty:             money.MustParseQuantity("1000000", 0),
		MakerFeeRate:       decimal.RequireFromString("-0.00025"),
		TakerFeeRate:       decimal.RequireFromString("0.00075"),
		QuoteCurrency:      "USD",
		BaseCurrency:       "XBT",
		SettlementCurrency: "USD",
		Multiplier:         decimal.NewFromInt(1),
	}
}

func newTestEngine(t *testing.T, inst instrument.Instrument, omsType string) (*Engine, *events.RecordingBus, *clock.VirtualClock) {
	t.Helper()
	registry := instrument.NewRegistry([]instrument.Instrument{inst})
	acct := account.New([]money.Money{money.MustParseMoney("1000000", "USD")}, false)
	ledger := position.NewLedger()
	vclock := clock.NewVirtualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := &events.RecordingBus{}
	fillModel := NewFillModel(0, 1, rng.NewSource(1))

	e := NewEngine(Config{
		Venue:     "SIM",
		OMSType:   omsType,
		Registry:  registry,
		Account:   acct,
		Ledger:    ledger,
		Clock:     vclock,
		FillModel: fillModel,
		Bus:       bus,
	})
	return e, bus, vclock
}

func submitMeta(ts time.Time, id string) events.CommandMeta {
	return events.CommandMeta{TraderID: "trader-1", StrategyID: "strat-1", CommandID: id, Ts: ts}
}

func TestSubmitMarketOrderFillsImmediatelyAsTaker(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindMarket,
			Quantity:      money.MustParseQuantity("10", 0),
			TimeInForce:   TIFDay,
		},
	})

	var filled events.OrderFilled
	sawFilled := false
	for _, ev := range bus.Events {
		if f, ok := ev.(events.OrderFilled); ok {
			filled, sawFilled = f, true
		}
	}
	if !sawFilled {
		t.Fatalf("no OrderFilled event (sequence: %v)", bus.Types())
	}
	if filled.LiquiditySide != Taker {
		t.Errorf("liquidity side = %s, want TAKER", filled.LiquiditySide)
	}
	if !filled.LastPx.Equal(decimal.RequireFromString("50000.5")) {
		t.Errorf("fill price = %s, want 50000.5", filled.LastPx)
	}

	if _, working := e.working.Get("C1"); working {
		t.Error("filled market order should not remain in the working book")
	}
}

func TestPostOnlyLimitRejectedWhenCrossing(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindLimit,
			Quantity:      money.MustParseQuantity("10", 0),
			Price:         money.MustParsePrice("50001.0", 1),
			PostOnly:      true,
			TimeInForce:   TIFDay,
		},
	})

	last := bus.Events[len(bus.Events)-1]
	rejected, ok := last.(events.OrderRejected)
	if !ok {
		t.Fatalf("last event = %T, want OrderRejected", last)
	}
	if rejected.Reason != events.ReasonPostOnlyWouldCross {
		t.Errorf("reason = %s, want %s", rejected.Reason, events.ReasonPostOnlyWouldCross)
	}
}

func TestRestingLimitFillsAsMakerOnLaterTick(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindLimit,
			Quantity:      money.MustParseQuantity("10", 0),
			Price:         money.MustParsePrice("49999.5", 1),
			TimeInForce:   TIFDay,
		},
	})

	vc.Advance(vc.Now().Add(time.Second))
	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("49999.0", 1),
		Ask:          money.MustParsePrice("49999.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	var filled events.OrderFilled
	sawFilled := false
	for _, ev := range bus.Events {
		if f, ok := ev.(events.OrderFilled); ok {
			filled, sawFilled = f, true
		}
	}
	if !sawFilled {
		t.Fatalf("no OrderFilled event (sequence: %v)", bus.Types())
	}
	if filled.LiquiditySide != Maker {
		t.Errorf("liquidity side = %s, want MAKER", filled.LiquiditySide)
	}
	if !filled.LastPx.Equal(decimal.RequireFromString("49999.5")) {
		t.Errorf("fill price = %s, want the resting limit price 49999.5", filled.LastPx)
	}
}

func TestGTDOrderExpiresOnTick(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	expireAt := vc.Now().Add(time.Minute)
	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindLimit,
			Quantity:      money.MustParseQuantity("10", 0),
			Price:         money.MustParsePrice("40000.0", 1),
			TimeInForce:   TIFGTD,
			ExpireTime:    expireAt,
		},
	})

	vc.Advance(expireAt.Add(time.Second))
	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	last := bus.Events[len(bus.Events)-1]
	if _, ok := last.(events.OrderExpired); !ok {
		t.Fatalf("last event = %T, want OrderExpired", last)
	}
	if _, working := e.working.Get("C1"); working {
		t.Error("expired order should be removed from the working book")
	}
}

func TestStopMarketTriggersAndFillsAtWorsePrice(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindStopMarket,
			Quantity:      money.MustParseQuantity("10", 0),
			TriggerPrice:  money.MustParsePrice("50100.0", 1),
			TimeInForce:   TIFGTC,
		},
	})

	vc.Advance(vc.Now().Add(time.Second))
	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50150.0", 1),
		Ask:          money.MustParsePrice("50151.0", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	var sawTriggered, sawFilled bool
	var filled events.OrderFilled
	for _, ev := range bus.Events {
		switch v := ev.(type) {
		case events.OrderTriggered:
			sawTriggered = true
		case events.OrderFilled:
			sawFilled = true
			filled = v
		}
	}
	if !sawTriggered {
		t.Error("expected an OrderTriggered event")
	}
	if !sawFilled {
		t.Fatal("expected an OrderFilled event")
	}
	if filled.LiquiditySide != Taker {
		t.Errorf("liquidity side = %s, want TAKER", filled.LiquiditySide)
	}
	if !filled.LastPx.Equal(decimal.RequireFromString("50151.0")) {
		t.Errorf("fill price = %s, want max(trigger, ask) = 50151.0", filled.LastPx)
	}
}

func TestBracketOCOCancelsSiblingOnChildFill(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	e.SubmitBracket(events.SubmitBracket{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Entry: events.OrderSpec{
			ClientOrderID: "ENTRY",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindMarket,
			Quantity:      money.MustParseQuantity("10", 0),
			TimeInForce:   TIFDay,
		},
		StopLoss: events.OrderSpec{
			ClientOrderID: "SL",
			InstrumentID:  "XBTUSD",
			Side:          Sell,
			Kind:          KindStopMarket,
			Quantity:      money.MustParseQuantity("10", 0),
			TriggerPrice:  money.MustParsePrice("49000.0", 1),
			TimeInForce:   TIFGTC,
		},
		TakeProfit: events.OrderSpec{
			ClientOrderID: "TP",
			InstrumentID:  "XBTUSD",
			Side:          Sell,
			Kind:          KindLimit,
			Quantity:      money.MustParseQuantity("10", 0),
			Price:         money.MustParsePrice("51000.0", 1),
			TimeInForce:   TIFGTC,
		},
	})

	if _, ok := e.working.Get("SL"); !ok {
		t.Fatal("stop-loss should be activated and working after entry fills")
	}
	if _, ok := e.working.Get("TP"); !ok {
		t.Fatal("take-profit should be activated and working after entry fills")
	}

	vc.Advance(vc.Now().Add(time.Second))
	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("51000.0", 1),
		Ask:          money.MustParsePrice("51000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})

	if _, ok := e.working.Get("TP"); ok {
		t.Error("take-profit should have filled")
	}
	if _, ok := e.working.Get("SL"); ok {
		t.Error("stop-loss should have been cancelled as TP's OCO sibling")
	}

	var sawSLCancelled bool
	for _, ev := range bus.Events {
		if c, ok := ev.(events.OrderCancelled); ok && c.ClientOrderID == "SL" {
			sawSLCancelled = true
		}
	}
	if !sawSLCancelled {
		t.Error("expected OrderCancelled for SL")
	}
}

func TestCancelRejectedForUnknownOrder(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.CancelOrder(events.CancelOrder{CommandMeta: submitMeta(vc.Now(), "cmd-1"), ClientOrderID: "NOPE"})

	last := bus.Events[len(bus.Events)-1]
	rejected, ok := last.(events.OrderCancelRejected)
	if !ok {
		t.Fatalf("last event = %T, want OrderCancelRejected", last)
	}
	if rejected.Reason != events.ReasonOrderNotFound {
		t.Errorf("reason = %s, want %s", rejected.Reason, events.ReasonOrderNotFound)
	}
}

func TestZeroAmendmentIsNoOpAccept(t *testing.T) {
	t.Parallel()
	inst := xbtusd()
	e, bus, vc := newTestEngine(t, inst, OMSNetting)

	e.ProcessQuoteTick(events.QuoteTick{
		InstrumentID: "XBTUSD",
		Bid:          money.MustParsePrice("50000.0", 1),
		Ask:          money.MustParsePrice("50000.5", 1),
		BidSize:      money.MustParseQuantity("100", 0),
		AskSize:      money.MustParseQuantity("100", 0),
		Ts:           vc.Now(),
	})
	e.SubmitOrder(events.SubmitOrder{
		CommandMeta: submitMeta(vc.Now(), "cmd-1"),
		Order: events.OrderSpec{
			ClientOrderID: "C1",
			InstrumentID:  "XBTUSD",
			Side:          Buy,
			Kind:          KindLimit,
			Quantity:      money.MustParseQuantity("10", 0),
			Price:         money.MustParsePrice("49000.0", 1),
			TimeInForce:   TIFGTC,
		},
	})

	e.AmendOrder(events.AmendOrder{
		CommandMeta:   submitMeta(vc.Now(), "cmd-2"),
		ClientOrderID: "C1",
	})

	last := bus.Events[len(bus.Events)-1]
	updated, ok := last.(events.OrderUpdated)
	if !ok {
		t.Fatalf("last event = %T, want OrderUpdated", last)
	}
	if !updated.Price.Equal(decimal.RequireFromString("49000.0")) {
		t.Errorf("price changed on a zero amendment: got %s", updated.Price)
	}
	o, ok := e.working.Get("C1")
	if !ok {
		t.Fatal("order should still be working after a zero-amendment")
	}
	if !o.Price.Equal(inst.NewPrice(decimal.RequireFromString("49000.0"))) {
		t.Error("order price should be unchanged after a zero-amendment")
	}
}

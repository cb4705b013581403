package matching

import (
	"log/slog"
	"time"

	"simvenue/internal/account"
	"simvenue/internal/clock"
	"simvenue/internal/position"
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

// OMS selection. NETTING resolves one position id per instrument
// automatically; HEDGING expects the caller to tag fills with an explicit
// position id and lets multiple positions coexist on the same instrument.
const (
	OMSNetting = "NETTING"
	OMSHedging = "HEDGING"
)

// Config constructs an Engine. Registry, Account, and Ledger are supplied
// pre-built so that cmd/simrunner controls their construction from
// configuration; Clock and FillModel are swappable for tests.
type Config struct {
	Venue     string
	OMSType   string
	Registry  *instrument.Registry
	Account   *account.Account
	Ledger    *position.Ledger
	Clock     clock.Clock
	FillModel *FillModel
	Bus       events.Bus
	Logger    *slog.Logger

	MarginCheckEnabled bool
}

// Engine is the deterministic matching core. It owns no goroutines and
// reads no wall-clock or global RNG state directly — every Config field is
// the seam that keeps a replayed (ticks, commands, seed) triple
// reproducible.
type Engine struct {
	venue              string
	omsType            string
	marginCheckEnabled bool

	registry  *instrument.Registry
	acct      *account.Account
	ledger    *position.Ledger
	clock     clock.Clock
	fillModel *FillModel
	bus       events.Bus
	log       *slog.Logger

	ids      *events.IDGenerator
	book     *BookState
	working  *WorkingOrderBook
	brackets *BracketManager

	// dormant holds bracket SL/TP orders that have not yet been activated
	// because their entry has not filled.
	dormant map[events.ClientOrderID]*Order
}

// NewEngine constructs an Engine from cfg.
func NewEngine(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		venue:              cfg.Venue,
		omsType:            cfg.OMSType,
		marginCheckEnabled: cfg.MarginCheckEnabled,
		registry:           cfg.Registry,
		acct:               cfg.Account,
		ledger:             cfg.Ledger,
		clock:              cfg.Clock,
		fillModel:          cfg.FillModel,
		bus:                cfg.Bus,
		log:                log,
		ids:                events.NewIDGenerator(cfg.Venue),
		book:               NewBookState(),
		working:            NewWorkingOrderBook(),
		brackets:           NewBracketManager(),
		dormant:            make(map[events.ClientOrderID]*Order),
	}
}

// SetFillModel swaps the slippage model, e.g. between backtest runs sharing
// one Engine instance.
func (e *Engine) SetFillModel(m *FillModel) { e.fillModel = m }

// GetWorkingOrders returns a snapshot of every order currently resting in
// the book, keyed by client order id.
func (e *Engine) GetWorkingOrders() map[events.ClientOrderID]Order {
	return e.working.All()
}

// ResidualReport is check_residuals' return shape: anything still open at
// the end of a run, which a clean backtest should never have.
type ResidualReport struct {
	WorkingOrders []Order
	OpenPositions []position.Position
}

// CheckResiduals logs (at Warn) and returns every working order and open
// position still outstanding. Intended to be called once at the end of a
// backtest run.
func (e *Engine) CheckResiduals() ResidualReport {
	all := e.working.All()
	orders := make([]Order, 0, len(all))
	for _, o := range all {
		orders = append(orders, o)
	}
	positions := e.ledger.OpenPositions()

	if len(orders) > 0 || len(positions) > 0 {
		e.log.Warn("residual state at end of run",
			"working_orders", len(orders),
			"open_positions", len(positions))
	}
	for _, o := range orders {
		e.log.Warn("residual working order",
			"client_order_id", o.ClientOrderID, "instrument_id", o.InstrumentID, "state", o.State)
	}
	for _, p := range positions {
		e.log.Warn("residual open position",
			"position_id", p.ID, "instrument_id", p.InstrumentID, "side", p.Side, "quantity", p.Quantity.Decimal().String())
	}
	return ResidualReport{WorkingOrders: orders, OpenPositions: positions}
}

// AdjustAccount applies an external balance adjustment (the adjust_account
// command) and emits AccountState with IsReported=true.
func (e *Engine) AdjustAccount(delta money.Money) {
	ts := e.clock.Now()
	_ = e.acct.Adjust(delta)
	e.emitAccountState(events.EventMeta{TsEvent: ts, TsInit: ts}, true)
}

func (e *Engine) newMeta(cm events.CommandMeta, instrumentID string, tsEvent, tsInit time.Time) events.EventMeta {
	return events.EventMeta{
		TraderID:     cm.TraderID,
		StrategyID:   cm.StrategyID,
		CommandID:    cm.CommandID,
		InstrumentID: instrumentID,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}
}

func (e *Engine) emitAccountState(meta events.EventMeta, reported bool) {
	snap := e.acct.Snapshot()
	balances := make(map[string]events.AccountBalance, len(snap))
	for ccy, bal := range snap {
		balances[string(ccy)] = events.AccountBalance{
			Currency: string(ccy),
			Total:    bal.Total.Amount(),
			Locked:   bal.Locked.Amount(),
			Free:     bal.Free.Amount(),
		}
	}
	e.bus.OnEvent(events.AccountState{EventMeta: meta, Balances: balances, IsReported: reported})
}

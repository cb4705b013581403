// Command simrunner replays a recorded (or live-streamed) sequence of
// market ticks and trading commands through the deterministic simulated
// venue, emitting a totally-ordered event stream, a digest of it, and a
// final run report.
//
// Architecture:
//
//	main.go                — entry point: load config, wire sinks, drive the feed to EOF
//	internal/matching      — the deterministic matching core
//	internal/account       — per-currency balance accounting
//	internal/position      — the position ledger (VWAP, realized PnL, flips)
//	internal/feed          — tick/command sources (file replay, WebSocket)
//	internal/digest        — Keccak256-chained event stream digest
//	internal/notify        — outbound webhook for account/position events
//	internal/report        — NDJSON event log plus a run summary
//	internal/api           — read-only dashboard (snapshot + WS feed)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simvenue/internal/account"
	"simvenue/internal/api"
	"simvenue/internal/clock"
	"simvenue/internal/config"
	"simvenue/internal/digest"
	"simvenue/internal/feed"
	"simvenue/internal/matching"
	"simvenue/internal/notify"
	"simvenue/internal/position"
	"simvenue/internal/report"
	"simvenue/internal/rng"
	"simvenue/pkg/events"
	"simvenue/pkg/instrument"
	"simvenue/pkg/money"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("SIMVENUE_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to config.yaml")
	feedPath := flag.String("feed", "", "path to an NDJSON tick/command file (required unless -ws is set)")
	wsURL := flag.String("ws", "", "WebSocket URL to stream ticks/commands from, instead of -feed")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Logging)

	if *feedPath == "" && *wsURL == "" {
		logger.Error("one of -feed or -ws is required")
		os.Exit(1)
	}

	if err := run(*cfg, *feedPath, *wsURL, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(cfg config.Config, feedPath, wsURL string, logger *slog.Logger) error {
	registry := cfg.Registry()
	acct := account.New(cfg.Balances(), cfg.IsFrozenAccount)
	ledger := position.NewLedger()

	runStart := time.Now().UTC()
	outDir := cfg.Report.OutDir
	if outDir == "" {
		outDir = "."
	}

	sink, err := report.NewJSONSink(outDir)
	if err != nil {
		return fmt.Errorf("simrunner: create report sink: %w", err)
	}
	defer sink.Close()

	digestBus := digest.NewBus(nil)

	hook := notify.NewWebhook(cfg.Notify.WebhookURL, logger)
	defer hook.Close()

	hub := api.NewHub(logger)
	bus := events.NewMultiBus(digestBus, sink, hook, hub)

	fillModel := matching.NewFillModel(cfg.FillModel.ProbSlippage, cfg.FillModel.ProbFillOnLimit, rng.NewSource(cfg.FillModel.Seed))

	engine := matching.NewEngine(matching.Config{
		Venue:              cfg.Venue,
		OMSType:            cfg.OMSType,
		Registry:           registry,
		Account:            acct,
		Ledger:             ledger,
		Clock:              clock.WallClock{},
		FillModel:          fillModel,
		Bus:                bus,
		Logger:             logger,
		MarginCheckEnabled: cfg.MarginCheckEnabled,
	})

	var apiServer *api.Server
	if cfg.Dashboard.Enabled {
		provider := &snapshotProvider{engine: engine, ledger: ledger, account: acct}
		apiServer = api.NewServer(cfg.Dashboard, provider, hub, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("dashboard server failed", "error", err)
			}
		}()
		logger.Info("dashboard started", "port", cfg.Dashboard.Port)
	}

	source, err := openSource(feedPath, wsURL, registry, cfg.Venue, logger)
	if err != nil {
		return fmt.Errorf("simrunner: open feed: %w", err)
	}
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	count, err := drive(ctx, engine, source, logger)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("simrunner: drive feed: %w", err)
	}
	logger.Info("feed exhausted", "items_processed", count)

	residuals := engine.CheckResiduals()
	logger.Info("run complete",
		"working_orders", len(residuals.WorkingOrders),
		"open_positions", len(residuals.OpenPositions),
		"digest", digestBus.Digest.Hex(),
		"duration", time.Since(runStart),
	)

	if cfg.Dashboard.Enabled {
		if err := apiServer.Stop(); err != nil {
			logger.Error("failed to stop dashboard", "error", err)
		}
	}

	return nil
}

// drive applies every item source yields to engine, in order, until the
// source is exhausted or ctx is cancelled.
func drive(ctx context.Context, engine *matching.Engine, source feed.TickCommandSource, logger *slog.Logger) (int, error) {
	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, nil
		default:
		}

		item, err := source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}

		applyItem(engine, item, logger)
		count++
	}
}

func applyItem(engine *matching.Engine, item feed.Item, logger *slog.Logger) {
	switch v := item.(type) {
	case events.QuoteTick:
		engine.ProcessQuoteTick(v)
	case events.TradeTick:
		engine.ProcessTradeTick(v)
	case events.SubmitOrder:
		engine.SubmitOrder(v)
	case events.SubmitBracket:
		engine.SubmitBracket(v)
	case events.AmendOrder:
		engine.AmendOrder(v)
	case events.CancelOrder:
		engine.CancelOrder(v)
	default:
		logger.Warn("unrecognized feed item, skipping", "type", fmt.Sprintf("%T", v))
	}
}

func openSource(feedPath, wsURL string, registry *instrument.Registry, venue string, logger *slog.Logger) (feed.TickCommandSource, error) {
	if feedPath != "" {
		return feed.NewFileSource(feedPath, registry, venue)
	}
	return feed.NewWSSource(context.Background(), wsURL, registry, venue, logger), nil
}

// snapshotProvider adapts the engine/ledger/account this process owns to
// api.SnapshotProvider.
type snapshotProvider struct {
	engine  *matching.Engine
	ledger  *position.Ledger
	account *account.Account
}

func (p *snapshotProvider) WorkingOrders() map[events.ClientOrderID]matching.Order {
	if p.engine == nil {
		return nil
	}
	return p.engine.GetWorkingOrders()
}

func (p *snapshotProvider) OpenPositions() []position.Position {
	return p.ledger.OpenPositions()
}

func (p *snapshotProvider) Balances() map[money.Currency]account.Balance {
	return p.account.Snapshot()
}

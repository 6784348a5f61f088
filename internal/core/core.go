// Package core wires the Parameter Store, Policy Integrator, and Decision
// Audit Log into a single value with no globals, per the Design Notes'
// "a systems-language rewrite should pass these explicitly" guidance. It
// also defines the reference venue contracts (TapeSource/DecisionSink) that
// an external collaborator implements to drive the pipeline — venue
// connectivity itself stays out of scope (spec §1).
package core

import (
	"context"
	"log/slog"

	"binarycore/internal/audit"
	"binarycore/internal/config"
	"binarycore/internal/integrator"
	"binarycore/internal/marketkey"
	"binarycore/internal/paramstore"
	"binarycore/pkg/types"
)

// TapeSource is the tape-ingress contract (spec §6): a push of
// (market_key_raw, timestamp_ms, up_price, down_price). Next returns
// ok=false when the source is exhausted (e.g. end of a replay file), not an
// error.
type TapeSource interface {
	Next(ctx context.Context) (rawKey string, state types.TapeState, ok bool, err error)
}

// DecisionSink is the execution-egress contract (spec §6): each decision
// with ShouldTrade=true is handed to an external executor responsible for
// actually placing the order.
type DecisionSink interface {
	Emit(types.Decision) error
}

// Core owns the Parameter Store, the Integrator's per-market state map, and
// the audit sink. There is exactly one constructor and no package-level
// mutable state.
type Core struct {
	Params     *paramstore.Store
	Integrator *integrator.Integrator
	Audit      *audit.Sink
	logger     *slog.Logger
}

// New constructs a Core from ambient configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Core, error) {
	store := paramstore.New(cfg.ParamsPath, cfg.PollInterval(), logger)

	sink, err := audit.Open(cfg.AuditPath, cfg.AuditEnabled, logger)
	if err != nil {
		return nil, err
	}

	ig := integrator.New(cfg.HistoryCapacity, cfg.RecentTradesCapacity, sink, logger)

	return &Core{
		Params:     store,
		Integrator: ig,
		Audit:      sink,
		logger:     logger.With("component", "core"),
	}, nil
}

// Start begins the parameter store's hot-reload loop. It blocks until ctx
// is cancelled; callers typically run it in its own goroutine.
func (c *Core) Start(ctx context.Context) {
	c.Params.Start(ctx)
}

// Tick normalizes rawKey, looks up its parameters, and runs one should_trade
// decision. If the normalized key carries no parameters, the tick still
// completes with a no-trade decision — an unknown market is never an error
// (spec §6: "no parameters -> no trade"). The zero-value quality thresholds
// reject any tick whose prices do not sum to exactly 1, or that differs in
// time or price from the market's previous tick (data_quality_filter_failed);
// a tick that passes them stops at entry with no_entry_params.
func (c *Core) Tick(rawKey string, nowMs int64, up, down float64) types.Decision {
	key := marketkey.Normalize(rawKey)
	mp := c.Params.GetMarketParams(key)
	return c.Integrator.ShouldTrade(key, nowMs, up, down, mp)
}

// RecordTradeExecution forwards to the Integrator (spec §4.5); kept on Core
// so external executors have a single entry point alongside Tick.
func (c *Core) RecordTradeExecution(key types.MarketKey, nowMs int64, side types.Side, shares, cost float64) {
	c.Integrator.RecordTradeExecution(key, nowMs, side, shares, cost)
}

// Close releases the audit sink's file handle.
func (c *Core) Close() error {
	return c.Audit.Close()
}

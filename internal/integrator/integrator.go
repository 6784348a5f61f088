// Package integrator implements the Policy Integrator (C4): the per-market
// stateful coordinator that owns price history, inventory, cadence, and
// session state, and orchestrates the fixed filter pipeline against the
// Policy Engine's pure functions (spec §4.5).
//
// Per-market state is created lazily on first tick, mirroring the teacher's
// risk.Manager map-of-per-key-state pattern, but each market's own mutex
// serializes mutations to that market only — cross-market calls proceed in
// parallel, since no state is shared across market keys (spec §5).
package integrator

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"binarycore/internal/audit"
	"binarycore/internal/features"
	"binarycore/internal/params"
	"binarycore/internal/policy"
	"binarycore/pkg/types"
)

// marketState is the full mutable state owned for one market key.
type marketState struct {
	mu sync.Mutex

	history      []types.PriceHistoryEntry
	historyCap   int
	hasSnapshot  bool
	lastSnapshot types.TapeState

	inventory types.Inventory
	cadence   types.CadenceState
	session   types.SessionState
	recentCap int
}

// Integrator owns the per-market state map and drives should_trade.
type Integrator struct {
	logger *slog.Logger
	audit  *audit.Sink

	mu      sync.Mutex
	markets map[types.MarketKey]*marketState

	historyCapacity      int
	recentTradesCapacity int
}

// New creates an Integrator. historyCapacity and recentTradesCapacity are
// the N_hist/N_rec bounds from spec §3 (defaults 1000/100 applied by the
// caller via internal/config). sink may be nil or disabled; Append is a
// no-op either way (spec §4.6: auditing is optional).
func New(historyCapacity, recentTradesCapacity int, sink *audit.Sink, logger *slog.Logger) *Integrator {
	return &Integrator{
		logger:               logger.With("component", "integrator"),
		audit:                sink,
		markets:              make(map[types.MarketKey]*marketState),
		historyCapacity:      historyCapacity,
		recentTradesCapacity: recentTradesCapacity,
	}
}

func (ig *Integrator) stateFor(key types.MarketKey) *marketState {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	ms, ok := ig.markets[key]
	if !ok {
		ms = &marketState{historyCap: ig.historyCapacity, recentCap: ig.recentTradesCapacity}
		ig.markets[key] = ms
	}
	return ms
}

// ShouldTrade runs the fixed pipeline of spec §4.5 for one tick of one
// market and returns the resulting Decision.
func (ig *Integrator) ShouldTrade(key types.MarketKey, nowMs int64, up, down float64, mp params.MarketParams) types.Decision {
	ms := ig.stateFor(key)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	decisionID := uuid.NewString()
	rec := audit.Record{
		DecisionID:  decisionID,
		TimestampMs: nowMs,
		MarketKey:   key,
		UpPrice:     up,
		DownPrice:   down,
		PriceSource: "snapshot",
	}
	noTrade := func(reason types.Reason) types.Decision {
		rec.Reason = reason
		ig.audit.Append(rec)
		return types.Decision{DecisionID: decisionID, MarketKey: key, TimestampMs: nowMs, ShouldTrade: false, Reason: reason}
	}

	// 1. Reset predicate.
	if policy.ShouldResetInventory(ms.session.LastActivityTs, ms.session.LastActivityTs > 0, nowMs, mp.Reset) {
		ms.inventory = types.Inventory{}
		ms.session = types.SessionState{}
	}

	// 2. Append to price history.
	state := types.TapeState{TimestampMs: nowMs, MarketKey: key, UpPrice: up, DownPrice: down}
	ms.appendHistory(state)

	// 3. Quality filter against the prior snapshot; snapshot updates
	// unconditionally after the check.
	prev := ms.lastSnapshot
	hadPrev := ms.hasSnapshot
	qualityOk := policy.QualityFilterOk(state, prev, hadPrev, mp.Quality)
	ms.lastSnapshot = state
	ms.hasSnapshot = true
	if !qualityOk {
		return noTrade(types.ReasonDataQualityFilterFailed)
	}

	// 4. Features.
	f := features.Compute(state, ms.history)

	// 5. Cooldown.
	if !policy.CooldownOk(ms.cadence.LastTradeTs, nowMs, f, ms.inventory, mp.Cooldown) {
		return noTrade(types.ReasonCooldownBlocked)
	}

	// 6. Cadence.
	if !policy.CadenceOk(ms.cadence.LastTradeTs, ms.cadence.RecentTradeTs, mp.Cadence, nowMs) {
		return noTrade(types.ReasonCadenceBlocked)
	}

	// 7. Per-side entry signals.
	entry := policy.EntrySignal(state, f, mp.Entry)
	rec.EntryUpQualifies, rec.EntryUpReason = entry.Up.Qualifies, entry.Up.Reason
	rec.EntryDownQualifies, rec.EntryDownReason = entry.Down.Qualifies, entry.Down.Reason
	rec.InventoryRatio = ms.inventory.ImbalanceRatio(1e-9)
	rec.InventoryUpShares, rec.InventoryDownShares = ms.inventory.UpShares, ms.inventory.DownShares

	// 8. Side selection.
	side, ok := policy.SelectSide(state, f, entry, ms.inventory, mp.SideSelect)
	if !ok {
		return noTrade(firstBlockedReason(entry))
	}

	// 9. Risk limits.
	if !policy.RiskOk(ms.session, ms.inventory, side, mp.Risk) {
		return noTrade(types.ReasonRiskLimitExceeded)
	}

	// 10. Size lookup.
	size := policy.SizeForTrade(state, side, mp.Size, ms.inventory)
	rec.PriceBucketID, rec.PriceBucketLabel = size.BucketID, size.BucketLabel
	rec.ConditioningBucket, rec.RawSize, rec.CappedSize, rec.SizeTableKey =
		size.ConditioningBucket, size.RawSize, size.Shares, size.TableKey

	// 11. Inventory gate.
	gatedSide, invOk := policy.InventoryOkAndRebalance(ms.inventory, mp.Inventory, side)
	if !invOk {
		return noTrade(types.ReasonInventoryLimitExceeded)
	}

	// 12. Execution model.
	sidePrice := up
	if gatedSide == types.DOWN {
		sidePrice = down
	}
	fillPrice := policy.SimulateFillPrice(sidePrice, mp.Execution)

	reason := entrySideReason(entry, gatedSide)

	rec.ChosenSide, rec.Reason = gatedSide, reason
	rec.FillModel = string(mp.Execution.ModelType)
	rec.SnapshotSidePrice, rec.ComputedFill = sidePrice, fillPrice
	rec.Bias, rec.SlippageOffset = fillBiasAndSlippage(mp.Execution)
	ig.audit.Append(rec)

	return types.Decision{
		DecisionID:  decisionID,
		MarketKey:   key,
		TimestampMs: nowMs,
		ShouldTrade: true,
		Side:        gatedSide,
		Shares:      size.Shares,
		FillPrice:   fillPrice,
		Reason:      reason,
	}
}

// fillBiasAndSlippage reports the bias/slippage values that actually fed
// simulate_fill_price's chosen model, for the audit record (spec §4.6).
func fillBiasAndSlippage(ep params.ExecutionParams) (bias, slippage float64) {
	switch ep.ModelType {
	case params.ExecutionFixedSlippage:
		return 0, ep.SlippageOffset
	case params.ExecutionMidPrice:
		return ep.FillBiasMedian, 0
	case params.ExecutionWorstCase:
		if ep.FillBiasP75 != 0 {
			return ep.FillBiasP75, 0
		}
		return ep.FillBiasMedian, 0
	default:
		return 0, 0
	}
}

// RecordTradeExecution implements record_trade_execution (spec §4.5):
// increments inventory and average cost, appends to recent trades, and
// updates cadence/session counters.
func (ig *Integrator) RecordTradeExecution(key types.MarketKey, nowMs int64, side types.Side, shares, cost float64) {
	ms := ig.stateFor(key)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if side == types.UP {
		totalCost := ms.inventory.AvgCostUp*ms.inventory.UpShares + cost
		ms.inventory.UpShares += shares
		if ms.inventory.UpShares > 0 {
			ms.inventory.AvgCostUp = totalCost / ms.inventory.UpShares
		}
	} else {
		totalCost := ms.inventory.AvgCostDown*ms.inventory.DownShares + cost
		ms.inventory.DownShares += shares
		if ms.inventory.DownShares > 0 {
			ms.inventory.AvgCostDown = totalCost / ms.inventory.DownShares
		}
	}

	ms.cadence.RecentTradeTs = append(ms.cadence.RecentTradeTs, nowMs)
	if len(ms.cadence.RecentTradeTs) > ms.recentCap {
		ms.cadence.RecentTradeTs = ms.cadence.RecentTradeTs[len(ms.cadence.RecentTradeTs)-ms.recentCap:]
	}
	ms.cadence.LastTradeTs = nowMs

	ms.session.TradesThisSession++
	ms.session.LastActivityTs = nowMs
}

func (ms *marketState) appendHistory(state types.TapeState) {
	ms.history = append(ms.history, types.PriceHistoryEntry{
		TimestampMs: state.TimestampMs,
		UpPrice:     state.UpPrice,
		DownPrice:   state.DownPrice,
	})
	if len(ms.history) > ms.historyCap {
		ms.history = ms.history[len(ms.history)-ms.historyCap:]
	}
}

// firstBlockedReason picks a stable reason when neither side qualified:
// the UP-side reason takes precedence unless only DOWN carries a more
// specific rejection.
func firstBlockedReason(entry policy.EntryResult) types.Reason {
	if entry.Up.Reason != "" && entry.Up.Reason != types.ReasonNoEntryParams {
		return entry.Up.Reason
	}
	if entry.Down.Reason != "" && entry.Down.Reason != types.ReasonNoEntryParams {
		return entry.Down.Reason
	}
	if entry.Up.Reason == types.ReasonNoEntryParams {
		return types.ReasonNoEntryParams
	}
	return types.ReasonNoBandMatch
}

func entrySideReason(entry policy.EntryResult, side types.Side) types.Reason {
	if side == types.UP {
		return entry.Up.Reason
	}
	return entry.Down.Reason
}

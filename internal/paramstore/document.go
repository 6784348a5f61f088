package paramstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// rawEntryParams mirrors the on-disk entry_params shape for one market.
type rawEntryParams struct {
	UpPriceMin        *float64 `json:"up_price_min"`
	UpPriceMax        *float64 `json:"up_price_max"`
	DownPriceMin      *float64 `json:"down_price_min"`
	DownPriceMax      *float64 `json:"down_price_max"`
	Mode              string   `json:"mode"`
	MomentumWindowS   float64  `json:"momentum_window_s"`
	MomentumThreshold float64  `json:"momentum_threshold"`
}

type rawSizeParams struct {
	BinEdges                  []float64          `json:"bin_edges"`
	SizeTable1D               map[string]float64 `json:"size_table_1d"`
	SizeTable                 map[string]float64 `json:"size_table"`
	ConditioningVar           *string            `json:"conditioning_var"`
	InventoryBucketThresholds []float64          `json:"inventory_bucket_thresholds"`
	InventoryBuckets          []string           `json:"inventory_buckets"`
}

type rawInventoryParams struct {
	MaxUpShares     float64 `json:"max_up_shares"`
	MaxDownShares   float64 `json:"max_down_shares"`
	MaxTotalShares  float64 `json:"max_total_shares"`
	RebalanceRatioR float64 `json:"rebalance_ratio_R"`
}

type rawCadenceParams struct {
	MinInterTradeMs int64 `json:"min_inter_trade_ms"`
	MaxTradesPerSec int   `json:"max_trades_per_sec"`
	MaxTradesPerMin int   `json:"max_trades_per_min"`
}

type rawSideSelectionParams struct {
	Mode          string  `json:"mode"`
	PreferredSide string  `json:"preferred_side"`
	ConfidenceGap float64 `json:"confidence_gap"`
}

type rawExecutionParams struct {
	ModelType      string  `json:"model_type"`
	SlippageOffset float64 `json:"slippage_offset"`
	FillBiasMedian float64 `json:"fill_bias_median"`
	FillBiasP75    float64 `json:"fill_bias_p75"`
}

type rawCooldownParams struct {
	HasTimeCooldown           bool     `json:"has_time_cooldown"`
	TimeCooldownSeconds       float64  `json:"time_cooldown_seconds"`
	PriceMoveThreshold        *float64 `json:"price_move_threshold"`
	HasInventoryLockout       bool     `json:"has_inventory_lockout"`
	InventoryLockoutThreshold float64  `json:"inventory_lockout_threshold"`
}

type rawRiskParams struct {
	MaxTradesPerSession   int     `json:"max_trades_per_session"`
	MaxImbalanceRatio     float64 `json:"max_imbalance_ratio"`
	MaxExposureUpShares   float64 `json:"max_exposure_up_shares"`
	MaxExposureDownShares float64 `json:"max_exposure_down_shares"`
}

type rawQualityFilterParams struct {
	MaxPriceSumDeviation       float64 `json:"max_price_sum_deviation"`
	TimestampJumpThresholdSecs float64 `json:"timestamp_jump_threshold_seconds"`
	PriceGapThreshold          float64 `json:"price_gap_threshold"`
}

type rawResetParams struct {
	ResetsOnMarketSwitch     bool    `json:"resets_on_market_switch"`
	ResetsOnInactivity       bool    `json:"resets_on_inactivity"`
	InactivityThresholdHours float64 `json:"inactivity_threshold_hours"`
}

// rawMarketParams is the per-market object in the market-first layout.
type rawMarketParams struct {
	EntryParams         *rawEntryParams         `json:"entry_params"`
	SizeParams          *rawSizeParams          `json:"size_params"`
	InventoryParams     *rawInventoryParams     `json:"inventory_params"`
	CadenceParams       *rawCadenceParams       `json:"cadence_params"`
	SideSelectionParams *rawSideSelectionParams `json:"side_selection_params"`
	ExecutionParams     *rawExecutionParams     `json:"execution_params"`
	CooldownParams      *rawCooldownParams      `json:"cooldown_params"`
	RiskParams          *rawRiskParams          `json:"risk_params"`
	QualityFilterParams *rawQualityFilterParams `json:"quality_filter_params"`
	ResetParams         *rawResetParams         `json:"reset_params"`
	Confidence          float64                 `json:"confidence"`
}

// perMarketSection is the shape of each top-level key in the param-type-first
// layout: {"per_market": {market_key: <raw param type>}}.
type perMarketSection[T any] struct {
	PerMarket map[string]T `json:"per_market"`
}

// paramTypeFirstDoc is the param-type-first on-disk layout.
type paramTypeFirstDoc struct {
	EntryParams         perMarketSection[rawEntryParams]         `json:"entry_params"`
	SizeParams          perMarketSection[rawSizeParams]          `json:"size_params"`
	InventoryParams     perMarketSection[rawInventoryParams]     `json:"inventory_params"`
	CadenceParams       perMarketSection[rawCadenceParams]       `json:"cadence_params"`
	SideSelectionParams perMarketSection[rawSideSelectionParams] `json:"side_selection_params"`
	ExecutionParams     perMarketSection[rawExecutionParams]     `json:"execution_params"`
	CooldownParams      perMarketSection[rawCooldownParams]      `json:"cooldown_params"`
	RiskParams          perMarketSection[rawRiskParams]          `json:"risk_params"`
	QualityFilterParams perMarketSection[rawQualityFilterParams] `json:"quality_filter_params"`
	ResetParams         perMarketSection[rawResetParams]         `json:"reset_params"`
}

// detectLayout implements spec §4.1's detection rule: presence of at least
// one canonical market key at top level AND absence of entry_params/
// size_params at top level => market-first; otherwise param-type-first.
func detectLayout(raw map[string]json.RawMessage) bool {
	hasMarketKey := false
	for _, k := range types.KnownMarketKeys {
		if _, ok := raw[string(k)]; ok {
			hasMarketKey = true
			break
		}
	}
	_, hasEntryParams := raw["entry_params"]
	_, hasSizeParams := raw["size_params"]

	return hasMarketKey && !hasEntryParams && !hasSizeParams
}

// parseDocument parses raw JSON bytes into a *params.Document, detecting and
// normalizing either on-disk layout, then validating structural invariants
// (spec §4.1).
func parseDocument(data []byte) (*params.Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse parameter document: %w", err)
	}

	marketFirst := detectLayout(top)

	var byMarket map[types.MarketKey]rawMarketParams
	var err error
	if marketFirst {
		byMarket, err = parseMarketFirst(top)
	} else {
		byMarket, err = parseParamTypeFirst(data)
	}
	if err != nil {
		return nil, err
	}

	doc := &params.Document{Markets: make(map[types.MarketKey]params.MarketParams, len(byMarket))}
	for key, raw := range byMarket {
		doc.Markets[key] = normalizeMarketParams(raw)
	}
	return doc, nil
}

func parseMarketFirst(top map[string]json.RawMessage) (map[types.MarketKey]rawMarketParams, error) {
	out := make(map[types.MarketKey]rawMarketParams)
	for _, key := range types.KnownMarketKeys {
		raw, ok := top[string(key)]
		if !ok {
			continue
		}
		var mp rawMarketParams
		if err := json.Unmarshal(raw, &mp); err != nil {
			return nil, fmt.Errorf("parse market %s: %w", key, err)
		}
		out[key] = mp
	}
	return out, nil
}

func parseParamTypeFirst(data []byte) (map[types.MarketKey]rawMarketParams, error) {
	var doc paramTypeFirstDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse param-type-first document: %w", err)
	}

	out := make(map[types.MarketKey]rawMarketParams)
	set := func(key string, fn func(*rawMarketParams)) {
		mk := types.MarketKey(key)
		mp := out[mk]
		fn(&mp)
		out[mk] = mp
	}

	for k, v := range doc.EntryParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.EntryParams = &v })
	}
	for k, v := range doc.SizeParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.SizeParams = &v })
	}
	for k, v := range doc.InventoryParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.InventoryParams = &v })
	}
	for k, v := range doc.CadenceParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.CadenceParams = &v })
	}
	for k, v := range doc.SideSelectionParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.SideSelectionParams = &v })
	}
	for k, v := range doc.ExecutionParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.ExecutionParams = &v })
	}
	for k, v := range doc.CooldownParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.CooldownParams = &v })
	}
	for k, v := range doc.RiskParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.RiskParams = &v })
	}
	for k, v := range doc.QualityFilterParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.QualityFilterParams = &v })
	}
	for k, v := range doc.ResetParams.PerMarket {
		v := v
		set(k, func(mp *rawMarketParams) { mp.ResetParams = &v })
	}

	return out, nil
}

// normalizeMarketParams converts one market's raw JSON shape into the
// strongly typed params.MarketParams, applying the validation/default rules
// from spec §4.1.
func normalizeMarketParams(raw rawMarketParams) params.MarketParams {
	mp := params.MarketParams{}

	if e := raw.EntryParams; e != nil {
		mp.Entry = params.EntryParams{
			Set:               true,
			UpPriceMin:        e.UpPriceMin,
			UpPriceMax:        e.UpPriceMax,
			DownPriceMin:      e.DownPriceMin,
			DownPriceMax:      e.DownPriceMax,
			Mode:              normalizeEntryMode(e.Mode),
			MomentumWindowS:   e.MomentumWindowS,
			MomentumThreshold: e.MomentumThreshold,
		}
	}

	if s := raw.SizeParams; s != nil {
		valid := isStrictlyIncreasing(s.BinEdges) && len(s.BinEdges) >= 2
		cond := params.ConditioningNone
		if s.ConditioningVar != nil && *s.ConditioningVar == string(params.ConditioningInventoryImbalance) {
			cond = params.ConditioningInventoryImbalance
		}
		mp.Size = params.SizeParams{
			BinEdges:                  s.BinEdges,
			SizeTable1D:               s.SizeTable1D,
			SizeTable:                 s.SizeTable,
			ConditioningVar:           cond,
			InventoryBucketThresholds: s.InventoryBucketThresholds,
			InventoryBuckets:          s.InventoryBuckets,
			BinEdgesValid:             valid,
		}
	}

	if inv := raw.InventoryParams; inv != nil {
		mp.Inventory = params.InventoryParams{
			MaxUpShares:     inv.MaxUpShares,
			MaxDownShares:   inv.MaxDownShares,
			MaxTotalShares:  inv.MaxTotalShares,
			RebalanceRatioR: clampRebalanceRatio(inv.RebalanceRatioR),
		}
	}

	if c := raw.CadenceParams; c != nil {
		mp.Cadence = params.CadenceParams{
			MinInterTradeMs: c.MinInterTradeMs,
			MaxTradesPerSec: c.MaxTradesPerSec,
			MaxTradesPerMin: c.MaxTradesPerMin,
		}
	}

	if ss := raw.SideSelectionParams; ss != nil {
		mp.SideSelect = params.SideSelectionParams{
			Mode:          normalizeSideSelectionMode(ss.Mode),
			PreferredSide: normalizeSide(ss.PreferredSide),
			ConfidenceGap: ss.ConfidenceGap,
		}
	}

	if ex := raw.ExecutionParams; ex != nil {
		mp.Execution = params.ExecutionParams{
			ModelType:      normalizeExecutionModel(ex.ModelType),
			SlippageOffset: ex.SlippageOffset,
			FillBiasMedian: ex.FillBiasMedian,
			FillBiasP75:    ex.FillBiasP75,
		}
	}

	if cd := raw.CooldownParams; cd != nil {
		mp.Cooldown = params.CooldownParams{
			HasTimeCooldown:           cd.HasTimeCooldown,
			TimeCooldownSeconds:       cd.TimeCooldownSeconds,
			HasPriceMoveThreshold:     cd.PriceMoveThreshold != nil,
			HasInventoryLockout:       cd.HasInventoryLockout,
			InventoryLockoutThreshold: cd.InventoryLockoutThreshold,
		}
		if cd.PriceMoveThreshold != nil {
			mp.Cooldown.PriceMoveThreshold = *cd.PriceMoveThreshold
		}
	}

	if r := raw.RiskParams; r != nil {
		mp.Risk = params.RiskParams{
			MaxTradesPerSession:   r.MaxTradesPerSession,
			MaxImbalanceRatio:     r.MaxImbalanceRatio,
			MaxExposureUpShares:   r.MaxExposureUpShares,
			MaxExposureDownShares: r.MaxExposureDownShares,
		}
	}

	if q := raw.QualityFilterParams; q != nil {
		mp.Quality = params.QualityFilterParams{
			MaxPriceSumDeviation:       q.MaxPriceSumDeviation,
			TimestampJumpThresholdSecs: q.TimestampJumpThresholdSecs,
			PriceGapThreshold:          q.PriceGapThreshold,
		}
	}

	if rs := raw.ResetParams; rs != nil {
		mp.Reset = params.ResetParams{
			ResetsOnMarketSwitch:     rs.ResetsOnMarketSwitch,
			ResetsOnInactivity:       rs.ResetsOnInactivity,
			InactivityThresholdHours: rs.InactivityThresholdHours,
		}
	}

	return mp
}

func isStrictlyIncreasing(vals []float64) bool {
	if len(vals) < 2 {
		return false
	}
	return sort.SliceIsSorted(vals, func(i, j int) bool { return vals[i] < vals[j] }) && noDuplicates(vals)
}

func noDuplicates(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return false
		}
	}
	return true
}

// clampRebalanceRatio enforces spec §4.1: "rebalance_ratio_R is clamped to
// (0.5, 1)".
func clampRebalanceRatio(r float64) float64 {
	const lo, hi = 0.5, 1.0
	const epsilon = 1e-9
	switch {
	case r <= lo:
		return lo + epsilon
	case r >= hi:
		return hi - epsilon
	default:
		return r
	}
}

func normalizeEntryMode(s string) params.EntryMode {
	switch params.EntryMode(s) {
	case params.EntryModeMomentum, params.EntryModeReversion:
		return params.EntryMode(s)
	default:
		return params.EntryModeNone
	}
}

func normalizeSideSelectionMode(s string) params.SideSelectionMode {
	switch params.SideSelectionMode(s) {
	case params.SideSelectionInventoryDriven, params.SideSelectionEdgeDriven,
		params.SideSelectionMomentumDriven, params.SideSelectionAlternating,
		params.SideSelectionFixedPreference, params.SideSelectionMixed:
		return params.SideSelectionMode(s)
	default:
		return params.SideSelectionInventoryDriven
	}
}

func normalizeExecutionModel(s string) params.ExecutionModelType {
	switch params.ExecutionModelType(s) {
	case params.ExecutionFixedSlippage, params.ExecutionMidPrice, params.ExecutionWorstCase:
		return params.ExecutionModelType(s)
	default:
		return params.ExecutionSnapshotPrice
	}
}

func normalizeSide(s string) types.Side {
	if types.Side(s) == types.DOWN {
		return types.DOWN
	}
	return types.UP
}

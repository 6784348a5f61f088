// Package params defines the strongly typed, validated internal
// representation of per-market trading parameters (spec §3 "Market
// Parameters"). The on-disk document is a loosely shaped, optional-everywhere
// JSON blob (see internal/paramstore); this package is the boundary where it
// becomes a closed, tagged-variant shape the policy engine can trust without
// re-validating at use, per the Design Notes ("reject on load rather than at
// use").
package params

import "binarycore/pkg/types"

// EntryMode is a closed enumeration over the entry-signal strategies.
type EntryMode string

const (
	EntryModeMomentum  EntryMode = "momentum"
	EntryModeReversion EntryMode = "reversion"
	EntryModeNone      EntryMode = "none"
)

// SideSelectionMode is a closed enumeration over side-selection strategies.
type SideSelectionMode string

const (
	SideSelectionInventoryDriven SideSelectionMode = "inventory_driven"
	SideSelectionEdgeDriven      SideSelectionMode = "edge_driven"
	SideSelectionMomentumDriven  SideSelectionMode = "momentum_driven"
	SideSelectionAlternating     SideSelectionMode = "alternating"
	SideSelectionFixedPreference SideSelectionMode = "fixed_preference"
	SideSelectionMixed           SideSelectionMode = "mixed"
)

// ExecutionModelType is a closed enumeration over fill-price simulation models.
type ExecutionModelType string

const (
	ExecutionSnapshotPrice ExecutionModelType = "snapshot_price"
	ExecutionFixedSlippage ExecutionModelType = "fixed_slippage"
	ExecutionMidPrice      ExecutionModelType = "mid_price"
	ExecutionWorstCase     ExecutionModelType = "worst_case"
)

// ConditioningVar is a closed enumeration over sizing-table conditioning.
type ConditioningVar string

const (
	ConditioningNone               ConditioningVar = ""
	ConditioningInventoryImbalance ConditioningVar = "inventory_imbalance_ratio"
)

// EntryParams configures entry_signal (spec §4.4.1).
type EntryParams struct {
	Set bool // false => "no_entry_params"

	UpPriceMin   *float64
	UpPriceMax   *float64
	DownPriceMin *float64
	DownPriceMax *float64

	Mode             EntryMode
	MomentumWindowS  float64
	MomentumThreshold float64
}

// SizeParams configures size_for_trade (spec §4.4.3).
type SizeParams struct {
	BinEdges                  []float64
	SizeTable1D               map[string]float64
	SizeTable                 map[string]float64 // "price_label|inv_label" -> size
	ConditioningVar           ConditioningVar
	InventoryBucketThresholds []float64
	InventoryBuckets          []string

	// BinEdgesValid is false when the loaded bin_edges failed the length/
	// monotonicity check; size_for_trade then always returns the default
	// share of 1.0 per spec §4.1.
	BinEdgesValid bool
}

// InventoryParams configures inventory_ok_and_rebalance (spec §4.4.4).
type InventoryParams struct {
	MaxUpShares    float64
	MaxDownShares  float64
	MaxTotalShares float64
	RebalanceRatioR float64 // clamped to (0.5, 1) on load
}

// CadenceParams configures cadence_ok (spec §4.4.5).
type CadenceParams struct {
	MinInterTradeMs int64
	MaxTradesPerSec int
	MaxTradesPerMin int
}

// SideSelectionParams configures side selection (spec §4.4.2).
type SideSelectionParams struct {
	Mode           SideSelectionMode
	PreferredSide  types.Side
	ConfidenceGap  float64
}

// ExecutionParams configures simulate_fill_price (spec §4.4.9).
type ExecutionParams struct {
	ModelType      ExecutionModelType
	SlippageOffset float64
	FillBiasMedian float64
	FillBiasP75    float64
}

// CooldownParams configures cooldown_ok (spec §4.4.6).
type CooldownParams struct {
	HasTimeCooldown          bool
	TimeCooldownSeconds      float64
	PriceMoveThreshold       float64 // used only when HasPriceMoveThreshold
	HasPriceMoveThreshold    bool
	HasInventoryLockout      bool
	InventoryLockoutThreshold float64
}

// RiskParams configures risk_ok (spec §4.4.7).
type RiskParams struct {
	MaxTradesPerSession   int
	MaxImbalanceRatio     float64
	MaxExposureUpShares   float64
	MaxExposureDownShares float64
}

// QualityFilterParams configures the quality filter (spec §4.4.8).
type QualityFilterParams struct {
	MaxPriceSumDeviation        float64
	TimestampJumpThresholdSecs  float64
	PriceGapThreshold           float64
}

// ResetParams configures should_reset_inventory (spec §4.4.10).
type ResetParams struct {
	ResetsOnMarketSwitch    bool
	ResetsOnInactivity      bool
	InactivityThresholdHours float64
}

// MarketParams is the full, validated parameter set for one market key.
// Every field defaults to its Go zero value when the source document omits
// a section, matching spec §4.1: "missing sections default to empty
// per-market maps."
type MarketParams struct {
	Entry      EntryParams
	Size       SizeParams
	Inventory  InventoryParams
	Cadence    CadenceParams
	SideSelect SideSelectionParams
	Execution  ExecutionParams
	Cooldown   CooldownParams
	Risk       RiskParams
	Quality    QualityFilterParams
	Reset      ResetParams
}

// Document is the fully normalized, param-type-first internal snapshot:
// one MarketParams per canonical market key. It is immutable once published
// — readers share references without locking (spec §5).
type Document struct {
	Markets map[types.MarketKey]MarketParams
}

// Get returns the parameters for key, or the zero MarketParams if the key is
// absent. With zero MarketParams the quality filter's zero thresholds reject
// almost every tick, entry_signal reports no_entry_params, and the cadence,
// cooldown, risk and inventory gates treat their zero limits as unconfigured.
func (d *Document) Get(key types.MarketKey) MarketParams {
	if d == nil || d.Markets == nil {
		return MarketParams{}
	}
	return d.Markets[key]
}

// Empty returns a Document with no markets configured — served when the
// parameter file is absent (spec §4.1 failure mode: "no trades").
func Empty() *Document {
	return &Document{Markets: map[types.MarketKey]MarketParams{}}
}

// Package policy implements the Policy Engine (C3): the set of pure,
// stateless decision functions consulted by the integrator on every tick —
// entry signal, side selection, sizing, inventory gating, cadence, cooldown,
// risk limits, quality filter, fill-price simulation, and the reset
// predicate. None of these functions perform I/O or retain state between
// calls; identical inputs always yield identical outputs.
package policy

import (
	"math"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// SideEntry is the per-side result of check_side_entry.
type SideEntry struct {
	Qualifies bool
	Reason    types.Reason
}

// EntryResult is the combined per-tick entry evaluation for both sides.
type EntryResult struct {
	Up   SideEntry
	Down SideEntry
}

// CheckSideEntry evaluates one side's entry band and momentum/reversion
// condition (spec §4.4.1).
func CheckSideEntry(side types.Side, state types.TapeState, f types.Features, ep params.EntryParams) SideEntry {
	if !ep.Set {
		return SideEntry{Reason: types.ReasonNoEntryParams}
	}

	price := state.UpPrice
	min, max := ep.UpPriceMin, ep.UpPriceMax
	bandReason := types.ReasonUpPriceBand
	notInBandReason := types.ReasonUpPriceNotInBand
	if side == types.DOWN {
		price = state.DownPrice
		min, max = ep.DownPriceMin, ep.DownPriceMax
		bandReason = types.ReasonDownPriceBand
		notInBandReason = types.ReasonDownPriceNotInBand
	}

	if min != nil && max != nil {
		if price < *min || price > *max {
			return SideEntry{Reason: notInBandReason}
		}
	}

	delta := sideDelta5s(side, f)

	switch ep.Mode {
	case params.EntryModeMomentum:
		if delta == nil || *delta < ep.MomentumThreshold {
			return SideEntry{Reason: types.ReasonMomentumNotMet}
		}
		return SideEntry{Qualifies: true, Reason: types.ReasonMomentumMet}
	case params.EntryModeReversion:
		if delta == nil || *delta > -ep.MomentumThreshold {
			return SideEntry{Reason: types.ReasonReversionNotMet}
		}
		return SideEntry{Qualifies: true, Reason: types.ReasonReversionMet}
	default:
		return SideEntry{Qualifies: true, Reason: bandReason}
	}
}

// EntrySignal evaluates both sides and reports whether either qualifies
// (spec §4.4.1). Side selection among qualifying sides is a separate step
// (SelectSide).
func EntrySignal(state types.TapeState, f types.Features, ep params.EntryParams) EntryResult {
	return EntryResult{
		Up:   CheckSideEntry(types.UP, state, f, ep),
		Down: CheckSideEntry(types.DOWN, state, f, ep),
	}
}

// sideDelta5s returns delta_5s_up for UP, or delta_5s_down falling back to
// delta_5s_side (== delta_5s_up) for DOWN — the preserved default-to-up
// behavior of the reference implementation's delta_5s_side field.
func sideDelta5s(side types.Side, f types.Features) *float64 {
	if side == types.UP {
		return f.Delta5sUp
	}
	if f.Delta5sDown != nil {
		return f.Delta5sDown
	}
	return f.Delta5sSide
}

// distanceFrom50 is used by edge-driven and inventory-driven tie-breaking.
func distanceFrom50(price float64) float64 {
	return math.Abs(price - 0.5)
}

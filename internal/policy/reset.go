package policy

import "binarycore/internal/params"

// ShouldResetInventory implements should_reset_inventory (spec §4.4.10).
// hasActivity is false when last_activity_ts is null (no prior activity for
// this market — i.e. a fresh market switch).
func ShouldResetInventory(lastActivityTs int64, hasActivity bool, nowMs int64, rp params.ResetParams) bool {
	if !hasActivity {
		return rp.ResetsOnMarketSwitch
	}

	if !rp.ResetsOnInactivity {
		return false
	}

	hours := float64(nowMs-lastActivityTs) / 3.6e6
	return hours > rp.InactivityThresholdHours
}

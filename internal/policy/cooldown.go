package policy

import (
	"math"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// CooldownOk implements cooldown_ok (spec §4.4.6).
func CooldownOk(lastTradeTs int64, nowMs int64, f types.Features, inv types.Inventory, cp params.CooldownParams) bool {
	if lastTradeTs > 0 && cp.HasTimeCooldown {
		secondsSince := float64(nowMs-lastTradeTs) / 1000.0
		if secondsSince < cp.TimeCooldownSeconds {
			return false
		}
	}

	if lastTradeTs > 0 && cp.HasPriceMoveThreshold {
		secondsSince := float64(nowMs-lastTradeTs) / 1000.0
		if secondsSince <= 5 {
			delta := f.Delta5sSide
			if delta != nil && math.Abs(*delta) < cp.PriceMoveThreshold {
				return false
			}
		}
	}

	if cp.HasInventoryLockout {
		total := inv.Total()
		if total > 0 {
			larger := inv.UpShares
			if inv.DownShares > larger {
				larger = inv.DownShares
			}
			if larger/total > cp.InventoryLockoutThreshold {
				return false
			}
		}
	}

	return true
}

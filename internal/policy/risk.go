package policy

import (
	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// RiskOk implements risk_ok (spec §4.4.7).
func RiskOk(session types.SessionState, inv types.Inventory, side types.Side, rp params.RiskParams) bool {
	if rp.MaxTradesPerSession > 0 && session.TradesThisSession >= rp.MaxTradesPerSession {
		return false
	}

	total := inv.Total()
	if total > 0 && rp.MaxImbalanceRatio > 0 {
		larger := inv.UpShares
		if inv.DownShares > larger {
			larger = inv.DownShares
		}
		if larger/total > rp.MaxImbalanceRatio {
			return false
		}
	}

	if side == types.UP && rp.MaxExposureUpShares > 0 && inv.UpShares > rp.MaxExposureUpShares {
		return false
	}
	if side == types.DOWN && rp.MaxExposureDownShares > 0 && inv.DownShares > rp.MaxExposureDownShares {
		return false
	}

	return true
}

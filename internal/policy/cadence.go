package policy

import "binarycore/internal/params"

// CadenceOk implements cadence_ok (spec §4.4.5). recentTradeTs must be
// sorted ascending; last_trade_ts == 0 means "no trade yet" and never
// blocks on the inter-trade gap.
func CadenceOk(lastTradeTs int64, recentTradeTs []int64, cp params.CadenceParams, nowMs int64) bool {
	if cp.MinInterTradeMs > 0 && lastTradeTs > 0 && nowMs-lastTradeTs < cp.MinInterTradeMs {
		return false
	}

	if cp.MaxTradesPerSec > 0 && countInWindow(recentTradeTs, nowMs-1000, nowMs) >= cp.MaxTradesPerSec {
		return false
	}

	if cp.MaxTradesPerMin > 0 && countInWindow(recentTradeTs, nowMs-60000, nowMs) >= cp.MaxTradesPerMin {
		return false
	}

	return true
}

func countInWindow(ts []int64, lower, upper int64) int {
	n := 0
	for _, t := range ts {
		if t >= lower && t <= upper {
			n++
		}
	}
	return n
}

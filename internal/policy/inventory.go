package policy

import (
	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// InventoryOkAndRebalance implements inventory_ok_and_rebalance (spec
// §4.4.4): caps only, no side flipping. rebalance_ratio_R is informational
// here — it was already consumed by side selection's rebalance intent.
func InventoryOkAndRebalance(inv types.Inventory, ip params.InventoryParams, proposed types.Side) (types.Side, bool) {
	if ip.MaxTotalShares > 0 && inv.Total() >= ip.MaxTotalShares {
		return "", false
	}

	if proposed == types.UP && ip.MaxUpShares > 0 && inv.UpShares >= ip.MaxUpShares {
		return "", false
	}
	if proposed == types.DOWN && ip.MaxDownShares > 0 && inv.DownShares >= ip.MaxDownShares {
		return "", false
	}

	return proposed, true
}

package policy

import (
	"binarycore/internal/params"
	"binarycore/pkg/types"
)

const imbalanceEps = 1e-9

// SelectSide picks a side among those that qualify per EntrySignal, applying
// side_selection_params.mode (spec §4.4.2). It returns ok=false when neither
// side qualifies.
func SelectSide(state types.TapeState, f types.Features, entry EntryResult, inv types.Inventory, sp params.SideSelectionParams) (side types.Side, ok bool) {
	if entry.Up.Qualifies && !entry.Down.Qualifies {
		return types.UP, true
	}
	if entry.Down.Qualifies && !entry.Up.Qualifies {
		return types.DOWN, true
	}
	if !entry.Up.Qualifies && !entry.Down.Qualifies {
		return "", false
	}

	switch sp.Mode {
	case params.SideSelectionEdgeDriven:
		return edgeDriven(state), true
	case params.SideSelectionMomentumDriven:
		return momentumDriven(f, state, inv), true
	case params.SideSelectionFixedPreference:
		if sp.PreferredSide == types.UP || sp.PreferredSide == types.DOWN {
			return sp.PreferredSide, true
		}
		return inventoryDriven(state, inv), true
	case params.SideSelectionAlternating:
		// No independent alternation history is kept at this layer; falls
		// back to inventory-driven per spec §4.4.2.
		return inventoryDriven(state, inv), true
	default: // inventory_driven, mixed
		return inventoryDriven(state, inv), true
	}
}

func inventoryDriven(state types.TapeState, inv types.Inventory) types.Side {
	ratio := inv.ImbalanceRatio(imbalanceEps)
	// Choosing UP moves ratio further from 1 (more up), choosing DOWN moves
	// it closer to 1 when ratio > 1. We want the side that brings ratio
	// closer to 1.0 after the trade is notionally applied; since exact
	// post-trade share counts are not known here, compare how far the
	// *current* ratio already sits from 1 in each direction.
	if ratio > 1.0 {
		return types.DOWN
	}
	if ratio < 1.0 {
		return types.UP
	}
	// Balanced: choose the side with greater |price - 0.5|.
	return edgeDriven(state)
}

func edgeDriven(state types.TapeState) types.Side {
	if distanceFrom50(state.UpPrice) >= distanceFrom50(state.DownPrice) {
		return types.UP
	}
	return types.DOWN
}

func momentumDriven(f types.Features, state types.TapeState, inv types.Inventory) types.Side {
	delta := f.Delta5sSide
	if delta == nil {
		return inventoryDriven(state, inv)
	}
	if *delta > 0.001 {
		return types.UP
	}
	if *delta < -0.001 {
		return types.DOWN
	}
	return inventoryDriven(state, inv)
}

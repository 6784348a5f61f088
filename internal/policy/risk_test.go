package policy

import (
	"testing"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

func TestRiskOkSessionLimit(t *testing.T) {
	t.Parallel()

	rp := params.RiskParams{MaxTradesPerSession: 5}
	session := types.SessionState{TradesThisSession: 5}

	if RiskOk(session, types.Inventory{}, types.UP, rp) {
		t.Error("expected block at session trade limit")
	}
}

func TestRiskOkImbalanceLimit(t *testing.T) {
	t.Parallel()

	rp := params.RiskParams{MaxImbalanceRatio: 0.8}
	inv := types.Inventory{UpShares: 90, DownShares: 10}

	if RiskOk(types.SessionState{}, inv, types.UP, rp) {
		t.Error("expected block when larger-side share exceeds max imbalance ratio")
	}
}

func TestRiskOkExposureLimit(t *testing.T) {
	t.Parallel()

	rp := params.RiskParams{MaxExposureUpShares: 50}
	inv := types.Inventory{UpShares: 60}

	if RiskOk(types.SessionState{}, inv, types.UP, rp) {
		t.Error("expected block on UP exposure cap")
	}
	if !RiskOk(types.SessionState{}, inv, types.DOWN, rp) {
		t.Error("expected DOWN exposure unaffected by UP cap")
	}
}

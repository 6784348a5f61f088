package policy

import (
	"testing"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

func TestCooldownOkTimeCooldownBlocks(t *testing.T) {
	t.Parallel()

	cp := params.CooldownParams{HasTimeCooldown: true, TimeCooldownSeconds: 10}
	if CooldownOk(1000, 5000, types.Features{}, types.Inventory{}, cp) {
		t.Error("expected block within time cooldown window")
	}
}

func TestCooldownOkPriceMoveThresholdBlocks(t *testing.T) {
	t.Parallel()

	cp := params.CooldownParams{HasPriceMoveThreshold: true, PriceMoveThreshold: 0.05}
	small := ptr(0.01)
	f := types.Features{Delta5sSide: small}

	if CooldownOk(1000, 3000, f, types.Inventory{}, cp) {
		t.Error("expected block when price move below threshold within 5s")
	}
}

func TestCooldownOkInventoryLockoutBlocks(t *testing.T) {
	t.Parallel()

	cp := params.CooldownParams{HasInventoryLockout: true, InventoryLockoutThreshold: 0.8}
	inv := types.Inventory{UpShares: 90, DownShares: 10}

	if CooldownOk(0, 1000, types.Features{}, inv, cp) {
		t.Error("expected block when larger-side share exceeds lockout threshold")
	}
}

func TestCooldownOkPassesWhenNoCooldownsConfigured(t *testing.T) {
	t.Parallel()

	if !CooldownOk(0, 1000, types.Features{}, types.Inventory{}, params.CooldownParams{}) {
		t.Error("expected pass with no cooldowns configured")
	}
}

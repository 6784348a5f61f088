package features

import (
	"testing"

	"binarycore/pkg/types"
)

func TestComputeDistanceFrom50Always(t *testing.T) {
	t.Parallel()

	tests := []struct {
		up   float64
		want float64
	}{
		{0.5, 0},
		{1.0, 0.5},
		{0.0, 0.5},
		{0.35, 0.15},
	}

	for _, tt := range tests {
		state := types.TapeState{TimestampMs: 1000, UpPrice: tt.up, DownPrice: 1 - tt.up}
		f := Compute(state, nil)
		if f.DistanceFrom50 < 0 || f.DistanceFrom50 > 0.5 {
			t.Errorf("DistanceFrom50 = %v out of [0, 0.5]", f.DistanceFrom50)
		}
		if diff := f.DistanceFrom50 - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("DistanceFrom50 = %v, want %v", f.DistanceFrom50, tt.want)
		}
	}
}

func TestComputeDeltaWithinTolerance(t *testing.T) {
	t.Parallel()

	history := []types.PriceHistoryEntry{
		{TimestampMs: 0, UpPrice: 0.40, DownPrice: 0.60},
	}
	state := types.TapeState{TimestampMs: 5000, UpPrice: 0.45, DownPrice: 0.55}

	f := Compute(state, history)
	if f.Delta5sUp == nil {
		t.Fatal("expected Delta5sUp to be present")
	}
	if got := *f.Delta5sUp; got < 0.0499 || got > 0.0501 {
		t.Errorf("Delta5sUp = %v, want ~0.05", got)
	}
}

func TestComputeDeltaAbsentOutsideTolerance(t *testing.T) {
	t.Parallel()

	history := []types.PriceHistoryEntry{
		{TimestampMs: 0, UpPrice: 0.40, DownPrice: 0.60},
	}
	// target for 5s window is now-5000=95000; tolerance is 10000ms; history at 0 is
	// 95000ms away from target -> absent.
	state := types.TapeState{TimestampMs: 100000, UpPrice: 0.45, DownPrice: 0.55}

	f := Compute(state, history)
	if f.Delta5sUp != nil {
		t.Errorf("expected Delta5sUp absent, got %v", *f.Delta5sUp)
	}
}

func TestComputeVolatilityRequiresTwoSamples(t *testing.T) {
	t.Parallel()

	state := types.TapeState{TimestampMs: 1000, UpPrice: 0.5, DownPrice: 0.5}
	f := Compute(state, nil)
	if f.Volatility5s != nil {
		t.Error("expected Volatility5s absent with fewer than 2 samples")
	}
}

func TestComputeVolatilityPopulationStdDev(t *testing.T) {
	t.Parallel()

	// history includes the current tick's own entry, matching how the
	// integrator calls Compute (append to history, then compute features).
	history := []types.PriceHistoryEntry{
		{TimestampMs: 1000, UpPrice: 0.4},
		{TimestampMs: 2000, UpPrice: 0.6},
		{TimestampMs: 3000, UpPrice: 0.5},
	}
	state := types.TapeState{TimestampMs: 3000, UpPrice: 0.5, DownPrice: 0.5}

	f := Compute(state, history)
	if f.Volatility5s == nil {
		t.Fatal("expected Volatility5s present")
	}
	// samples: 0.4, 0.6, 0.5 -> mean 0.5, variance ((-.1)^2+(.1)^2+0)/3 = 0.02/3
	want := 0.0816496580927726
	if diff := *f.Volatility5s - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Volatility5s = %v, want %v", *f.Volatility5s, want)
	}
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	history := []types.PriceHistoryEntry{
		{TimestampMs: 1000, UpPrice: 0.4, DownPrice: 0.6},
		{TimestampMs: 2000, UpPrice: 0.45, DownPrice: 0.55},
	}
	state := types.TapeState{TimestampMs: 30000, UpPrice: 0.5, DownPrice: 0.5}

	a := Compute(state, history)
	b := Compute(state, history)

	if a.DistanceFrom50 != b.DistanceFrom50 {
		t.Error("expected deterministic DistanceFrom50")
	}
	if (a.Delta5sUp == nil) != (b.Delta5sUp == nil) {
		t.Error("expected deterministic delta presence")
	}
}

func TestComputeDeltaSideMirrorsUp(t *testing.T) {
	t.Parallel()

	history := []types.PriceHistoryEntry{
		{TimestampMs: 0, UpPrice: 0.30, DownPrice: 0.70},
	}
	state := types.TapeState{TimestampMs: 5000, UpPrice: 0.40, DownPrice: 0.60}

	f := Compute(state, history)
	if f.Delta5sSide == nil || f.Delta5sUp == nil {
		t.Fatal("expected both present")
	}
	if *f.Delta5sSide != *f.Delta5sUp {
		t.Errorf("Delta5sSide = %v, want it to mirror Delta5sUp = %v", *f.Delta5sSide, *f.Delta5sUp)
	}
}

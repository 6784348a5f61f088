package policy

import (
	"testing"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

func ptr(v float64) *float64 { return &v }

func TestCheckSideEntryBandOnlyMode(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{
		Set:        true,
		UpPriceMin: ptr(0.4),
		UpPriceMax: ptr(0.6),
		Mode:       params.EntryModeNone,
	}
	state := types.TapeState{UpPrice: 0.5, DownPrice: 0.5}

	result := CheckSideEntry(types.UP, state, types.Features{}, ep)
	if !result.Qualifies || result.Reason != types.ReasonUpPriceBand {
		t.Errorf("got %+v, want qualifies=true reason=up_price_band", result)
	}
}

func TestCheckSideEntryNoEntryParams(t *testing.T) {
	t.Parallel()

	result := CheckSideEntry(types.UP, types.TapeState{}, types.Features{}, params.EntryParams{Set: false})
	if result.Qualifies || result.Reason != types.ReasonNoEntryParams {
		t.Errorf("got %+v, want no_entry_params", result)
	}
}

func TestCheckSideEntryOutOfBand(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{Set: true, UpPriceMin: ptr(0.4), UpPriceMax: ptr(0.6), Mode: params.EntryModeNone}
	state := types.TapeState{UpPrice: 0.9}

	result := CheckSideEntry(types.UP, state, types.Features{}, ep)
	if result.Qualifies || result.Reason != types.ReasonUpPriceNotInBand {
		t.Errorf("got %+v, want up_price_not_in_band", result)
	}
}

func TestCheckSideEntryMomentum(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{Set: true, Mode: params.EntryModeMomentum, MomentumThreshold: 0.01}
	state := types.TapeState{UpPrice: 0.5}

	met := CheckSideEntry(types.UP, state, types.Features{Delta5sUp: ptr(0.02)}, ep)
	if !met.Qualifies || met.Reason != types.ReasonMomentumMet {
		t.Errorf("got %+v, want momentum_met", met)
	}

	notMet := CheckSideEntry(types.UP, state, types.Features{Delta5sUp: ptr(0.005)}, ep)
	if notMet.Qualifies || notMet.Reason != types.ReasonMomentumNotMet {
		t.Errorf("got %+v, want momentum_not_met", notMet)
	}
}

func TestCheckSideEntryReversion(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{Set: true, Mode: params.EntryModeReversion, MomentumThreshold: 0.01}
	state := types.TapeState{UpPrice: 0.5}

	met := CheckSideEntry(types.UP, state, types.Features{Delta5sUp: ptr(-0.02)}, ep)
	if !met.Qualifies || met.Reason != types.ReasonReversionMet {
		t.Errorf("got %+v, want reversion_met", met)
	}
}

func TestCheckSideEntryDownFallsBackToSideDelta(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{Set: true, Mode: params.EntryModeMomentum, MomentumThreshold: 0.01}
	state := types.TapeState{DownPrice: 0.5}

	// Delta5sDown absent; Delta5sSide (== delta_5s_up by construction) present.
	result := CheckSideEntry(types.DOWN, state, types.Features{Delta5sSide: ptr(0.02)}, ep)
	if !result.Qualifies {
		t.Errorf("expected DOWN momentum check to fall back to Delta5sSide, got %+v", result)
	}
}

func TestEntrySignalExampleFromSpec(t *testing.T) {
	t.Parallel()

	ep := params.EntryParams{Set: true, UpPriceMin: ptr(0.4), UpPriceMax: ptr(0.6), Mode: params.EntryModeNone}
	state := types.TapeState{UpPrice: 0.5, DownPrice: 0.5}

	result := EntrySignal(state, types.Features{}, ep)
	if !result.Up.Qualifies || result.Up.Reason != types.ReasonUpPriceBand {
		t.Errorf("got %+v, want UP qualifies with up_price_band", result)
	}
}

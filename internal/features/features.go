// Package features computes per-tick derived signals from the current tape
// state and a bounded price history (spec §4.3, component C2). Every
// function here is pure — no I/O, no package state — per spec §3's "the
// Policy Engine holds no state" and the Design Notes' closed-enumeration
// guidance.
package features

import (
	"math"

	"binarycore/pkg/types"
)

var windowsSeconds = [3]int64{1, 5, 30}

// Compute derives Features from the current tape state and the market's
// bounded price history. history is assumed ordered oldest-first and
// inclusive of the current tick (the integrator appends before calling
// Compute); it may otherwise be empty. compute_features is a pure function
// of its inputs: identical (state, history) always yields identical
// Features (spec §8 determinism invariant).
func Compute(state types.TapeState, history []types.PriceHistoryEntry) types.Features {
	f := types.Features{
		DistanceFrom50: math.Abs(state.UpPrice - 0.5),
	}

	for _, w := range windowsSeconds {
		deltaUp, deltaDown, ok := deltaForWindow(state, history, w)
		switch w {
		case 1:
			if ok {
				f.Delta1sUp, f.Delta1sDown = &deltaUp, &deltaDown
				f.Delta1sSide = &deltaUp
			}
		case 5:
			if ok {
				f.Delta5sUp, f.Delta5sDown = &deltaUp, &deltaDown
				f.Delta5sSide = &deltaUp
			}
		case 30:
			if ok {
				f.Delta30sUp, f.Delta30sDown = &deltaUp, &deltaDown
				f.Delta30sSide = &deltaUp
			}
		}
	}

	if v, ok := volatility(state, history, 5); ok {
		f.Volatility5s = &v
	}
	if v, ok := volatility(state, history, 30); ok {
		f.Volatility30s = &v
	}

	return f
}

// deltaForWindow finds the history entry whose timestamp is closest to
// now-1000*w and, if within 2000*w ms of that target, returns the up/down
// deltas against the current state (spec §4.3). The current tick's own
// entry (timestamp == state.TimestampMs) is never a candidate — it isn't a
// real look-back observation, and matching it would spuriously report a
// present delta of zero instead of absent.
func deltaForWindow(state types.TapeState, history []types.PriceHistoryEntry, windowSeconds int64) (deltaUp, deltaDown float64, ok bool) {
	if len(history) == 0 {
		return 0, 0, false
	}

	targetMs := state.TimestampMs - windowSeconds*1000
	tolerance := windowSeconds * 2000

	var best types.PriceHistoryEntry
	bestDist := int64(math.MaxInt64)
	found := false
	for _, h := range history {
		if h.TimestampMs == state.TimestampMs {
			continue
		}
		dist := abs64(h.TimestampMs - targetMs)
		if dist < bestDist {
			bestDist = dist
			best = h
			found = true
		}
	}

	if !found || bestDist >= tolerance {
		return 0, 0, false
	}

	return state.UpPrice - best.UpPrice, state.DownPrice - best.DownPrice, true
}

// volatility computes the population standard deviation of up_price over
// history entries with timestamp in [now-1000*w, now], requiring at least 2
// samples (spec §4.3). history already includes the current tick's own
// entry, so no separate sample is appended for it here.
func volatility(state types.TapeState, history []types.PriceHistoryEntry, windowSeconds int64) (float64, bool) {
	lowerBound := state.TimestampMs - windowSeconds*1000

	samples := make([]float64, 0, len(history))
	for _, h := range history {
		if h.TimestampMs >= lowerBound && h.TimestampMs <= state.TimestampMs {
			samples = append(samples, h.UpPrice)
		}
	}

	if len(samples) < 2 {
		return 0, false
	}

	return populationStdDev(samples), true
}

func populationStdDev(samples []float64) float64 {
	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return math.Sqrt(variance)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

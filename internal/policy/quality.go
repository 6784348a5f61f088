package policy

import (
	"math"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// QualityFilterOk implements the quality filter (spec §4.4.8). prev is the
// last observed snapshot for this market; hasPrev is false on the first
// tick, in which case only the price-sum check applies.
func QualityFilterOk(state types.TapeState, prev types.TapeState, hasPrev bool, qp params.QualityFilterParams) bool {
	sumDeviation := math.Abs(state.UpPrice + state.DownPrice - 1.0)
	if sumDeviation > qp.MaxPriceSumDeviation {
		return false
	}

	if !hasPrev {
		return true
	}

	secondsSince := float64(state.TimestampMs-prev.TimestampMs) / 1000.0
	if secondsSince > qp.TimestampJumpThresholdSecs {
		return false
	}

	gapUp := math.Abs(state.UpPrice - prev.UpPrice)
	gapDown := math.Abs(state.DownPrice - prev.DownPrice)
	gap := gapUp
	if gapDown > gap {
		gap = gapDown
	}
	if gap > qp.PriceGapThreshold {
		return false
	}

	return true
}

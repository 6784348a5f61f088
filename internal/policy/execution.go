package policy

import "binarycore/internal/params"

// SimulateFillPrice implements simulate_fill_price (spec §4.4.9).
func SimulateFillPrice(snapshotSidePrice float64, ep params.ExecutionParams) float64 {
	switch ep.ModelType {
	case params.ExecutionFixedSlippage:
		return snapshotSidePrice + ep.SlippageOffset
	case params.ExecutionMidPrice:
		return snapshotSidePrice + ep.FillBiasMedian
	case params.ExecutionWorstCase:
		if ep.FillBiasP75 != 0 {
			return snapshotSidePrice + ep.FillBiasP75
		}
		return snapshotSidePrice + ep.FillBiasMedian
	default: // snapshot_price
		return snapshotSidePrice
	}
}

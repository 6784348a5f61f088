package policy

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// SizeResult carries size_for_trade's outcome plus the provenance the
// Decision Audit Log needs (spec §4.6: "raw and capped size with size-table
// key", bucket id/label, conditioning bucket).
type SizeResult struct {
	Shares             float64 // final, rounded size
	RawSize            float64 // looked-up value before 4-decimal rounding
	BucketID           int
	BucketLabel        string
	ConditioningBucket string // inventory bucket label, empty when unconditioned
	TableKey           string // key actually matched, empty on constant fallback
}

// SizeForTrade implements size_for_trade (spec §4.4.3): price-bucket lookup,
// optional inventory conditioning, fallback chain, and 4-decimal rounding.
// Bucket selection operates on integer indices; labels are produced only at
// the edges (on lookup into the string-keyed tables), per the Design Notes.
func SizeForTrade(state types.TapeState, side types.Side, sp params.SizeParams, inv types.Inventory) SizeResult {
	if !sp.BinEdgesValid {
		return SizeResult{Shares: round4(1.0), RawSize: 1.0}
	}

	price := state.UpPrice
	if side == types.DOWN {
		price = state.DownPrice
	}

	bucket := priceBucketIndex(price, sp.BinEdges)
	label := bucketLabel(bucket, sp.BinEdges)
	result := SizeResult{BucketID: bucket, BucketLabel: label}

	if sp.ConditioningVar != params.ConditioningInventoryImbalance {
		if v, ok := sp.SizeTable1D[label]; ok {
			result.RawSize, result.Shares, result.TableKey = v, round4(v), label
			return result
		}
		v := fallbackSize(sp)
		result.RawSize, result.Shares = v, round4(v)
		return result
	}

	invBucket, invOK := inventoryBucketIndex(inv.ImbalanceRatio(imbalanceEps), sp.InventoryBucketThresholds)
	if invOK && invBucket < len(sp.InventoryBuckets) {
		result.ConditioningBucket = sp.InventoryBuckets[invBucket]
		key := label + "|" + sp.InventoryBuckets[invBucket]
		if v, ok := sp.SizeTable[key]; ok {
			result.RawSize, result.Shares, result.TableKey = v, round4(v), key
			return result
		}
	}

	// Fallback 1: other inventory buckets for the same price label.
	for i := range sp.InventoryBuckets {
		key := label + "|" + sp.InventoryBuckets[i]
		if v, ok := sp.SizeTable[key]; ok {
			result.ConditioningBucket = sp.InventoryBuckets[i]
			result.RawSize, result.Shares, result.TableKey = v, round4(v), key
			return result
		}
	}

	// Fallback 2: 1D table for the same price label.
	if v, ok := sp.SizeTable1D[label]; ok {
		result.ConditioningBucket = ""
		result.RawSize, result.Shares, result.TableKey = v, round4(v), label
		return result
	}

	v := fallbackSize(sp)
	result.ConditioningBucket = ""
	result.RawSize, result.Shares = v, round4(v)
	return result
}

// fallbackSize implements fallbacks 3 and 4: median of all sizes in the
// conditioned table, else the constant 1.0.
func fallbackSize(sp params.SizeParams) float64 {
	if len(sp.SizeTable) == 0 {
		return 1.0
	}
	values := make([]float64, 0, len(sp.SizeTable))
	for _, v := range sp.SizeTable {
		values = append(values, v)
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// priceBucketIndex finds index i such that price is in (bin_edges[i],
// bin_edges[i+1]], clamping prices at/below the first edge to bucket 0 and
// prices above the last edge to the last bucket (spec §4.4.3 step 1).
func priceBucketIndex(price float64, edges []float64) int {
	if len(edges) < 2 {
		return 0
	}
	if price <= edges[0] {
		return 0
	}
	if price > edges[len(edges)-1] {
		return len(edges) - 2
	}
	for i := 0; i < len(edges)-1; i++ {
		if price > edges[i] && price <= edges[i+1] {
			return i
		}
	}
	return len(edges) - 2
}

// bucketLabel formats the pandas-style half-open interval label "(L, R]".
// Bucket 0's lower edge is rendered as edges[0]-0.001 for labeling parity
// with the analytics pipeline that produced the parameter file (spec
// §4.4.3).
func bucketLabel(bucket int, edges []float64) string {
	lower := edges[bucket]
	if bucket == 0 {
		lower = edges[0] - 0.001
	}
	upper := edges[bucket+1]
	return fmt.Sprintf("(%s, %s]", formatEdge(lower), formatEdge(upper))
}

func formatEdge(v float64) string {
	d := decimal.NewFromFloat(v).Truncate(10)
	return d.String()
}

// inventoryBucketIndex finds the first threshold index i such that
// thresholds[i+1] >= ratio, else the last bucket (spec §4.4.3 step 3).
func inventoryBucketIndex(ratio float64, thresholds []float64) (int, bool) {
	if len(thresholds) < 2 {
		return 0, false
	}
	for i := 0; i < len(thresholds)-1; i++ {
		if thresholds[i+1] >= ratio {
			return i, true
		}
	}
	return len(thresholds) - 2, true
}

// round4 rounds to 4 decimal places using decimal arithmetic to avoid the
// float drift that a naive math.Round(v*1e4)/1e4 would introduce.
func round4(v float64) float64 {
	d := decimal.NewFromFloat(v).Round(4)
	f, _ := d.Float64()
	return f
}

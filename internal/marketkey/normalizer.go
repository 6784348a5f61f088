// Package marketkey canonicalizes venue-specific market identifiers into the
// closed set of MarketKey values the rest of the core understands. It is a
// pure function package with no state, the way pkg/types keeps its handful
// of small methods (TickSize-equivalent helpers) free of behavior.
package marketkey

import (
	"strings"

	"binarycore/pkg/types"
)

// Normalize maps a venue-specific market identifier or slug to a canonical
// MarketKey. Matching is case-insensitive substring matching per spec §4.2:
//
//   - "BTC"/"bitcoin" + "15"                     -> BTC_15m
//   - "BTC"/"bitcoin" + "1h"/"1 hour"/"1-hour"   -> BTC_1h
//   - "ETH"/"ethereum" + "15"                    -> ETH_15m
//   - "ETH"/"ethereum" + "1h"/"1 hour"/"1-hour"  -> ETH_1h
//
// Input already in canonical form is returned unchanged. Unmatched input is
// returned verbatim as a MarketKey; callers treat it as having no parameters
// (Known() will report false).
func Normalize(raw string) types.MarketKey {
	if k := types.MarketKey(raw); k.Known() {
		return k
	}

	lower := strings.ToLower(raw)

	isBTC := strings.Contains(lower, "btc") || strings.Contains(lower, "bitcoin")
	isETH := strings.Contains(lower, "eth") || strings.Contains(lower, "ethereum")
	is15 := strings.Contains(lower, "15")
	is1h := strings.Contains(lower, "1h") || strings.Contains(lower, "1 hour") || strings.Contains(lower, "1-hour")

	switch {
	case isBTC && is15:
		return types.BTC15m
	case isBTC && is1h:
		return types.BTC1h
	case isETH && is15:
		return types.ETH15m
	case isETH && is1h:
		return types.ETH1h
	default:
		return types.MarketKey(raw)
	}
}

package optimizer

import (
	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/types"
)

// DeductPriorVotes removes the caller's own previously-cast weight from
// each affected pool before allocation, so a re-run within the same
// period does not treat our existing votes as competition to outbid:
//
//	W_i := max(W_i - prior_i, 0)
//
// Only weight is adjusted; revenue is untouched. The returned slice is a
// fresh copy; inputs are never mutated.
func DeductPriorVotes(pools []PoolInput, prior map[types.PoolAddress]sdkmath.LegacyDec) []PoolInput {
	out := make([]PoolInput, len(pools))
	for i, p := range pools {
		out[i] = p.normalize()
		own, ok := prior[p.Address]
		if !ok || own.IsNil() || !own.IsPositive() {
			continue
		}
		adjusted := out[i].Weight.Sub(own)
		if adjusted.IsNegative() {
			adjusted = sdkmath.LegacyZeroDec()
		}
		out[i].Weight = adjusted
	}
	return out
}

package optimizer

import (
	sdkmath "cosmossdk.io/math"
)

// SafeAllocation splits the budget across pools in proportion to their
// existing committed weight: Delta_i = P * W_i / sum W_j. It deliberately
// ignores revenue, so pools with R = 0 still receive their proportional
// share; that is what makes it the low-variance leg of the risk blend.
// If no pool carries positive weight the allocation is all zeros.
func SafeAllocation(pools []PoolInput, budget sdkmath.LegacyDec) []Delta {
	out := make([]Delta, len(pools))
	for i, p := range pools {
		out[i] = Delta{Address: p.Address, Votes: sdkmath.LegacyZeroDec()}
	}
	if budget.IsNil() || !budget.IsPositive() {
		return out
	}

	totalWeight := sdkmath.LegacyZeroDec()
	for _, p := range pools {
		p = p.normalize()
		if p.Weight.IsPositive() {
			totalWeight = totalWeight.Add(p.Weight)
		}
	}
	if !totalWeight.IsPositive() {
		return out
	}

	for i, p := range pools {
		p = p.normalize()
		if p.Weight.IsPositive() {
			out[i].Votes = budget.Mul(p.Weight).Quo(totalWeight)
		}
	}
	return out
}

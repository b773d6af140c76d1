package optimizer

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

var ErrMismatchedAllocations = errors.New("aggressive and safe allocations cover different pool sets")

// Blend produces the convex combination of the aggressive and safe legs:
//
//	Delta_i = theta * safe_i + (1 - theta) * aggressive_i
//
// theta is the weight on the SAFE allocation: theta = 0 is pure
// equal-marginal, theta = 1 is pure proportional-to-weight. This
// convention is fixed across every call site; the submission layer must
// map "risk aversion percent" onto theta, never the other way around.
//
// Both legs individually sum to the budget, so the combination does too
// up to fixed-point rounding; any residual is folded into the largest
// entry so the total matches the budget exactly.
func Blend(aggressive, safe []Delta, theta, budget sdkmath.LegacyDec) ([]Delta, error) {
	if len(aggressive) != len(safe) {
		return nil, ErrMismatchedAllocations
	}
	if theta.IsNegative() || theta.GT(sdkmath.LegacyOneDec()) {
		return nil, fmt.Errorf("theta %s outside [0,1]", theta)
	}

	oneMinus := sdkmath.LegacyOneDec().Sub(theta)
	out := make([]Delta, len(aggressive))
	sum := sdkmath.LegacyZeroDec()
	largest := -1
	for i := range aggressive {
		if aggressive[i].Address != safe[i].Address {
			return nil, ErrMismatchedAllocations
		}
		votes := theta.Mul(safe[i].Votes).Add(oneMinus.Mul(aggressive[i].Votes))
		out[i] = Delta{Address: aggressive[i].Address, Votes: votes}
		sum = sum.Add(votes)
		if largest < 0 || votes.GT(out[largest].Votes) {
			largest = i
		}
	}

	// Rounding drift correction on the designated (largest) entry.
	if sum.IsPositive() && largest >= 0 {
		drift := budget.Sub(sum)
		if !drift.IsZero() {
			adjusted := out[largest].Votes.Add(drift)
			if !adjusted.IsNegative() {
				out[largest].Votes = adjusted
			}
		}
	}
	return out, nil
}

/*

This file contains the equal-marginal allocation engine: the convex solver
that distributes a vote budget across pools so the marginal USD return per
vote is equalized over every pool that receives votes.

Maximizing sum R_i * Delta_i / (W_i + Delta_i) subject to sum Delta_i = P
has the closed-form stationarity solution

    Delta_i(lambda) = max(sqrt(R_i * W_i / lambda) - W_i, 0)

for a Lagrange multiplier lambda > 0. S(lambda) = sum Delta_i(lambda) is
continuous and strictly decreasing on its support, so the budget equation
S(lambda) = P is solved by bracketing and bisection.

*/

package optimizer

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/types"
)

// ErrBracketingFailure means no lambda upper bound with S(lambda) < P was
// found within the doubling budget. The requested budget exceeds anything
// the pool set can absorb; the run must be aborted, not clamped.
var ErrBracketingFailure = errors.New("could not bracket lambda for equal-marginal allocation")

const (
	maxBracketDoublings = 200
	maxBisectIterations = 100
)

// tolerance on |S(lambda) - P|, in the budget's unit scale.
var tolerance = sdkmath.LegacyNewDecWithPrec(1, 12)

// PoolInput is one pool as seen by the engine: revenue R and committed
// weight W, both nonnegative. Inputs are never mutated.
type PoolInput struct {
	Address types.PoolAddress
	Revenue sdkmath.LegacyDec // R: expected payout attributable to the pool this epoch
	Weight  sdkmath.LegacyDec // W: weight already locked by all actors, excluding our budget
}

// Delta is the engine's per-pool output, aligned with the input order.
type Delta struct {
	Address types.PoolAddress
	Votes   sdkmath.LegacyDec
}

// active reports whether a pool is eligible to receive allocation.
// Pools with negative revenue or weight are excluded, not rejected.
func (p PoolInput) active() bool {
	return p.Revenue.IsPositive() && !p.Weight.IsNegative()
}

// normalize replaces nil decimals with zero so callers can pass
// zero-valued structs without tripping the SDK's nil panics.
func (p PoolInput) normalize() PoolInput {
	if p.Revenue.IsNil() {
		p.Revenue = sdkmath.LegacyZeroDec()
	}
	if p.Weight.IsNil() {
		p.Weight = sdkmath.LegacyZeroDec()
	}
	return p
}

// Solve computes the marginal-utility-maximizing allocation of budget
// across pools. The returned slice is aligned with the input slice; pools
// outside the active set always get zero. A zero budget or an empty
// active set yields an all-zero allocation and no error.
//
// All arithmetic is big.Int-backed fixed-point decimal; no native floats
// are involved anywhere in the solve loop.
func Solve(pools []PoolInput, budget sdkmath.LegacyDec) ([]Delta, error) {
	out := make([]Delta, len(pools))
	norm := make([]PoolInput, len(pools))
	for i, p := range pools {
		norm[i] = p.normalize()
		out[i] = Delta{Address: p.Address, Votes: sdkmath.LegacyZeroDec()}
	}
	if budget.IsNil() || !budget.IsPositive() {
		return out, nil
	}

	var active []PoolInput
	for _, p := range norm {
		if p.active() {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return out, nil
	}

	sumDelta := func(lam sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
		total := sdkmath.LegacyZeroDec()
		for _, p := range active {
			num := p.Revenue.Mul(p.Weight)
			if !num.IsPositive() {
				continue
			}
			root, err := num.Quo(lam).ApproxSqrt()
			if err != nil {
				return sdkmath.LegacyDec{}, fmt.Errorf("sqrt failed for pool %s: %w", p.Address, err)
			}
			d := root.Sub(p.Weight)
			if d.IsPositive() {
				total = total.Add(d)
			}
		}
		return total, nil
	}

	// Bracket: grow hi until S(hi) < P. lo starts at the smallest
	// representable positive decimal, where S is effectively unbounded.
	lo := sdkmath.LegacySmallestDec()
	hi := sdkmath.LegacyOneDec()
	bracketed := false
	for i := 0; i < maxBracketDoublings; i++ {
		s, err := sumDelta(hi)
		if err != nil {
			return nil, err
		}
		if s.LT(budget) {
			bracketed = true
			break
		}
		hi = hi.MulInt64(2)
	}
	if !bracketed {
		return nil, ErrBracketingFailure
	}

	// Bisect until |S(mid) - P| < tolerance or the iteration budget runs out.
	for i := 0; i < maxBisectIterations; i++ {
		mid := lo.Add(hi).QuoInt64(2)
		s, err := sumDelta(mid)
		if err != nil {
			return nil, err
		}
		if s.Sub(budget).Abs().LT(tolerance) {
			lo = mid
			break
		}
		if s.GT(budget) {
			lo = mid
		} else {
			hi = mid
		}
	}
	lam := lo

	for i, p := range norm {
		if !p.active() {
			continue
		}
		num := p.Revenue.Mul(p.Weight)
		if !num.IsPositive() {
			continue
		}
		root, err := num.Quo(lam).ApproxSqrt()
		if err != nil {
			return nil, fmt.Errorf("sqrt failed for pool %s: %w", p.Address, err)
		}
		d := root.Sub(p.Weight)
		if d.IsPositive() {
			out[i].Votes = d
		}
	}
	return out, nil
}

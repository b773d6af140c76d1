package optimizer

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/types"
)

// AvoidanceScores maps a pool to rho in [0,1]: how much of its existing
// weight is considered undesirable (e.g., concentrated in the dominant
// relays). Pools absent from the map score zero.
type AvoidanceScores map[types.PoolAddress]sdkmath.LegacyDec

// ApplyAvoidancePenalty scales each pool's revenue AND weight by
//
//	factor = clamp(1 - rho, 0, 1) ^ (2 * alpha)
//
// with alpha = strength/100, before the engine runs. strength = 0 is a
// no-op; at strength = 100 a fully relay-held pool (rho = 1) is
// suppressed entirely. The squared exponent at full strength and the
// symmetric application to R and W are tuning heuristics inherited from
// production, not derived optima.
//
// The returned slice is a fresh copy; inputs are never mutated.
func ApplyAvoidancePenalty(pools []PoolInput, scores AvoidanceScores, strength int) ([]PoolInput, error) {
	out := make([]PoolInput, len(pools))
	for i, p := range pools {
		out[i] = p.normalize()
	}
	if strength <= 0 || len(scores) == 0 {
		return out, nil
	}
	if strength > 100 {
		return nil, fmt.Errorf("avoidance strength %d outside [0,100]", strength)
	}

	one := sdkmath.LegacyOneDec()
	for i, p := range out {
		rho, ok := scores[p.Address]
		if !ok || rho.IsNil() || !rho.IsPositive() {
			continue
		}
		if rho.GT(one) {
			rho = one
		}
		leftover := one.Sub(rho)
		if leftover.IsNegative() {
			leftover = sdkmath.LegacyZeroDec()
		}
		factor, err := penaltyFactor(leftover, strength)
		if err != nil {
			return nil, fmt.Errorf("penalty factor for pool %s: %w", p.Address, err)
		}
		out[i].Revenue = p.Revenue.Mul(factor)
		out[i].Weight = p.Weight.Mul(factor)
	}
	return out, nil
}

// penaltyFactor computes leftover^(2*alpha) for alpha = strength/100.
// The exponent 2*strength/100 = strength/50 is evaluated exactly as
// (leftover^(1/50))^strength, keeping the whole computation inside
// fixed-point decimal arithmetic at the percent resolution the strength
// knob actually has.
func penaltyFactor(leftover sdkmath.LegacyDec, strength int) (sdkmath.LegacyDec, error) {
	one := sdkmath.LegacyOneDec()
	if strength <= 0 || leftover.GTE(one) {
		return one, nil
	}
	if !leftover.IsPositive() {
		return sdkmath.LegacyZeroDec(), nil
	}
	root, err := leftover.ApproxRoot(50)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return root.Power(uint64(strength)), nil
}

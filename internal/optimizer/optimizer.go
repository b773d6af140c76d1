/*

This file contains the top-level optimization pipeline for one VOM run:
pool filtering is done upstream by the analyzer; here the dashboard is
turned into engine inputs, prior votes are deducted on a re-run, the
relay-avoidance penalty is applied, the aggressive and safe legs are
computed and blended by the risk knob, and the result is shaped into the
final per-pool allocation with integer percents and expected values.

*/

package optimizer

import (
	"errors"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/types"
)

var ErrNoDashboard = errors.New("optimizer requires a vote dashboard")

// Options carries the per-run knobs the orchestrator resolves from the
// active parameter set and the fetched relay/prior-vote state.
type Options struct {
	// RiskAversion is the integer percent weight on the safe leg, 0..100.
	RiskAversion int
	// AvoidanceStrength is the integer percent relay-avoidance knob, 0..100.
	AvoidanceStrength int
	// AvoidanceScores holds rho per pool; may be nil when avoidance is off.
	AvoidanceScores AvoidanceScores
	// PriorVotes is the weight we already committed this period, if any.
	PriorVotes *types.PriorVotes
}

// Optimize runs the full allocation pipeline against a dashboard.
//
// Expected values are always computed on the ORIGINAL revenue and weight,
// never the penalized ones: the penalty steers the allocation, but the
// payout projection must reflect what the chain will actually pay.
func Optimize(dashboard *types.VoteDashboard, opts Options) (*types.VoteAllocation, error) {
	log := logger.GetForComponent("optimizer")

	if dashboard == nil {
		return nil, ErrNoDashboard
	}
	if opts.RiskAversion < 0 || opts.RiskAversion > 100 {
		return nil, types.ErrRiskAversionRange
	}
	if opts.AvoidanceStrength < 0 || opts.AvoidanceStrength > 100 {
		return nil, types.ErrAvoidanceRange
	}

	budget := dashboard.OurVotingPower
	if budget.IsNil() {
		budget = sdkmath.LegacyZeroDec()
	}

	original := make([]PoolInput, len(dashboard.Pools))
	for i, p := range dashboard.Pools {
		original[i] = PoolInput{
			Address: p.Address,
			Revenue: p.RevenueUSD,
			Weight:  p.Weight,
		}.normalize()
	}

	// Re-run deduction: our own already-cast weight is not competition.
	working := original
	reRun := false
	if opts.PriorVotes != nil && opts.PriorVotes.Period == dashboard.Period && opts.PriorVotes.IsReRun() {
		working = DeductPriorVotes(working, opts.PriorVotes.Votes)
		reRun = true
		log.Info().Uint64("period", dashboard.Period).Msg("Re-run detected, prior votes deducted from pool weights")
	}

	working, err := ApplyAvoidancePenalty(working, opts.AvoidanceScores, opts.AvoidanceStrength)
	if err != nil {
		return nil, fmt.Errorf("applying avoidance penalty: %w", err)
	}

	aggressive, err := Solve(working, budget)
	if err != nil {
		return nil, fmt.Errorf("equal-marginal solve: %w", err)
	}

	// Blend shortcuts at the boundaries keep the pure legs bit-exact.
	var deltas []Delta
	switch opts.RiskAversion {
	case 0:
		deltas = aggressive
	case 100:
		deltas = SafeAllocation(working, budget)
	default:
		safe := SafeAllocation(working, budget)
		theta := sdkmath.LegacyNewDec(int64(opts.RiskAversion)).QuoInt64(100)
		deltas, err = Blend(aggressive, safe, theta, budget)
		if err != nil {
			return nil, fmt.Errorf("risk blend: %w", err)
		}
	}

	result := buildAllocation(dashboard, original, deltas, reRun)
	log.Info().
		Uint64("period", result.Period).
		Int("pools_funded", fundedCount(result.Allocations)).
		Str("total_expected_usd", result.TotalExpectedUSD.String()).
		Bool("re_run", result.ReRun).
		Msg("Optimization complete")
	return result, nil
}

// buildAllocation shapes raw deltas into the reported allocation:
// integer percents summing to exactly 100, expected values on the
// unpenalized inputs, sorted by percent then votes, descending.
func buildAllocation(dashboard *types.VoteDashboard, original []PoolInput, deltas []Delta, reRun bool) *types.VoteAllocation {
	total := sdkmath.LegacyZeroDec()
	for _, d := range deltas {
		total = total.Add(d.Votes)
	}

	percents := integerPercents(deltas, total)

	allocs := make([]types.PoolAllocation, len(deltas))
	totalEV := sdkmath.LegacyZeroDec()
	for i, d := range deltas {
		ev := expectedValue(original[i], d.Votes)
		totalEV = totalEV.Add(ev)
		allocs[i] = types.PoolAllocation{
			Address:     d.Address,
			Symbol:      dashboard.Pools[i].Symbol,
			Votes:       d.Votes,
			Percent:     percents[i],
			ExpectedUSD: ev,
		}
	}

	sort.SliceStable(allocs, func(a, b int) bool {
		if allocs[a].Percent != allocs[b].Percent {
			return allocs[a].Percent > allocs[b].Percent
		}
		return allocs[a].Votes.GT(allocs[b].Votes)
	})

	return &types.VoteAllocation{
		Period:           dashboard.Period,
		TotalExpectedUSD: totalEV,
		Allocations:      allocs,
		ReRun:            reRun,
	}
}

// expectedValue is R * Delta / (W + Delta) on the original inputs.
func expectedValue(p PoolInput, delta sdkmath.LegacyDec) sdkmath.LegacyDec {
	if delta.IsNil() || !delta.IsPositive() {
		return sdkmath.LegacyZeroDec()
	}
	denom := p.Weight.Add(delta)
	if !denom.IsPositive() {
		return sdkmath.LegacyZeroDec()
	}
	return p.Revenue.Mul(delta).Quo(denom)
}

// integerPercents rounds each pool's share half-up to a whole percent,
// then forces the column to sum to exactly 100 by adjusting the entry
// with the largest vote count. An all-zero allocation stays all-zero.
func integerPercents(deltas []Delta, total sdkmath.LegacyDec) []int {
	percents := make([]int, len(deltas))
	if !total.IsPositive() {
		return percents
	}

	half := sdkmath.LegacyNewDecWithPrec(5, 1)
	sum := 0
	largest := -1
	for i, d := range deltas {
		if d.Votes.IsPositive() {
			share := d.Votes.MulInt64(100).Quo(total)
			percents[i] = int(share.Add(half).TruncateInt64())
			if largest < 0 || d.Votes.GT(deltas[largest].Votes) {
				largest = i
			}
		}
		sum += percents[i]
	}
	if largest >= 0 && sum != 100 {
		percents[largest] += 100 - sum
	}
	return percents
}

func fundedCount(allocs []types.PoolAllocation) int {
	n := 0
	for _, a := range allocs {
		if a.Votes.IsPositive() {
			n++
		}
	}
	return n
}

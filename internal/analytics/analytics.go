/*

This file contains statistical summaries over past runs: expected-value
trends, allocation concentration, and how closely a submitted allocation
matched what actually landed on the voter contract.

*/

package analytics

import (
	"errors"

	sdkmath "cosmossdk.io/math"
	"gonum.org/v1/gonum/stat"

	"github.com/ve33-labs/vom/internal/types"
)

var ErrNoData = errors.New("no data points for analytics")

// ExpectedValueStats summarizes the expected-value history of past runs.
type ExpectedValueStats struct {
	Runs   int     `json:"runs"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Latest float64 `json:"latest"`
}

// SummarizeExpectedValues computes mean and standard deviation over a
// chronological expected-value series.
func SummarizeExpectedValues(history []float64) (ExpectedValueStats, error) {
	if len(history) == 0 {
		return ExpectedValueStats{}, ErrNoData
	}

	mean, std := stat.MeanStdDev(history, nil)
	if len(history) == 1 {
		// MeanStdDev returns NaN for a single sample.
		std = 0
	}
	return ExpectedValueStats{
		Runs:   len(history),
		Mean:   mean,
		StdDev: std,
		Latest: history[len(history)-1],
	}, nil
}

// Concentration returns the Herfindahl-Hirschman index of an allocation's
// percent split, in [0,1]. 1 means everything in one pool; 1/n means a
// perfectly even split across n pools.
func Concentration(alloc *types.VoteAllocation) (float64, error) {
	if alloc == nil || len(alloc.Allocations) == 0 {
		return 0, ErrNoData
	}

	hhi := 0.0
	total := 0
	for _, a := range alloc.Allocations {
		if a.Percent <= 0 {
			continue
		}
		share := float64(a.Percent) / 100.0
		hhi += share * share
		total += a.Percent
	}
	if total == 0 {
		return 0, ErrNoData
	}
	return hhi, nil
}

// MatchScore measures how closely the actual on-chain vote weights track a
// planned allocation, as 1 minus half the L1 distance between the two
// percent distributions. 1 is a perfect match, 0 is fully disjoint.
func MatchScore(planned *types.VoteAllocation, actual map[types.PoolAddress]int) (float64, error) {
	if planned == nil || len(planned.Allocations) == 0 {
		return 0, ErrNoData
	}

	distance := 0.0
	seen := make(map[types.PoolAddress]bool, len(planned.Allocations))
	for _, a := range planned.Allocations {
		seen[a.Address] = true
		diff := float64(a.Percent - actual[a.Address])
		if diff < 0 {
			diff = -diff
		}
		distance += diff
	}
	for addr, pct := range actual {
		if !seen[addr] {
			distance += float64(pct)
		}
	}

	score := 1.0 - distance/200.0
	if score < 0 {
		score = 0
	}
	return score, nil
}

// PercentsFromWeights converts a raw vote-weight map, as read off the
// voter contract, into integer percent shares of its own total, rounded
// half-up. The result feeds MatchScore; it is not forced to sum to
// exactly 100.
func PercentsFromWeights(votes map[types.PoolAddress]sdkmath.LegacyDec) map[types.PoolAddress]int {
	percents := make(map[types.PoolAddress]int, len(votes))

	total := sdkmath.LegacyZeroDec()
	for _, w := range votes {
		if !w.IsNil() && w.IsPositive() {
			total = total.Add(w)
		}
	}
	if !total.IsPositive() {
		return percents
	}

	half := sdkmath.LegacyNewDecWithPrec(5, 1)
	for addr, w := range votes {
		if w.IsNil() || !w.IsPositive() {
			continue
		}
		percents[addr] = int(w.MulInt64(100).Quo(total).Add(half).TruncateInt64())
	}
	return percents
}

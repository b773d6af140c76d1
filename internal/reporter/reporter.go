/*

This file contains the output formatters for one optimization run: the
human-readable report, the weight lines consumed by the submission bot,
and the JSON calldata for a direct vote() transaction.

*/

package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/types"
	"github.com/ve33-labs/vom/internal/utils"
)

var ErrEmptyAllocation = errors.New("allocation has no funded pools")

// VoteCalldata is the argument set for the voter contract's vote()
// function, keyed exactly as the submission tooling expects.
type VoteCalldata struct {
	Voter   string   `json:"voter"`
	Pools   []string `json:"_pools"`
	Weights []string `json:"_weights"`
}

// FormatReport renders the allocation as the per-pool text summary that
// goes to logs and the ops channel.
func FormatReport(alloc *types.VoteAllocation) string {
	var b strings.Builder
	header := "VOTE ALLOCATION"
	if alloc.ReRun {
		header += " (RE-RUN)"
	}
	fmt.Fprintf(&b, "%s - period %d\n", header, alloc.Period)
	for _, a := range alloc.Allocations {
		if !a.Votes.IsPositive() {
			continue
		}
		fmt.Fprintf(&b, "  %3d%%  %-24s %s votes, ~$%s\n",
			a.Percent, a.Symbol, a.Votes.String(), a.ExpectedUSD.String())
	}
	fmt.Fprintf(&b, "Total expected: $%s\n", alloc.TotalExpectedUSD.String())
	return b.String()
}

// BuildBotOutput renders one "<pool> <weight>" line per funded pool, with
// integer weights scaled so the column totals exactly 100 * 10^scaleExp.
// Truncation drift from the scaling is folded into the largest entry.
func BuildBotOutput(alloc *types.VoteAllocation, scaleExp int) (string, error) {
	funded := fundedPools(alloc)
	if len(funded) == 0 {
		return "", ErrEmptyAllocation
	}

	total := sdkmath.LegacyZeroDec()
	for _, a := range funded {
		total = total.Add(a.Votes)
	}

	factor, err := utils.PowerOfTen(scaleExp)
	if err != nil {
		return "", err
	}
	target := sdkmath.LegacyNewDec(100).Mul(factor).TruncateInt()

	weights := make([]sdkmath.Int, len(funded))
	sum := sdkmath.ZeroInt()
	largest := 0
	for i, a := range funded {
		share := a.Votes.MulInt64(100).Quo(total).Mul(factor)
		weights[i] = share.TruncateInt()
		sum = sum.Add(weights[i])
		if a.Votes.GT(funded[largest].Votes) {
			largest = i
		}
	}
	if !sum.Equal(target) {
		weights[largest] = weights[largest].Add(target.Sub(sum))
	}

	var b strings.Builder
	for i, a := range funded {
		fmt.Fprintf(&b, "%s %s\n", a.Address, weights[i].String())
	}
	return b.String(), nil
}

// BuildCalldata marshals the funded pools and their 10^scaleExp-scaled
// vote amounts into the vote() argument JSON.
func BuildCalldata(voter string, alloc *types.VoteAllocation, scaleExp int) (string, error) {
	if voter == "" {
		return "", errors.New("voter address is required")
	}
	funded := fundedPools(alloc)
	if len(funded) == 0 {
		return "", ErrEmptyAllocation
	}

	calldata := VoteCalldata{
		Voter:   voter,
		Pools:   make([]string, len(funded)),
		Weights: make([]string, len(funded)),
	}
	for i, a := range funded {
		scaled, err := utils.DecToScaledInt(a.Votes, scaleExp)
		if err != nil {
			return "", fmt.Errorf("scaling votes for pool %s: %w", a.Address, err)
		}
		calldata.Pools[i] = string(a.Address)
		calldata.Weights[i] = scaled.String()
	}

	out, err := json.MarshalIndent(calldata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling calldata: %w", err)
	}
	return string(out), nil
}

func fundedPools(alloc *types.VoteAllocation) []types.PoolAllocation {
	if alloc == nil {
		return nil
	}
	funded := make([]types.PoolAllocation, 0, len(alloc.Allocations))
	for _, a := range alloc.Allocations {
		if a.Votes.IsPositive() {
			funded = append(funded, a)
		}
	}
	return funded
}

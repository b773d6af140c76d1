package optimizer

import (
	"strings"
	"testing"
	"testing/quick"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ve33-labs/vom/internal/types"
)

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

var conservationTol = sdkmath.LegacyNewDecWithPrec(1, 9)

func sumVotes(deltas []Delta) sdkmath.LegacyDec {
	total := sdkmath.LegacyZeroDec()
	for _, d := range deltas {
		total = total.Add(d.Votes)
	}
	return total
}

func TestSolveTwoPoolScenario(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("100"), Weight: dec("10")},
		{Address: "0xbbb", Revenue: dec("50"), Weight: dec("10")},
	}
	budget := dec("20")

	deltas, err := Solve(pools, budget)
	require.NoError(t, err)
	require.Len(t, deltas, 2)

	// Both pools funded, the higher-revenue pool strictly more.
	assert.True(t, deltas[0].Votes.IsPositive())
	assert.True(t, deltas[1].Votes.IsPositive())
	assert.True(t, deltas[0].Votes.GT(deltas[1].Votes))

	drift := sumVotes(deltas).Sub(budget).Abs()
	assert.True(t, drift.LT(conservationTol), "budget drift %s", drift)
}

func TestSolveZeroBudget(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("100"), Weight: dec("10")},
	}

	deltas, err := Solve(pools, sdkmath.LegacyZeroDec())
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].Votes.IsZero())
}

func TestSolveEmptyActiveSet(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: sdkmath.LegacyZeroDec(), Weight: dec("10")},
		{Address: "0xbbb", Revenue: dec("-5"), Weight: dec("10")},
	}

	deltas, err := Solve(pools, dec("20"))
	require.NoError(t, err)
	for _, d := range deltas {
		assert.True(t, d.Votes.IsZero())
	}
}

func TestSolveInactivePoolStaysZero(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("100"), Weight: dec("10")},
		{Address: "0xdead", Revenue: sdkmath.LegacyZeroDec(), Weight: dec("10")},
		{Address: "0xbbb", Revenue: dec("40"), Weight: dec("5")},
	}

	deltas, err := Solve(pools, dec("30"))
	require.NoError(t, err)
	require.Len(t, deltas, 3)
	assert.Equal(t, types.PoolAddress("0xdead"), deltas[1].Address)
	assert.True(t, deltas[1].Votes.IsZero())
}

func TestSolveSymmetry(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("75"), Weight: dec("12")},
		{Address: "0xbbb", Revenue: dec("75"), Weight: dec("12")},
	}

	deltas, err := Solve(pools, dec("40"))
	require.NoError(t, err)

	diff := deltas[0].Votes.Sub(deltas[1].Votes).Abs()
	assert.True(t, diff.LT(conservationTol), "identical pools diverged by %s", diff)
}

func TestSolveMonotonicInRevenue(t *testing.T) {
	base := []PoolInput{
		{Address: "0xaaa", Revenue: dec("60"), Weight: dec("10")},
		{Address: "0xbbb", Revenue: dec("60"), Weight: dec("10")},
	}
	bumped := []PoolInput{
		{Address: "0xaaa", Revenue: dec("90"), Weight: dec("10")},
		{Address: "0xbbb", Revenue: dec("60"), Weight: dec("10")},
	}
	budget := dec("25")

	before, err := Solve(base, budget)
	require.NoError(t, err)
	after, err := Solve(bumped, budget)
	require.NoError(t, err)

	assert.True(t, after[0].Votes.GT(before[0].Votes),
		"raising a pool's revenue must not shrink its allocation")
}

func TestSolveDeterministic(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("123.456"), Weight: dec("78.9")},
		{Address: "0xbbb", Revenue: dec("55.5"), Weight: dec("11.1")},
		{Address: "0xccc", Revenue: dec("9.01"), Weight: dec("2.5")},
	}
	budget := dec("333.33")

	first, err := Solve(pools, budget)
	require.NoError(t, err)
	second, err := Solve(pools, budget)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Votes.String(), second[i].Votes.String())
	}
}

func TestSolveAllWeightsZero(t *testing.T) {
	// With W = 0 everywhere, sqrt(R*W/lambda) is identically zero and the
	// engine allocates nothing rather than inventing a split.
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("100"), Weight: sdkmath.LegacyZeroDec()},
		{Address: "0xbbb", Revenue: dec("50"), Weight: sdkmath.LegacyZeroDec()},
	}

	deltas, err := Solve(pools, dec("20"))
	require.NoError(t, err)
	for _, d := range deltas {
		assert.True(t, d.Votes.IsZero())
	}
}

func TestSolveBracketingFailure(t *testing.T) {
	// With astronomically large revenue against a tiny budget, the spend at
	// the upper lambda bound stays above the budget through every doubling,
	// so no bracket exists and the solver must refuse rather than return a
	// half-converged split.
	huge := dec("1" + strings.Repeat("0", 62))
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: huge, Weight: dec("1")},
	}

	_, err := Solve(pools, dec("1"))
	assert.ErrorIs(t, err, ErrBracketingFailure)
}

func TestSolveNeverOverspendsProperty(t *testing.T) {
	check := func(r1, w1, r2, w2, p uint16) bool {
		pools := []PoolInput{
			{Address: "0xaaa", Revenue: sdkmath.LegacyNewDec(int64(r1 % 1000)), Weight: sdkmath.LegacyNewDec(int64(w1 % 1000))},
			{Address: "0xbbb", Revenue: sdkmath.LegacyNewDec(int64(r2 % 1000)), Weight: sdkmath.LegacyNewDec(int64(w2 % 1000))},
		}
		budget := sdkmath.LegacyNewDec(int64(p % 500))

		deltas, err := Solve(pools, budget)
		if err != nil {
			return false
		}
		for _, d := range deltas {
			if d.Votes.IsNegative() {
				return false
			}
		}
		return sumVotes(deltas).LTE(budget.Add(conservationTol))
	}
	require.NoError(t, quick.Check(check, &quick.Config{MaxCount: 50}))
}

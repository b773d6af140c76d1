package optimizer

import (
	"os"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/types"
)

func TestMain(m *testing.M) {
	logger.Initialize("error")
	os.Exit(m.Run())
}

func testDashboard() *types.VoteDashboard {
	return &types.VoteDashboard{
		Period:         142,
		TotalVotes:     dec("1000"),
		OurVotingPower: dec("100"),
		Pools: []types.VotePool{
			{Address: "0xaaa", Symbol: "vAMM-WETH/USDC", RevenueUSD: dec("500"), Weight: dec("100"), GaugeAlive: true},
			{Address: "0xbbb", Symbol: "sAMM-USDC/DAI", RevenueUSD: dec("200"), Weight: dec("80"), GaugeAlive: true},
			{Address: "0xccc", Symbol: "vAMM-OP/WETH", RevenueUSD: dec("120"), Weight: dec("40"), GaugeAlive: true},
		},
	}
}

func TestSafeAllocationProportional(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("500"), Weight: dec("30")},
		{Address: "0xbbb", Revenue: sdkmath.LegacyZeroDec(), Weight: dec("10")},
	}
	deltas := SafeAllocation(pools, dec("40"))

	// 30:10 split of 40, revenue ignored entirely.
	assert.Equal(t, dec("30").String(), deltas[0].Votes.String())
	assert.Equal(t, dec("10").String(), deltas[1].Votes.String())
}

func TestSafeAllocationNoWeight(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("500"), Weight: sdkmath.LegacyZeroDec()},
	}
	deltas := SafeAllocation(pools, dec("40"))
	assert.True(t, deltas[0].Votes.IsZero())
}

func TestBlendBoundaries(t *testing.T) {
	agg := []Delta{
		{Address: "0xaaa", Votes: dec("70")},
		{Address: "0xbbb", Votes: dec("30")},
	}
	safe := []Delta{
		{Address: "0xaaa", Votes: dec("40")},
		{Address: "0xbbb", Votes: dec("60")},
	}
	budget := dec("100")

	pureAgg, err := Blend(agg, safe, sdkmath.LegacyZeroDec(), budget)
	require.NoError(t, err)
	assert.Equal(t, "70.000000000000000000", pureAgg[0].Votes.String())

	pureSafe, err := Blend(agg, safe, sdkmath.LegacyOneDec(), budget)
	require.NoError(t, err)
	assert.Equal(t, "60.000000000000000000", pureSafe[1].Votes.String())
}

func TestBlendMidpointSumsToBudget(t *testing.T) {
	agg := []Delta{
		{Address: "0xaaa", Votes: dec("70")},
		{Address: "0xbbb", Votes: dec("30")},
	}
	safe := []Delta{
		{Address: "0xaaa", Votes: dec("40")},
		{Address: "0xbbb", Votes: dec("60")},
	}
	budget := dec("100")

	out, err := Blend(agg, safe, dec("0.3"), budget)
	require.NoError(t, err)
	assert.Equal(t, budget.String(), sumVotes(out).String())
}

func TestBlendRejectsMismatch(t *testing.T) {
	agg := []Delta{{Address: "0xaaa", Votes: dec("1")}}
	safe := []Delta{{Address: "0xbbb", Votes: dec("1")}}

	_, err := Blend(agg, safe, dec("0.5"), dec("1"))
	assert.ErrorIs(t, err, ErrMismatchedAllocations)
}

func TestAvoidancePenaltyZeroStrengthIsNoop(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("500"), Weight: dec("100")},
	}
	scores := AvoidanceScores{"0xaaa": dec("0.9")}

	out, err := ApplyAvoidancePenalty(pools, scores, 0)
	require.NoError(t, err)
	assert.Equal(t, pools[0].Revenue.String(), out[0].Revenue.String())
	assert.Equal(t, pools[0].Weight.String(), out[0].Weight.String())
}

func TestAvoidancePenaltyFullSuppression(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("500"), Weight: dec("100")},
		{Address: "0xbbb", Revenue: dec("200"), Weight: dec("80")},
	}
	scores := AvoidanceScores{"0xaaa": sdkmath.LegacyOneDec()}

	out, err := ApplyAvoidancePenalty(pools, scores, 100)
	require.NoError(t, err)
	assert.True(t, out[0].Revenue.IsZero())
	assert.True(t, out[0].Weight.IsZero())
	// Unscored pools pass through untouched.
	assert.Equal(t, pools[1].Revenue.String(), out[1].Revenue.String())
}

func TestAvoidancePenaltyHalfHalf(t *testing.T) {
	// strength 50, rho 0.5: factor = 0.5^(2*0.5) = 0.5, up to the root
	// approximation's precision.
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("100"), Weight: dec("10")},
	}
	scores := AvoidanceScores{"0xaaa": dec("0.5")}

	out, err := ApplyAvoidancePenalty(pools, scores, 50)
	require.NoError(t, err)

	drift := out[0].Revenue.Sub(dec("50")).Abs()
	assert.True(t, drift.LT(dec("0.000001")), "penalized revenue %s", out[0].Revenue)
}

func TestDeductPriorVotesFloorsAtZero(t *testing.T) {
	pools := []PoolInput{
		{Address: "0xaaa", Revenue: dec("500"), Weight: dec("100")},
		{Address: "0xbbb", Revenue: dec("200"), Weight: dec("30")},
	}
	prior := map[types.PoolAddress]sdkmath.LegacyDec{
		"0xaaa": dec("40"),
		"0xbbb": dec("55"), // more than the pool currently carries
	}

	out := DeductPriorVotes(pools, prior)
	assert.Equal(t, dec("60").String(), out[0].Weight.String())
	assert.True(t, out[1].Weight.IsZero())
	// Revenue is never touched by the deduction.
	assert.Equal(t, pools[0].Revenue.String(), out[0].Revenue.String())
	// Inputs stay pristine.
	assert.Equal(t, dec("100").String(), pools[0].Weight.String())
}

func TestOptimizePercentsSumToHundred(t *testing.T) {
	result, err := Optimize(testDashboard(), Options{})
	require.NoError(t, err)

	sum := 0
	for _, a := range result.Allocations {
		sum += a.Percent
	}
	assert.Equal(t, 100, sum)
}

func TestOptimizeSortedByPercentDescending(t *testing.T) {
	result, err := Optimize(testDashboard(), Options{})
	require.NoError(t, err)

	for i := 1; i < len(result.Allocations); i++ {
		assert.GreaterOrEqual(t, result.Allocations[i-1].Percent, result.Allocations[i].Percent)
	}
}

func TestOptimizeExpectedValueUsesOriginalInputs(t *testing.T) {
	dashboard := testDashboard()
	byAddr := make(map[types.PoolAddress]types.VotePool)
	for _, p := range dashboard.Pools {
		byAddr[p.Address] = p
	}

	// Heavy penalty steers the allocation, but the reported EV must still
	// be R * Delta / (W + Delta) on the unpenalized revenue and weight.
	result, err := Optimize(dashboard, Options{
		AvoidanceStrength: 80,
		AvoidanceScores:   AvoidanceScores{"0xaaa": dec("0.6")},
	})
	require.NoError(t, err)

	for _, a := range result.Allocations {
		if !a.Votes.IsPositive() {
			assert.True(t, a.ExpectedUSD.IsZero())
			continue
		}
		p := byAddr[a.Address]
		want := p.RevenueUSD.Mul(a.Votes).Quo(p.Weight.Add(a.Votes))
		assert.Equal(t, want.String(), a.ExpectedUSD.String())
	}
}

func TestOptimizeFullRiskMatchesSafeLeg(t *testing.T) {
	dashboard := testDashboard()
	result, err := Optimize(dashboard, Options{RiskAversion: 100})
	require.NoError(t, err)

	// Proportional to existing weight: 100:80:40 of a 100-vote budget.
	byAddr := make(map[types.PoolAddress]sdkmath.LegacyDec)
	for _, a := range result.Allocations {
		byAddr[a.Address] = a.Votes
	}
	totalWeight := dec("220")
	for _, p := range dashboard.Pools {
		want := dec("100").Mul(p.Weight).Quo(totalWeight)
		assert.Equal(t, want.String(), byAddr[p.Address].String())
	}
}

func TestOptimizeReRunFlag(t *testing.T) {
	dashboard := testDashboard()
	prior := &types.PriorVotes{
		Period: dashboard.Period,
		Votes:  map[types.PoolAddress]sdkmath.LegacyDec{"0xaaa": dec("20")},
	}

	result, err := Optimize(dashboard, Options{PriorVotes: prior})
	require.NoError(t, err)
	assert.True(t, result.ReRun)

	// Prior votes from a different period are stale and must be ignored.
	stale := &types.PriorVotes{Period: dashboard.Period - 1, Votes: prior.Votes}
	result, err = Optimize(dashboard, Options{PriorVotes: stale})
	require.NoError(t, err)
	assert.False(t, result.ReRun)
}

func TestOptimizeRejectsOutOfRangeKnobs(t *testing.T) {
	_, err := Optimize(testDashboard(), Options{RiskAversion: 101})
	assert.ErrorIs(t, err, types.ErrRiskAversionRange)

	_, err = Optimize(testDashboard(), Options{AvoidanceStrength: -1})
	assert.ErrorIs(t, err, types.ErrAvoidanceRange)
}

func TestOptimizeNilDashboard(t *testing.T) {
	_, err := Optimize(nil, Options{})
	assert.ErrorIs(t, err, ErrNoDashboard)
}

package analytics

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ve33-labs/vom/internal/types"
)

func TestSummarizeExpectedValues(t *testing.T) {
	stats, err := SummarizeExpectedValues([]float64{100, 200, 300})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Runs)
	assert.InDelta(t, 200, stats.Mean, 1e-9)
	assert.InDelta(t, 100, stats.StdDev, 1e-9)
	assert.InDelta(t, 300, stats.Latest, 1e-9)
}

func TestSummarizeExpectedValuesSinglePoint(t *testing.T) {
	stats, err := SummarizeExpectedValues([]float64{42})
	require.NoError(t, err)
	assert.Zero(t, stats.StdDev)
	assert.InDelta(t, 42, stats.Mean, 1e-9)
}

func TestSummarizeExpectedValuesEmpty(t *testing.T) {
	_, err := SummarizeExpectedValues(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestConcentration(t *testing.T) {
	alloc := &types.VoteAllocation{
		Allocations: []types.PoolAllocation{
			{Address: "0xaaa", Percent: 50},
			{Address: "0xbbb", Percent: 50},
		},
	}

	hhi, err := Concentration(alloc)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, hhi, 1e-9)

	single := &types.VoteAllocation{
		Allocations: []types.PoolAllocation{{Address: "0xaaa", Percent: 100}},
	}
	hhi, err = Concentration(single)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hhi, 1e-9)
}

func TestMatchScore(t *testing.T) {
	planned := &types.VoteAllocation{
		Allocations: []types.PoolAllocation{
			{Address: "0xaaa", Percent: 60},
			{Address: "0xbbb", Percent: 40},
		},
	}

	perfect, err := MatchScore(planned, map[types.PoolAddress]int{"0xaaa": 60, "0xbbb": 40})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perfect, 1e-9)

	disjoint, err := MatchScore(planned, map[types.PoolAddress]int{"0xccc": 100})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, disjoint, 1e-9)

	partial, err := MatchScore(planned, map[types.PoolAddress]int{"0xaaa": 50, "0xbbb": 50})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, partial, 1e-9)
}

func TestPercentsFromWeights(t *testing.T) {
	dec := sdkmath.LegacyMustNewDecFromStr

	percents := PercentsFromWeights(map[types.PoolAddress]sdkmath.LegacyDec{
		"0xaaa": dec("60"),
		"0xbbb": dec("40"),
	})
	assert.Equal(t, 60, percents["0xaaa"])
	assert.Equal(t, 40, percents["0xbbb"])

	// Half-up rounding: 1/3 -> 33, 2/3 -> 67.
	percents = PercentsFromWeights(map[types.PoolAddress]sdkmath.LegacyDec{
		"0xaaa": dec("1"),
		"0xbbb": dec("2"),
	})
	assert.Equal(t, 33, percents["0xaaa"])
	assert.Equal(t, 67, percents["0xbbb"])
}

func TestPercentsFromWeightsSkipsNonPositive(t *testing.T) {
	dec := sdkmath.LegacyMustNewDecFromStr

	percents := PercentsFromWeights(map[types.PoolAddress]sdkmath.LegacyDec{
		"0xaaa": dec("100"),
		"0xbbb": sdkmath.LegacyZeroDec(),
		"0xccc": dec("-5"),
	})
	assert.Equal(t, 100, percents["0xaaa"])
	assert.NotContains(t, percents, types.PoolAddress("0xbbb"))
	assert.NotContains(t, percents, types.PoolAddress("0xccc"))

	assert.Empty(t, PercentsFromWeights(nil))
}

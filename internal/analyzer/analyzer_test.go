package analyzer

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

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

func testParams() types.OptimizerParameters {
	return types.OptimizerParameters{
		MaxPools:      10,
		MinRevenueUSD: 0,
		TopRelayCount: 3,
	}
}

func TestSelectVotablePoolsFiltersDeadGauges(t *testing.T) {
	pools := []types.VotePool{
		{Address: "0xaaa", RevenueUSD: dec("100"), Gauge: "0x111", GaugeAlive: true},
		{Address: "0xbbb", RevenueUSD: dec("200"), Gauge: "0x222", GaugeAlive: false},
		{Address: "0xccc", RevenueUSD: dec("300"), Gauge: "", GaugeAlive: true},
	}

	got, err := SelectVotablePools(pools, testParams())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.PoolAddress("0xaaa"), got[0].Address)
}

func TestSelectVotablePoolsRevenueFloor(t *testing.T) {
	params := testParams()
	params.MinRevenueUSD = 50

	pools := []types.VotePool{
		{Address: "0xaaa", RevenueUSD: dec("49.99"), Gauge: "0x111", GaugeAlive: true},
		{Address: "0xbbb", RevenueUSD: dec("50"), Gauge: "0x222", GaugeAlive: true},
	}

	got, err := SelectVotablePools(pools, params)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.PoolAddress("0xbbb"), got[0].Address)
}

func TestSelectVotablePoolsCapsAndRanks(t *testing.T) {
	params := testParams()
	params.MaxPools = 2

	pools := []types.VotePool{
		{Address: "0xaaa", RevenueUSD: dec("10"), Gauge: "0x1", GaugeAlive: true},
		{Address: "0xbbb", RevenueUSD: dec("30"), Gauge: "0x2", GaugeAlive: true},
		{Address: "0xccc", RevenueUSD: dec("20"), Gauge: "0x3", GaugeAlive: true},
	}

	got, err := SelectVotablePools(pools, params)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.PoolAddress("0xbbb"), got[0].Address)
	assert.Equal(t, types.PoolAddress("0xccc"), got[1].Address)
}

func TestSelectVotablePoolsNoneSurvive(t *testing.T) {
	pools := []types.VotePool{
		{Address: "0xaaa", RevenueUSD: dec("100"), Gauge: "0x1", GaugeAlive: false},
	}

	_, err := SelectVotablePools(pools, testParams())
	assert.ErrorIs(t, err, ErrNoVotablePools)
}

func TestBuildRelayPenaltiesTopRelaysOnly(t *testing.T) {
	relays := []types.RelaySnapshot{
		{
			Name:         "relay-big",
			VotingAmount: dec("1000000"),
			Votes:        []types.RelayPoolVote{{Pool: "0xAAA", Percent: dec("60")}},
		},
		{
			Name:         "relay-small",
			VotingAmount: dec("10"),
			Votes:        []types.RelayPoolVote{{Pool: "0xbbb", Percent: dec("100")}},
		},
	}

	scores := BuildRelayPenalties(relays, 1)
	require.Len(t, scores, 1)
	// Addresses are normalized to lowercase on the way in.
	assert.Equal(t, dec("0.6").String(), scores["0xaaa"].String())
}

func TestBuildRelayPenaltiesAccumulatesAndClamps(t *testing.T) {
	relays := []types.RelaySnapshot{
		{Name: "r1", VotingAmount: dec("100"), Votes: []types.RelayPoolVote{{Pool: "0xaaa", Percent: dec("70")}}},
		{Name: "r2", VotingAmount: dec("90"), Votes: []types.RelayPoolVote{{Pool: "0xaaa", Percent: dec("50")}}},
	}

	scores := BuildRelayPenalties(relays, 3)
	assert.Equal(t, sdkmath.LegacyOneDec().String(), scores["0xaaa"].String())
}

func TestBuildRelayPenaltiesEmptyInputs(t *testing.T) {
	assert.Empty(t, BuildRelayPenalties(nil, 3))
	assert.Empty(t, BuildRelayPenalties([]types.RelaySnapshot{{Name: "r"}}, 0))
}

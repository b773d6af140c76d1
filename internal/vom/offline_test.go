package vom

import (
	"encoding/json"
	"os"
	"path/filepath"
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
		MaxPools:       10,
		MinRevenueUSD:  25.0,
		RiskAversion:   20,
		TopRelayCount:  3,
		WeightScaleExp: 18,
	}
}

func writeDashboardFile(t *testing.T, dashboard *types.VoteDashboard) string {
	t.Helper()
	raw, err := json.Marshal(dashboard)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func savedDashboard() *types.VoteDashboard {
	return &types.VoteDashboard{
		Period:         142,
		TotalVotes:     dec("1000"),
		OurVotingPower: dec("100"),
		Pools: []types.VotePool{
			{Address: "0xaaa", Symbol: "vAMM-WETH/USDC", RevenueUSD: dec("500"), Weight: dec("100"), Gauge: "0xg1", GaugeAlive: true, OurVotes: dec("30")},
			{Address: "0xbbb", Symbol: "sAMM-USDC/DAI", RevenueUSD: dec("200"), Weight: dec("80"), Gauge: "0xg2", GaugeAlive: true, OurVotes: sdkmath.LegacyZeroDec()},
			{Address: "0xccc", Symbol: "vAMM-OP/WETH", RevenueUSD: dec("120"), Weight: dec("40"), Gauge: "0xg3", GaugeAlive: true, OurVotes: sdkmath.LegacyZeroDec()},
		},
	}
}

func TestLoadDashboardFileRoundTrip(t *testing.T) {
	path := writeDashboardFile(t, savedDashboard())

	dashboard, err := LoadDashboardFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(142), dashboard.Period)
	require.Len(t, dashboard.Pools, 3)
	assert.Equal(t, dec("500").String(), dashboard.Pools[0].RevenueUSD.String())
}

func TestLoadDashboardFileMissing(t *testing.T) {
	_, err := LoadDashboardFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadDashboardFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := LoadDashboardFile(path)
	assert.ErrorIs(t, err, ErrInvalidDashboardFile)
}

func TestLoadDashboardFileRejectsEmpty(t *testing.T) {
	path := writeDashboardFile(t, &types.VoteDashboard{Period: 142})
	_, err := LoadDashboardFile(path)
	assert.ErrorIs(t, err, ErrInvalidDashboardFile)

	empty := savedDashboard()
	empty.Period = 0
	path = writeDashboardFile(t, empty)
	_, err = LoadDashboardFile(path)
	assert.ErrorIs(t, err, ErrInvalidDashboardFile)
}

func TestRunOfflineProducesFullAllocation(t *testing.T) {
	path := writeDashboardFile(t, savedDashboard())

	allocation, output, err := RunOffline(path, testParams(), false)
	require.NoError(t, err)
	assert.False(t, allocation.ReRun)

	sum := 0
	for _, a := range allocation.Allocations {
		sum += a.Percent
	}
	assert.Equal(t, 100, sum)
	assert.Contains(t, output, "period 142")
	assert.Contains(t, output, "0xaaa")
}

func TestRunOfflineReRunDeductsOwnVotes(t *testing.T) {
	path := writeDashboardFile(t, savedDashboard())

	allocation, _, err := RunOffline(path, testParams(), true)
	require.NoError(t, err)
	assert.True(t, allocation.ReRun)

	baseline, _, err := RunOffline(path, testParams(), false)
	require.NoError(t, err)
	assert.False(t, baseline.ReRun)

	// Deducting our 30 recorded votes from 0xaaa's weight changes the
	// optimization landscape; both runs are deterministic, so the replayed
	// allocation must differ from the first-run baseline.
	votesFor := func(alloc *types.VoteAllocation, addr types.PoolAddress) sdkmath.LegacyDec {
		for _, a := range alloc.Allocations {
			if a.Address == addr {
				return a.Votes
			}
		}
		return sdkmath.LegacyZeroDec()
	}
	assert.NotEqual(t,
		votesFor(baseline, "0xaaa").String(),
		votesFor(allocation, "0xaaa").String())
}

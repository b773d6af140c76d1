/*

This file contains the offline optimization path: loading a previously
saved vote dashboard from a JSON file and running the full allocation
pipeline against it, with no network access and no database. Used for
replaying historical epochs and dry-running parameter changes.

*/

package vom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/analyzer"
	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/optimizer"
	"github.com/ve33-labs/vom/internal/reporter"
	"github.com/ve33-labs/vom/internal/types"
)

var ErrInvalidDashboardFile = errors.New("invalid dashboard file")

// LoadDashboardFile reads a saved vote dashboard snapshot from disk.
func LoadDashboardFile(path string) (*types.VoteDashboard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dashboard file: %w", err)
	}

	var dashboard types.VoteDashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDashboardFile, err)
	}
	if dashboard.Period == 0 {
		return nil, fmt.Errorf("%w: period is zero", ErrInvalidDashboardFile)
	}
	if len(dashboard.Pools) == 0 {
		return nil, fmt.Errorf("%w: no pools", ErrInvalidDashboardFile)
	}
	return &dashboard, nil
}

// RunOffline optimizes a saved dashboard snapshot and returns the
// allocation plus the formatted report and bot output. Relay snapshots
// are not part of saved dashboards, so no avoidance penalty applies
// offline. With reRun set, the pools' recorded own votes are deducted as
// prior votes, replaying the epoch as a re-run.
func RunOffline(path string, params types.OptimizerParameters, reRun bool) (*types.VoteAllocation, string, error) {
	log := logger.GetForComponent("vom_offline")

	dashboard, err := LoadDashboardFile(path)
	if err != nil {
		return nil, "", err
	}
	log.Info().
		Str("file", path).
		Uint64("period", dashboard.Period).
		Int("pools", len(dashboard.Pools)).
		Msg("Loaded saved dashboard")

	votable, err := analyzer.SelectVotablePools(dashboard.Pools, params)
	if err != nil {
		return nil, "", err
	}
	dashboard.Pools = votable

	var prior *types.PriorVotes
	if reRun {
		votes := make(map[types.PoolAddress]sdkmath.LegacyDec)
		for _, p := range votable {
			if !p.OurVotes.IsNil() && p.OurVotes.IsPositive() {
				votes[p.Address] = p.OurVotes
			}
		}
		prior = &types.PriorVotes{Period: dashboard.Period, Votes: votes}
	}

	allocation, err := optimizer.Optimize(dashboard, optimizer.Options{
		RiskAversion:      params.RiskAversion,
		AvoidanceStrength: params.AvoidanceStrength,
		PriorVotes:        prior,
	})
	if err != nil {
		return nil, "", err
	}

	botOutput, err := reporter.BuildBotOutput(allocation, params.WeightScaleExp)
	if err != nil {
		return nil, "", err
	}

	output := reporter.FormatReport(allocation) + "\n" + botOutput
	return allocation, output, nil
}

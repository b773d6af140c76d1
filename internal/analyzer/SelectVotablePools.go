/*

This file contains the function for selecting which pools are worth voting
on this epoch: alive gauges only, above the revenue floor, top N by revenue.

*/

package analyzer

import (
	"errors"
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/types"
)

var poolSelectorLogger = logger.GetForComponent("pool_selector")
var ErrNoVotablePools = errors.New("no votable pools after filtering")

// SelectVotablePools filters the dashboard down to the pools the optimizer
// should consider. Pools are dropped when their gauge is dead or missing,
// or when their epoch revenue is below MinRevenueUSD; the survivors are
// ranked by revenue and capped at MaxPools. The input slice is not
// modified.
func SelectVotablePools(pools []types.VotePool, params types.OptimizerParameters) ([]types.VotePool, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	minRevenue := sdkmath.LegacyMustNewDecFromStr("0")
	if params.MinRevenueUSD > 0 {
		minRevenue = sdkmath.LegacyNewDecWithPrec(int64(params.MinRevenueUSD*100), 2)
	}

	votable := make([]types.VotePool, 0, len(pools))
	for _, p := range pools {
		if !p.GaugeAlive || p.Gauge == "" {
			poolSelectorLogger.Debug().
				Str("pool", string(p.Address)).
				Str("symbol", p.Symbol).
				Msg("Skipping pool with dead or missing gauge")
			continue
		}
		if p.RevenueUSD.IsNil() || !p.RevenueUSD.IsPositive() {
			continue
		}
		if p.RevenueUSD.LT(minRevenue) {
			poolSelectorLogger.Debug().
				Str("pool", string(p.Address)).
				Str("revenue", p.RevenueUSD.String()).
				Str("floor", minRevenue.String()).
				Msg("Skipping pool below revenue floor")
			continue
		}
		votable = append(votable, p)
	}

	if len(votable) == 0 {
		poolSelectorLogger.Error().
			Int("input", len(pools)).
			Msg("No pools survived gauge and revenue filtering")
		return nil, ErrNoVotablePools
	}

	sort.SliceStable(votable, func(i, j int) bool {
		return votable[i].RevenueUSD.GT(votable[j].RevenueUSD)
	})

	if len(votable) > params.MaxPools {
		votable = votable[:params.MaxPools]
	}

	poolSelectorLogger.Info().
		Int("input", len(pools)).
		Int("selected", len(votable)).
		Int("maxPools", params.MaxPools).
		Msg("Votable pools selected")

	return votable, nil
}

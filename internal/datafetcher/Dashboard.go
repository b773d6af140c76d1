/*

This file fetches the per-epoch vote dashboard: every votable pool with its
epoch revenue, current weight, and gauge state, plus the account's voting
power. All weight fields arrive as 1e18-scaled integer strings and are
converted to decimals here, so nothing downstream ever sees raw wei.

*/

package datafetcher

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/types"
	"github.com/ve33-labs/vom/internal/utils"
)

var ErrInvalidDashboard = errors.New("invalid dashboard data")

const WEI_EXPONENT = 18

type dashboardResponse struct {
	Period     uint64 `json:"period"`
	TotalVotes string `json:"total_votes"`
	Pools      []struct {
		Address    string     `json:"address"`
		Symbol     string     `json:"symbol"`
		RevenueUSD string     `json:"revenue_usd"`
		Fees       []feeEntry `json:"fees"`
		Weight     string     `json:"weight"`
		Gauge      string     `json:"gauge"`
		GaugeAlive bool       `json:"gauge_alive"`
	} `json:"pools"`
}

type votingPowerResponse struct {
	Account     string `json:"account"`
	VotingPower string `json:"voting_power"`
}

// GetVoteDashboard fetches and validates the full optimizer input for the
// current epoch. Partial data is an error, never a partial result. Pools
// whose entry carries raw fee amounts instead of a precomputed revenue
// figure are priced via the supplied cache.
func (c *Client) GetVoteDashboard(ctx context.Context, voter string, prices *PriceCache) (*types.VoteDashboard, error) {
	if voter == "" {
		return nil, errors.New("voter address cannot be empty")
	}
	if prices == nil {
		return nil, errors.New("price cache cannot be nil")
	}

	var raw dashboardResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(c.dashboardAPI + "/v1/dashboard")
	if err != nil {
		return nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("dashboard API returned status %d", resp.StatusCode())
	}
	if len(raw.Pools) == 0 {
		return nil, fmt.Errorf("%w: dashboard has no pools", ErrEmptyResponse)
	}
	if raw.Period == 0 {
		return nil, fmt.Errorf("%w: period is zero", ErrInvalidDashboard)
	}

	totalVotes, err := utils.ScaledIntToDec(raw.TotalVotes, WEI_EXPONENT)
	if err != nil {
		return nil, fmt.Errorf("%w: total_votes: %w", ErrInvalidDashboard, err)
	}

	power, err := c.getVotingPower(ctx, voter)
	if err != nil {
		return nil, err
	}

	// One price request covers every pool that needs fee pricing.
	var feeSymbols []string
	for _, p := range raw.Pools {
		if p.RevenueUSD != "" {
			continue
		}
		for _, fee := range p.Fees {
			feeSymbols = append(feeSymbols, fee.Symbol)
		}
	}
	var priceMap map[string]sdkmath.LegacyDec
	if len(feeSymbols) > 0 {
		priceMap, err = c.GetTokenPrices(ctx, feeSymbols, prices)
		if err != nil {
			return nil, fmt.Errorf("pricing pool fees: %w", err)
		}
	}

	pools := make([]types.VotePool, 0, len(raw.Pools))
	for i, p := range raw.Pools {
		if p.Address == "" {
			return nil, fmt.Errorf("%w: pool %d has no address", ErrInvalidDashboard, i)
		}
		var revenue sdkmath.LegacyDec
		switch {
		case p.RevenueUSD != "":
			revenue, err = sdkmath.LegacyNewDecFromStr(p.RevenueUSD)
			if err != nil {
				return nil, fmt.Errorf("%w: pool %s revenue %q: %w", ErrInvalidDashboard, p.Address, p.RevenueUSD, err)
			}
		case len(p.Fees) > 0:
			revenue, err = revenueFromFees(p.Fees, priceMap)
			if err != nil {
				return nil, fmt.Errorf("%w: pool %s: %w", ErrInvalidDashboard, p.Address, err)
			}
		default:
			return nil, fmt.Errorf("%w: pool %s has neither revenue_usd nor fees", ErrInvalidDashboard, p.Address)
		}
		weight, err := utils.ScaledIntToDec(p.Weight, WEI_EXPONENT)
		if err != nil {
			return nil, fmt.Errorf("%w: pool %s weight: %w", ErrInvalidDashboard, p.Address, err)
		}
		pools = append(pools, types.VotePool{
			Address:    types.NormalizePoolAddress(p.Address),
			Symbol:     p.Symbol,
			RevenueUSD: revenue,
			Weight:     weight,
			Gauge:      p.Gauge,
			GaugeAlive: p.GaugeAlive,
			OurVotes:   sdkmath.LegacyZeroDec(),
		})
	}

	fetchLogger.Info().
		Uint64("period", raw.Period).
		Int("pools", len(pools)).
		Str("voting_power", power.String()).
		Msg("Vote dashboard fetched")

	return &types.VoteDashboard{
		Period:         raw.Period,
		TotalVotes:     totalVotes,
		OurVotingPower: power,
		Pools:          pools,
	}, nil
}

func (c *Client) getVotingPower(ctx context.Context, voter string) (sdkmath.LegacyDec, error) {
	var raw votingPowerResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		SetPathParam("account", voter).
		Get(c.dashboardAPI + "/v1/accounts/{account}/voting-power")
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("voting power request failed: %w", err)
	}
	if resp.IsError() {
		return sdkmath.LegacyDec{}, fmt.Errorf("voting power API returned status %d", resp.StatusCode())
	}

	power, err := utils.ScaledIntToDec(raw.VotingPower, WEI_EXPONENT)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: voting_power: %w", ErrInvalidDashboard, err)
	}
	return power, nil
}

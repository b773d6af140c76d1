/*

This file fetches the votes the acting account has already cast in the
current period, directly from the voter contract indexer. A non-empty
result means the cycle is a re-run and the optimizer must deduct our own
weight before solving.

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

var ErrInvalidVoteData = errors.New("invalid prior vote data")

type priorVotesResponse struct {
	Account string `json:"account"`
	Period  uint64 `json:"period"`
	Votes   []struct {
		Pool   string `json:"pool"`
		Weight string `json:"weight"`
	} `json:"votes"`
}

// GetPriorVotes fetches the account's existing votes for a period. An
// empty vote set is the normal first-run case and is not an error.
func (c *Client) GetPriorVotes(ctx context.Context, voter string, period uint64) (*types.PriorVotes, error) {
	if voter == "" {
		return nil, errors.New("voter address cannot be empty")
	}

	var raw priorVotesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		SetPathParam("account", voter).
		SetQueryParam("period", fmt.Sprintf("%d", period)).
		Get(c.votesAPI + "/v1/accounts/{account}/votes")
	if err != nil {
		return nil, fmt.Errorf("prior votes request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("votes API returned status %d", resp.StatusCode())
	}
	if raw.Period != period {
		return nil, fmt.Errorf("%w: requested period %d, got %d", ErrInvalidVoteData, period, raw.Period)
	}

	votes := make(map[types.PoolAddress]sdkmath.LegacyDec, len(raw.Votes))
	for _, v := range raw.Votes {
		weight, err := utils.ScaledIntToDec(v.Weight, WEI_EXPONENT)
		if err != nil {
			return nil, fmt.Errorf("%w: pool %s weight: %w", ErrInvalidVoteData, v.Pool, err)
		}
		if !weight.IsPositive() {
			continue
		}
		votes[types.NormalizePoolAddress(v.Pool)] = weight
	}

	prior := &types.PriorVotes{Period: period, Votes: votes}
	fetchLogger.Info().
		Uint64("period", period).
		Int("voted_pools", len(votes)).
		Bool("re_run", prior.IsReRun()).
		Msg("Prior votes fetched")
	return prior, nil
}

/*

This file fetches the published vote sets of the autovoter relays, which
feed the relay-avoidance scoring in the analyzer.

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

var ErrInvalidRelayData = errors.New("invalid relay data")

type relayResponse struct {
	Relays []struct {
		Name         string `json:"name"`
		VotingAmount string `json:"voting_amount"`
		Votes        []struct {
			Pool    string `json:"pool"`
			Percent string `json:"percent"`
		} `json:"votes"`
	} `json:"relays"`
}

// GetRelaySnapshots fetches the current state of every known autovoter
// relay. An empty relay list is valid (avoidance simply has nothing to
// avoid); malformed entries are not.
func (c *Client) GetRelaySnapshots(ctx context.Context) ([]types.RelaySnapshot, error) {
	var raw relayResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(c.relayAPI + "/v1/relays")
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("relay API returned status %d", resp.StatusCode())
	}

	relays := make([]types.RelaySnapshot, 0, len(raw.Relays))
	for i, r := range raw.Relays {
		amount, err := utils.ScaledIntToDec(r.VotingAmount, WEI_EXPONENT)
		if err != nil {
			return nil, fmt.Errorf("%w: relay %d voting_amount: %w", ErrInvalidRelayData, i, err)
		}
		votes := make([]types.RelayPoolVote, 0, len(r.Votes))
		for _, v := range r.Votes {
			percent, err := sdkmath.LegacyNewDecFromStr(v.Percent)
			if err != nil {
				return nil, fmt.Errorf("%w: relay %s percent %q: %w", ErrInvalidRelayData, r.Name, v.Percent, err)
			}
			if percent.IsNegative() || percent.GT(sdkmath.LegacyNewDec(100)) {
				return nil, fmt.Errorf("%w: relay %s pool %s percent %s outside [0,100]", ErrInvalidRelayData, r.Name, v.Pool, percent)
			}
			votes = append(votes, types.RelayPoolVote{
				Pool:    types.NormalizePoolAddress(v.Pool),
				Percent: percent,
			})
		}
		relays = append(relays, types.RelaySnapshot{
			Name:         r.Name,
			VotingAmount: amount,
			Votes:        votes,
		})
	}

	fetchLogger.Info().Int("relays", len(relays)).Msg("Relay snapshots fetched")
	return relays, nil
}

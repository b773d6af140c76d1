/*

This file contains the relay-avoidance scoring: measuring how much of each
pool's weight comes from the dominant autovoter relays, so the optimizer
can steer away from pools whose weight will be re-voted against us.

*/

package analyzer

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/optimizer"
	"github.com/ve33-labs/vom/internal/types"
)

var relayLogger = logger.GetForComponent("relay_analyzer")

// BuildRelayPenalties computes a per-pool avoidance score rho in [0,1]
// from the published vote sets of the topRelayCount largest relays by
// voting power. Each relay contributes its per-pool percent divided by
// 100; the accumulated score is clamped to 1. Pools no relay votes on
// score zero and are simply absent from the map.
func BuildRelayPenalties(relays []types.RelaySnapshot, topRelayCount int) optimizer.AvoidanceScores {
	scores := make(optimizer.AvoidanceScores)
	if len(relays) == 0 || topRelayCount <= 0 {
		return scores
	}

	ranked := make([]types.RelaySnapshot, len(relays))
	copy(ranked, relays)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].VotingAmount, ranked[j].VotingAmount
		if a.IsNil() {
			return false
		}
		if b.IsNil() {
			return true
		}
		return a.GT(b)
	})
	if topRelayCount < len(ranked) {
		ranked = ranked[:topRelayCount]
	}

	one := sdkmath.LegacyOneDec()
	hundred := sdkmath.LegacyNewDec(100)
	for _, relay := range ranked {
		for _, vote := range relay.Votes {
			if vote.Percent.IsNil() || !vote.Percent.IsPositive() {
				continue
			}
			addr := types.NormalizePoolAddress(string(vote.Pool))
			current, ok := scores[addr]
			if !ok {
				current = sdkmath.LegacyZeroDec()
			}
			current = current.Add(vote.Percent.Quo(hundred))
			if current.GT(one) {
				current = one
			}
			scores[addr] = current
		}
		relayLogger.Debug().
			Str("relay", relay.Name).
			Int("votes", len(relay.Votes)).
			Msg("Relay vote set folded into avoidance scores")
	}

	relayLogger.Info().
		Int("relays_considered", len(ranked)).
		Int("pools_scored", len(scores)).
		Msg("Relay avoidance scores built")

	return scores
}

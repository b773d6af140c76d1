/*

This is a custom type for votable pools which contains all the state needed
for building a votes dashboard and running the allocation optimizer.

*/

package types

import (
	"strings"

	"cosmossdk.io/math"
)

// PoolAddress is the lowercase hex address of a pool's liquidity pair.
type PoolAddress string

// NormalizePoolAddress lowercases an address so map lookups are stable
// regardless of the checksum casing upstream APIs return.
func NormalizePoolAddress(addr string) PoolAddress {
	return PoolAddress(strings.ToLower(addr))
}

// VotePool is a read-only snapshot of one votable pool for the current epoch.
type VotePool struct {
	Address    PoolAddress    `json:"pool"`        // e.g., "0x1f3a..."
	Symbol     string         `json:"symbol"`      // e.g., "vAMM-WETH/USDC"
	RevenueUSD math.LegacyDec `json:"revenue_usd"` // Expected bribes + fees attributable to this pool this epoch (R)
	Weight     math.LegacyDec `json:"weight"`      // Total voting weight already locked on the pool by all actors (W)
	Gauge      string         `json:"gauge"`       // Gauge contract address; zero address means not votable
	GaugeAlive bool           `json:"gauge_alive"` // Killed gauges earn nothing and must be skipped
	OurVotes   math.LegacyDec `json:"our_votes"`   // Votes we have already cast on this pool this epoch, if any
}

// VoteDashboard is the full per-epoch input the optimizer runs against.
type VoteDashboard struct {
	Period         uint64         `json:"period"`           // Epoch identifier
	TotalVotes     math.LegacyDec `json:"total_votes"`      // Sum of all pool weights this epoch
	OurVotingPower math.LegacyDec `json:"our_voting_power"` // Budget P available to allocate
	Pools          []VotePool     `json:"pools"`
}

// RelayPoolVote is a single pool entry inside a relay's published vote set.
type RelayPoolVote struct {
	Pool    PoolAddress    `json:"pool"`
	Percent math.LegacyDec `json:"percent"` // Share of the relay's power on this pool, 0..100
}

// RelaySnapshot is one autovoter relay's current voting state.
type RelaySnapshot struct {
	Name         string          `json:"name"`
	VotingAmount math.LegacyDec  `json:"voting_amount"` // Total veNFT power the relay controls
	Votes        []RelayPoolVote `json:"votes"`
}

// PriorVotes holds the weight the acting account has already committed
// within the current period. A non-empty vote map means this run is a
// re-run and the engine must not count our own stake as competition.
type PriorVotes struct {
	Period uint64                         `json:"period"`
	Votes  map[PoolAddress]math.LegacyDec `json:"votes"`
}

// IsReRun reports whether any prior weight exists for the period.
func (pv PriorVotes) IsReRun() bool {
	return len(pv.Votes) > 0
}

/*

This file contains the output types produced by one optimizer run: the
per-pool allocation, the aggregate result handed to the reporter, and the
run snapshot persisted to the database.

*/

package types

import (
	"time"

	"cosmossdk.io/math"
)

// PoolAllocation is the optimizer's decision for a single pool.
type PoolAllocation struct {
	Address     PoolAddress    `json:"pool"`
	Symbol      string         `json:"symbol"`
	Votes       math.LegacyDec `json:"votes"`    // Delta assigned to this pool, in vote units
	Percent     int            `json:"pct"`      // Integer share of the total allocation; all percents sum to 100
	ExpectedUSD math.LegacyDec `json:"exp_usd"`  // R * Delta / (W + Delta) on the original, unpenalized revenue
}

// VoteAllocation is the complete result of one optimization.
type VoteAllocation struct {
	Period           uint64           `json:"period"`
	TotalExpectedUSD math.LegacyDec   `json:"total_expected_usd"`
	Allocations      []PoolAllocation `json:"allocations"` // Sorted by percent, descending
	ReRun            bool             `json:"re_run"`
}

// RunSnapshot captures everything about one VOM cycle for persistence and
// the web dashboard: the inputs summarized, the parameters used, and the
// full allocation output.
type RunSnapshot struct {
	SnapshotID       int64          `json:"snapshot_id"`
	RunNumber        int            `json:"run_number"`
	Timestamp        time.Time      `json:"timestamp"`
	ParamsID         *int64         `json:"params_id"`
	Period           uint64         `json:"period"`
	PoolCount        int            `json:"pool_count"`
	VotingPower      string         `json:"voting_power"` // Decimal string; avoids float drift in storage
	ReRun            bool           `json:"re_run"`
	TotalExpectedUSD float64        `json:"total_expected_usd"`
	Allocation       VoteAllocation `json:"allocation"`
	BotOutput        string         `json:"bot_output"`
}

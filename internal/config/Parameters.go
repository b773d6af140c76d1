/*

This file contains the default parameters for VOM.

These parameters are designed for directing significant voting power in a
production environment. Each value has been chosen to balance expected bribe
revenue against the risk of other voters piling into the same pools.

*/

package config

import (
	"github.com/ve33-labs/vom/internal/types"
)

const (
	// DEFAULT_CONFIG_NAME identifies the parameter set every component
	// loads unless told otherwise; the CLI and the web API must agree on it.
	DEFAULT_CONFIG_NAME    = "default_vom_strategy"
	DEFAULT_CONFIG_VERSION = 1
)

// DefaultOptimizerParameters provides a baseline parameter set for the VOM
// allocation logic. These values are used if no active parameters are found
// in the database during initialization.
var DefaultOptimizerParameters = types.OptimizerParameters{
	// --- General Strategy Parameters ---
	MaxPools: 10, // Allocate across at most the top 10 pools by revenue.
	// Rationale: Each voted pool is a separate gauge interaction at claim
	// time. Past 10 pools the marginal pool's expected value rarely covers
	// the claim gas, and the equal-marginal split concentrates most of the
	// budget in the top handful anyway.

	MinRevenueUSD: 25.0, // Ignore pools earning less than $25 this epoch.
	// Rationale: Pools below this floor cannot return enough to matter at
	// our budget size, and dust positions clutter the submitted vote set.

	// --- Risk Blend ---
	RiskAversion: 20, // 20% weight on the proportional (safe) leg.
	// Rationale: The pure equal-marginal solution is optimal only if the
	// final weight landscape matches the snapshot we optimized against.
	// A modest safe-leg weight hedges late vote flow into the same pools.

	// --- Relay Avoidance ---
	AvoidanceStrength: 40, // Moderate suppression of relay-dominated pools.
	// Rationale: The big autovoter relays re-vote near epoch close, so
	// weight we see on their pools understates the final competition.

	TopRelayCount: 3, // Only the largest relays move enough weight to matter.

	// --- Submission Formatting ---
	WeightScaleExp: 18, // Voter contract weights are 1e18-scaled.
}

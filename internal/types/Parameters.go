/*

This file contains the types for the tunable optimizer parameters for VOM.

*/

package types

// OptimizerParameters holds all tunable knobs used by the VOM strategy for
// pool selection, risk blending, and relay avoidance. Different sets of
// these parameters can exist for different market regimes.
type OptimizerParameters struct {
	// --- General Strategy Parameters ---
	MaxPools      int     `json:"max_pools"`       // Maximum number of pools to allocate votes across (top-N by revenue).
	MinRevenueUSD float64 `json:"min_revenue_usd"` // Pools below this epoch revenue are not worth the vote gas.

	// --- Risk Blend ---
	// RiskAversion is an integer percent 0..100. 0 = fully aggressive
	// (pure equal-marginal), 100 = fully safe (proportional to existing
	// weight). theta = RiskAversion/100 is the weight on the SAFE leg.
	RiskAversion int `json:"risk_aversion"`

	// --- Relay Avoidance ---
	// AvoidanceStrength is an integer percent 0..100 controlling how hard
	// pools dominated by the top relays are suppressed. The penalty factor
	// is (1-rho)^(2*alpha) with alpha = AvoidanceStrength/100, applied to
	// both revenue and weight. Squaring at full strength is a heuristic
	// carried over from production tuning, not a derived optimum.
	AvoidanceStrength int `json:"avoidance_strength"`
	TopRelayCount     int `json:"top_relay_count"` // How many relays (by voting power) feed the avoidance score.

	// --- Submission Formatting ---
	// WeightScaleExp is the power-of-ten exponent used to scale bot weights
	// (18 for the usual 100e18 total the submission bot expects).
	WeightScaleExp int `json:"weight_scale_exp"`
}

// Validate performs range checks on the percent-valued knobs.
func (p OptimizerParameters) Validate() error {
	if p.RiskAversion < 0 || p.RiskAversion > 100 {
		return ErrRiskAversionRange
	}
	if p.AvoidanceStrength < 0 || p.AvoidanceStrength > 100 {
		return ErrAvoidanceRange
	}
	if p.MaxPools <= 0 {
		return ErrMaxPoolsRange
	}
	return nil
}

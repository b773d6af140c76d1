package types

import "errors"

var (
	ErrRiskAversionRange = errors.New("risk_aversion must be between 0 and 100")
	ErrAvoidanceRange    = errors.New("avoidance_strength must be between 0 and 100")
	ErrMaxPoolsRange     = errors.New("max_pools must be positive")
)

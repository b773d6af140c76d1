package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// DashboardAPI is the base URL of the vote-dashboard API serving pool
	// revenue, weight, and gauge state for the current epoch.
	DashboardAPI string
	// RelayAPI is the base URL for autovoter relay snapshots.
	RelayAPI string
	// VotesAPI is the base URL for querying votes already cast on the
	// voter contract (used for re-run detection).
	VotesAPI string
	// PriceAPI is the base URL for USD token prices, used to value pool
	// fees when the dashboard does not report revenue directly.
	PriceAPI string
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	DashboardAPI, err = getEnv("DASHBOARD_API")
	if err != nil {
		return err
	}

	RelayAPI, err = getEnv("RELAY_API")
	if err != nil {
		return err
	}

	VotesAPI, err = getEnv("VOTES_API")
	if err != nil {
		return err
	}

	PriceAPI, err = getEnv("PRICE_API")
	if err != nil {
		return err
	}

	log.Debug().
		Str("DashboardAPI", DashboardAPI).
		Str("RelayAPI", RelayAPI).
		Str("VotesAPI", VotesAPI).
		Str("PriceAPI", PriceAPI).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}

/*

This file contains the root command and the shared initialization sequence
for the VOM CLI. Every subcommand goes through bootstrap(): environment
loading, configuration, logging, database connection, and the active
optimizer parameter set.

*/

package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ve33-labs/vom/internal/config"
	"github.com/ve33-labs/vom/internal/datafetcher"
	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/state"
	"github.com/ve33-labs/vom/internal/types"
	"github.com/ve33-labs/vom/internal/vom"
)

// Parameter overrides set via flags. A negative value means "use the
// active parameter set from the database unchanged".
var (
	flagRiskAversion      int
	flagAvoidanceStrength int
	flagDashboardFile     string
	flagReRun             bool
)

var rootCmd = &cobra.Command{
	Use:   "vom",
	Short: "VOM - ve(3,3) Vote Optimization Manager",
	Long: "VOM computes an expected-value-maximizing gauge vote allocation " +
		"from live dashboard data and formats it for submission. " +
		"Run without a subcommand to execute a single cycle.",
	SilenceUsage: true,
	RunE:         runCycle,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagRiskAversion, "risk", -1,
		"override risk aversion (0-100), -1 uses the stored parameter set")
	rootCmd.PersistentFlags().IntVar(&flagAvoidanceStrength, "avoid", -1,
		"override avoidance strength (0-100), -1 uses the stored parameter set")
	rootCmd.PersistentFlags().StringVar(&flagDashboardFile, "dashboard", "",
		"run offline against a saved dashboard JSON file instead of the live APIs")
	rootCmd.PersistentFlags().BoolVar(&flagReRun, "re-run", false,
		"offline only: deduct the dashboard's recorded own votes as prior votes")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// bootstrap performs the shared initialization sequence and returns a
// fully wired VOM instance plus a cleanup function that closes the
// database connection. Callers must invoke cleanup before exiting.
func bootstrap() (*vom.VOM, func(), error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, nil, err
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("VOM Core Logic Starting...")

	// Initialize Database Connection (parameters and run snapshots)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return nil, nil, err
	}
	cleanup := state.CloseDB
	if err := state.EnsureSchema(); err != nil {
		log.Error().Err(err).Msg("Failed to ensure database schema")
		cleanup()
		return nil, nil, err
	}

	// Load Optimizer Parameters
	params, err := state.LoadActiveOptimizerParameters(config.DEFAULT_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active optimizer parameters, using defaults and saving.")
		defaultParams := config.DefaultOptimizerParameters
		if _, err := state.SaveOptimizerParameters(defaultParams, config.DEFAULT_CONFIG_NAME, config.DEFAULT_CONFIG_VERSION, true); err != nil {
			log.Error().Err(err).Msg("Failed to save initial default optimizer parameters.")
			cleanup()
			return nil, nil, err
		}
		params = &defaultParams
	}
	if err := applyOverrides(params); err != nil {
		log.Error().Err(err).Msg("Invalid parameter override flags.")
		cleanup()
		return nil, nil, err
	}
	log.Info().Msg("Optimizer parameters loaded successfully.")

	// Initialize Data Fetcher
	fetcher, err := datafetcher.NewClient(config.DashboardAPI, config.RelayAPI, config.VotesAPI, config.PriceAPI)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create data fetcher client")
		cleanup()
		return nil, nil, err
	}

	// Create VOM Instance with Dependency Injection
	vomConfig := vom.Config{
		Fetcher:       fetcher,
		Params:        params,
		ConfigName:    config.DEFAULT_CONFIG_NAME,
		ConfigVersion: config.DEFAULT_CONFIG_VERSION,
	}

	vomInstance, err := vom.NewVOM(vomConfig)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create VOM instance")
		cleanup()
		return nil, nil, err
	}

	log.Info().Msg("VOM instance created successfully")
	return vomInstance, cleanup, nil
}

// applyOverrides folds flag-level knob overrides into the loaded
// parameter set and re-validates the result.
func applyOverrides(params *types.OptimizerParameters) error {
	if flagRiskAversion >= 0 {
		params.RiskAversion = flagRiskAversion
	}
	if flagAvoidanceStrength >= 0 {
		params.AvoidanceStrength = flagAvoidanceStrength
	}
	return params.Validate()
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

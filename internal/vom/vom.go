package vom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ve33-labs/vom/internal/analytics"
	"github.com/ve33-labs/vom/internal/analyzer"
	"github.com/ve33-labs/vom/internal/config"
	"github.com/ve33-labs/vom/internal/datafetcher"
	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/optimizer"
	"github.com/ve33-labs/vom/internal/reporter"
	"github.com/ve33-labs/vom/internal/state"
	"github.com/ve33-labs/vom/internal/types"
	"github.com/ve33-labs/vom/internal/utils"
)

// VOM represents the Vote Optimization Manager with all its dependencies
type VOM struct {
	logger  zerolog.Logger
	fetcher *datafetcher.Client
	params  *types.OptimizerParameters

	// Configuration
	configName    string
	configVersion int

	// Runtime state
	cycleCount int
}

// Config holds the configuration for creating a new VOM instance
type Config struct {
	Fetcher       *datafetcher.Client
	Params        *types.OptimizerParameters
	ConfigName    string
	ConfigVersion int
}

// NewVOM creates a new VOM instance with dependency injection
func NewVOM(cfg Config) (*VOM, error) {
	if err := validateVOMConfig(cfg); err != nil {
		return nil, fmt.Errorf("VOM configuration validation failed: %w", err)
	}

	vom := &VOM{
		logger:        logger.GetForComponent("vom_core"),
		fetcher:       cfg.Fetcher,
		params:        cfg.Params,
		configName:    cfg.ConfigName,
		configVersion: cfg.ConfigVersion,
		cycleCount:    0,
	}

	vom.logger.Info().
		Str("configName", vom.configName).
		Int("configVersion", vom.configVersion).
		Msg("VOM instance created successfully with dependency injection")

	return vom, nil
}

// validateVOMConfig validates the VOM configuration
func validateVOMConfig(cfg Config) error {
	if cfg.Fetcher == nil {
		return fmt.Errorf("data fetcher cannot be nil")
	}
	if cfg.Params == nil {
		return fmt.Errorf("optimizer parameters cannot be nil")
	}
	if err := cfg.Params.Validate(); err != nil {
		return fmt.Errorf("optimizer parameters invalid: %w", err)
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.ConfigVersion <= 0 {
		return fmt.Errorf("config version must be positive")
	}
	return nil
}

// RunLoop starts the main VOM loop with the specified interval
func (v *VOM) RunLoop(ctx context.Context, interval time.Duration) {
	v.logger.Info().
		Dur("interval", interval).
		Msg("Starting VOM main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	v.cycleCount++
	v.logger.Info().Int("cycle", v.cycleCount).Msg("Initiating VOM cycle")
	v.RunCycle(ctx)
	v.logger.Info().Int("cycle", v.cycleCount).Msg("VOM cycle completed")

	// Continue with ticker
	for {
		select {
		case <-ctx.Done():
			v.logger.Info().Msg("VOM loop stopped due to context cancellation")
			return
		case <-ticker.C:
			v.cycleCount++
			v.logger.Info().Int("cycle", v.cycleCount).Msg("Initiating VOM cycle")
			v.RunCycle(ctx)
			v.logger.Info().Int("cycle", v.cycleCount).Msg("VOM cycle completed")
		}
	}
}

// RunCycle executes one complete optimization cycle: fetch, analyze,
// optimize, report, persist. A failed cycle is logged and skipped; the
// loop carries on at the next tick.
func (v *VOM) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Unique cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := v.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting VOM Cycle ---")

	// --- Step 1: Data Fetching ---
	cycleLogger.Info().Msg("Step 1: Fetching vote dashboard and relay state...")

	// Fresh price cache per cycle: memoizes token prices across the pools
	// of this dashboard fetch without leaking stale quotes into later cycles.
	prices := datafetcher.NewPriceCache()

	dashboard, err := v.fetcher.GetVoteDashboard(ctx, config.VoterAddress, prices)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to fetch vote dashboard.")
		return
	}

	priorVotes, err := v.fetcher.GetPriorVotes(ctx, config.VoterAddress, dashboard.Period)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to fetch prior votes.")
		return
	}

	relays, err := v.fetcher.GetRelaySnapshots(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to fetch relay snapshots.")
		return
	}

	cycleLogger.Info().
		Uint64("period", dashboard.Period).
		Int("pools", len(dashboard.Pools)).
		Int("relays", len(relays)).
		Bool("re_run", priorVotes.IsReRun()).
		Msg("Step 1: Data fetching complete.")

	// --- Step 2: Analysis ---
	cycleLogger.Info().Msg("Step 2: Selecting votable pools and scoring relay avoidance...")

	votable, err := analyzer.SelectVotablePools(dashboard.Pools, *v.params)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: No votable pools this epoch.")
		return
	}
	dashboard.Pools = votable

	avoidanceScores := analyzer.BuildRelayPenalties(relays, v.params.TopRelayCount)

	cycleLogger.Info().
		Int("votable", len(votable)).
		Int("pools_with_avoidance", len(avoidanceScores)).
		Msg("Step 2: Analysis complete.")

	if priorVotes.IsReRun() {
		v.logVoteMatchScore(cycleLogger, dashboard.Period, priorVotes)
	}

	// --- Step 3: Optimization ---
	cycleLogger.Info().Msg("Step 3: Running allocation optimizer...")

	allocation, err := optimizer.Optimize(dashboard, optimizer.Options{
		RiskAversion:      v.params.RiskAversion,
		AvoidanceStrength: v.params.AvoidanceStrength,
		AvoidanceScores:   avoidanceScores,
		PriorVotes:        priorVotes,
	})
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Optimization failed.")
		return
	}

	cycleLogger.Info().
		Str("total_expected_usd", allocation.TotalExpectedUSD.String()).
		Msg("Step 3: Optimization complete.")

	// --- Step 4: Output Formatting ---
	cycleLogger.Info().Msg("Step 4: Building outputs...")

	report := reporter.FormatReport(allocation)
	fmt.Print(report)

	botOutput, err := reporter.BuildBotOutput(allocation, v.params.WeightScaleExp)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to build bot output.")
		return
	}

	calldata, err := reporter.BuildCalldata(config.VoterAddress, allocation, v.params.WeightScaleExp)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to build vote calldata.")
		return
	}
	cycleLogger.Info().Str("calldata", calldata).Msg("Vote calldata ready")

	// --- Step 5: Persistence ---
	cycleLogger.Info().Msg("Step 5: Persisting run snapshot...")

	totalEV, err := utils.DecToFloat64(allocation.TotalExpectedUSD)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to convert expected value for storage, storing zero.")
		totalEV = 0
	}

	snapshot := types.RunSnapshot{
		RunNumber:        v.getRunNumber(),
		Timestamp:        cycleStartTime,
		ParamsID:         v.getParamsID(),
		Period:           dashboard.Period,
		PoolCount:        len(votable),
		VotingPower:      dashboard.OurVotingPower.String(),
		ReRun:            allocation.ReRun,
		TotalExpectedUSD: totalEV,
		Allocation:       *allocation,
		BotOutput:        botOutput,
	}
	v.saveRunSnapshot(snapshot)

	cycleEndTime := time.Now()
	cycleLogger.Info().Str("cycleDuration", cycleEndTime.Sub(cycleStartTime).String()).Msg("VOM Cycle Duration")
	cycleLogger.Info().Msg("--- VOM Cycle Completed Successfully ---")
}

// logVoteMatchScore compares the landed on-chain votes against the
// allocation the previous run submitted for the same period. A low score
// on a re-run means the submission bot diverged from the plan.
func (v *VOM) logVoteMatchScore(cycleLogger zerolog.Logger, period uint64, priorVotes *types.PriorVotes) {
	prev, err := state.GetRecentRunSnapshots(1)
	if err != nil || len(prev) == 0 {
		cycleLogger.Debug().Err(err).Msg("No previous run snapshot to score landed votes against")
		return
	}
	if prev[0].Period != period {
		// The last stored run belongs to an earlier period; its plan says
		// nothing about the votes currently on the contract.
		return
	}

	actual := analytics.PercentsFromWeights(priorVotes.Votes)
	score, err := analytics.MatchScore(&prev[0].Allocation, actual)
	if err != nil {
		cycleLogger.Warn().Err(err).Msg("Failed to score landed votes against previous allocation")
		return
	}

	cycleLogger.Info().
		Float64("vote_match_score", score).
		Int("landed_pools", len(actual)).
		Msg("Landed votes scored against previous run's allocation")
}

// getRunNumber increments and returns the persistent run counter from database
func (v *VOM) getRunNumber() int {
	runNumber, err := state.IncrementRunNumber()
	if err != nil {
		v.logger.Error().Err(err).Msg("Failed to increment run number, using fallback")
		// Fallback to a simple counter if database fails
		return int(time.Now().Unix() % 1000000)
	}
	return runNumber
}

// getParamsID retrieves the current active optimizer parameters ID from database
func (v *VOM) getParamsID() *int64 {
	paramsID, err := state.GetActiveOptimizerParametersID(v.configName)
	if err != nil {
		v.logger.Error().Err(err).Str("configName", v.configName).Msg("Failed to get active optimizer parameters ID")
		return nil
	}
	return paramsID
}

// saveRunSnapshot saves the run snapshot to database
func (v *VOM) saveRunSnapshot(snapshot types.RunSnapshot) {
	snapshotID, err := state.SaveRunSnapshot(snapshot)
	if err != nil {
		v.logger.Error().Err(err).Msg("Failed to save run snapshot to database")
		return
	}
	v.logger.Info().Int64("snapshot_id", snapshotID).Msg("Run snapshot saved successfully")
}

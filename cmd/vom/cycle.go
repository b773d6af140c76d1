package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ve33-labs/vom/internal/config"
	"github.com/ve33-labs/vom/internal/logger"
	"github.com/ve33-labs/vom/internal/vom"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single optimization cycle and exit",
	RunE:  runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	if flagDashboardFile != "" {
		return runOfflineCycle()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vomInstance, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	vomInstance.RunCycle(ctx)
	return nil
}

// runOfflineCycle optimizes against a saved dashboard file. No database
// or API endpoints are needed, so it skips bootstrap() entirely.
func runOfflineCycle() error {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}
	logger.Initialize(os.Getenv("LOG_LEVEL"))

	params := config.DefaultOptimizerParameters
	if err := applyOverrides(&params); err != nil {
		log.Error().Err(err).Msg("Invalid parameter override flags.")
		return err
	}

	_, output, err := vom.RunOffline(flagDashboardFile, params, flagReRun)
	if err != nil {
		log.Error().Err(err).Str("file", flagDashboardFile).Msg("Offline cycle failed")
		return err
	}

	fmt.Print(output)
	return nil
}

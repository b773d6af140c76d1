package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ve33-labs/vom/internal/config"
	"github.com/ve33-labs/vom/internal/web"
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run optimization cycles continuously with the web dashboard",
	RunE:  runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)
}

func runLoop(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vomInstance, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	// Start the web dashboard alongside the loop
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}
	webServer := web.NewWebServer(webPort)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting VOM web dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	interval := time.Duration(config.CycleMinutes) * time.Minute
	log.Info().Str("interval", interval.String()).Msg("Starting VOM main loop")

	vomInstance.RunLoop(ctx, interval)
	return nil
}

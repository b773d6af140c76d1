package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ve33-labs/vom/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard and API without running cycles",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}
	webServer := web.NewWebServer(webPort)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting VOM web dashboard")
		errCh <- webServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down web dashboard")
		return nil
	case err := <-errCh:
		return err
	}
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/config"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the message bus over HTTP",
	Long:  "Start an HTTP server that lets agents in other processes send and receive messages. Requests carry a bearer token from 'recruiter token'; JWT_SECRET must be set.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config, default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withStore(ctx, func(_ *db.DB, b *bus.Bus) error {
		srv, err := server.New(server.Config{
			Addr:          firstSet(serveAddr, cfg.Server.Addr),
			Bus:           b,
			JWT:           server.NewJWTService(jwtConfig),
			RatePerMinute: cfg.Server.RatePerMinute,
			Burst:         cfg.Server.Burst,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		return srv.Run(ctx)
	})
}

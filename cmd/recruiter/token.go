package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/config"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an agent",
	Long:  "Print a signed token for the HTTP API. The token is signed with JWT_SECRET and expires after JWT_EXPIRATION_HOURS (default 720).",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

var tokenAgent string

func init() {
	tokenCmd.Flags().StringVar(&tokenAgent, "agent", "", "Agent the token is issued to (Jack, Jill, Scout)")
	_ = tokenCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	agent, err := canonicalAgent(tokenAgent)
	if err != nil {
		return err
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	token, err := server.NewJWTService(jwtConfig).GenerateToken(agent)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

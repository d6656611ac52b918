package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage credentials in the OS keychain",
}

var secretsSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key [key]",
	Short: "Store the Gemini API key in the OS keychain",
	Long:  "Store the Gemini API key in the OS keychain. Without an argument the key is read from stdin. GEMINI_API_KEY and api_key in the config file take precedence over the keychain.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSecretsSetAPIKey,
}

var secretsDeleteAPIKeyCmd = &cobra.Command{
	Use:   "delete-api-key",
	Short: "Remove the Gemini API key from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := secrets.DeleteAPIKey(); err != nil {
			return fmt.Errorf("failed to delete API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed from keychain")
		return nil
	},
}

var secretsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the Gemini API key is read from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, source, err := secrets.APIKey(cfg.APIKey)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "API key: not configured")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API key: found (%s)\n", source)
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsSetAPIKeyCmd, secretsDeleteAPIKeyCmd, secretsStatusCmd)
	rootCmd.AddCommand(secretsCmd)
}

func runSecretsSetAPIKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Gemini API key: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if err := secrets.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API key stored in keychain")
	return nil
}

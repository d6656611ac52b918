// Package main provides the recruiter command line: the Jack, Jill and Scout
// agents, their message bus and the records they share.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	databaseURL string
	contentRoot string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "recruiter",
	Short:         "AI recruiter agents",
	Long:          "Jack represents candidates, Jill represents hiring companies and Scout sources both. They talk over a message bus backed by a local SQLite file or PostgreSQL.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "SQLite path or postgres:// URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&contentRoot, "root", "", "Directory holding candidates/ and jobs/ (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

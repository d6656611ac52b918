package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or migrate the database schema",
	Long:  "Create the schema if it does not exist and apply pending migrations. Safe to run repeatedly and from several processes at once.",
	Args:  cobra.NoArgs,
	RunE:  runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		version, err := store.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database ready (%s, schema v%d)\n", store.Driver(), version)
		return nil
	})
}

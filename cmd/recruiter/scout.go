package main

import (
	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/report"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/scout"
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Source candidates for every job and jobs for every candidate",
	Long: `Scout scores stored candidates against each job and tells Jill about strong
internal matches. Jobs without one trigger an external profile search reported
to Jack. Every candidate then gets an external job search.`,
	Args: cobra.NoArgs,
	RunE: runScout,
}

func init() {
	rootCmd.AddCommand(scoutCmd)
}

func runScout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	o, closeLLM, err := requireOracle(ctx)
	if err != nil {
		return err
	}
	defer closeLLM()

	return withStore(ctx, func(store *db.DB, b *bus.Bus) error {
		s := &scout.Scout{
			Store:    store,
			Bus:      b,
			Oracle:   o,
			Searcher: newSearcher(cfg),
			Out:      cmd.OutOrStdout(),
		}
		rep, err := s.Run(ctx)
		if rep != nil {
			report.NewPrinter(cmd.OutOrStdout()).PrintScout(rep)
		}
		return err
	})
}

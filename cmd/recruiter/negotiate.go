package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/negotiation"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/report"
)

var negotiateCmd = &cobra.Command{
	Use:   "negotiate",
	Short: "Run a Jack and Jill negotiation over every job and candidate",
	Long: `Jill presents each stored job, Jack answers with his candidates, and matches are
recorded according to the chosen strategy. Jobs and candidates are taken in the
order their spec and profile files are discovered under the content root. A JSON and Markdown discussion report
is written to the report directory.`,
	Args: cobra.NoArgs,
	RunE: runNegotiate,
}

var (
	negotiateStrategy   string
	negotiateStrategies string
	negotiateReportDir  string
)

func init() {
	negotiateCmd.Flags().StringVarP(&negotiateStrategy, "strategy", "s", "", "Strategy name (shortlist, boardroom, or one defined in --strategies)")
	negotiateCmd.Flags().StringVar(&negotiateStrategies, "strategies", "", "YAML file with strategy overrides")
	negotiateCmd.Flags().StringVarP(&negotiateReportDir, "report-dir", "o", "", "Directory for discussion reports")
	rootCmd.AddCommand(negotiateCmd)
}

func runNegotiate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	strategiesFile := firstSet(negotiateStrategies, cfg.StrategiesFile)
	strategies, err := negotiation.LoadStrategies(strategiesFile)
	if err != nil {
		return err
	}
	strategy, err := strategies.Lookup(firstSet(negotiateStrategy, cfg.Strategy))
	if err != nil {
		return err
	}

	o, closeLLM, err := requireOracle(ctx)
	if err != nil {
		return err
	}
	defer closeLLM()

	return withStore(ctx, func(store *db.DB, b *bus.Bus) error {
		orch := &negotiation.Orchestrator{
			Store:     store,
			Bus:       b,
			Oracle:    o,
			Searcher:  newSearcher(cfg),
			Artifacts: discovery.New(cfg.ContentRoot, b),
			Strategy:  strategy,
			Out:       out,
			Verbose:   cfg.Verbose,
		}
		run, err := orch.Run(ctx)
		if run != nil {
			report.NewPrinter(out).PrintRun(run)
			jsonPath, mdPath, werr := report.WriteDiscussion(firstSet(negotiateReportDir, cfg.ReportDir), run)
			if werr != nil {
				return fmt.Errorf("failed to write discussion report: %w", werr)
			}
			fmt.Fprintf(out, "Report: %s\n        %s\n", jsonPath, mdPath)
		}
		return err
	})
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/report"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show recorded matches",
	Long:  "Show matches for one job, for one candidate, or the best score per candidate and job. Without flags every match is listed.",
	Args:  cobra.NoArgs,
	RunE:  runMatches,
}

var (
	matchesJob       string
	matchesCandidate string
	matchesBest      bool
)

func init() {
	matchesCmd.Flags().StringVar(&matchesJob, "job", "", "Job id")
	matchesCmd.Flags().StringVar(&matchesCandidate, "candidate", "", "Candidate id")
	matchesCmd.Flags().BoolVar(&matchesBest, "best", false, "Best score per candidate and job")
	matchesCmd.MarkFlagsMutuallyExclusive("job", "candidate", "best")
	rootCmd.AddCommand(matchesCmd)
}

func runMatches(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withStore(ctx, func(store *db.DB, _ *bus.Bus) error {
		switch {
		case matchesJob != "":
			job, err := store.GetJob(ctx, matchesJob)
			if err != nil {
				return err
			}
			if job == nil {
				return fmt.Errorf("job %s: %w", matchesJob, db.ErrNotFound)
			}
			ms, err := store.MatchesForJob(ctx, job.ID)
			if err != nil {
				return err
			}
			report.NewPrinter(out).PrintJobMatches(jobHeading(job), ms)

		case matchesCandidate != "":
			ms, err := store.MatchesForCandidate(ctx, matchesCandidate)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Matches for candidate %s (%d):\n", matchesCandidate, len(ms))
			for _, m := range ms {
				title := m.JobTitle
				if m.Company != "" {
					title += " at " + m.Company
				}
				fmt.Fprintf(out, "  %.2f  %s  %s/%s\n", m.Score, title, m.Source, m.Status)
			}

		case matchesBest:
			best, err := store.BestMatches(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Best matches (%d):\n", len(best))
			for _, b := range best {
				fmt.Fprintf(out, "  %.2f  candidate %s  job %s  (%d recorded)\n", b.Score, b.CandidateID, b.JobID, b.Matches)
			}

		default:
			ms, err := store.ListMatches(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Matches (%d):\n", len(ms))
			for _, m := range ms {
				fmt.Fprintf(out, "  %s  %.2f  candidate %s  job %s  %s/%s\n", m.ID, m.Score, m.CandidateID, m.JobID, m.Source, m.Status)
			}
		}
		return nil
	})
}

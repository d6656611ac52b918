package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [job-spec...]",
	Short: "Suggest candidates for job specs to Jack",
	Long: `Score every discovered candidate profile against each job spec and send
Jack a match_suggestion for profiles scoring at least the threshold. Specs are
paths relative to the content root; without arguments every discovered spec
is checked.`,
	RunE: runSuggest,
}

var suggestThreshold float64

func init() {
	suggestCmd.Flags().Float64Var(&suggestThreshold, "threshold", suggest.Threshold, "Minimum match score to suggest")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestThreshold <= 0 || suggestThreshold > 1 {
		return fmt.Errorf("--threshold must be in (0, 1], got %v", suggestThreshold)
	}
	ctx := cmd.Context()
	orc, closeLLM, err := requireOracle(ctx)
	if err != nil {
		return err
	}
	defer closeLLM()

	return withStore(ctx, func(store *db.DB, b *bus.Bus) error {
		ix := discovery.New(cfg.ContentRoot, b)
		specs := args
		if len(specs) == 0 {
			if specs, err = ix.ListSpecs(ctx); err != nil {
				return err
			}
		}
		if len(specs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No job specs to check.")
			return nil
		}

		s := &suggest.Suggester{
			Profiles:  ix,
			Bus:       b,
			Oracle:    orc,
			Threshold: suggestThreshold,
			Out:       cmd.OutOrStdout(),
		}
		total := 0
		for _, spec := range specs {
			n, err := suggestForSpec(ctx, s, store, ix, spec)
			if err != nil {
				return err
			}
			total += n
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d match suggestion(s) to %s\n", total, bus.AgentJack)
		return nil
	})
}

// suggestForSpec runs one spec through s and returns the number of
// suggestions sent. The job id is attached when the spec is stored.
func suggestForSpec(ctx context.Context, s *suggest.Suggester, store *db.DB, ix *discovery.Index, spec string) (int, error) {
	rel, ok := ix.Rel(spec)
	if !ok {
		return 0, fmt.Errorf("job spec %s is outside %s", spec, ix.Root)
	}
	text, err := ix.Read(rel)
	if err != nil {
		return 0, err
	}
	job := suggest.Job{File: rel, Text: text}
	stored, err := store.FindJobBySpecFile(ctx, rel)
	if err != nil {
		return 0, err
	}
	if stored != nil {
		job.ID = stored.ID
	}
	res, err := s.ForJob(ctx, job)
	if err != nil {
		return 0, err
	}
	return res.Sent(), nil
}

// printSuggestions reports an ingest-time suggestion pass.
func printSuggestions(w io.Writer, res *suggest.Result) {
	if res.Sent() == 0 {
		fmt.Fprintln(w, "No candidate suggestions")
		return
	}
	fmt.Fprintf(w, "Suggested %d candidate(s) to %s\n", res.Sent(), bus.AgentJack)
}

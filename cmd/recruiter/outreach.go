package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/outreach"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Manage the LinkedIn outreach queue",
	Long:  "Outreach messages are never sent automatically. They wait in a queue until a human sends them and confirms with 'outreach review'.",
}

var outreachListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending outreach messages",
	Args:  cobra.NoArgs,
	RunE:  runOutreachList,
}

var outreachReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk the pending queue and record what was sent",
	Args:  cobra.NoArgs,
	RunE:  runOutreachReview,
}

var outreachQueueCandidateCmd = &cobra.Command{
	Use:   "queue-candidate",
	Short: "Queue a message telling a candidate about a job",
	Args:  cobra.NoArgs,
	RunE:  runOutreachQueueCandidate,
}

var outreachQueueManagerCmd = &cobra.Command{
	Use:   "queue-manager",
	Short: "Queue a message introducing a candidate to a hiring manager",
	Args:  cobra.NoArgs,
	RunE:  runOutreachQueueManager,
}

var (
	orName       string
	orLinkedIn   string
	orJobTitle   string
	orCompany    string
	orSkills     []string
	orReason     string
	orCandidate  string
	orExperience string
)

// newReviewer is replaced in tests.
var newReviewer = func(cmd *cobra.Command) outreach.Reviewer {
	r := outreach.NewHuhReviewer()
	r.Out = cmd.OutOrStdout()
	return r
}

func init() {
	for _, c := range []*cobra.Command{outreachQueueCandidateCmd, outreachQueueManagerCmd} {
		c.Flags().StringVar(&orName, "name", "", "Recipient name")
		c.Flags().StringVar(&orLinkedIn, "linkedin", "", "Recipient LinkedIn URL")
		c.Flags().StringVar(&orJobTitle, "job-title", "", "Job title")
		c.Flags().StringVar(&orCompany, "company", "", "Company name")
		c.Flags().StringSliceVar(&orSkills, "skills", nil, "Candidate skills, comma separated")
		c.Flags().StringVar(&orReason, "reason", "", "Why this is a match")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("job-title")
	}
	outreachQueueManagerCmd.Flags().StringVar(&orCandidate, "candidate", "", "Candidate being introduced")
	outreachQueueManagerCmd.Flags().StringVar(&orExperience, "experience", "", "One-line summary of the candidate's experience")
	_ = outreachQueueManagerCmd.MarkFlagRequired("candidate")

	outreachCmd.AddCommand(outreachListCmd, outreachReviewCmd, outreachQueueCandidateCmd, outreachQueueManagerCmd)
	rootCmd.AddCommand(outreachCmd)
}

func runOutreachList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		pending, err := outreach.NewQueue(store).ListPending(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(pending) == 0 {
			fmt.Fprintln(out, "No pending outreach messages.")
			return nil
		}
		for i, item := range pending {
			fmt.Fprintln(out, outreach.FormatItem(item, i+1, len(pending)))
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d pending. Send them manually on LinkedIn, then run 'recruiter outreach review'.\n", len(pending))
		return nil
	})
}

func runOutreachReview(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		summary, err := outreach.NewQueue(store).Review(cmd.Context(), newReviewer(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Review complete: %d sent, %d kept, %d skipped\n", summary.Sent, summary.Kept, summary.Skipped)
		return nil
	})
}

func runOutreachQueueCandidate(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		id, err := outreach.NewQueue(store).QueueCandidateOutreach(cmd.Context(), orLinkedIn, outreach.CandidateMessage{
			CandidateName: orName,
			Skills:        orSkills,
			JobTitle:      orJobTitle,
			Company:       orCompany,
			MatchReason:   orReason,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued outreach to candidate %s (id %s)\n", orName, id)
		return nil
	})
}

func runOutreachQueueManager(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		id, err := outreach.NewQueue(store).QueueHiringManagerOutreach(cmd.Context(), orLinkedIn, outreach.HiringManagerMessage{
			ManagerName:         orName,
			JobTitle:            orJobTitle,
			Company:             orCompany,
			CandidateName:       orCandidate,
			CandidateExperience: orExperience,
			CandidateSkills:     orSkills,
			MatchReason:         orReason,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued introduction to %s (id %s)\n", orName, id)
		return nil
	})
}

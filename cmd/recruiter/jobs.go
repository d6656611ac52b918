package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage jobs",
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job",
	Args:  cobra.NoArgs,
	RunE:  runJobsAdd,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var (
	jobTitle        string
	jobCompany      string
	jobLinkedIn     string
	jobSpec         string
	jobRequirements []string
)

func init() {
	f := jobsAddCmd.Flags()
	f.StringVar(&jobTitle, "title", "", "Job title")
	f.StringVar(&jobCompany, "company", "", "Hiring company")
	f.StringVar(&jobLinkedIn, "linkedin", "", "LinkedIn posting URL")
	f.StringVar(&jobSpec, "spec", "", "Job spec file under the content root")
	f.StringSliceVarP(&jobRequirements, "requirements", "r", nil, "Requirements, comma separated")
	_ = jobsAddCmd.MarkFlagRequired("title")

	jobsCmd.AddCommand(jobsAddCmd, jobsListCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsAdd(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		j, err := store.CreateJob(cmd.Context(), &db.JobInput{
			Title:        jobTitle,
			Company:      jobCompany,
			LinkedInURL:  jobLinkedIn,
			SpecFile:     jobSpec,
			Requirements: jobRequirements,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (id %s)\n", jobHeading(j), j.ID)
		return nil
	})
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		jobs, err := store.ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Jobs (%d):\n", len(jobs))
		for i := range jobs {
			fmt.Fprintf(out, "  %s  %s  (%d requirements)\n", jobs[i].ID, jobHeading(&jobs[i]), len(jobs[i].Requirements))
		}
		return nil
	})
}

func jobHeading(j *db.Job) string {
	if j.Company == "" {
		return j.Title
	}
	return j.Title + " at " + j.Company
}

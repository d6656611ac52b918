package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/skills"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Manage candidates",
}

var candidatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesAdd,
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesList,
}

var (
	candName       string
	candEmail      string
	candLinkedIn   string
	candProfile    string
	candSkills     []string
	candLocation   string
	candIndustries []string
)

func init() {
	f := candidatesAddCmd.Flags()
	f.StringVar(&candName, "name", "", "Full name")
	f.StringVar(&candEmail, "email", "", "Email address")
	f.StringVar(&candLinkedIn, "linkedin", "", "LinkedIn profile URL")
	f.StringVar(&candProfile, "profile", "", "Profile file under the content root")
	f.StringSliceVar(&candSkills, "skills", nil, "Skills, comma separated")
	f.StringVar(&candLocation, "location", "", "Preferred location")
	f.StringSliceVar(&candIndustries, "industries", nil, "Preferred industries, comma separated")
	_ = candidatesAddCmd.MarkFlagRequired("name")

	candidatesCmd.AddCommand(candidatesAddCmd, candidatesListCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidatesAdd(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		c, err := store.CreateCandidate(cmd.Context(), &db.CandidateInput{
			Name:        candName,
			Email:       candEmail,
			LinkedInURL: candLinkedIn,
			ProfileFile: candProfile,
			Skills:      skills.NormalizeList(candSkills),
			Preferences: db.Preferences{Location: candLocation, Industries: candIndustries},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added candidate %s (id %s)\n", c.Name, c.ID)
		return nil
	})
}

func runCandidatesList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(store *db.DB, _ *bus.Bus) error {
		candidates, err := store.ListCandidates(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Candidates (%d):\n", len(candidates))
		for _, c := range candidates {
			fmt.Fprintf(out, "  %s  %s", c.ID, c.Name)
			if len(c.Skills) > 0 {
				fmt.Fprintf(out, "  [%s]", strings.Join(c.Skills, ", "))
			}
			if c.Preferences.Location != "" {
				fmt.Fprintf(out, "  @ %s", c.Preferences.Location)
			}
			fmt.Fprintln(out)
		}
		return nil
	})
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/ingestion"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/suggest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Turn a posting or profile into a stored artifact",
	Long: `Read a job posting or candidate profile from a file or URL, write it as
markdown under the content root, store it, and announce it on the bus. When a
Gemini API key is available, missing structure is filled in by the model.
With --suggest, a new job spec is also scored against every discovered
candidate profile and strong matches are suggested to Jack.`,
}

var ingestJobCmd = &cobra.Command{
	Use:   "job",
	Short: "Ingest a job posting from a text file or URL",
	Args:  cobra.NoArgs,
	RunE:  runIngestJob,
}

var ingestProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Ingest a candidate profile from a text file or URL",
	Args:  cobra.NoArgs,
	RunE:  runIngestProfile,
}

var (
	ingestFile     string
	ingestURL      string
	ingestTitle    string
	ingestCompany  string
	ingestName     string
	ingestAnnounce bool
	ingestSuggest  bool
)

func init() {
	for _, c := range []*cobra.Command{ingestJobCmd, ingestProfileCmd} {
		c.Flags().StringVarP(&ingestFile, "text-file", "t", "", "Path to text or markdown file")
		c.Flags().StringVarP(&ingestURL, "url", "u", "", "URL to fetch")
		c.Flags().BoolVar(&ingestAnnounce, "announce", true, "Announce the artifact on the bus")
		c.MarkFlagsOneRequired("text-file", "url")
		c.MarkFlagsMutuallyExclusive("text-file", "url")
	}
	ingestJobCmd.Flags().StringVar(&ingestTitle, "title", "", "Job title (overrides the source)")
	ingestJobCmd.Flags().StringVar(&ingestCompany, "company", "", "Company (overrides the source)")
	ingestJobCmd.Flags().BoolVar(&ingestSuggest, "suggest", false, "Suggest matching candidates to Jack (needs an API key)")
	ingestProfileCmd.Flags().StringVar(&ingestName, "name", "", "Candidate name (overrides the source)")

	ingestCmd.AddCommand(ingestJobCmd, ingestProfileCmd)
	rootCmd.AddCommand(ingestCmd)
}

func ingestOptions() ingestion.Options {
	return ingestion.Options{
		URL:      ingestURL,
		File:     ingestFile,
		Title:    ingestTitle,
		Company:  ingestCompany,
		Name:     ingestName,
		Announce: ingestAnnounce,
	}
}

// ingestRun is the ingester plus the bus it announces on. LLM is nil
// without an API key.
type ingestRun struct {
	*ingestion.Ingester
	bus *bus.Bus
}

func withIngester(cmd *cobra.Command, fn func(in ingestRun) error) error {
	client, closeLLM := optionalLLM(cmd.Context())
	defer closeLLM()
	return withStore(cmd.Context(), func(store *db.DB, b *bus.Bus) error {
		return fn(ingestRun{
			Ingester: &ingestion.Ingester{
				Root:    cfg.ContentRoot,
				Store:   store,
				Bus:     b,
				LLM:     client,
				Fetch:   fetchOptions(),
				Verbose: cfg.Verbose,
			},
			bus: b,
		})
	})
}

func runIngestJob(cmd *cobra.Command, _ []string) error {
	if ingestSuggest && !ingestAnnounce {
		return errors.New("--suggest needs the spec to be announced")
	}
	return withIngester(cmd, func(in ingestRun) error {
		res, err := in.IngestJobSpec(cmd.Context(), ingestOptions())
		if err != nil {
			return fmt.Errorf("failed to ingest job: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Ingested job %s (id %s)\n", jobHeading(res.Job), res.Job.ID)
		fmt.Fprintf(out, "Spec: %s\n", res.Path)
		fmt.Fprintf(out, "Requirements: %d\n", len(res.Job.Requirements))
		if res.MessageID != "" {
			fmt.Fprintf(out, "Announced to %s (message %s)\n", bus.AgentJack, res.MessageID)
		}
		if !ingestSuggest {
			return nil
		}
		if in.LLM == nil {
			return errors.New("--suggest needs an API key")
		}
		ix := discovery.New(in.Root, in.bus)
		text, err := ix.Read(res.Path)
		if err != nil {
			return err
		}
		s := &suggest.Suggester{
			Profiles: ix,
			Bus:      in.bus,
			Oracle:   oracle.New(in.LLM),
			Out:      out,
		}
		sres, err := s.ForJob(cmd.Context(), suggest.Job{ID: res.Job.ID, File: res.Path, Text: text})
		if err != nil {
			return err
		}
		printSuggestions(out, sres)
		return nil
	})
}

func runIngestProfile(cmd *cobra.Command, _ []string) error {
	return withIngester(cmd, func(in ingestRun) error {
		res, err := in.IngestProfile(cmd.Context(), ingestOptions())
		if err != nil {
			return fmt.Errorf("failed to ingest profile: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Ingested candidate %s (id %s)\n", res.Candidate.Name, res.Candidate.ID)
		fmt.Fprintf(out, "Profile: %s\n", res.Path)
		fmt.Fprintf(out, "Skills: %d\n", len(res.Candidate.Skills))
		if res.MessageID != "" {
			fmt.Fprintf(out, "Announced to %s (message %s)\n", bus.AgentJill, res.MessageID)
		}
		return nil
	})
}

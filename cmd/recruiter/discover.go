package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:       "discover [profiles|specs]",
	Short:     "List candidate profiles and job specs",
	Long:      "List artifacts found under the content root together with those announced on the bus. Without an argument both kinds are listed.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"profiles", "specs"},
	RunE:      runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	kinds := []discovery.Kind{discovery.KindProfile, discovery.KindSpec}
	if len(args) == 1 {
		if args[0] == "profiles" {
			kinds = kinds[:1]
		} else {
			kinds = kinds[1:]
		}
	}

	return withStore(cmd.Context(), func(_ *db.DB, b *bus.Bus) error {
		ix := discovery.New(cfg.ContentRoot, b)
		out := cmd.OutOrStdout()
		for _, kind := range kinds {
			paths, err := ix.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%d):\n", discoveryLabel(kind), len(paths))
			if len(paths) == 0 {
				fmt.Fprintln(out, "  none")
			}
			for _, p := range paths {
				fmt.Fprintf(out, "  - %s\n", p)
			}
		}
		return nil
	})
}

func discoveryLabel(kind discovery.Kind) string {
	if kind == discovery.KindProfile {
		return "Candidate profiles"
	}
	return "Job specs"
}

package negotiation

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

// maxArtifactChars caps how much of a profile or spec goes into one prompt.
const maxArtifactChars = 6000

// Artifacts is the discovery index: the sorted profile and spec paths that
// fix the processing order, and their text.
type Artifacts interface {
	ListProfiles(ctx context.Context) ([]string, error)
	ListSpecs(ctx context.Context) ([]string, error)
	Rel(path string) (string, bool)
	Read(rel string) (string, error)
}

// workset is the ordered input of one run plus the artifact text of each row,
// keyed by row id.
type workset struct {
	jobs       []db.Job
	candidates []db.Candidate
	specs      map[string]string
	profiles   map[string]string
}

// load lists jobs and candidates. With Artifacts set, rows are ordered by
// the discovery order of their spec or profile file; rows whose file was
// not discovered follow in creation order.
func (o *Orchestrator) load(ctx context.Context) (*workset, error) {
	jobs, err := o.Store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	candidates, err := o.Store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	ws := &workset{
		jobs:       jobs,
		candidates: candidates,
		specs:      map[string]string{},
		profiles:   map[string]string{},
	}
	if o.Artifacts == nil {
		return ws, nil
	}

	specs, err := o.Artifacts.ListSpecs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover job specs: %w", err)
	}
	profiles, err := o.Artifacts.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover candidate profiles: %w", err)
	}

	specRank := o.rankRows(specs, len(jobs), func(i int) string { return jobs[i].SpecFile })
	sortByRank(jobs, specRank)
	profileRank := o.rankRows(profiles, len(candidates), func(i int) string { return candidates[i].ProfileFile })
	sortByRank(candidates, profileRank)

	for _, j := range jobs {
		if text := o.artifactText(j.SpecFile); text != "" {
			ws.specs[j.ID] = text
		}
	}
	for _, c := range candidates {
		if text := o.artifactText(c.ProfileFile); text != "" {
			ws.profiles[c.ID] = text
		}
	}
	return ws, nil
}

// rankRows gives row i the position of its file in discovered, or
// len(discovered) when it has none.
func (o *Orchestrator) rankRows(discovered []string, n int, file func(i int) string) []int {
	pos := make(map[string]int, len(discovered))
	for i, p := range discovered {
		pos[p] = i
	}
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = len(discovered)
		if rel, ok := o.Artifacts.Rel(file(i)); ok {
			if p, found := pos[rel]; found {
				ranks[i] = p
			}
		}
	}
	return ranks
}

// sortByRank stably reorders items by ranks, which must be index-aligned.
func sortByRank[T any](items []T, ranks []int) {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return ranks[idx[a]] < ranks[idx[b]] })
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

func (o *Orchestrator) artifactText(file string) string {
	rel, ok := o.Artifacts.Rel(file)
	if !ok {
		return ""
	}
	text, err := o.Artifacts.Read(rel)
	if err != nil {
		log.Printf("[negotiation] skipping artifact %s: %v", rel, err)
		return ""
	}
	if len(text) > maxArtifactChars {
		text = text[:maxArtifactChars]
	}
	return text
}

func (ws *workset) data(job db.Job, c db.Candidate) map[string]string {
	data := promptData(job, c)
	data["JobSpec"] = ws.specs[job.ID]
	data["Profile"] = ws.profiles[c.ID]
	return data
}

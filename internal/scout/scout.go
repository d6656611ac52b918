// Package scout sources candidates for open jobs and jobs for known
// candidates, and tells Jack and Jill what it found.
package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/prompts"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/skills"
)

const (
	// InternalThreshold is the score a stored candidate needs to count as an
	// internal match.
	InternalThreshold = 0.7
	// SearchLimit caps each external search.
	SearchLimit = 5
	// maxQueryTerms caps the requirement terms put into a candidate search.
	maxQueryTerms = 5
)

// Store is the subset of *db.DB the scout needs.
type Store interface {
	ListJobs(ctx context.Context) ([]db.Job, error)
	ListCandidates(ctx context.Context) ([]db.Candidate, error)
	CreateMatch(ctx context.Context, in *db.MatchInput) (*db.Match, error)
}

// Sender posts bus messages.
type Sender interface {
	Send(ctx context.Context, from, to, msgType, content string, metadata map[string]any) (string, error)
}

// Scorer is the scoring oracle.
type Scorer interface {
	Score(ctx context.Context, prompt string, conv oracle.Convention) oracle.Result
	GenerateJSON(ctx context.Context, prompt string) string
}

// Scout runs both sourcing modes.
type Scout struct {
	Store    Store
	Bus      Sender
	Oracle   Scorer
	Searcher search.Searcher
	Out      io.Writer
}

// JobResult is what the scout did for one job.
type JobResult struct {
	JobID          string             `json:"job_id"`
	JobTitle       string             `json:"job_title"`
	InternalScores map[string]float64 `json:"internal_scores,omitempty"`
	InternalMatch  []InternalMatch    `json:"internal_matches,omitempty"`
	Query          string             `json:"query,omitempty"`
	External       []search.Profile   `json:"external,omitempty"`
	MessageID      string             `json:"message_id,omitempty"`
}

// CandidateResult is what the scout did for one candidate.
type CandidateResult struct {
	CandidateID   string           `json:"candidate_id"`
	CandidateName string           `json:"candidate_name"`
	Query         string           `json:"query"`
	Jobs          []search.Posting `json:"jobs,omitempty"`
	MessageIDs    []string         `json:"message_ids,omitempty"`
}

// InternalMatch is a stored candidate that fits a job.
type InternalMatch struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name,omitempty"`
	MatchID       string  `json:"match_id,omitempty"`
	Score         float64 `json:"score"`
	Rationale     string  `json:"rationale,omitempty"`
}

// Report summarizes one scout run.
type Report struct {
	Jobs       []JobResult       `json:"jobs"`
	Candidates []CandidateResult `json:"candidates"`
}

// InternalMatches counts internal matches across jobs.
func (r *Report) InternalMatches() int {
	n := 0
	for _, j := range r.Jobs {
		n += len(j.InternalMatch)
	}
	return n
}

// ExternalProfiles counts external profiles found across jobs.
func (r *Report) ExternalProfiles() int {
	n := 0
	for _, j := range r.Jobs {
		n += len(j.External)
	}
	return n
}

// ExternalJobs counts postings found across candidates.
func (r *Report) ExternalJobs() int {
	n := 0
	for _, c := range r.Candidates {
		n += len(c.Jobs)
	}
	return n
}

// Messages counts bus messages sent.
func (r *Report) Messages() int {
	n := 0
	for _, j := range r.Jobs {
		if j.MessageID != "" {
			n++
		}
	}
	for _, c := range r.Candidates {
		n += len(c.MessageIDs)
	}
	return n
}

func (s *Scout) printf(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format, args...)
	}
}

// Run executes candidate sourcing for every job, then job sourcing for every
// candidate. Store and send failures end the run.
func (s *Scout) Run(ctx context.Context) (*Report, error) {
	jobs, err := s.Store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	candidates, err := s.Store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	s.printf("Scout: %d job(s), %d candidate(s)\n", len(jobs), len(candidates))

	report := &Report{Jobs: []JobResult{}, Candidates: []CandidateResult{}}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.SourceCandidates(ctx, job, candidates)
		if err != nil {
			return report, err
		}
		report.Jobs = append(report.Jobs, *res)
	}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.SourceJobs(ctx, c)
		if err != nil {
			return report, err
		}
		report.Candidates = append(report.Candidates, *res)
	}
	return report, nil
}

// SourceCandidates looks for candidates for job. Stored candidates scoring at
// least InternalThreshold become internal_db matches and Jill is told; only
// when there are none does the scout search externally and tell Jack.
func (s *Scout) SourceCandidates(ctx context.Context, job db.Job, candidates []db.Candidate) (*JobResult, error) {
	res := &JobResult{JobID: job.ID, JobTitle: job.Title, InternalScores: map[string]float64{}}
	s.printf("\nJob: %s\n", job.Title)

	for _, c := range candidates {
		prompt, err := prompts.Render(prompts.ScoutFile, "internal-match", map[string]string{
			"JobTitle":      job.Title,
			"Company":       job.Company,
			"Requirements":  strings.Join(job.Requirements, "\n"),
			"CandidateName": c.Name,
			"Skills":        strings.Join(c.Skills, ", "),
			"Preferences":   c.Preferences.Location,
			"Marker":        oracle.MarkerMatchScore,
		})
		if err != nil {
			log.Printf("[scout] failed to render prompt: %v", err)
		}
		r := s.Oracle.Score(ctx, prompt, oracle.Neutral())
		res.InternalScores[c.ID] = r.Score
		if r.Score < InternalThreshold {
			continue
		}
		m, err := s.Store.CreateMatch(ctx, &db.MatchInput{
			CandidateID: c.ID,
			JobID:       job.ID,
			Score:       r.Score,
			Source:      db.SourceInternalDB,
			Status:      db.MatchStatusPending,
			HiringNotes: r.Rationale,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create match for %s/%s: %w", c.ID, job.ID, err)
		}
		res.InternalMatch = append(res.InternalMatch, InternalMatch{
			CandidateID:   c.ID,
			CandidateName: c.Name,
			MatchID:       m.ID,
			Score:         r.Score,
			Rationale:     r.Rationale,
		})
		s.printf("  internal match: %s (%.2f)\n", c.Name, r.Score)
	}

	if len(res.InternalMatch) > 0 {
		meta, err := bus.Metadata(map[string]any{"job_id": job.ID, "job_title": job.Title, "matches": res.InternalMatch})
		if err != nil {
			return nil, err
		}
		content := fmt.Sprintf("Found %d candidate(s) already in our system for %s", len(res.InternalMatch), job.Title)
		id, err := s.Bus.Send(ctx, bus.AgentScout, bus.AgentJill, bus.TypeInternalMatchFound, content, meta)
		if err != nil {
			return nil, fmt.Errorf("failed to send internal matches for %s: %w", job.ID, err)
		}
		res.MessageID = id
		return res, nil
	}

	res.Query = search.CandidateQuery(job.Title, s.queryTerms(ctx, job), "")
	res.External = search.FindCandidates(ctx, s.Searcher, res.Query, SearchLimit)
	s.printf("  external profiles: %d\n", len(res.External))
	if len(res.External) == 0 {
		return res, nil
	}

	meta, err := bus.Metadata(map[string]any{
		"job_id":     job.ID,
		"job_title":  job.Title,
		"query":      res.Query,
		"candidates": res.External,
	})
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("Found %d potential candidate(s) for %s", len(res.External), job.Title)
	id, err := s.Bus.Send(ctx, bus.AgentScout, bus.AgentJack, bus.TypeCandidateRecommendation, content, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to send candidate recommendation for %s: %w", job.ID, err)
	}
	res.MessageID = id
	return res, nil
}

// queryTerms returns up to five requirement terms. A job without
// requirements asks the model for keywords, then falls back to its title.
func (s *Scout) queryTerms(ctx context.Context, job db.Job) []string {
	if len(job.Requirements) > 0 {
		return firstN(job.Requirements, maxQueryTerms)
	}
	prompt, err := prompts.Render(prompts.ScoutFile, "query-keywords", map[string]string{
		"JobTitle":     job.Title,
		"Requirements": "",
	})
	if err == nil {
		if raw := s.Oracle.GenerateJSON(ctx, prompt); raw != "" {
			var keywords []string
			if err := json.Unmarshal([]byte(raw), &keywords); err == nil && len(keywords) > 0 {
				return firstN(keywords, maxQueryTerms)
			}
		}
	}
	return []string{job.Title}
}

// SourceJobs searches postings for candidate and, when any are found, sends
// a job_recommendation to Jack and an outreach_opportunity to Jill.
func (s *Scout) SourceJobs(ctx context.Context, c db.Candidate) (*CandidateResult, error) {
	res := &CandidateResult{CandidateID: c.ID, CandidateName: c.Name}
	res.Query = search.JobQuery(firstN(skills.NormalizeList(c.Skills), 3), c.Preferences.Industries, c.Preferences.Location)
	res.Jobs = search.FindJobs(ctx, s.Searcher, res.Query, SearchLimit)
	s.printf("\nCandidate: %s, %d job(s) found\n", c.Name, len(res.Jobs))
	if len(res.Jobs) == 0 {
		return res, nil
	}

	meta, err := bus.Metadata(map[string]any{
		"candidate_id":   c.ID,
		"candidate_name": c.Name,
		"jobs":           res.Jobs,
	})
	if err != nil {
		return nil, err
	}

	id, err := s.Bus.Send(ctx, bus.AgentScout, bus.AgentJack, bus.TypeJobRecommendation,
		fmt.Sprintf("Found %d potential job(s) for %s", len(res.Jobs), c.Name), meta)
	if err != nil {
		return nil, fmt.Errorf("failed to send job recommendation for %s: %w", c.ID, err)
	}
	res.MessageIDs = append(res.MessageIDs, id)

	id, err = s.Bus.Send(ctx, bus.AgentScout, bus.AgentJill, bus.TypeOutreachOpportunity,
		fmt.Sprintf("Found jobs for %s, consider reaching out to these hiring managers", c.Name), meta)
	if err != nil {
		return nil, fmt.Errorf("failed to send outreach opportunity for %s: %w", c.ID, err)
	}
	res.MessageIDs = append(res.MessageIDs, id)
	return res, nil
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Package suggest is Jill's first look at a new job spec: every discovered
// candidate profile is scored against it and the promising ones are
// suggested to Jack as match_suggestion messages.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/prompts"
)

// Threshold is the score a profile needs to be suggested.
const Threshold = 0.6

// Profiles lists and reads candidate profiles.
type Profiles interface {
	ListProfiles(ctx context.Context) ([]string, error)
	Read(rel string) (string, error)
}

// Sender posts bus messages.
type Sender interface {
	Send(ctx context.Context, from, to, msgType, content string, metadata map[string]any) (string, error)
}

// Scorer is the scoring oracle.
type Scorer interface {
	Score(ctx context.Context, prompt string, conv oracle.Convention) oracle.Result
}

// Job identifies the spec being matched. ID is optional.
type Job struct {
	ID   string
	File string
	Text string
}

// Suggestion is the outcome for one profile.
type Suggestion struct {
	CandidateFile string
	Score         float64
	Parsed        bool
	Rationale     string
	// MessageID is set when the profile was suggested.
	MessageID string
}

// Suggested reports whether a message went out for this profile.
func (s Suggestion) Suggested() bool {
	return s.MessageID != ""
}

// Result lists the outcome per profile in discovery order.
type Result struct {
	JobFile     string
	Suggestions []Suggestion
}

// Sent counts the suggestions that were sent.
func (r *Result) Sent() int {
	n := 0
	for _, s := range r.Suggestions {
		if s.Suggested() {
			n++
		}
	}
	return n
}

// Suggester scores profiles for a job. Unreadable scores fall back to the
// neutral 0.5, which stays below Threshold.
type Suggester struct {
	Profiles Profiles
	Bus      Sender
	Oracle   Scorer
	// Threshold overrides the package Threshold when positive.
	Threshold float64
	Out       io.Writer
}

func (s *Suggester) printf(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format, args...)
	}
}

func (s *Suggester) threshold() float64 {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return Threshold
}

// ForJob scores every discovered profile against job and sends a Jill to
// Jack match_suggestion for each one at or above the threshold. A profile
// that cannot be read is skipped; a failed send ends the pass.
func (s *Suggester) ForJob(ctx context.Context, job Job) (*Result, error) {
	if s.Profiles == nil || s.Bus == nil || s.Oracle == nil {
		return nil, errors.New("suggestions require profiles, a bus and an oracle")
	}
	res := &Result{JobFile: job.File, Suggestions: []Suggestion{}}

	files, err := s.Profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate profiles: %w", err)
	}
	if len(files) == 0 {
		s.printf("No candidate profiles available yet.\n")
		return res, nil
	}
	s.printf("Checking %s against %d candidate profile(s)...\n", job.File, len(files))

	conv := oracle.Neutral()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		profile, err := s.Profiles.Read(file)
		if err != nil {
			log.Printf("[suggest] skipping %s: %v", file, err)
			continue
		}

		prompt, err := prompts.Render(prompts.SuggestFile, "match", map[string]string{
			"JobSpec": job.Text,
			"Profile": profile,
			"Marker":  conv.Marker,
		})
		if err != nil {
			return nil, err
		}
		r := s.Oracle.Score(ctx, prompt, conv)
		sg := Suggestion{CandidateFile: file, Score: r.Score, Parsed: r.Parsed, Rationale: r.Rationale}

		if r.Score < s.threshold() {
			s.printf("  %s: %.2f, not suggesting\n", file, r.Score)
			res.Suggestions = append(res.Suggestions, sg)
			continue
		}

		sg.MessageID, err = s.send(ctx, job, sg)
		if err != nil {
			return nil, err
		}
		s.printf("  %s: %.2f, suggested to %s\n", file, r.Score, bus.AgentJack)
		res.Suggestions = append(res.Suggestions, sg)
	}
	return res, nil
}

func (s *Suggester) send(ctx context.Context, job Job, sg Suggestion) (string, error) {
	meta := map[string]any{
		"candidate_file": sg.CandidateFile,
		"job_file":       job.File,
		"match_score":    sg.Score,
		"rationale":      sg.Rationale,
	}
	if job.ID != "" {
		meta["job_id"] = job.ID
	}

	var sb strings.Builder
	sb.WriteString("JOB MATCH SUGGESTION\n\n")
	fmt.Fprintf(&sb, "The candidate from %s could be a great fit for %s.\n\n", sg.CandidateFile, job.File)
	fmt.Fprintf(&sb, "Match Score: %.2f/1.0\n\n", sg.Score)
	if sg.Rationale != "" {
		sb.WriteString(sg.Rationale)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Would you like me to reach out to see if they're interested?")

	id, err := s.Bus.Send(ctx, bus.AgentJill, bus.AgentJack, bus.TypeMatchSuggestion, sb.String(), meta)
	if err != nil {
		return "", fmt.Errorf("failed to send match suggestion for %s: %w", sg.CandidateFile, err)
	}
	return id, nil
}

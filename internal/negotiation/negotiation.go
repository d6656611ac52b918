// Package negotiation runs the Jack and Jill matching protocol over every
// stored job and candidate and commits the outcome as matches and messages.
package negotiation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/prompts"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
)

// Speakers in the transcript
const (
	SpeakerSystem = "SYSTEM"
	SpeakerJack   = bus.AgentJack
	SpeakerJill   = bus.AgentJill
	SpeakerScout  = bus.AgentScout
)

// Store is the subset of *db.DB the orchestrator needs.
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
	Generate(ctx context.Context, prompt, fallback string) string
}

// PromptFunc renders the named prompt with data.
type PromptFunc func(key string, data map[string]string) (string, error)

// DefaultPrompts renders from the embedded negotiation prompt file.
func DefaultPrompts(key string, data map[string]string) (string, error) {
	return prompts.Render(prompts.NegotiationFile, key, data)
}

// Orchestrator drives one negotiation run. Store and send failures end the
// run; scoring and search failures only affect the item at hand.
type Orchestrator struct {
	Store    Store
	Bus      Sender
	Oracle   Scorer
	Searcher search.Searcher
	// Artifacts orders jobs and candidates by discovered file and feeds the
	// file contents into prompts. Without it the store order is used.
	Artifacts Artifacts
	Prompts  PromptFunc
	Strategy Strategy
	Clock    func() time.Time
	Out      io.Writer
	// Verbose adds per-candidate progress lines to Out.
	Verbose bool
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func (o *Orchestrator) printf(format string, args ...any) {
	if o.Out == nil {
		return
	}
	fmt.Fprintf(o.Out, format, args...)
}

func (o *Orchestrator) verbosef(format string, args ...any) {
	if o.Verbose {
		o.printf(format, args...)
	}
}

func (o *Orchestrator) render(key string, data map[string]string) string {
	render := o.Prompts
	if render == nil {
		render = DefaultPrompts
	}
	p, err := render(key, data)
	if err != nil {
		// The oracle still gets called; a broken template scores as a default.
		log.Printf("[negotiation] failed to render prompt %s: %v", key, err)
		return ""
	}
	return p
}

// Run negotiates every stored job against every stored candidate, in
// discovery order when Artifacts is set.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	if o.Store == nil || o.Bus == nil || o.Oracle == nil {
		return nil, errors.New("negotiation requires a store, a bus and an oracle")
	}
	if err := o.Strategy.Validate(); err != nil {
		return nil, err
	}

	report := &RunReport{Strategy: o.Strategy.Name, StartedAt: o.now(), Jobs: []JobOutcome{}}

	ws, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	jobs, candidates := ws.jobs, ws.candidates

	o.printf("Negotiating %d job(s) against %d candidate(s) with strategy %s\n", len(jobs), len(candidates), o.Strategy.Name)
	if len(jobs) == 0 {
		report.Notes = append(report.Notes, "no jobs found")
		log.Printf("[negotiation] no jobs found, nothing to negotiate")
	}
	if len(candidates) == 0 {
		report.Notes = append(report.Notes, "no candidates found")
		log.Printf("[negotiation] no candidates found")
	}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = o.now()
			return report, err
		}
		o.printf("\nJob %d/%d: %s\n", i+1, len(jobs), jobLabel(job))

		var outcome *JobOutcome
		switch o.Strategy.Rounds {
		case RoundsPitch:
			outcome, err = o.pitch(ctx, ws, job)
		default:
			outcome, err = o.crossReview(ctx, ws, job)
		}
		if err != nil {
			report.FinishedAt = o.now()
			return report, err
		}
		report.Jobs = append(report.Jobs, *outcome)
	}

	report.FinishedAt = o.now()
	o.printf("\nNegotiation complete: %d job(s), %d match(es) created\n", len(report.Jobs), report.Matches())
	return report, nil
}

func (o *Orchestrator) crossReview(ctx context.Context, ws *workset, job db.Job) (*JobOutcome, error) {
	s := o.Strategy
	outcome := newOutcome(job)
	byID := make(map[string]db.Candidate, len(ws.candidates))

	o.printf("  Screening %d candidate(s)...\n", len(ws.candidates))
	for _, c := range ws.candidates {
		byID[c.ID] = c
		data := ws.data(job, c)
		data["Marker"] = s.AdvocateMarker
		res := o.Oracle.Score(ctx, o.render("screen", data), o.convention(s.AdvocateMarker, oracle.ScreeningDefault))
		outcome.Screened = append(outcome.Screened, Screened{
			CandidateID:   c.ID,
			CandidateName: c.Name,
			Score:         res.Score,
			Rationale:     res.Rationale,
			Parsed:        res.Parsed,
		})
		o.verbosef("    %s: %.2f\n", c.Name, res.Score)
	}

	shortlist := Shortlist(outcome.Screened, s.ScreenThreshold, s.ShortlistCap)
	if len(shortlist) == 0 {
		outcome.Skipped = true
		outcome.Reason = ReasonNoCandidates
		o.printf("  No suitable candidates (all below %.2f)\n", s.ScreenThreshold)
		log.Printf("[negotiation] %s: %s", job.ID, ReasonNoCandidates)
		return outcome, nil
	}
	o.printf("  Shortlisted %d candidate(s)\n", len(shortlist))

	for _, sc := range shortlist {
		c := byID[sc.CandidateID]
		data := ws.data(job, c)
		data["ScreeningRationale"] = sc.Rationale

		data["Marker"] = s.AdvocateMarker
		adv := o.Oracle.Score(ctx, o.render("advocate", data), o.convention(s.AdvocateMarker, s.AdvocateDefault))
		outcome.say(SpeakerJack, fmt.Sprintf("%s (%.2f): %s", c.Name, adv.Score, adv.Rationale))

		data["Marker"] = s.ReviewerMarker
		data["AdvocateRationale"] = adv.Rationale
		rev := o.Oracle.Score(ctx, o.render("reviewer", data), o.convention(s.ReviewerMarker, s.ReviewerDefault))
		outcome.say(SpeakerJill, fmt.Sprintf("%s (%.2f): %s", c.Name, rev.Score, rev.Rationale))

		avg := Average(adv.Score, rev.Score)
		screening := sc.Score
		d := Discussion{
			CandidateID:       c.ID,
			CandidateName:     c.Name,
			ScreeningScore:    &screening,
			AdvocateScore:     adv.Score,
			AdvocateRationale: adv.Rationale,
			ReviewerScore:     rev.Score,
			ReviewerRationale: rev.Rationale,
			Average:           avg,
			Decision:          Decide(avg, s),
		}
		outcome.Candidates = append(outcome.Candidates, d)
		o.verbosef("    %s: advocate %.2f / reviewer %.2f -> %.2f %s\n", c.Name, adv.Score, rev.Score, avg, d.Decision)
	}

	sort.SliceStable(outcome.Candidates, func(i, j int) bool {
		return outcome.Candidates[i].Average > outcome.Candidates[j].Average
	})

	if err := o.commitShortlist(ctx, job, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (o *Orchestrator) commitShortlist(ctx context.Context, job db.Job, outcome *JobOutcome) error {
	for i := range outcome.Candidates {
		d := &outcome.Candidates[i]
		var status string
		switch d.Decision {
		case DecisionInterview:
			status = db.MatchStatusPending
		case DecisionBackup:
			status = db.MatchStatusBackup
		default:
			continue
		}
		m, err := o.Store.CreateMatch(ctx, &db.MatchInput{
			CandidateID:    d.CandidateID,
			JobID:          job.ID,
			Score:          d.Average,
			Source:         db.SourceNegotiation,
			Status:         status,
			CandidateNotes: d.AdvocateRationale,
			HiringNotes:    d.ReviewerRationale,
		})
		if err != nil {
			return fmt.Errorf("failed to create match for %s/%s: %w", d.CandidateID, job.ID, err)
		}
		d.MatchID = m.ID
	}

	meta, err := bus.Metadata(shortlistMetadata{
		JobID:      job.ID,
		JobTitle:   job.Title,
		Company:    job.Company,
		Strategy:   o.Strategy.Name,
		Shortlist:  outcome.Candidates,
		Transcript: outcome.Transcript,
	})
	if err != nil {
		return err
	}

	var lines []string
	for _, d := range outcome.Candidates {
		lines = append(lines, fmt.Sprintf("- %s: %.2f - %s", d.CandidateName, d.Average, d.Decision))
	}
	content := fmt.Sprintf("SHORTLIST FOR %s\n\nScreened %d candidate(s), recommending %d:\n\n%s",
		jobLabel(job), len(outcome.Screened), len(outcome.Candidates), strings.Join(lines, "\n"))

	id, err := o.Bus.Send(ctx, bus.AgentJack, bus.AgentJill, bus.TypeJobShortlist, content, meta)
	if err != nil {
		return fmt.Errorf("failed to send shortlist for %s: %w", job.ID, err)
	}
	outcome.MessageID = id
	return nil
}

type shortlistMetadata struct {
	JobID      string           `json:"job_id"`
	JobTitle   string           `json:"job_title,omitempty"`
	Company    string           `json:"company,omitempty"`
	Strategy   string           `json:"strategy"`
	Shortlist  []Discussion     `json:"shortlist"`
	Transcript []TranscriptLine `json:"transcript,omitempty"`
}

func (o *Orchestrator) pitch(ctx context.Context, ws *workset, job db.Job) (*JobOutcome, error) {
	s := o.Strategy
	outcome := newOutcome(job)

	outcome.say(SpeakerSystem, fmt.Sprintf("Opening discussion for job: %s", jobLabel(job)))
	fallback := fmt.Sprintf("We are hiring a %s at %s. Key requirements: %s.",
		job.Title, orNA(job.Company), orNA(strings.Join(job.Requirements, ", ")))
	outcome.Opening = o.Oracle.Generate(ctx, o.render("boardroom-opening", ws.data(job, db.Candidate{})), fallback)
	outcome.say(SpeakerJill, outcome.Opening)
	outcome.say(SpeakerJack, "Let me check my current candidate roster against those requirements.")

	pitched := 0
	var admitted []admittedEntry
	for _, c := range ws.candidates {
		data := ws.data(job, c)
		data["Opening"] = outcome.Opening
		data["Marker"] = s.AdvocateMarker
		adv := o.Oracle.Score(ctx, o.render("boardroom-pitch", data), o.convention(s.AdvocateMarker, s.AdvocateDefault))

		if adv.Err == nil && !adv.Parsed && strings.Contains(adv.Raw, "SKIP") {
			outcome.Candidates = append(outcome.Candidates, Discussion{
				CandidateID:       c.ID,
				CandidateName:     c.Name,
				AdvocateRationale: adv.Rationale,
				Decision:          DecisionNotPitched,
			})
			o.verbosef("    %s: not pitched\n", c.Name)
			continue
		}
		pitched++
		outcome.say(SpeakerJack, fmt.Sprintf("Candidate %s (score %.1f/%g): %s", c.Name, adv.Score*s.Scale, s.Scale, adv.Rationale))

		data["Marker"] = s.ReviewerMarker
		data["AdvocateRationale"] = adv.Rationale
		rev := o.Oracle.Score(ctx, o.render("boardroom-review", data), o.convention(s.ReviewerMarker, s.ReviewerDefault))
		outcome.say(SpeakerJill, fmt.Sprintf("(score %.1f/%g) %s", rev.Score*s.Scale, s.Scale, rev.Rationale))

		avg := Average(adv.Score, rev.Score)
		d := Discussion{
			CandidateID:       c.ID,
			CandidateName:     c.Name,
			AdvocateScore:     adv.Score,
			AdvocateRationale: adv.Rationale,
			ReviewerScore:     rev.Score,
			ReviewerRationale: rev.Rationale,
			Average:           avg,
			Decision:          Decide(avg, s),
		}
		outcome.say(SpeakerSystem, fmt.Sprintf("Average score: %.2f/%g", avg*s.Scale, s.Scale))

		if d.Decision == DecisionAdmit {
			m, err := o.Store.CreateMatch(ctx, &db.MatchInput{
				CandidateID:    c.ID,
				JobID:          job.ID,
				Score:          avg,
				Source:         db.SourceNegotiationWin,
				Status:         db.MatchStatusPending,
				CandidateNotes: adv.Rationale,
				HiringNotes:    rev.Rationale,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create match for %s/%s: %w", c.ID, job.ID, err)
			}
			d.MatchID = m.ID
			admitted = append(admitted, admittedEntry{CandidateID: c.ID, CandidateName: c.Name, MatchID: m.ID, Average: avg})
			outcome.say(SpeakerSystem, fmt.Sprintf("Interview scheduled: %s -> %s", c.Name, job.Title))
		} else {
			outcome.say(SpeakerSystem, fmt.Sprintf("%s did not meet the bar.", c.Name))
		}
		outcome.Candidates = append(outcome.Candidates, d)
		o.verbosef("    %s: %.2f %s\n", c.Name, avg, d.Decision)
	}

	if pitched == 0 {
		outcome.say(SpeakerJack, "I have reviewed my entire roster and nobody meets that bar right now.")
	}

	if len(admitted) == 0 && s.ExternalFallback {
		outcome.say(SpeakerJill, "No strong internal matches. Scout, please look externally.")
		query := search.CandidateQuery(job.Title, job.Requirements, s.ExternalLocation)
		outcome.External = search.FindCandidates(ctx, o.Searcher, query, s.ExternalLimit)
		if len(outcome.External) == 0 {
			outcome.say(SpeakerScout, "no external matches")
		} else {
			outcome.say(SpeakerScout, fmt.Sprintf("I found %d potential profile(s).", len(outcome.External)))
			for _, p := range outcome.External {
				outcome.say(SpeakerScout, fmt.Sprintf("Found: %s - %s", p.Name, orNA(p.Headline)))
			}
		}
	} else if len(admitted) > 0 {
		outcome.say(SpeakerScout, "You found a match internally. I'll stay put.")
	}

	if len(admitted) > 0 || len(outcome.External) > 0 {
		if err := o.commitResult(ctx, job, admitted, outcome); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

type admittedEntry struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name,omitempty"`
	MatchID       string  `json:"match_id,omitempty"`
	Average       float64 `json:"average"`
}

func (o *Orchestrator) commitResult(ctx context.Context, job db.Job, admitted []admittedEntry, outcome *JobOutcome) error {
	if admitted == nil {
		admitted = []admittedEntry{}
	}
	external := outcome.External
	if external == nil {
		external = []search.Profile{}
	}
	meta, err := bus.Metadata(map[string]any{
		"job_id":              job.ID,
		"job_title":           job.Title,
		"strategy":            o.Strategy.Name,
		"admitted":            admitted,
		"external_candidates": external,
	})
	if err != nil {
		return err
	}

	content := fmt.Sprintf("NEGOTIATION RESULT FOR %s: %d admitted, %d external profile(s)",
		jobLabel(job), len(admitted), len(outcome.External))
	id, err := o.Bus.Send(ctx, bus.AgentJill, bus.AgentJack, bus.TypeNegotiationResult, content, meta)
	if err != nil {
		return fmt.Errorf("failed to send negotiation result for %s: %w", job.ID, err)
	}
	outcome.MessageID = id
	return nil
}

func (o *Orchestrator) convention(marker string, def float64) oracle.Convention {
	return oracle.Convention{Marker: marker, Scale: o.Strategy.Scale, Default: def}
}

func newOutcome(job db.Job) *JobOutcome {
	return &JobOutcome{
		JobID:      job.ID,
		JobTitle:   job.Title,
		Company:    job.Company,
		Candidates: []Discussion{},
	}
}

// promptData fills the shared placeholders. Missing fields render empty.
func promptData(job db.Job, c db.Candidate) map[string]string {
	var reqs []string
	for _, r := range job.Requirements {
		reqs = append(reqs, "- "+r)
	}
	return map[string]string{
		"JobTitle":      job.Title,
		"Company":       job.Company,
		"Requirements":  strings.Join(reqs, "\n"),
		"CandidateName": c.Name,
		"Skills":        strings.Join(c.Skills, ", "),
		"Preferences":   formatPreferences(c.Preferences),
	}
}

func formatPreferences(p db.Preferences) string {
	var parts []string
	if p.Location != "" {
		parts = append(parts, "location: "+p.Location)
	}
	if len(p.Industries) > 0 {
		parts = append(parts, "industries: "+strings.Join(p.Industries, ", "))
	}
	return strings.Join(parts, "; ")
}

func jobLabel(job db.Job) string {
	if job.Company == "" {
		return job.Title
	}
	return job.Title + " at " + job.Company
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

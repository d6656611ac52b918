package negotiation

import (
	"time"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
)

// ReasonNoCandidates is recorded on a job whose shortlist came out empty.
const ReasonNoCandidates = "no suitable candidates"

// TranscriptLine is one utterance in a job's discussion.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Discussion is the full record for one candidate considered for a job.
type Discussion struct {
	CandidateID       string   `json:"candidate_id"`
	CandidateName     string   `json:"candidate_name,omitempty"`
	ScreeningScore    *float64 `json:"screening_score,omitempty"`
	AdvocateScore     float64  `json:"advocate_score"`
	AdvocateRationale string   `json:"advocate_rationale,omitempty"`
	ReviewerScore     float64  `json:"reviewer_score"`
	ReviewerRationale string   `json:"reviewer_rationale,omitempty"`
	Average           float64  `json:"average"`
	Decision          Decision `json:"decision"`
	MatchID           string   `json:"match_id,omitempty"`
}

// JobOutcome is everything one job produced in a run.
type JobOutcome struct {
	JobID      string           `json:"job_id"`
	JobTitle   string           `json:"job_title"`
	Company    string           `json:"company,omitempty"`
	Skipped    bool             `json:"skipped"`
	Reason     string           `json:"reason,omitempty"`
	MessageID  string           `json:"message_id,omitempty"`
	Opening    string           `json:"opening,omitempty"`
	Screened   []Screened       `json:"screened,omitempty"`
	Candidates []Discussion     `json:"candidates"`
	External   []search.Profile `json:"external,omitempty"`
	Transcript []TranscriptLine `json:"transcript,omitempty"`
}

// Count returns how many candidates received decision d.
func (j *JobOutcome) Count(d Decision) int {
	n := 0
	for _, c := range j.Candidates {
		if c.Decision == d {
			n++
		}
	}
	return n
}

func (j *JobOutcome) say(speaker, text string) {
	j.Transcript = append(j.Transcript, TranscriptLine{Speaker: speaker, Text: text})
}

// RunReport is the audit record of one negotiation run.
type RunReport struct {
	Strategy   string       `json:"strategy"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Notes      []string     `json:"notes,omitempty"`
	Jobs       []JobOutcome `json:"jobs"`
}

// Matches returns the number of match rows the run created.
func (r *RunReport) Matches() int {
	n := 0
	for _, j := range r.Jobs {
		for _, c := range j.Candidates {
			if c.MatchID != "" {
				n++
			}
		}
	}
	return n
}

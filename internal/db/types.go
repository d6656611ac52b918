package db

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Match provenance values
const (
	SourceNegotiation    = "negotiation"
	SourceNegotiationWin = "negotiation_win"
	SourceInternalDB     = "internal_db"
	SourceExternalSearch = "external_search"
)

// Match status values. The vocabulary is open; these are the ones the
// recruiter itself writes.
const (
	MatchStatusPending  = "pending"
	MatchStatusApproved = "approved"
	MatchStatusRejected = "rejected"
	MatchStatusBackup   = "backup"
)

// Outreach target types and statuses
const (
	TargetCandidate     = "candidate"
	TargetHiringManager = "hiring_manager"

	OutreachPending = "pending"
	OutreachSent    = "sent"
)

// Preferences holds what a candidate is looking for.
type Preferences struct {
	Location   string   `json:"location,omitempty"`
	Industries []string `json:"industries,omitempty"`
}

// Candidate is a sourced or interviewed person.
type Candidate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email,omitempty"`
	LinkedInURL string      `json:"linkedin_url,omitempty"`
	ProfileFile string      `json:"profile_file,omitempty"`
	Skills      []string    `json:"skills"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CandidateInput is used to create a candidate
type CandidateInput struct {
	Name        string      `validate:"required"`
	Email       string      `validate:"omitempty,email"`
	LinkedInURL string      `validate:"omitempty,url"`
	ProfileFile string
	Skills      []string    `validate:"dive,required"`
	Preferences Preferences
}

// CandidatePatch updates only the non-nil fields.
type CandidatePatch struct {
	Name        *string
	Email       *string
	LinkedInURL *string
	ProfileFile *string
	Skills      *[]string
	Preferences *Preferences
}

// Job is an open position.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company,omitempty"`
	LinkedInURL  string    `json:"linkedin_url,omitempty"`
	SpecFile     string    `json:"spec_file,omitempty"`
	Requirements []string  `json:"requirements"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobInput is used to create a job
type JobInput struct {
	Title        string `validate:"required"`
	Company      string
	LinkedInURL  string   `validate:"omitempty,url"`
	SpecFile     string
	Requirements []string `validate:"dive,required"`
}

// JobPatch updates only the non-nil fields.
type JobPatch struct {
	Title        *string
	Company      *string
	LinkedInURL  *string
	SpecFile     *string
	Requirements *[]string
}

// Match links one candidate to one job with a score in [0,1].
// A (candidate, job) pair may have several rows across provenance runs.
type Match struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"candidate_id"`
	JobID          string    `json:"job_id"`
	Score          float64   `json:"score"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	CandidateNotes string    `json:"candidate_notes,omitempty"`
	HiringNotes    string    `json:"hiring_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MatchInput is used to create a match
type MatchInput struct {
	CandidateID    string `validate:"required"`
	JobID          string `validate:"required"`
	Score          float64
	Source         string `validate:"required"`
	Status         string
	CandidateNotes string
	HiringNotes    string
}

// MatchPatch updates only the non-nil fields.
type MatchPatch struct {
	Status         *string
	CandidateNotes *string
	HiringNotes    *string
}

// MatchForJob is a match joined with its candidate.
type MatchForJob struct {
	Match
	CandidateName     string `json:"candidate_name"`
	CandidateLinkedIn string `json:"candidate_linkedin,omitempty"`
}

// MatchForCandidate is a match joined with its job.
type MatchForCandidate struct {
	Match
	JobTitle string `json:"job_title"`
	Company  string `json:"company,omitempty"`
}

// BestMatch is the highest score recorded for a (candidate, job) pair.
type BestMatch struct {
	CandidateID string  `json:"candidate_id" db:"candidate_id"`
	JobID       string  `json:"job_id" db:"job_id"`
	Score       float64 `json:"score" db:"score"`
	Matches     int     `json:"matches" db:"matches"`
}

// OutreachItem is a human-reviewable message waiting to be sent.
type OutreachItem struct {
	ID                string     `json:"id"`
	TargetType        string     `json:"target_type"`
	TargetName        string     `json:"target_name"`
	TargetLinkedInURL string     `json:"target_linkedin_url,omitempty"`
	Message           string     `json:"message"`
	Status            string     `json:"status"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// OutreachInput is used to enqueue an outreach item
type OutreachInput struct {
	TargetType        string `validate:"required,oneof=candidate hiring_manager"`
	TargetName        string `validate:"required"`
	TargetLinkedInURL string
	Message           string `validate:"required"`
}

// AgentMessage is one entry in an agent's mailbox.
type AgentMessage struct {
	ID        string         `json:"id"`
	FromAgent string         `json:"from_agent"`
	ToAgent   string         `json:"to_agent"`
	Type      string         `json:"message_type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// MessageInput is used to insert a message
type MessageInput struct {
	FromAgent string `validate:"required"`
	ToAgent   string `validate:"required"`
	Type      string `validate:"required"`
	Content   string
	Metadata  map[string]any
}

// MessageFilter narrows ListMessages. Zero values mean "any".
type MessageFilter struct {
	ToAgent    string
	Type       string
	UnreadOnly bool
	// NewestFirst orders by created_at DESC, seq DESC; otherwise oldest first.
	NewestFirst bool
	Limit       int
}

// row types mirror table columns for sqlx scanning

type candidateRow struct {
	Seq         int64          `db:"seq"`
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Email       sql.NullString `db:"email"`
	LinkedInURL sql.NullString `db:"linkedin_url"`
	ProfileFile sql.NullString `db:"profile_file"`
	Skills      string         `db:"skills"`
	Preferences string         `db:"preferences"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r candidateRow) toCandidate() (*Candidate, error) {
	c := &Candidate{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email.String,
		LinkedInURL: r.LinkedInURL.String,
		ProfileFile: r.ProfileFile.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := decodeJSON(r.Skills, &c.Skills); err != nil {
		return nil, err
	}
	if err := decodeJSON(r.Preferences, &c.Preferences); err != nil {
		return nil, err
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return c, nil
}

type jobRow struct {
	Seq          int64          `db:"seq"`
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Company      sql.NullString `db:"company"`
	LinkedInURL  sql.NullString `db:"linkedin_url"`
	SpecFile     sql.NullString `db:"spec_file"`
	Requirements string         `db:"requirements"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r jobRow) toJob() (*Job, error) {
	j := &Job{
		ID:          r.ID,
		Title:       r.Title,
		Company:     r.Company.String,
		LinkedInURL: r.LinkedInURL.String,
		SpecFile:    r.SpecFile.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := decodeJSON(r.Requirements, &j.Requirements); err != nil {
		return nil, err
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return j, nil
}

type matchRow struct {
	Seq            int64          `db:"seq"`
	ID             string         `db:"id"`
	CandidateID    string         `db:"candidate_id"`
	JobID          string         `db:"job_id"`
	Score          float64        `db:"score"`
	Source         string         `db:"source"`
	Status         string         `db:"status"`
	CandidateNotes sql.NullString `db:"candidate_notes"`
	HiringNotes    sql.NullString `db:"hiring_notes"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r matchRow) toMatch() Match {
	return Match{
		ID:             r.ID,
		CandidateID:    r.CandidateID,
		JobID:          r.JobID,
		Score:          r.Score,
		Source:         r.Source,
		Status:         r.Status,
		CandidateNotes: r.CandidateNotes.String,
		HiringNotes:    r.HiringNotes.String,
		CreatedAt:      r.CreatedAt,
	}
}

type outreachRow struct {
	Seq               int64          `db:"seq"`
	ID                string         `db:"id"`
	TargetType        string         `db:"target_type"`
	TargetName        string         `db:"target_name"`
	TargetLinkedInURL sql.NullString `db:"target_linkedin_url"`
	Message           string         `db:"message"`
	Status            string         `db:"status"`
	SentAt            sql.NullTime   `db:"sent_at"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (r outreachRow) toItem() *OutreachItem {
	item := &OutreachItem{
		ID:                r.ID,
		TargetType:        r.TargetType,
		TargetName:        r.TargetName,
		TargetLinkedInURL: r.TargetLinkedInURL.String,
		Message:           r.Message,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
	}
	if r.SentAt.Valid {
		t := r.SentAt.Time
		item.SentAt = &t
	}
	return item
}

type messageRow struct {
	Seq       int64     `db:"seq"`
	ID        string    `db:"id"`
	FromAgent string    `db:"from_agent"`
	ToAgent   string    `db:"to_agent"`
	Type      string    `db:"message_type"`
	Content   string    `db:"content"`
	Metadata  string    `db:"metadata"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r messageRow) toMessage() (*AgentMessage, error) {
	m := &AgentMessage{
		ID:        r.ID,
		FromAgent: r.FromAgent,
		ToAgent:   r.ToAgent,
		Type:      r.Type,
		Content:   r.Content,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
	if err := decodeJSON(r.Metadata, &m.Metadata); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

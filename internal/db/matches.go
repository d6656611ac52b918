package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const matchColumns = `m.seq, m.id, m.candidate_id, m.job_id, m.score, m.source, m.status, m.candidate_notes, m.hiring_notes, m.created_at`

// CreateMatch records a match. The score is clamped to [0,1].
func (d *DB) CreateMatch(ctx context.Context, in *MatchInput) (*Match, error) {
	if err := validateInput("match", in); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = MatchStatusPending
	}
	id, err := d.insertWithID(ctx,
		`INSERT INTO matches (id, candidate_id, job_id, score, source, status, candidate_notes, hiring_notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.CandidateID, in.JobID, ClampScore(in.Score), in.Source, status,
		nullString(in.CandidateNotes), nullString(in.HiringNotes), d.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return d.GetMatch(ctx, id)
}

// GetMatch retrieves a match by id. Returns nil, nil if not found.
func (d *DB) GetMatch(ctx context.Context, id string) (*Match, error) {
	var row matchRow
	err := d.db.GetContext(ctx, &row, d.q(`SELECT `+matchColumns+` FROM matches m WHERE m.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	m := row.toMatch()
	return &m, nil
}

// ListMatches returns every match in creation order
func (d *DB) ListMatches(ctx context.Context) ([]Match, error) {
	var rows []matchRow
	if err := d.db.SelectContext(ctx, &rows, `SELECT `+matchColumns+` FROM matches m ORDER BY m.created_at ASC, m.seq ASC`); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	out := make([]Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toMatch())
	}
	return out, nil
}

type matchForJobRow struct {
	matchRow
	CandidateName     string         `db:"candidate_name"`
	CandidateLinkedIn sql.NullString `db:"candidate_linkedin"`
}

// MatchesForJob returns the job's matches joined with candidate details,
// highest score first.
func (d *DB) MatchesForJob(ctx context.Context, jobID string) ([]MatchForJob, error) {
	query := `SELECT ` + matchColumns + `, c.name AS candidate_name, c.linkedin_url AS candidate_linkedin
		FROM matches m
		JOIN candidates c ON c.id = m.candidate_id
		WHERE m.job_id = ?
		ORDER BY m.score DESC, m.seq ASC`
	var rows []matchForJobRow
	if err := d.db.SelectContext(ctx, &rows, d.q(query), jobID); err != nil {
		return nil, fmt.Errorf("failed to list matches for job: %w", err)
	}
	out := make([]MatchForJob, 0, len(rows))
	for _, r := range rows {
		out = append(out, MatchForJob{
			Match:             r.toMatch(),
			CandidateName:     r.CandidateName,
			CandidateLinkedIn: r.CandidateLinkedIn.String,
		})
	}
	return out, nil
}

type matchForCandidateRow struct {
	matchRow
	JobTitle string         `db:"job_title"`
	Company  sql.NullString `db:"job_company"`
}

// MatchesForCandidate returns the candidate's matches joined with job details,
// highest score first.
func (d *DB) MatchesForCandidate(ctx context.Context, candidateID string) ([]MatchForCandidate, error) {
	query := `SELECT ` + matchColumns + `, j.title AS job_title, j.company AS job_company
		FROM matches m
		JOIN jobs j ON j.id = m.job_id
		WHERE m.candidate_id = ?
		ORDER BY m.score DESC, m.seq ASC`
	var rows []matchForCandidateRow
	if err := d.db.SelectContext(ctx, &rows, d.q(query), candidateID); err != nil {
		return nil, fmt.Errorf("failed to list matches for candidate: %w", err)
	}
	out := make([]MatchForCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, MatchForCandidate{
			Match:    r.toMatch(),
			JobTitle: r.JobTitle,
			Company:  r.Company.String,
		})
	}
	return out, nil
}

// BestMatches collapses matches to the highest score per (candidate, job)
// pair, best first.
func (d *DB) BestMatches(ctx context.Context) ([]BestMatch, error) {
	query := `SELECT candidate_id, job_id, MAX(score) AS score, COUNT(*) AS matches
		FROM matches
		GROUP BY candidate_id, job_id
		ORDER BY score DESC, candidate_id ASC, job_id ASC`
	var out []BestMatch
	if err := d.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list best matches: %w", err)
	}
	return out, nil
}

// UpdateMatch applies the non-nil fields of patch. An empty patch is a no-op.
func (d *DB) UpdateMatch(ctx context.Context, id string, patch MatchPatch) error {
	var set setList
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.CandidateNotes != nil {
		set.add("candidate_notes", nullString(*patch.CandidateNotes))
	}
	if patch.HiringNotes != nil {
		set.add("hiring_notes", nullString(*patch.HiringNotes))
	}
	if set.empty() {
		return nil
	}
	return d.applyPatch(ctx, "matches", id, set)
}

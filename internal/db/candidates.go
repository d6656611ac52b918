package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const candidateColumns = `seq, id, name, email, linkedin_url, profile_file, skills, preferences, created_at, updated_at`

// CreateCandidate inserts a new candidate and returns it
func (d *DB) CreateCandidate(ctx context.Context, in *CandidateInput) (*Candidate, error) {
	if err := validateInput("candidate", in); err != nil {
		return nil, err
	}
	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := encodeJSON(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skills: %w", err)
	}
	prefsJSON, err := encodeJSON(in.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	now := d.now()
	id, err := d.insertWithID(ctx,
		`INSERT INTO candidates (id, name, email, linkedin_url, profile_file, skills, preferences, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Email), nullString(in.LinkedInURL), nullString(in.ProfileFile),
		skillsJSON, prefsJSON, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return d.GetCandidate(ctx, id)
}

// GetCandidate retrieves a candidate by id. Returns nil, nil if not found.
func (d *DB) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	var row candidateRow
	err := d.db.GetContext(ctx, &row, d.q(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	c, err := row.toCandidate()
	if err != nil {
		return nil, fmt.Errorf("failed to decode candidate %s: %w", id, err)
	}
	return c, nil
}

// ListCandidates returns all candidates in creation order
func (d *DB) ListCandidates(ctx context.Context) ([]Candidate, error) {
	var rows []candidateRow
	if err := d.db.SelectContext(ctx, &rows, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at ASC, seq ASC`); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	out := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		c, err := r.toCandidate()
		if err != nil {
			return nil, fmt.Errorf("failed to decode candidate %s: %w", r.ID, err)
		}
		out = append(out, *c)
	}
	return out, nil
}

// FindCandidateByName returns the first candidate with the given name, or nil.
func (d *DB) FindCandidateByName(ctx context.Context, name string) (*Candidate, error) {
	var id string
	err := d.db.GetContext(ctx, &id, d.q(`SELECT id FROM candidates WHERE name = ? ORDER BY seq ASC LIMIT 1`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return d.GetCandidate(ctx, id)
}

// UpdateCandidate applies the non-nil fields of patch.
func (d *DB) UpdateCandidate(ctx context.Context, id string, patch CandidatePatch) error {
	var set setList
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Email != nil {
		set.add("email", nullString(*patch.Email))
	}
	if patch.LinkedInURL != nil {
		set.add("linkedin_url", nullString(*patch.LinkedInURL))
	}
	if patch.ProfileFile != nil {
		set.add("profile_file", nullString(*patch.ProfileFile))
	}
	if patch.Skills != nil {
		s, err := encodeJSON(*patch.Skills)
		if err != nil {
			return fmt.Errorf("failed to encode skills: %w", err)
		}
		set.add("skills", s)
	}
	if patch.Preferences != nil {
		s, err := encodeJSON(*patch.Preferences)
		if err != nil {
			return fmt.Errorf("failed to encode preferences: %w", err)
		}
		set.add("preferences", s)
	}
	if set.empty() {
		return nil
	}
	set.add("updated_at", d.now())
	return d.applyPatch(ctx, "candidates", id, set)
}

// applyPatch runs UPDATE <table> SET <set> WHERE id = ? and maps zero
// affected rows to ErrNotFound.
func (d *DB) applyPatch(ctx context.Context, table, id string, set setList) error {
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, set.clause())
	res, err := d.db.ExecContext(ctx, d.q(query), append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

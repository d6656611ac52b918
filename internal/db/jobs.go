package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const jobColumns = `seq, id, title, company, linkedin_url, spec_file, requirements, created_at, updated_at`

// CreateJob inserts a new job and returns it
func (d *DB) CreateJob(ctx context.Context, in *JobInput) (*Job, error) {
	if err := validateInput("job", in); err != nil {
		return nil, err
	}
	reqs := in.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	reqsJSON, err := encodeJSON(reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirements: %w", err)
	}

	now := d.now()
	id, err := d.insertWithID(ctx,
		`INSERT INTO jobs (id, title, company, linkedin_url, spec_file, requirements, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, nullString(in.Company), nullString(in.LinkedInURL), nullString(in.SpecFile),
		reqsJSON, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return d.GetJob(ctx, id)
}

// GetJob retrieves a job by id. Returns nil, nil if not found.
func (d *DB) GetJob(ctx context.Context, id string) (*Job, error) {
	var row jobRow
	err := d.db.GetContext(ctx, &row, d.q(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	j, err := row.toJob()
	if err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return j, nil
}

// ListJobs returns all jobs in creation order
func (d *DB) ListJobs(ctx context.Context) ([]Job, error) {
	var rows []jobRow
	if err := d.db.SelectContext(ctx, &rows, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at ASC, seq ASC`); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	out := make([]Job, 0, len(rows))
	for _, r := range rows {
		j, err := r.toJob()
		if err != nil {
			return nil, fmt.Errorf("failed to decode job %s: %w", r.ID, err)
		}
		out = append(out, *j)
	}
	return out, nil
}

// FindJobBySpecFile returns the job created from the given spec artifact, or nil.
func (d *DB) FindJobBySpecFile(ctx context.Context, specFile string) (*Job, error) {
	var id string
	err := d.db.GetContext(ctx, &id, d.q(`SELECT id FROM jobs WHERE spec_file = ? ORDER BY seq ASC LIMIT 1`), specFile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return d.GetJob(ctx, id)
}

// UpdateJob applies the non-nil fields of patch.
func (d *DB) UpdateJob(ctx context.Context, id string, patch JobPatch) error {
	var set setList
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Company != nil {
		set.add("company", nullString(*patch.Company))
	}
	if patch.LinkedInURL != nil {
		set.add("linkedin_url", nullString(*patch.LinkedInURL))
	}
	if patch.SpecFile != nil {
		set.add("spec_file", nullString(*patch.SpecFile))
	}
	if patch.Requirements != nil {
		s, err := encodeJSON(*patch.Requirements)
		if err != nil {
			return fmt.Errorf("failed to encode requirements: %w", err)
		}
		set.add("requirements", s)
	}
	if set.empty() {
		return nil
	}
	set.add("updated_at", d.now())
	return d.applyPatch(ctx, "jobs", id, set)
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const outreachColumns = `seq, id, target_type, target_name, target_linkedin_url, message, status, sent_at, created_at`

// EnqueueOutreach appends a pending outreach item
func (d *DB) EnqueueOutreach(ctx context.Context, in *OutreachInput) (*OutreachItem, error) {
	if err := validateInput("outreach", in); err != nil {
		return nil, err
	}
	id, err := d.insertWithID(ctx,
		`INSERT INTO outreach_queue (id, target_type, target_name, target_linkedin_url, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.TargetType, in.TargetName, nullString(in.TargetLinkedInURL), in.Message, OutreachPending, d.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue outreach: %w", err)
	}
	return d.GetOutreach(ctx, id)
}

// GetOutreach retrieves an outreach item by id. Returns nil, nil if not found.
func (d *DB) GetOutreach(ctx context.Context, id string) (*OutreachItem, error) {
	var row outreachRow
	err := d.db.GetContext(ctx, &row, d.q(`SELECT `+outreachColumns+` FROM outreach_queue WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outreach: %w", err)
	}
	return row.toItem(), nil
}

// ListPendingOutreach returns pending items oldest first
func (d *DB) ListPendingOutreach(ctx context.Context) ([]OutreachItem, error) {
	var rows []outreachRow
	err := d.db.SelectContext(ctx, &rows,
		d.q(`SELECT `+outreachColumns+` FROM outreach_queue WHERE status = ? ORDER BY created_at ASC, seq ASC`),
		OutreachPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending outreach: %w", err)
	}
	out := make([]OutreachItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toItem())
	}
	return out, nil
}

// MarkOutreachSent moves a pending item to sent and stamps sent_at.
// Marking an already-sent item is a no-op; unknown ids return ErrNotFound.
func (d *DB) MarkOutreachSent(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx,
		d.q(`UPDATE outreach_queue SET status = ?, sent_at = ? WHERE id = ? AND status = ?`),
		OutreachSent, d.now(), id, OutreachPending)
	if err != nil {
		return fmt.Errorf("failed to mark outreach sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark outreach sent: %w", err)
	}
	if n > 0 {
		return nil
	}
	item, err := d.GetOutreach(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("outreach %s: %w", id, ErrNotFound)
	}
	return nil
}
